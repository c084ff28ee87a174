package bot

import "github.com/bwmarrin/discordgo"

// Responder answers a Discord interaction.
// Handlers depend on it instead of the session so they can be tested offline.
type Responder interface {
	// Respond sends the initial response to an interaction.
	Respond(response *discordgo.InteractionResponse) error

	// Edit replaces the embeds of a response sent earlier, typically a
	// deferred one.
	Edit(embeds []*discordgo.MessageEmbed) error
}

// DiscordResponder implements Responder using a live Discord session.
type DiscordResponder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
}

// NewDiscordResponder creates a new DiscordResponder.
func NewDiscordResponder(s *discordgo.Session, i *discordgo.Interaction) *DiscordResponder {
	return &DiscordResponder{
		session:     s,
		interaction: i,
	}
}

// Respond sends a response to the interaction via Discord API.
func (r *DiscordResponder) Respond(response *discordgo.InteractionResponse) error {
	return r.session.InteractionRespond(r.interaction, response)
}

// Edit edits the original interaction response.
func (r *DiscordResponder) Edit(embeds []*discordgo.MessageEmbed) error {
	_, err := r.session.InteractionResponseEdit(r.interaction, &discordgo.WebhookEdit{
		Embeds: &embeds,
	})
	return err
}

// MockResponder is a test double for Responder.
type MockResponder struct {
	LastResponse *discordgo.InteractionResponse
	LastEdit     []*discordgo.MessageEmbed
	Err          error
}

// Respond records the response for testing.
func (m *MockResponder) Respond(response *discordgo.InteractionResponse) error {
	m.LastResponse = response
	return m.Err
}

// Edit records the edited embeds for testing.
func (m *MockResponder) Edit(embeds []*discordgo.MessageEmbed) error {
	m.LastEdit = embeds
	return m.Err
}
