package infrastructure

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sumire/internal/modules/music_player/application/ports"
)

var _ ports.RequesterProvider = (*DiscordRequesterProvider)(nil)

// DiscordRequesterProvider looks up requesting members, preferring the state
// cache over a REST call.
type DiscordRequesterProvider struct {
	session *discordgo.Session
}

// NewDiscordRequesterProvider creates a new DiscordRequesterProvider.
func NewDiscordRequesterProvider(session *discordgo.Session) *DiscordRequesterProvider {
	return &DiscordRequesterProvider{session: session}
}

// GetRequester returns display info for a member of the guild.
func (p *DiscordRequesterProvider) GetRequester(
	guildID, userID snowflake.ID,
) (ports.Requester, error) {
	member, err := p.session.State.Member(guildID.String(), userID.String())
	if err != nil || member.User == nil {
		member, err = p.session.GuildMember(guildID.String(), userID.String())
		if err != nil {
			return ports.Requester{}, fmt.Errorf("failed to fetch guild member: %w", err)
		}
	}

	return ports.Requester{
		DisplayName: getDisplayName(member),
		AvatarURL:   member.AvatarURL(""),
	}, nil
}

// getDisplayName returns the effective display name for a guild member.
// Priority: guild nickname > global display name > username.
func getDisplayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}
