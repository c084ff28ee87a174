package discord

import (
	"context"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sumire/internal/modules/music_player/application/usecases"
)

// voiceEventTimeout bounds the work triggered by a single voice state update.
const voiceEventTimeout = 10 * time.Second

// EventHandlers handles Discord gateway events for the music player.
type EventHandlers struct {
	botID        snowflake.ID
	voiceChannel *usecases.VoiceChannelService
}

// NewEventHandlers creates a new EventHandlers.
func NewEventHandlers(
	botID snowflake.ID,
	voiceChannel *usecases.VoiceChannelService,
) *EventHandlers {
	return &EventHandlers{
		botID:        botID,
		voiceChannel: voiceChannel,
	}
}

// HandleVoiceStateUpdate reacts to the bot being moved or disconnected.
func (h *EventHandlers) HandleVoiceStateUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	input, ok := h.botVoiceStateChange(event)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), voiceEventTimeout)
	defer cancel()

	h.voiceChannel.HandleBotVoiceStateChange(ctx, input)
}

// botVoiceStateChange converts an update of the bot's own voice state.
// It returns false for other users and for updates that keep the channel.
func (h *EventHandlers) botVoiceStateChange(
	event *discordgo.VoiceStateUpdate,
) (usecases.BotVoiceStateChangeInput, bool) {
	if event.UserID != h.botID.String() {
		return usecases.BotVoiceStateChangeInput{}, false
	}

	// Mute and deafen toggles repeat the current channel.
	if event.BeforeUpdate != nil && event.BeforeUpdate.ChannelID == event.ChannelID {
		return usecases.BotVoiceStateChangeInput{}, false
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return usecases.BotVoiceStateChangeInput{}, false
	}

	// Parse the channel ID - nil means disconnected
	var newChannelID *snowflake.ID
	if event.ChannelID != "" {
		id, err := snowflake.Parse(event.ChannelID)
		if err != nil {
			slog.Error("failed to parse channel ID in voice state update", "error", err)
			return usecases.BotVoiceStateChangeInput{}, false
		}
		newChannelID = &id
	}

	return usecases.BotVoiceStateChangeInput{
		GuildID:      guildID,
		NewChannelID: newChannelID,
	}, true
}
