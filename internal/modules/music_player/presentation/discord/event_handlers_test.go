package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
)

func TestEventHandlers_BotVoiceStateChange(t *testing.T) {
	h := NewEventHandlers(snowflake.ID(10), nil)

	tests := []struct {
		name        string
		event       *discordgo.VoiceStateUpdate
		wantOK      bool
		wantChannel *snowflake.ID
	}{
		{
			name: "other user",
			event: &discordgo.VoiceStateUpdate{VoiceState: &discordgo.VoiceState{
				UserID: "11", GuildID: "1", ChannelID: "5",
			}},
		},
		{
			name: "bot disconnected",
			event: &discordgo.VoiceStateUpdate{VoiceState: &discordgo.VoiceState{
				UserID: "10", GuildID: "1",
			}},
			wantOK: true,
		},
		{
			name: "bot moved",
			event: &discordgo.VoiceStateUpdate{
				VoiceState:   &discordgo.VoiceState{UserID: "10", GuildID: "1", ChannelID: "6"},
				BeforeUpdate: &discordgo.VoiceState{UserID: "10", GuildID: "1", ChannelID: "5"},
			},
			wantOK:      true,
			wantChannel: idPtr(6),
		},
		{
			name: "mute toggle",
			event: &discordgo.VoiceStateUpdate{
				VoiceState:   &discordgo.VoiceState{UserID: "10", GuildID: "1", ChannelID: "5", SelfMute: true},
				BeforeUpdate: &discordgo.VoiceState{UserID: "10", GuildID: "1", ChannelID: "5"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, ok := h.botVoiceStateChange(tt.event)

			if ok != tt.wantOK {
				t.Fatalf("expected ok %v, got %v", tt.wantOK, ok)
			}
			if !ok {
				return
			}
			if input.GuildID != 1 {
				t.Errorf("expected guild 1, got %d", input.GuildID)
			}
			switch {
			case tt.wantChannel == nil && input.NewChannelID != nil:
				t.Errorf("expected disconnect, got channel %d", *input.NewChannelID)
			case tt.wantChannel != nil && (input.NewChannelID == nil || *input.NewChannelID != *tt.wantChannel):
				t.Errorf("expected channel %d, got %v", *tt.wantChannel, input.NewChannelID)
			}
		})
	}
}

func idPtr(id snowflake.ID) *snowflake.ID {
	return &id
}
