package usecases

import (
	"context"
	"errors"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sumire/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sumire/internal/modules/music_player/application/session"
)

// LeaveInput contains the input for the Leave use case.
type LeaveInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

// BotVoiceStateChangeInput contains the input for handling bot voice state changes.
type BotVoiceStateChangeInput struct {
	GuildID      snowflake.ID
	NewChannelID *snowflake.ID // nil means disconnected
}

// VoiceChannelService handles voice channel membership of sessions.
type VoiceChannelService struct {
	sessions   *session.Registry
	voiceState ports.VoiceStateProvider
}

// NewVoiceChannelService creates a new VoiceChannelService.
func NewVoiceChannelService(
	sessions *session.Registry,
	voiceState ports.VoiceStateProvider,
) *VoiceChannelService {
	return &VoiceChannelService{
		sessions:   sessions,
		voiceState: voiceState,
	}
}

// Leave clears the session and leaves the voice channel.
func (v *VoiceChannelService) Leave(ctx context.Context, input LeaveInput) error {
	s, err := controlledSession(ctx, v.sessions, v.voiceState, input.GuildID, input.UserID)
	if err != nil {
		return err
	}

	if err := s.Leave(ctx); err != nil {
		if errors.Is(err, session.ErrSessionClosed) {
			return ErrNotConnected
		}
		return err
	}
	return nil
}

// HandleBotVoiceStateChange handles external voice state changes (bot moved or disconnected).
// This should be called when the bot's voice state changes due to external factors
// (e.g., being moved by a user or disconnected by Discord).
func (v *VoiceChannelService) HandleBotVoiceStateChange(ctx context.Context, input BotVoiceStateChangeInput) {
	s, ok := v.sessions.Get(input.GuildID)
	if !ok {
		return
	}

	var err error
	if input.NewChannelID == nil {
		err = s.HandleVoiceDisconnected(ctx)
	} else {
		err = s.HandleVoiceMoved(ctx, *input.NewChannelID)
	}
	if err != nil && !errors.Is(err, session.ErrSessionClosed) {
		slog.Warn("failed to apply bot voice state change", "guild", input.GuildID, "error", err)
	}
}

// userVoiceChannel returns the voice channel the user is in.
func userVoiceChannel(
	voiceState ports.VoiceStateProvider,
	guildID, userID snowflake.ID,
) (snowflake.ID, error) {
	channelID, ok, err := voiceState.GetUserVoiceChannel(guildID, userID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrUserNotInVoice
	}
	return channelID, nil
}

// controlledSession returns the guild's session if the user may control it,
// that is, the user is in the same voice channel as the bot.
func controlledSession(
	ctx context.Context,
	sessions *session.Registry,
	voiceState ports.VoiceStateProvider,
	guildID, userID snowflake.ID,
) (*session.Session, error) {
	s, ok := sessions.Get(guildID)
	if !ok {
		return nil, ErrNotConnected
	}

	channelID, err := userVoiceChannel(voiceState, guildID, userID)
	if err != nil {
		return nil, err
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		if errors.Is(err, session.ErrSessionClosed) {
			return nil, ErrNotConnected
		}
		return nil, err
	}
	if snap.VoiceChannelID != channelID {
		return nil, ErrDifferentVoiceChannel
	}
	return s, nil
}
