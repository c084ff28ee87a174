package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sumire/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sumire/internal/modules/music_player/application/session"
	"github.com/sglre6355/sumire/internal/modules/music_player/domain"
)

// MaxUserVolume is the highest volume users may set.
const MaxUserVolume = 200

// PlayInput contains the input for the Play use case.
type PlayInput struct {
	GuildID               snowflake.ID
	UserID                snowflake.ID
	NotificationChannelID snowflake.ID
	Query                 string
}

// PlayOutput contains the result of the Play use case.
type PlayOutput struct {
	Result domain.ResolveResult
	// Started is the track that began playing, nil if the tracks were queued.
	Started *domain.Track
	// Position is the 1-based queue position of the first queued track, 0 if it started.
	Position int
	// Joined is true if the bot joined voice for this request.
	Joined bool
}

// SkipInput contains the input for the Skip use case.
type SkipInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

// SkipOutput contains the result of the Skip use case.
type SkipOutput struct {
	SkippedTrack domain.Track
}

// StopInput contains the input for the Stop use case.
type StopInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

// SetLoopModeInput contains the input for the SetLoopMode use case.
type SetLoopModeInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
	Mode    domain.LoopMode
}

// SetVolumeInput contains the input for the SetVolume use case.
type SetVolumeInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
	Volume  int
}

// SetVolumeOutput contains the result of the SetVolume use case.
type SetVolumeOutput struct {
	Volume int
	// Applied is true if a live session picked up the new volume.
	Applied bool
}

// PlaybackService handles playback commands.
type PlaybackService struct {
	sessions   *session.Registry
	resolver   *TrackResolver
	voiceState ports.VoiceStateProvider
	settings   ports.SettingsStore
	defaults   domain.GuildSettings
}

// NewPlaybackService creates a new PlaybackService.
// settings may be nil, in which case volume changes only apply to the live session.
func NewPlaybackService(
	sessions *session.Registry,
	resolver *TrackResolver,
	voiceState ports.VoiceStateProvider,
	settings ports.SettingsStore,
	defaults domain.GuildSettings,
) *PlaybackService {
	return &PlaybackService{
		sessions:   sessions,
		resolver:   resolver,
		voiceState: voiceState,
		settings:   settings,
		defaults:   defaults,
	}
}

// Play resolves the query and enqueues the result, joining the user's voice
// channel if the guild has no session yet.
func (p *PlaybackService) Play(ctx context.Context, input PlayInput) (*PlayOutput, error) {
	channelID, err := userVoiceChannel(p.voiceState, input.GuildID, input.UserID)
	if err != nil {
		return nil, err
	}

	existing, hasSession := p.sessions.Get(input.GuildID)
	if hasSession {
		snap, err := existing.Snapshot(ctx)
		switch {
		case errors.Is(err, session.ErrSessionClosed):
			hasSession = false
		case err != nil:
			return nil, err
		case snap.VoiceChannelID != channelID:
			return nil, ErrDifferentVoiceChannel
		}
	}

	result, err := p.resolver.Resolve(ctx, input.Query)
	if err != nil {
		return nil, err
	}
	if result.IsEmpty() {
		if result.EmptyReason == domain.EmptyCrossResolutionFailed {
			return nil, ErrCrossResolutionFailed
		}
		return nil, ErrNoResults
	}
	result = result.WithRequester(input.UserID)

	// A session that existed before resolving must receive the result itself;
	// if it was closed meanwhile the result is discarded.
	target, joined := existing, false
	if !hasSession {
		target, joined, err = p.sessions.GetOrCreate(ctx, input.GuildID, channelID, input.NotificationChannelID)
		if err != nil {
			return nil, err
		}
		// Another /play may have created the session in a different channel.
		if !joined {
			snap, err := target.Snapshot(ctx)
			if err != nil {
				return nil, err
			}
			if snap.VoiceChannelID != channelID {
				return nil, ErrDifferentVoiceChannel
			}
		}
	}

	enqueued, err := target.Enqueue(ctx, result.Tracks, input.NotificationChannelID)
	if err != nil {
		return nil, err
	}

	slog.Info("enqueued tracks",
		"guild", input.GuildID,
		"user", input.UserID,
		"provider", result.Provider,
		"count", enqueued.Count,
		"cross_resolved", result.CrossResolved,
	)

	return &PlayOutput{
		Result:   result,
		Started:  enqueued.Started,
		Position: enqueued.Position,
		Joined:   joined,
	}, nil
}

// Skip stops the current track; the session then advances to the next one.
// Skip always advances, regardless of loop mode.
func (p *PlaybackService) Skip(ctx context.Context, input SkipInput) (*SkipOutput, error) {
	s, err := controlledSession(ctx, p.sessions, p.voiceState, input.GuildID, input.UserID)
	if err != nil {
		return nil, err
	}

	skipped, err := s.Skip(ctx)
	if err != nil {
		return nil, err
	}
	return &SkipOutput{SkippedTrack: skipped}, nil
}

// Stop clears the queue and stops playback without leaving voice.
func (p *PlaybackService) Stop(ctx context.Context, input StopInput) error {
	s, err := controlledSession(ctx, p.sessions, p.voiceState, input.GuildID, input.UserID)
	if err != nil {
		return err
	}
	return s.Stop(ctx)
}

// SetLoopMode sets the loop mode of the guild's session.
func (p *PlaybackService) SetLoopMode(ctx context.Context, input SetLoopModeInput) error {
	s, err := controlledSession(ctx, p.sessions, p.voiceState, input.GuildID, input.UserID)
	if err != nil {
		return err
	}
	return s.SetLoopMode(ctx, input.Mode)
}

// SetVolume stores the guild's default volume and applies it to the live session.
func (p *PlaybackService) SetVolume(ctx context.Context, input SetVolumeInput) (*SetVolumeOutput, error) {
	if input.Volume < 0 || input.Volume > MaxUserVolume {
		return nil, ErrInvalidVolume
	}

	s, hasSession := p.sessions.Get(input.GuildID)
	if hasSession {
		var err error
		s, err = controlledSession(ctx, p.sessions, p.voiceState, input.GuildID, input.UserID)
		switch {
		case errors.Is(err, ErrNotConnected):
			hasSession = false
		case err != nil:
			return nil, err
		}
	}

	if err := p.saveDefaultVolume(ctx, input.GuildID, input.Volume); err != nil {
		return nil, err
	}

	output := &SetVolumeOutput{Volume: input.Volume}
	if !hasSession {
		return output, nil
	}

	applied, err := s.SetVolume(ctx, input.Volume)
	if err != nil {
		if errors.Is(err, session.ErrSessionClosed) {
			return output, nil
		}
		return nil, err
	}
	output.Volume = applied
	output.Applied = true
	return output, nil
}

func (p *PlaybackService) saveDefaultVolume(ctx context.Context, guildID snowflake.ID, volume int) error {
	if p.settings == nil {
		return nil
	}

	current, err := p.settings.Load(ctx, guildID)
	if err != nil {
		slog.Warn("failed to load guild settings, using defaults", "guild", guildID, "error", err)
		current = domain.NewGuildSettings(guildID, p.defaults.DefaultVolume, p.defaults.IdleTimeout)
	}

	updated := domain.NewGuildSettings(guildID, volume, current.IdleTimeout)
	if err := p.settings.Save(ctx, updated); err != nil {
		return fmt.Errorf("failed to save guild settings: %w", err)
	}
	return nil
}
