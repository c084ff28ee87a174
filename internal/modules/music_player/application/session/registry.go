package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sumire/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sumire/internal/modules/music_player/domain"
	"golang.org/x/sync/singleflight"
)

// ErrVoiceConnectionFailed is returned when a new session could not join voice.
var ErrVoiceConnectionFailed = errors.New("failed to connect to voice channel")

// Dependencies holds the collaborators shared by all sessions.
type Dependencies struct {
	Player        ports.AudioPlayer
	Voice         ports.VoiceConnection
	Settings      ports.SettingsStore
	Notifications ports.NotificationPublisher

	// Schedule overrides the idle timer clock. Nil uses time.AfterFunc.
	Schedule ScheduleFunc
}

// Registry maps guild IDs to live sessions.
// A guild has at most one session, even under concurrent first use.
type Registry struct {
	deps     Dependencies
	defaults domain.GuildSettings

	mu       sync.RWMutex
	sessions map[snowflake.ID]*Session

	creating singleflight.Group
}

// NewRegistry creates a new Registry. defaults is used when the settings
// store is unavailable or fails.
func NewRegistry(deps Dependencies, defaults domain.GuildSettings) *Registry {
	return &Registry{
		deps:     deps,
		defaults: defaults,
		sessions: make(map[snowflake.ID]*Session),
	}
}

// Get returns the live session for the guild.
func (r *Registry) Get(guildID snowflake.ID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[guildID]
	return s, ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// GetOrCreate returns the live session for the guild, creating one that joins
// voiceChannelID if none exists. Concurrent callers for the same guild share
// one creation. The boolean reports whether this call created the session.
func (r *Registry) GetOrCreate(
	ctx context.Context,
	guildID, voiceChannelID, notificationChannelID snowflake.ID,
) (*Session, bool, error) {
	if s, ok := r.Get(guildID); ok {
		return s, false, nil
	}

	// Do runs the function on the first caller's goroutine only.
	created := false
	v, err, _ := r.creating.Do(guildID.String(), func() (any, error) {
		if s, ok := r.Get(guildID); ok {
			return s, nil
		}
		created = true
		return r.create(ctx, guildID, voiceChannelID, notificationChannelID)
	})
	if err != nil {
		return nil, false, err
	}

	return v.(*Session), created, nil
}

func (r *Registry) create(
	ctx context.Context,
	guildID, voiceChannelID, notificationChannelID snowflake.ID,
) (*Session, error) {
	if err := r.deps.Voice.JoinChannel(ctx, guildID, voiceChannelID); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVoiceConnectionFailed, err)
	}

	settings := r.loadSettings(ctx, guildID)

	s := New(Config{
		GuildID:               guildID,
		VoiceChannelID:        voiceChannelID,
		NotificationChannelID: notificationChannelID,
		Settings:              settings,
		Player:                r.deps.Player,
		Voice:                 r.deps.Voice,
		Notifications:         r.deps.Notifications,
		Schedule:              r.deps.Schedule,
		OnClose:               r.remove,
	})

	if err := r.deps.Player.SetVolume(ctx, guildID, s.state.Volume()); err != nil {
		slog.Warn("failed to apply default volume", "guild", guildID, "error", err)
	}

	r.mu.Lock()
	r.sessions[guildID] = s
	r.mu.Unlock()

	go s.Run()

	slog.Info("created session",
		"guild", guildID,
		"voice_channel", voiceChannelID,
		"volume", settings.DefaultVolume,
		"idle_timeout", settings.IdleTimeout,
	)

	return s, nil
}

func (r *Registry) loadSettings(ctx context.Context, guildID snowflake.ID) domain.GuildSettings {
	fallback := domain.NewGuildSettings(guildID, r.defaults.DefaultVolume, r.defaults.IdleTimeout)
	if r.deps.Settings == nil {
		return fallback
	}

	settings, err := r.deps.Settings.Load(ctx, guildID)
	if err != nil {
		slog.Warn("failed to load guild settings, using defaults", "guild", guildID, "error", err)
		return fallback
	}
	if settings.IdleTimeout <= 0 {
		settings.IdleTimeout = fallback.IdleTimeout
	}
	return settings
}

// remove deletes the session if it is still the one registered for its guild.
func (r *Registry) remove(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sessions[s.ID()] == s {
		delete(r.sessions, s.ID())
		slog.Debug("removed session", "guild", s.ID())
	}
}

// Shutdown makes every live session leave voice.
func (r *Registry) Shutdown(ctx context.Context) {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	for _, s := range sessions {
		if err := s.Leave(ctx); err != nil && !errors.Is(err, ErrSessionClosed) {
			slog.Warn("failed to leave voice on shutdown", "guild", s.ID(), "error", err)
		}
	}
}
