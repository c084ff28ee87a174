package music_player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sumire/internal/bot"
	"github.com/sglre6355/sumire/internal/modules/music_player/application"
	"github.com/sglre6355/sumire/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sumire/internal/modules/music_player/application/session"
	"github.com/sglre6355/sumire/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/sumire/internal/modules/music_player/domain"
	"github.com/sglre6355/sumire/internal/modules/music_player/infrastructure"
	"github.com/sglre6355/sumire/internal/modules/music_player/presentation/discord"
)

var errSessionRequired = errors.New("music_player requires a Discord session")

func init() {
	bot.Register(&MusicPlayerModule{})
}

// Compile-time interface checks.
var _ bot.ConfigurableModule = (*MusicPlayerModule)(nil)

// MusicPlayerModule provides music playback commands.
type MusicPlayerModule struct {
	config          *Config
	botID           snowflake.ID
	commandHandlers *discord.CommandHandlers
	eventHandlers   *discord.EventHandlers

	lavalinkAdapter *infrastructure.LavalinkAdapter
	settingsStore   *infrastructure.SQLiteSettingsStore
	sessions        *session.Registry

	// Event-driven components
	eventBus            *infrastructure.ChannelEventBus
	nodeDispatcher      *application.NodeEventDispatcher
	notificationHandler *application.NotificationEventHandler
}

// Name returns the module name.
func (m *MusicPlayerModule) Name() string {
	return "music_player"
}

// Commands returns the slash commands for this module.
func (m *MusicPlayerModule) Commands() []*discordgo.ApplicationCommand {
	return discord.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *MusicPlayerModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"play":       m.commandHandlers.HandlePlay,
		"skip":       m.commandHandlers.HandleSkip,
		"stop":       m.commandHandlers.HandleStop,
		"leave":      m.commandHandlers.HandleLeave,
		"loop":       m.commandHandlers.HandleLoop,
		"queue":      m.commandHandlers.HandleQueue,
		"nowplaying": m.commandHandlers.HandleNowPlaying,
		"volume":     m.commandHandlers.HandleVolume,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *MusicPlayerModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, event *discordgo.VoiceServerUpdate) {
			m.handleVoiceServerUpdate(s, event)
		},
		func(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			m.handleVoiceStateUpdate(s, event)
		},
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *MusicPlayerModule) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}

	switch cfg.CrossResolveSource {
	case "youtube", "youtube_music", "soundcloud":
	default:
		return fmt.Errorf("unknown MUSIC_CROSS_RESOLVE_SOURCE %q", cfg.CrossResolveSource)
	}

	m.config = cfg
	return nil
}

// Init initializes the module.
func (m *MusicPlayerModule) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil {
		return errSessionRequired
	}

	ctx := context.Background()
	cfg := m.config

	botID, err := snowflake.Parse(deps.Session.State.User.ID)
	if err != nil {
		return fmt.Errorf("failed to parse bot ID: %w", err)
	}
	m.botID = botID

	defaults := domain.NewGuildSettings(0, cfg.DefaultVolume, cfg.IdleTimeout)

	// Create event bus (needed by Lavalink adapter for publishing events)
	m.eventBus = infrastructure.NewChannelEventBus(infrastructure.DefaultEventBufferSize)

	m.lavalinkAdapter, err = infrastructure.NewLavalinkAdapter(ctx, deps.Session, infrastructure.LavalinkConfig{
		Address:  cfg.LavalinkAddress,
		Password: cfg.LavalinkPassword,
		Secure:   cfg.LavalinkSecure,
	}, m.eventBus)
	if err != nil {
		return err
	}

	m.settingsStore, err = infrastructure.NewSQLiteSettingsStore(ctx, cfg.DatabasePath, defaults)
	if err != nil {
		return err
	}

	m.sessions = session.NewRegistry(session.Dependencies{
		Player:        m.lavalinkAdapter,
		Voice:         m.lavalinkAdapter,
		Settings:      m.settingsStore,
		Notifications: m.eventBus,
	}, defaults)

	m.nodeDispatcher = application.NewNodeEventDispatcher(m.sessions, m.eventBus)
	m.nodeDispatcher.Start()

	m.notificationHandler = application.NewNotificationEventHandler(
		m.eventBus,
		infrastructure.NewNotifier(deps.Session),
		infrastructure.NewDiscordRequesterProvider(deps.Session),
	)
	m.notificationHandler.Start()

	resolver, err := m.newTrackResolver(ctx)
	if err != nil {
		return err
	}

	voiceState := infrastructure.NewVoiceStateProvider(deps.Session)
	voiceChannel := usecases.NewVoiceChannelService(m.sessions, voiceState)
	playback := usecases.NewPlaybackService(m.sessions, resolver, voiceState, m.settingsStore, defaults)
	queue := usecases.NewQueueService(m.sessions)

	m.commandHandlers = discord.NewCommandHandlers(voiceChannel, playback, queue)
	m.eventHandlers = discord.NewEventHandlers(botID, voiceChannel)

	slog.Info("music_player module initialized with Lavalink",
		"cross_resolve_source", cfg.CrossResolveSource,
		"spotify", cfg.HasSpotifyCredentials(),
	)

	return nil
}

// newTrackResolver builds the provider chain YouTube, YouTube Music, SoundCloud.
func (m *MusicPlayerModule) newTrackResolver(ctx context.Context) (*usecases.TrackResolver, error) {
	cfg := m.config
	loader := m.lavalinkAdapter

	providers := []ports.SearchProvider{
		infrastructure.NewYouTubeSearchProvider(loader, cfg.NewCatalogLimiter()),
		infrastructure.NewYouTubeMusicSearchProvider(loader, cfg.NewCatalogLimiter()),
		infrastructure.NewNodeSearchProvider("soundcloud", domain.SearchPrefixSoundCloud, loader),
	}

	var cross ports.SearchProvider
	for _, p := range providers {
		if p.Name() == cfg.CrossResolveSource {
			cross = p
		}
	}
	if cross == nil {
		return nil, fmt.Errorf("unknown cross resolution source %q", cfg.CrossResolveSource)
	}

	var catalog ports.CatalogProvider
	if cfg.HasSpotifyCredentials() {
		catalog = infrastructure.NewSpotifyCatalog(ctx, infrastructure.SpotifyConfig{
			ClientID:     cfg.SpotifyClientID,
			ClientSecret: cfg.SpotifyClientSecret,
			TrackLimit:   cfg.CrossResolveLimit,
		}, cfg.NewCatalogLimiter())
	} else {
		slog.Warn("Spotify credentials not set, Spotify links are passed to Lavalink unchanged")
	}

	return usecases.NewTrackResolver(loader, providers, catalog, cross, usecases.TrackResolverConfig{
		ProviderTimeout:   cfg.ProviderTimeout,
		CrossResolveLimit: cfg.CrossResolveLimit,
	}), nil
}

// Shutdown leaves voice in every guild, then releases the node connection
// and the settings store.
func (m *MusicPlayerModule) Shutdown(ctx context.Context) error {
	if m.sessions != nil {
		m.sessions.Shutdown(ctx)
	}

	// Close event bus
	if m.eventBus != nil {
		m.eventBus.Close()
	}

	// Close Lavalink connection
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.Close()
	}

	if m.settingsStore != nil {
		if err := m.settingsStore.Close(); err != nil {
			return fmt.Errorf("failed to close settings store: %w", err)
		}
	}

	return nil
}

// Event handlers.

func (m *MusicPlayerModule) handleVoiceServerUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceServerUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceServerUpdate(event)
	}
}

func (m *MusicPlayerModule) handleVoiceStateUpdate(
	s *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceStateUpdate(event)
	}
	if m.eventHandlers != nil {
		m.eventHandlers.HandleVoiceStateUpdate(s, event)
	}

	// The bot left voice; its "Now Playing" message is stale.
	if m.notificationHandler != nil && event.UserID == m.botID.String() && event.ChannelID == "" {
		if guildID, err := snowflake.Parse(event.GuildID); err == nil {
			m.notificationHandler.Forget(guildID)
		}
	}
}
