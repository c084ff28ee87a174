package usecases

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sumire/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sumire/internal/modules/music_player/application/session"
	"github.com/sglre6355/sumire/internal/modules/music_player/domain"
)

const (
	testGuildID        = snowflake.ID(1)
	testUserID         = snowflake.ID(2)
	testTextChannelID  = snowflake.ID(3)
	testVoiceChannelID = snowflake.ID(4)
)

func mockTrack(id string) domain.Track {
	return domain.Track{
		ID:       domain.TrackID(id),
		Encoded:  "encoded-" + id,
		Title:    "Track " + id,
		Author:   "Artist",
		Duration: 3 * time.Minute,
		Source:   domain.TrackSourceYouTube,
	}
}

func mockTrackInfo(id string) ports.TrackInfo {
	return ports.TrackInfo{
		Identifier: id,
		Encoded:    "encoded-" + id,
		Title:      "Track " + id,
		Author:     "Artist",
		Duration:   3 * time.Minute,
		SourceName: "youtube",
	}
}

type mockTrackLoader struct {
	mu      sync.Mutex
	results map[string]*ports.LoadResult
	err     error
	calls   []string
}

func (m *mockTrackLoader) LoadTracks(_ context.Context, identifier string) (*ports.LoadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, identifier)
	if m.err != nil {
		return nil, m.err
	}
	if result, ok := m.results[identifier]; ok {
		return result, nil
	}
	return &ports.LoadResult{Type: ports.LoadTypeEmpty}, nil
}

type mockSearchProvider struct {
	name string

	mu      sync.Mutex
	tracks  map[string]domain.Track // term -> track
	err     error
	block   bool // wait for the context to expire
	queries []string
}

func newMockSearchProvider(name string) *mockSearchProvider {
	return &mockSearchProvider{name: name, tracks: make(map[string]domain.Track)}
}

func (m *mockSearchProvider) Name() string {
	return m.name
}

func (m *mockSearchProvider) Search(ctx context.Context, term string) (*domain.Track, error) {
	m.mu.Lock()
	m.queries = append(m.queries, term)
	track, ok := m.tracks[term]
	err, block := m.err, m.block
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &track, nil
}

func (m *mockSearchProvider) add(term string, track domain.Track) *mockSearchProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracks[term] = track
	return m
}

func (m *mockSearchProvider) searched() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

type mockCatalog struct {
	entry *ports.CatalogEntry
	err   error
}

func (m *mockCatalog) Lookup(_ context.Context, _ domain.CatalogKind, _ string) (*ports.CatalogEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.entry, nil
}

type mockAudioPlayer struct {
	mu      sync.Mutex
	played  []string
	stops   int
	volumes []int
	playErr error
}

func (m *mockAudioPlayer) Play(_ context.Context, _ snowflake.ID, track domain.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playErr != nil {
		return m.playErr
	}
	m.played = append(m.played, track.Encoded)
	return nil
}

func (m *mockAudioPlayer) Stop(_ context.Context, _ snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
	return nil
}

func (m *mockAudioPlayer) SetVolume(_ context.Context, _ snowflake.ID, volume int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volumes = append(m.volumes, volume)
	return nil
}

func (m *mockAudioPlayer) stopCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

type mockVoiceConnection struct {
	mu       sync.Mutex
	joined   []snowflake.ID
	leaves   int
	releases int
	joinErr  error
}

func (m *mockVoiceConnection) JoinChannel(_ context.Context, _, channelID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.joinErr != nil {
		return m.joinErr
	}
	m.joined = append(m.joined, channelID)
	return nil
}

func (m *mockVoiceConnection) LeaveChannel(_ context.Context, _ snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaves++
	return nil
}

func (m *mockVoiceConnection) ReleaseChannel(_ context.Context, _ snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releases++
	return nil
}

func (m *mockVoiceConnection) counts() (joins, leaves, releases int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.joined), m.leaves, m.releases
}

type mockVoiceStateProvider struct {
	channels map[snowflake.ID]snowflake.ID // userID -> channelID
	err      error
}

func (m *mockVoiceStateProvider) GetUserVoiceChannel(
	_, userID snowflake.ID,
) (snowflake.ID, bool, error) {
	if m.err != nil {
		return 0, false, m.err
	}
	channelID, ok := m.channels[userID]
	return channelID, ok, nil
}

type mockSettingsStore struct {
	mu       sync.Mutex
	settings map[snowflake.ID]domain.GuildSettings
	saveErr  error
}

func (m *mockSettingsStore) Load(_ context.Context, guildID snowflake.ID) (domain.GuildSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.settings[guildID]; ok {
		return s, nil
	}
	return domain.NewGuildSettings(guildID, 50, 3*time.Minute), nil
}

func (m *mockSettingsStore) Save(_ context.Context, settings domain.GuildSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.settings == nil {
		m.settings = make(map[snowflake.ID]domain.GuildSettings)
	}
	m.settings[settings.GuildID] = settings
	return nil
}

// fixture wires real sessions to mocked node, voice and providers.
type fixture struct {
	player     *mockAudioPlayer
	voice      *mockVoiceConnection
	voiceState *mockVoiceStateProvider
	settings   *mockSettingsStore
	loader     *mockTrackLoader
	youtube    *mockSearchProvider
	soundcloud *mockSearchProvider
	sessions   *session.Registry
	resolver   *TrackResolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		player: &mockAudioPlayer{},
		voice:  &mockVoiceConnection{},
		voiceState: &mockVoiceStateProvider{
			channels: map[snowflake.ID]snowflake.ID{testUserID: testVoiceChannelID},
		},
		settings:   &mockSettingsStore{},
		loader:     &mockTrackLoader{results: make(map[string]*ports.LoadResult)},
		youtube:    newMockSearchProvider("youtube"),
		soundcloud: newMockSearchProvider("soundcloud"),
	}
	f.sessions = session.NewRegistry(session.Dependencies{
		Player:   f.player,
		Voice:    f.voice,
		Settings: f.settings,
	}, domain.NewGuildSettings(0, 50, time.Hour))
	f.resolver = NewTrackResolver(
		f.loader,
		[]ports.SearchProvider{f.youtube, f.soundcloud},
		nil,
		f.soundcloud,
		TrackResolverConfig{ProviderTimeout: time.Second},
	)

	t.Cleanup(func() {
		f.sessions.Shutdown(context.Background())
	})
	return f
}

func (f *fixture) playbackService() *PlaybackService {
	return NewPlaybackService(
		f.sessions,
		f.resolver,
		f.voiceState,
		f.settings,
		domain.NewGuildSettings(0, 50, time.Hour),
	)
}

// connect creates a session for the test guild playing the given tracks.
func (f *fixture) connect(t *testing.T, ids ...string) *session.Session {
	t.Helper()

	s, _, err := f.sessions.GetOrCreate(context.Background(), testGuildID, testVoiceChannelID, testTextChannelID)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if len(ids) == 0 {
		return s
	}

	tracks := make([]domain.Track, len(ids))
	for i, id := range ids {
		tracks[i] = mockTrack(id)
	}
	if _, err := s.Enqueue(context.Background(), tracks, 0); err != nil {
		t.Fatalf("failed to enqueue: %v", err)
	}
	return s
}
