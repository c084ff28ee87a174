package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sumire/internal/modules/music_player/domain"
)

const (
	testGuildID        = snowflake.ID(100)
	testVoiceChannelID = snowflake.ID(200)
	testTextChannelID  = snowflake.ID(300)
	testIdleTimeout    = 3 * time.Minute
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

func mockTracks(ids ...string) []domain.Track {
	tracks := make([]domain.Track, len(ids))
	for i, id := range ids {
		tracks[i] = mockTrack(id)
	}
	return tracks
}

type mockAudioPlayer struct {
	mu        sync.Mutex
	played    []string // encoded tracks in play order
	stops     int
	volumes   []int
	playErrs  map[string]error // encoded -> error
	stopErr   error
	volumeErr error

	// stopEntered receives when Stop is called; stopWait, if set, blocks
	// Stop until closed.
	stopEntered chan struct{}
	stopWait    chan struct{}
}

func newMockAudioPlayer() *mockAudioPlayer {
	return &mockAudioPlayer{playErrs: make(map[string]error)}
}

func (m *mockAudioPlayer) Play(_ context.Context, _ snowflake.ID, track domain.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.playErrs[track.Encoded]; err != nil {
		return err
	}
	m.played = append(m.played, track.Encoded)
	return nil
}

func (m *mockAudioPlayer) Stop(ctx context.Context, _ snowflake.ID) error {
	if m.stopEntered != nil {
		select {
		case m.stopEntered <- struct{}{}:
		default:
		}
	}
	if m.stopWait != nil {
		select {
		case <-m.stopWait:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
	return m.stopErr
}

func (m *mockAudioPlayer) SetVolume(_ context.Context, _ snowflake.ID, volume int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volumes = append(m.volumes, volume)
	return m.volumeErr
}

func (m *mockAudioPlayer) setPlayErr(encoded string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErrs[encoded] = err
}

func (m *mockAudioPlayer) playedTracks() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, len(m.played))
	copy(result, m.played)
	return result
}

func (m *mockAudioPlayer) stopCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

type mockVoiceConnection struct {
	mu       sync.Mutex
	joins    int
	leaves   int
	releases int
	joinErr  error
	leaveErr error
	joinWait chan struct{} // if set, JoinChannel blocks until closed
}

func (m *mockVoiceConnection) JoinChannel(ctx context.Context, _, _ snowflake.ID) error {
	if m.joinWait != nil {
		select {
		case <-m.joinWait:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.joins++
	return m.joinErr
}

func (m *mockVoiceConnection) LeaveChannel(_ context.Context, _ snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaves++
	return m.leaveErr
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
	return m.joins, m.leaves, m.releases
}

type mockNotificationPublisher struct {
	mu            sync.Mutex
	notifications []domain.Notification
}

func (m *mockNotificationPublisher) PublishNotification(n domain.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, n)
}

func (m *mockNotificationPublisher) all() []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]domain.Notification, len(m.notifications))
	copy(result, m.notifications)
	return result
}

func countNotifications[T domain.Notification](m *mockNotificationPublisher) []T {
	var result []T
	for _, n := range m.all() {
		if typed, ok := n.(T); ok {
			result = append(result, typed)
		}
	}
	return result
}

// fakeClock records scheduled callbacks and fires them on demand.
type fakeClock struct {
	mu      sync.Mutex
	pending []*fakeTimer
}

type fakeTimer struct {
	clock    *fakeClock
	d        time.Duration
	f        func()
	stopped  bool
	consumed bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	wasActive := !t.stopped && !t.consumed
	t.stopped = true
	return wasActive
}

func (c *fakeClock) Schedule(d time.Duration, f func()) Stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, d: d, f: f}
	c.pending = append(c.pending, t)
	return t
}

// active returns the timers that have been neither stopped nor fired.
func (c *fakeClock) active() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var result []*fakeTimer
	for _, t := range c.pending {
		if !t.stopped && !t.consumed {
			result = append(result, t)
		}
	}
	return result
}

// last returns the most recently scheduled timer regardless of its state.
func (c *fakeClock) last() *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) == 0 {
		return nil
	}
	return c.pending[len(c.pending)-1]
}

// fire runs the timer callback as the timer goroutine would, even if stopped.
func (t *fakeTimer) fire() {
	t.clock.mu.Lock()
	t.consumed = true
	t.clock.mu.Unlock()
	t.f()
}

type testSession struct {
	*Session
	player        *mockAudioPlayer
	voice         *mockVoiceConnection
	notifications *mockNotificationPublisher
	clock         *fakeClock
	closed        chan struct{}
}

func newTestSession(t *testing.T) *testSession {
	t.Helper()

	ts := &testSession{
		player:        newMockAudioPlayer(),
		voice:         &mockVoiceConnection{},
		notifications: &mockNotificationPublisher{},
		clock:         &fakeClock{},
		closed:        make(chan struct{}, 1),
	}
	ts.Session = New(Config{
		GuildID:               testGuildID,
		VoiceChannelID:        testVoiceChannelID,
		NotificationChannelID: testTextChannelID,
		Settings:              domain.NewGuildSettings(testGuildID, 50, testIdleTimeout),
		Player:                ts.player,
		Voice:                 ts.voice,
		Notifications:         ts.notifications,
		Schedule:              ts.clock.Schedule,
		OnClose:               func(*Session) { ts.closed <- struct{}{} },
	})
	go ts.Run()

	t.Cleanup(func() {
		_ = ts.Leave(context.Background())
	})
	return ts
}

// snapshot waits for all previously queued work and returns the state.
func (ts *testSession) snapshot(t *testing.T) Snapshot {
	t.Helper()
	snap, err := ts.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("failed to take snapshot: %v", err)
	}
	return snap
}

func (ts *testSession) enqueue(t *testing.T, ids ...string) EnqueueResult {
	t.Helper()
	result, err := ts.Enqueue(context.Background(), mockTracks(ids...), 0)
	if err != nil {
		t.Fatalf("failed to enqueue: %v", err)
	}
	return result
}

func (ts *testSession) event(t *testing.T, event domain.NodeEvent) {
	t.Helper()
	if !ts.HandleNodeEvent(event) {
		t.Fatalf("session rejected event %T", event)
	}
}

func (ts *testSession) finish(t *testing.T, id string) {
	t.Helper()
	ts.event(t, domain.TrackEndedEvent{
		GuildID: testGuildID,
		Encoded: "encoded-" + id,
		Reason:  domain.TrackEndFinished,
	})
}

func (ts *testSession) waitClosed(t *testing.T) {
	t.Helper()
	select {
	case <-ts.Done():
	case <-time.After(time.Second):
		t.Fatal("session did not terminate")
	}
}

// assertSessionInvariants checks the relations that must hold between operations.
func assertSessionInvariants(t *testing.T, snap Snapshot) {
	t.Helper()

	if snap.Current != nil {
		for _, q := range snap.Queue {
			if q.ID == snap.Current.ID {
				t.Errorf("current track %q is also queued", q.ID)
			}
		}
	}
	wantArmed := snap.Status == domain.StatusIdle && len(snap.Queue) == 0
	if snap.IdleTimerArmed != wantArmed {
		t.Errorf("IdleTimerArmed = %v, want %v (status %v, queue %d)",
			snap.IdleTimerArmed, wantArmed, snap.Status, len(snap.Queue))
	}
}

func currentID(snap Snapshot) domain.TrackID {
	if snap.Current == nil {
		return ""
	}
	return snap.Current.ID
}

func queueIDs(snap Snapshot) []domain.TrackID {
	var ids []domain.TrackID
	for _, t := range snap.Queue {
		ids = append(ids, t.ID)
	}
	return ids
}

func equalIDs(a, b []domain.TrackID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
