package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sumire/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sumire/internal/modules/music_player/domain"
)

var (
	// ErrSessionClosed is returned for operations on a session that has left voice.
	ErrSessionClosed = errors.New("session closed")
	// ErrNotPlaying is returned when an operation requires a playing track.
	ErrNotPlaying = errors.New("nothing is playing")
)

// nodeRequestTimeout bounds the node requests of a single session job.
const nodeRequestTimeout = 10 * time.Second

// EnqueueResult describes the outcome of an enqueue.
type EnqueueResult struct {
	// Started is the track that began playing, or nil if the session was already playing.
	Started *domain.Track
	// Position is the 1-based queue position of the first added track, 0 if it started.
	Position int
	// Count is the number of tracks added.
	Count int
}

// Snapshot is a read-only copy of a session's state.
type Snapshot struct {
	GuildID               snowflake.ID
	VoiceChannelID        snowflake.ID
	NotificationChannelID snowflake.ID
	Status                domain.SessionStatus
	Current               *domain.Track
	Queue                 []domain.Track
	LoopMode              domain.LoopMode
	Volume                int
	IdleTimerArmed        bool
}

// Session owns the playback state of one guild. Every operation and node
// event runs on the session's own goroutine in arrival order. Queueing work
// never blocks, so a busy session cannot hold up event delivery to others.
type Session struct {
	id            snowflake.ID
	state         *domain.SessionState
	player        ports.AudioPlayer
	voice         ports.VoiceConnection
	notifications ports.NotificationPublisher
	timer         *IdleTimer
	idleTimeout   time.Duration

	// abandoned is the encoded track left behind by a stop, exception or
	// stuck advance. The node's trailing end event for it is swallowed once.
	abandoned string

	mu      sync.Mutex
	inbox   []func()
	wake    chan struct{}
	stopped bool

	done    chan struct{}
	closing bool
	onClose func(*Session)
}

// Config holds the collaborators of a Session.
type Config struct {
	GuildID               snowflake.ID
	VoiceChannelID        snowflake.ID
	NotificationChannelID snowflake.ID
	Settings              domain.GuildSettings

	Player        ports.AudioPlayer
	Voice         ports.VoiceConnection
	Notifications ports.NotificationPublisher
	Schedule      ScheduleFunc

	// OnClose is called on the session goroutine when the session terminates.
	OnClose func(*Session)
}

// New creates a connected, idle Session. Call Run to start processing.
func New(cfg Config) *Session {
	state := domain.NewSessionState(cfg.GuildID, cfg.VoiceChannelID, cfg.NotificationChannelID)
	state.SetVolume(cfg.Settings.DefaultVolume)

	return &Session{
		id:            cfg.GuildID,
		state:         state,
		player:        cfg.Player,
		voice:         cfg.Voice,
		notifications: cfg.Notifications,
		timer:         NewIdleTimer(cfg.Schedule),
		idleTimeout:   cfg.Settings.IdleTimeout,
		wake:          make(chan struct{}, 1),
		done:          make(chan struct{}),
		onClose:       cfg.OnClose,
	}
}

// ID returns the guild the session belongs to.
func (s *Session) ID() snowflake.ID {
	return s.id
}

// Done returns a channel that is closed when the session terminates.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Closed returns true once the session has terminated.
func (s *Session) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Run processes the inbox until the session terminates.
func (s *Session) Run() {
	s.syncIdleTimer()

	for range s.wake {
		for {
			fn, ok := s.next()
			if !ok {
				break
			}
			fn()
			if s.closing {
				s.shutdownInbox()
				return
			}
		}
	}
}

// next pops the oldest queued job.
func (s *Session) next() (func(), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.inbox) == 0 {
		return nil, false
	}
	fn := s.inbox[0]
	s.inbox[0] = nil
	s.inbox = s.inbox[1:]
	return fn, true
}

// shutdownInbox rejects further jobs and drops the pending ones.
func (s *Session) shutdownInbox() {
	s.mu.Lock()
	s.stopped = true
	dropped := len(s.inbox)
	s.inbox = nil
	s.mu.Unlock()

	close(s.done)
	if dropped > 0 {
		slog.Debug("dropped pending session jobs", "guild", s.id, "count", dropped)
	}
}

type outcome[T any] struct {
	value T
	err   error
}

// call runs fn on the session goroutine and waits for its result.
// The job runs with a context detached from the caller's cancellation so a
// caller giving up does not abort node requests halfway through.
func call[T any](
	ctx context.Context,
	s *Session,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	var zero T
	if s.Closed() {
		return zero, ErrSessionClosed
	}

	results := make(chan outcome[T], 1)
	job := func() {
		jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), nodeRequestTimeout)
		defer cancel()

		value, err := fn(jobCtx)
		results <- outcome[T]{value: value, err: err}
	}

	if !s.post(job) {
		return zero, ErrSessionClosed
	}

	select {
	case r := <-results:
		return r.value, r.err
	case <-s.done:
		// The job may have been the one that terminated the session.
		select {
		case r := <-results:
			return r.value, r.err
		default:
			return zero, ErrSessionClosed
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// do runs fn on the session goroutine and waits for it to return.
func (s *Session) do(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := call(ctx, s, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// post queues fn without waiting. It returns false if the session has terminated.
func (s *Session) post(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false
	}
	s.inbox = append(s.inbox, fn)

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

// Enqueue appends tracks to the queue and starts playback if the session is idle.
// notificationChannelID, if non-zero, becomes the channel for notifications.
func (s *Session) Enqueue(
	ctx context.Context,
	tracks []domain.Track,
	notificationChannelID snowflake.ID,
) (EnqueueResult, error) {
	return call(ctx, s, func(ctx context.Context) (EnqueueResult, error) {
		if !s.state.IsConnected() {
			return EnqueueResult{}, ErrSessionClosed
		}
		if notificationChannelID != 0 {
			s.state.SetNotificationChannelID(notificationChannelID)
		}

		result := EnqueueResult{
			Count:    len(tracks),
			Position: s.state.QueueLen() + 1,
		}
		if started := s.state.Enqueue(tracks...); started != nil {
			result.Position = 0
			result.Started = s.startTrack(ctx, started)
		}
		s.syncIdleTimer()

		slog.Debug("enqueued tracks",
			"guild", s.id,
			"count", result.Count,
			"position", result.Position,
		)
		return result, nil
	})
}

// Skip stops the current track. The node's end event advances the queue.
func (s *Session) Skip(ctx context.Context) (domain.Track, error) {
	return call(ctx, s, func(ctx context.Context) (domain.Track, error) {
		current := s.state.Current()
		if current == nil {
			return domain.Track{}, ErrNotPlaying
		}

		if err := s.player.Stop(ctx, s.id); err != nil {
			return domain.Track{}, fmt.Errorf("failed to stop track: %w", err)
		}
		return *current, nil
	})
}

// Stop clears the queue and stops playback. The session stays connected.
// The node's end event for the stopped track is swallowed, so it cannot end
// a track enqueued afterwards that shares its encoding.
func (s *Session) Stop(ctx context.Context) error {
	return s.do(ctx, func(ctx context.Context) error {
		current := s.state.Current()
		s.state.Stop()
		s.syncIdleTimer()

		if current == nil {
			return nil
		}
		s.abandoned = current.Encoded
		if err := s.player.Stop(ctx, s.id); err != nil {
			return fmt.Errorf("failed to stop playback: %w", err)
		}
		return nil
	})
}

// SetLoopMode changes the loop mode. It applies from the next advance.
func (s *Session) SetLoopMode(ctx context.Context, mode domain.LoopMode) error {
	return s.do(ctx, func(ctx context.Context) error {
		s.state.SetLoopMode(mode)
		return nil
	})
}

// SetVolume changes the playback volume and returns the applied value.
func (s *Session) SetVolume(ctx context.Context, volume int) (int, error) {
	return call(ctx, s, func(ctx context.Context) (int, error) {
		applied := s.state.SetVolume(volume)
		if err := s.player.SetVolume(ctx, s.id, applied); err != nil {
			return applied, fmt.Errorf("failed to set volume: %w", err)
		}
		return applied, nil
	})
}

// Leave clears all state, leaves voice and terminates the session.
func (s *Session) Leave(ctx context.Context) error {
	return s.do(ctx, func(ctx context.Context) error {
		return s.terminate(ctx, true)
	})
}

// HandleVoiceDisconnected terminates the session after the bot was removed
// from voice by someone else.
func (s *Session) HandleVoiceDisconnected(ctx context.Context) error {
	return s.do(ctx, func(ctx context.Context) error {
		return s.terminate(ctx, false)
	})
}

// HandleVoiceMoved records that the bot was moved to another voice channel.
func (s *Session) HandleVoiceMoved(ctx context.Context, channelID snowflake.ID) error {
	return s.do(ctx, func(context.Context) error {
		if s.state.VoiceChannelID() != channelID {
			slog.Info("moved to another voice channel", "guild", s.id, "channel", channelID)
			s.state.SetVoiceChannelID(channelID)
		}
		return nil
	})
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	return call(ctx, s, func(ctx context.Context) (Snapshot, error) {
		return Snapshot{
			GuildID:               s.id,
			VoiceChannelID:        s.state.VoiceChannelID(),
			NotificationChannelID: s.state.NotificationChannelID(),
			Status:                s.state.Status(),
			Current:               s.state.Current(),
			Queue:                 s.state.Queue(),
			LoopMode:              s.state.LoopMode(),
			Volume:                s.state.Volume(),
			IdleTimerArmed:        s.timer.Armed(),
		}, nil
	})
}

// HandleNodeEvent queues a node event for processing.
// It returns false if the session has terminated.
func (s *Session) HandleNodeEvent(event domain.NodeEvent) bool {
	return s.post(func() {
		ctx, cancel := context.WithTimeout(context.Background(), nodeRequestTimeout)
		defer cancel()

		switch e := event.(type) {
		case domain.TrackStartedEvent:
			s.onTrackStarted(e)
		case domain.TrackEndedEvent:
			s.onTrackEnded(ctx, e)
		case domain.TrackExceptionEvent:
			s.onTrackException(ctx, e)
		case domain.TrackStuckEvent:
			s.onTrackStuck(ctx, e)
		default:
			slog.Warn("ignoring unknown node event", "guild", s.id, "event", event)
		}
	})
}

func (s *Session) onTrackStarted(event domain.TrackStartedEvent) {
	s.abandoned = ""

	if !s.state.IsCurrent(event.Encoded) {
		slog.Debug("ignoring start of stale track", "guild", s.id)
		return
	}
	s.syncIdleTimer()

	s.notify(domain.NowPlayingNotification{
		GuildID:   s.id,
		ChannelID: s.state.NotificationChannelID(),
		Track:     *s.state.Current(),
		LoopMode:  s.state.LoopMode(),
		Upcoming:  s.state.QueueLen(),
	})
}

func (s *Session) onTrackEnded(ctx context.Context, event domain.TrackEndedEvent) {
	if s.abandoned != "" && event.Encoded == s.abandoned {
		s.abandoned = ""
		slog.Debug("swallowed end of abandoned track", "guild", s.id, "reason", event.Reason)
		return
	}
	if !event.Reason.ShouldAdvanceQueue() {
		return
	}
	if !s.state.IsCurrent(event.Encoded) {
		slog.Debug("ignoring end of stale track", "guild", s.id, "reason", event.Reason)
		return
	}

	reason := domain.AdvanceNatural
	switch event.Reason {
	case domain.TrackEndStopped:
		reason = domain.AdvanceSkip
	case domain.TrackEndLoadFailed:
		reason = domain.AdvanceError
	}
	s.advance(ctx, reason)
}

func (s *Session) onTrackException(ctx context.Context, event domain.TrackExceptionEvent) {
	if !s.state.IsCurrent(event.Encoded) {
		slog.Debug("ignoring exception of stale track", "guild", s.id)
		return
	}

	hint := domain.ClassifyPlaybackError(event.Message, event.Cause)
	slog.Warn("track exception",
		"guild", s.id,
		"hint", hint,
		"severity", event.Severity,
		"error", event.Message,
	)

	s.notify(domain.PlaybackFailedNotification{
		GuildID:   s.id,
		ChannelID: s.state.NotificationChannelID(),
		Track:     *s.state.Current(),
		Hint:      hint,
		Message:   event.Message,
	})

	s.abandoned = event.Encoded
	s.advance(ctx, domain.AdvanceError)
}

func (s *Session) onTrackStuck(ctx context.Context, event domain.TrackStuckEvent) {
	if !s.state.IsCurrent(event.Encoded) {
		slog.Debug("ignoring stuck stale track", "guild", s.id)
		return
	}

	slog.Warn("track stuck", "guild", s.id, "threshold", event.Threshold)

	s.notify(domain.PlaybackStuckNotification{
		GuildID:   s.id,
		ChannelID: s.state.NotificationChannelID(),
		Track:     *s.state.Current(),
		Threshold: event.Threshold,
	})

	s.abandoned = event.Encoded
	s.advance(ctx, domain.AdvanceStuck)
}

// advance is the single routine run after a track ends for any reason.
func (s *Session) advance(ctx context.Context, reason domain.AdvanceReason) {
	next := s.state.Advance(reason)

	slog.Debug("advanced queue",
		"guild", s.id,
		"reason", reason,
		"loop_mode", s.state.LoopMode(),
		"has_next", next != nil,
	)

	if next != nil {
		s.startTrack(ctx, next)
	} else if reason == domain.AdvanceStuck {
		// A stuck track keeps its slot on the node until stopped.
		if err := s.player.Stop(ctx, s.id); err != nil {
			slog.Warn("failed to stop stuck track", "guild", s.id, "error", err)
		}
	}
	s.syncIdleTimer()
}

// startTrack issues play for track. Tracks the node refuses are dropped and
// the next queued track is tried. It returns the track that was started.
func (s *Session) startTrack(ctx context.Context, track *domain.Track) *domain.Track {
	for track != nil {
		err := s.player.Play(ctx, s.id, *track)
		if err == nil {
			return track
		}

		slog.Error("failed to play track",
			"guild", s.id,
			"track", track.Title,
			"error", err,
		)
		s.notify(domain.PlaybackFailedNotification{
			GuildID:   s.id,
			ChannelID: s.state.NotificationChannelID(),
			Track:     *track,
			Hint:      domain.HintUnknown,
			Message:   err.Error(),
		})
		track = s.state.Discard()
	}
	return nil
}

// syncIdleTimer arms the idle timer iff the session is connected with nothing to play.
func (s *Session) syncIdleTimer() {
	needed := s.state.NeedsIdleTimer()

	switch {
	case needed && !s.timer.Armed():
		s.timer.Arm(s.idleTimeout, s.onIdleTimerFired)
		slog.Debug("armed idle timer", "guild", s.id, "timeout", s.idleTimeout)
	case !needed && s.timer.Armed():
		s.timer.Disarm()
		slog.Debug("disarmed idle timer", "guild", s.id)
	}
}

// onIdleTimerFired runs on the timer goroutine and hands over to the session goroutine.
func (s *Session) onIdleTimerFired(generation uint64) {
	s.post(func() {
		ctx, cancel := context.WithTimeout(context.Background(), nodeRequestTimeout)
		defer cancel()

		s.onIdleTimeout(ctx, generation)
	})
}

func (s *Session) onIdleTimeout(ctx context.Context, generation uint64) {
	if !s.timer.IsCurrent(generation) {
		slog.Debug("ignoring stale idle timer", "guild", s.id)
		return
	}
	s.timer.Fired()

	// Something may have been enqueued between the fire and this check.
	if !s.state.NeedsIdleTimer() {
		s.syncIdleTimer()
		return
	}

	slog.Info("leaving voice after idle timeout", "guild", s.id, "timeout", s.idleTimeout)

	s.notify(domain.IdleDisconnectNotification{
		GuildID:   s.id,
		ChannelID: s.state.NotificationChannelID(),
		Timeout:   s.idleTimeout,
	})

	if err := s.terminate(ctx, true); err != nil {
		slog.Warn("failed to leave voice after idle timeout", "guild", s.id, "error", err)
	}
}

// terminate moves the session to Disconnected. Run exits after the current job.
func (s *Session) terminate(ctx context.Context, leaveVoice bool) error {
	if s.closing {
		return nil
	}

	s.timer.Disarm()
	s.state.Disconnect()
	s.abandoned = ""
	s.closing = true

	if s.onClose != nil {
		s.onClose(s)
	}

	var err error
	if leaveVoice {
		err = s.voice.LeaveChannel(ctx, s.id)
	} else {
		err = s.voice.ReleaseChannel(ctx, s.id)
	}
	if err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}

	slog.Debug("session terminated", "guild", s.id)
	return nil
}

func (s *Session) notify(notification domain.Notification) {
	if s.notifications == nil {
		return
	}
	s.notifications.PublishNotification(notification)
}
