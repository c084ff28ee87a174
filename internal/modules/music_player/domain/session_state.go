package domain

import "github.com/disgoorg/snowflake/v2"

// SessionStatus is the playback status of a session.
type SessionStatus int

const (
	StatusIdle SessionStatus = iota
	StatusPlaying
	StatusDisconnected
)

// String returns a human-readable representation of the status.
func (s SessionStatus) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	case StatusDisconnected:
		return "disconnected"
	default:
		return "idle"
	}
}

// MaxVolume is the highest volume accepted by the node.
const MaxVolume = 1000

// SessionState holds the playback state of one guild.
// It is not safe for concurrent use; the owning session serializes access.
type SessionState struct {
	guildID               snowflake.ID
	voiceChannelID        snowflake.ID // Voice channel the bot is connected to
	notificationChannelID snowflake.ID // Text channel for notifications
	queue                 Queue
	current               *Track
	loopMode              LoopMode
	connected             bool
	volume                int
}

// NewSessionState creates a connected, idle SessionState.
func NewSessionState(guildID, voiceChannelID, notificationChannelID snowflake.ID) *SessionState {
	return &SessionState{
		guildID:               guildID,
		voiceChannelID:        voiceChannelID,
		notificationChannelID: notificationChannelID,
		queue:                 NewQueue(),
		loopMode:              LoopModeOff,
		connected:             true,
	}
}

// GuildID returns the guild ID.
func (s *SessionState) GuildID() snowflake.ID {
	return s.guildID
}

// VoiceChannelID returns the voice channel the session is connected to.
func (s *SessionState) VoiceChannelID() snowflake.ID {
	return s.voiceChannelID
}

// SetVoiceChannelID records that the bot was moved to another voice channel.
func (s *SessionState) SetVoiceChannelID(channelID snowflake.ID) {
	s.voiceChannelID = channelID
}

// NotificationChannelID returns the text channel used for notifications.
func (s *SessionState) NotificationChannelID() snowflake.ID {
	return s.notificationChannelID
}

// SetNotificationChannelID updates the notification channel.
func (s *SessionState) SetNotificationChannelID(channelID snowflake.ID) {
	s.notificationChannelID = channelID
}

// Status returns the current session status.
func (s *SessionState) Status() SessionStatus {
	switch {
	case !s.connected:
		return StatusDisconnected
	case s.current != nil:
		return StatusPlaying
	default:
		return StatusIdle
	}
}

// IsConnected returns true until the session disconnects.
func (s *SessionState) IsConnected() bool {
	return s.connected
}

// Current returns a copy of the current track, or nil if nothing is playing.
func (s *SessionState) Current() *Track {
	if s.current == nil {
		return nil
	}
	t := *s.current
	return &t
}

// IsCurrent returns true if encoded identifies the current track.
func (s *SessionState) IsCurrent(encoded string) bool {
	return s.current != nil && s.current.Encoded == encoded
}

// Queue returns a copy of the queued tracks, excluding the current track.
func (s *SessionState) Queue() []Track {
	return s.queue.List()
}

// QueueLen returns the number of queued tracks.
func (s *SessionState) QueueLen() int {
	return s.queue.Len()
}

// LoopMode returns the loop mode.
func (s *SessionState) LoopMode() LoopMode {
	return s.loopMode
}

// SetLoopMode sets the loop mode. It takes effect on the next advance.
func (s *SessionState) SetLoopMode(mode LoopMode) {
	s.loopMode = mode
}

// Volume returns the playback volume.
func (s *SessionState) Volume() int {
	return s.volume
}

// SetVolume sets the playback volume, clamped to [0, MaxVolume].
func (s *SessionState) SetVolume(volume int) int {
	s.volume = min(max(volume, 0), MaxVolume)
	return s.volume
}

// NeedsIdleTimer returns true if the session is connected with nothing to play.
func (s *SessionState) NeedsIdleTimer() bool {
	return s.connected && s.current == nil && s.queue.IsEmpty()
}

// Enqueue appends tracks to the queue tail. If the session is idle, the head
// of the queue becomes the current track and is returned.
func (s *SessionState) Enqueue(tracks ...Track) *Track {
	if !s.connected {
		return nil
	}

	s.queue.Append(tracks...)

	if s.current != nil {
		return nil
	}
	return s.playNext()
}

// Advance ends the current track and selects the next one.
//   - LoopModeTrack with AdvanceNatural replays the ended track
//   - LoopModeQueue re-appends the ended track to the tail
//   - otherwise the queue head becomes current
//
// It returns the new current track, or nil if the session became idle.
func (s *SessionState) Advance(reason AdvanceReason) *Track {
	if !s.connected {
		return nil
	}

	ended := s.current
	s.current = nil

	if ended != nil {
		if s.loopMode == LoopModeTrack && reason == AdvanceNatural {
			s.current = ended
			return s.Current()
		}
		if s.loopMode == LoopModeQueue {
			s.queue.Append(*ended)
		}
	}

	return s.playNext()
}

// Discard drops the current track without applying the loop mode and
// selects the next one. It is used when a track could not be started.
func (s *SessionState) Discard() *Track {
	if !s.connected {
		return nil
	}

	s.current = nil
	return s.playNext()
}

// Stop clears the queue and the current track. The session stays connected.
func (s *SessionState) Stop() {
	s.queue.Clear()
	s.current = nil
}

// Disconnect clears all playback state and marks the session disconnected.
func (s *SessionState) Disconnect() {
	s.Stop()
	s.connected = false
}

func (s *SessionState) playNext() *Track {
	next, ok := s.queue.PopFront()
	if !ok {
		return nil
	}
	s.current = &next
	return s.Current()
}
