package domain

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// TrackEndReason represents why Lavalink reported a track as ended.
type TrackEndReason string

const (
	// TrackEndFinished means the track finished normally.
	TrackEndFinished TrackEndReason = "finished"
	// TrackEndLoadFailed means the track failed to load.
	TrackEndLoadFailed TrackEndReason = "load_failed"
	// TrackEndStopped means the track was stopped by a stop request.
	TrackEndStopped TrackEndReason = "stopped"
	// TrackEndReplaced means the track was replaced by another.
	TrackEndReplaced TrackEndReason = "replaced"
	// TrackEndCleanup means the track was cleaned up.
	TrackEndCleanup TrackEndReason = "cleanup"
)

// ShouldAdvanceQueue returns true if this end reason should advance the queue.
// Replaced and cleanup ends are side effects of our own commands.
func (r TrackEndReason) ShouldAdvanceQueue() bool {
	return r == TrackEndFinished || r == TrackEndLoadFailed || r == TrackEndStopped
}

// AdvanceReason is the cause passed to the advance routine.
type AdvanceReason int

const (
	// AdvanceNatural means the track played to completion.
	AdvanceNatural AdvanceReason = iota
	// AdvanceSkip means a user skipped the track.
	AdvanceSkip
	// AdvanceError means the node reported a playback exception.
	AdvanceError
	// AdvanceStuck means the node reported the track as stuck.
	AdvanceStuck
)

// String returns a human-readable representation of the reason.
func (r AdvanceReason) String() string {
	switch r {
	case AdvanceSkip:
		return "skip"
	case AdvanceError:
		return "error"
	case AdvanceStuck:
		return "stuck"
	default:
		return "natural"
	}
}

// NodeEvent is an event reported by the audio node for one session.
type NodeEvent interface {
	SessionID() snowflake.ID
}

// TrackStartedEvent is published when the node starts playing a track.
type TrackStartedEvent struct {
	GuildID snowflake.ID
	Encoded string
}

// TrackEndedEvent is published when a track ends.
type TrackEndedEvent struct {
	GuildID snowflake.ID
	Encoded string
	Reason  TrackEndReason
}

// TrackExceptionEvent is published when the node fails to play a track.
type TrackExceptionEvent struct {
	GuildID  snowflake.ID
	Encoded  string
	Message  string
	Severity string
	Cause    string
}

// TrackStuckEvent is published when a track stops producing audio.
type TrackStuckEvent struct {
	GuildID   snowflake.ID
	Encoded   string
	Threshold time.Duration
}

// SessionID returns the guild the event belongs to.
func (e TrackStartedEvent) SessionID() snowflake.ID { return e.GuildID }

// SessionID returns the guild the event belongs to.
func (e TrackEndedEvent) SessionID() snowflake.ID { return e.GuildID }

// SessionID returns the guild the event belongs to.
func (e TrackExceptionEvent) SessionID() snowflake.ID { return e.GuildID }

// SessionID returns the guild the event belongs to.
func (e TrackStuckEvent) SessionID() snowflake.ID { return e.GuildID }
