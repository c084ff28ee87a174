package domain

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Notification is a structured message emitted by a session for presentation.
type Notification interface {
	SessionID() snowflake.ID
}

// NowPlayingNotification is emitted when the node confirms a track started.
type NowPlayingNotification struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	Track     Track
	LoopMode  LoopMode
	Upcoming  int
}

// PlaybackFailedNotification is emitted when a track could not be played.
type PlaybackFailedNotification struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	Track     Track
	Hint      ErrorHint
	Message   string
}

// PlaybackStuckNotification is emitted when a track stalled and was skipped.
type PlaybackStuckNotification struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	Track     Track
	Threshold time.Duration
}

// IdleDisconnectNotification is emitted when a session left voice after idling.
type IdleDisconnectNotification struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	Timeout   time.Duration
}

// SessionID returns the guild the notification belongs to.
func (n NowPlayingNotification) SessionID() snowflake.ID { return n.GuildID }

// SessionID returns the guild the notification belongs to.
func (n PlaybackFailedNotification) SessionID() snowflake.ID { return n.GuildID }

// SessionID returns the guild the notification belongs to.
func (n PlaybackStuckNotification) SessionID() snowflake.ID { return n.GuildID }

// SessionID returns the guild the notification belongs to.
func (n IdleDisconnectNotification) SessionID() snowflake.ID { return n.GuildID }
