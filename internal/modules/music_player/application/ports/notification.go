package ports

import (
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sumire/internal/modules/music_player/domain"
)

// NotificationSender defines the interface for sending notifications to Discord channels.
type NotificationSender interface {
	// SendNowPlaying sends a "Now Playing" embed to the channel and returns the message ID.
	// requester is nil when the requesting member is unknown.
	SendNowPlaying(
		channelID snowflake.ID,
		notification domain.NowPlayingNotification,
		requester *Requester,
	) (messageID snowflake.ID, err error)

	// SendPlaybackFailed reports a track that could not be played.
	SendPlaybackFailed(channelID snowflake.ID, notification domain.PlaybackFailedNotification) error

	// SendPlaybackStuck reports a track that stalled and was skipped.
	SendPlaybackStuck(channelID snowflake.ID, notification domain.PlaybackStuckNotification) error

	// SendIdleDisconnect reports that the bot left voice after idling.
	SendIdleDisconnect(channelID snowflake.ID, notification domain.IdleDisconnectNotification) error

	// DeleteMessage deletes a message from the channel.
	DeleteMessage(channelID snowflake.ID, messageID snowflake.ID) error
}
