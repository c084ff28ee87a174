package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// VoiceConnection defines the interface for voice channel connection operations.
type VoiceConnection interface {
	// JoinChannel connects the bot to the specified voice channel.
	JoinChannel(ctx context.Context, guildID, channelID snowflake.ID) error

	// LeaveChannel destroys the node player and disconnects the bot from voice.
	LeaveChannel(ctx context.Context, guildID snowflake.ID) error

	// ReleaseChannel destroys the node player after an external disconnect.
	ReleaseChannel(ctx context.Context, guildID snowflake.ID) error
}
