package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sumire/internal/modules/music_player/domain"
)

// AudioPlayer defines the interface for audio playback operations on the node.
type AudioPlayer interface {
	// Play starts playback of the given track, replacing any playing track.
	Play(ctx context.Context, guildID snowflake.ID, track domain.Track) error

	// Stop stops the current playback.
	Stop(ctx context.Context, guildID snowflake.ID) error

	// SetVolume changes the playback volume.
	SetVolume(ctx context.Context, guildID snowflake.ID, volume int) error
}
