package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sumire/internal/modules/music_player/domain"
)

// SettingsStore persists per-guild playback settings.
type SettingsStore interface {
	// Load returns the settings for the guild, or the defaults if none are stored.
	Load(ctx context.Context, guildID snowflake.ID) (domain.GuildSettings, error)

	// Save stores the settings for the guild.
	Save(ctx context.Context, settings domain.GuildSettings) error
}
