package domain

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// GuildSettings holds per-guild playback preferences.
// They are read once when a session is created.
type GuildSettings struct {
	GuildID       snowflake.ID
	DefaultVolume int
	IdleTimeout   time.Duration
}

// NewGuildSettings creates GuildSettings with the given fallbacks.
func NewGuildSettings(
	guildID snowflake.ID,
	defaultVolume int,
	idleTimeout time.Duration,
) GuildSettings {
	return GuildSettings{
		GuildID:       guildID,
		DefaultVolume: min(max(defaultVolume, 0), MaxVolume),
		IdleTimeout:   idleTimeout,
	}
}
