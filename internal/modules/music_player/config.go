package music_player

import (
	"time"

	"golang.org/x/time/rate"
)

// Config holds the music player module configuration.
type Config struct {
	LavalinkAddress  string `env:"LAVALINK_ADDRESS,notEmpty"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD,notEmpty"`
	LavalinkSecure   bool   `env:"LAVALINK_SECURE" envDefault:"false"`

	IdleTimeout   time.Duration `env:"MUSIC_IDLE_TIMEOUT"    envDefault:"180s"`
	DefaultVolume int           `env:"MUSIC_DEFAULT_VOLUME"  envDefault:"50"`
	DatabasePath  string        `env:"MUSIC_DATABASE_PATH"   envDefault:"./data/music.db"`

	SpotifyClientID     string `env:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string `env:"SPOTIFY_CLIENT_SECRET"`

	ProviderTimeout    time.Duration `env:"MUSIC_PROVIDER_TIMEOUT"     envDefault:"8s"`
	CatalogRate        float64       `env:"MUSIC_CATALOG_RATE"         envDefault:"5"`
	CatalogBurst       int           `env:"MUSIC_CATALOG_BURST"        envDefault:"10"`
	CrossResolveSource string        `env:"MUSIC_CROSS_RESOLVE_SOURCE" envDefault:"soundcloud"`
	CrossResolveLimit  int           `env:"MUSIC_CROSS_RESOLVE_LIMIT"  envDefault:"25"`
}

// HasSpotifyCredentials reports whether Spotify links can be looked up.
func (c *Config) HasSpotifyCredentials() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != ""
}

// NewCatalogLimiter returns a rate limiter for one catalog provider.
func (c *Config) NewCatalogLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(c.CatalogRate), max(1, c.CatalogBurst))
}
