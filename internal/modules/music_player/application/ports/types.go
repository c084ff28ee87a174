package ports

import (
	"time"

	"github.com/sglre6355/sumire/internal/modules/music_player/domain"
)

// LoadResult represents the result of loading tracks.
type LoadResult struct {
	Type         LoadType
	Tracks       []TrackInfo
	PlaylistName string
	ErrorMessage string
}

// LoadType represents the type of load result.
type LoadType string

const (
	LoadTypeTrack    LoadType = "track"
	LoadTypePlaylist LoadType = "playlist"
	LoadTypeSearch   LoadType = "search"
	LoadTypeEmpty    LoadType = "empty"
	LoadTypeError    LoadType = "error"
)

// TrackInfo contains information about a loaded track.
type TrackInfo struct {
	Identifier string // Unique identifier from Lavalink
	Encoded    string
	Title      string
	Author     string
	Duration   time.Duration
	URI        string
	ArtworkURL string
	SourceName string // e.g., "youtube", "spotify", "soundcloud"
	IsStream   bool
}

// ToTrack converts the loaded info into a domain Track with a fresh ID.
func (i TrackInfo) ToTrack() domain.Track {
	return domain.NewTrack(
		i.Encoded,
		i.Title,
		i.Author,
		i.Duration,
		i.URI,
		i.ArtworkURL,
		domain.ParseTrackSource(i.SourceName),
		i.IsStream,
	)
}

// CatalogEntry is catalog metadata for a track, album or playlist.
type CatalogEntry struct {
	Kind   domain.CatalogKind
	Name   string
	Tracks []CatalogTrack
}

// CatalogTrack is the metadata of a single catalog track.
type CatalogTrack struct {
	Title    string
	Artist   string
	Duration time.Duration
}

// SearchTerm returns the free-text query used to find the track elsewhere.
func (t CatalogTrack) SearchTerm() string {
	if t.Artist == "" {
		return t.Title
	}
	return t.Title + " " + t.Artist
}
