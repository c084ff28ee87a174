package domain

import (
	"strconv"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
)

// TrackID is a unique identifier for a resolved track.
// Two resolutions of the same song produce distinct IDs.
type TrackID string

// NewTrackID returns a fresh random TrackID.
func NewTrackID() TrackID {
	return TrackID(uuid.NewString())
}

// Track represents a playable audio track.
type Track struct {
	ID          TrackID
	Encoded     string // Lavalink encoded track data
	Title       string
	Author      string
	Duration    time.Duration
	URI         string
	ArtworkURL  string
	Source      TrackSource
	IsStream    bool
	RequesterID snowflake.ID // Discord user who added the track
}

// NewTrack creates a new Track with a fresh ID.
func NewTrack(
	encoded string,
	title string,
	author string,
	duration time.Duration,
	uri string,
	artworkURL string,
	source TrackSource,
	isStream bool,
) Track {
	return Track{
		ID:         NewTrackID(),
		Encoded:    encoded,
		Title:      title,
		Author:     author,
		Duration:   duration,
		URI:        uri,
		ArtworkURL: artworkURL,
		Source:     source,
		IsStream:   isStream,
	}
}

// IsValid returns true if the track has the minimum required fields.
func (t Track) IsValid() bool {
	return t.ID != "" && t.Encoded != "" && t.Title != ""
}

// WithRequester returns a copy of the track attributed to the given user.
func (t Track) WithRequester(requesterID snowflake.ID) Track {
	t.RequesterID = requesterID
	return t
}

// SearchTerm returns the free-text query used to find this track on another provider.
func (t Track) SearchTerm() string {
	if t.Author == "" {
		return t.Title
	}
	return t.Title + " " + t.Author
}

// FormattedDuration returns the duration as a human-readable string (mm:ss or hh:mm:ss).
func (t Track) FormattedDuration() string {
	if t.IsStream {
		return "LIVE"
	}

	totalSeconds := int(t.Duration.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return pad(hours) + ":" + pad(minutes) + ":" + pad(seconds)
	}
	return pad(minutes) + ":" + pad(seconds)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
