package domain

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrInvalidQuery is returned when user input cannot be resolved at all.
var ErrInvalidQuery = errors.New("invalid query")

// MaxQueryLength is the maximum number of characters accepted in a query.
const MaxQueryLength = 512

// SearchPrefix is a Lavalink search prefix selecting a provider.
type SearchPrefix string

const (
	// SearchPrefixYouTube searches YouTube.
	SearchPrefixYouTube SearchPrefix = "ytsearch"
	// SearchPrefixYouTubeMusic searches YouTube Music.
	SearchPrefixYouTubeMusic SearchPrefix = "ytmsearch"
	// SearchPrefixSoundCloud searches SoundCloud.
	SearchPrefixSoundCloud SearchPrefix = "scsearch"
)

// Query returns the prefixed Lavalink identifier for term.
func (p SearchPrefix) Query(term string) string {
	return string(p) + ":" + term
}

// QueryKind classifies a parsed query.
type QueryKind int

const (
	// QueryFreeText is a search term resolved through the provider chain.
	QueryFreeText QueryKind = iota
	// QueryDirectLink is a link Lavalink can load directly, possibly as a collection.
	QueryDirectLink
	// QueryMetadataLink is a link to a catalog that exposes metadata but no audio.
	QueryMetadataLink
)

// CatalogKind is the kind of entity a metadata link points to.
type CatalogKind string

const (
	CatalogTrack    CatalogKind = "track"
	CatalogAlbum    CatalogKind = "album"
	CatalogPlaylist CatalogKind = "playlist"
)

var (
	spotifyPattern = regexp.MustCompile(
		`^https?://open\.spotify\.com/(?:intl-[a-z]{2}/)?(track|album|playlist)/([a-zA-Z0-9]+)`,
	)
	youtubePattern = regexp.MustCompile(
		`^https?://(?:www\.|m\.)?(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/playlist\?list=|music\.youtube\.com/(?:watch\?v=|playlist\?list=))([a-zA-Z0-9_-]+)`,
	)
	soundcloudPattern = regexp.MustCompile(`^https?://(?:www\.|m\.)?soundcloud\.com/.+`)
)

// SearchQuery is a validated and classified user query.
type SearchQuery struct {
	Input  string // trimmed search term or normalized URL
	Kind   QueryKind
	Source TrackSource // platform of a link, empty for free text

	// Catalog fields are set for QueryMetadataLink only.
	CatalogKind CatalogKind
	CatalogID   string
}

// ParseSearchQuery validates and classifies user input.
// It returns ErrInvalidQuery for empty, oversized or malformed input.
func ParseSearchQuery(input string) (SearchQuery, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return SearchQuery{}, ErrInvalidQuery
	}
	if utf8.RuneCountInString(input) > MaxQueryLength {
		return SearchQuery{}, ErrInvalidQuery
	}
	if strings.IndexFunc(input, unicode.IsControl) >= 0 {
		return SearchQuery{}, ErrInvalidQuery
	}

	if !isURL(input) {
		return SearchQuery{Input: input, Kind: QueryFreeText}, nil
	}

	if strings.HasPrefix(input, "www.") {
		input = "https://" + input
	}
	u, err := url.Parse(input)
	if err != nil || u.Host == "" {
		return SearchQuery{}, ErrInvalidQuery
	}

	if m := spotifyPattern.FindStringSubmatch(input); m != nil {
		return SearchQuery{
			Input:       input,
			Kind:        QueryMetadataLink,
			Source:      TrackSourceSpotify,
			CatalogKind: CatalogKind(m[1]),
			CatalogID:   m[2],
		}, nil
	}

	return SearchQuery{
		Input:  input,
		Kind:   QueryDirectLink,
		Source: linkSource(input),
	}, nil
}

// IsURL returns true if the query is a link rather than a search term.
func (q SearchQuery) IsURL() bool {
	return q.Kind != QueryFreeText
}

func linkSource(input string) TrackSource {
	switch {
	case youtubePattern.MatchString(input):
		if strings.Contains(input, "music.youtube.com") {
			return TrackSourceYouTubeMusic
		}
		return TrackSourceYouTube
	case soundcloudPattern.MatchString(input):
		return TrackSourceSoundCloud
	default:
		return TrackSourceHTTP
	}
}

// isURL checks if the input looks like a URL.
func isURL(input string) bool {
	return strings.HasPrefix(input, "http://") ||
		strings.HasPrefix(input, "https://") ||
		strings.HasPrefix(input, "www.")
}
