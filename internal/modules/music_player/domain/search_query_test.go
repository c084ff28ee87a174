package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestParseSearchQuery(t *testing.T) {
	tests := []struct {
		name            string
		input           string
		expectedInput   string
		expectedKind    QueryKind
		expectedSource  TrackSource
		expectedCatalog CatalogKind
		expectedID      string
	}{
		{
			name:          "search term",
			input:         "never gonna give you up",
			expectedInput: "never gonna give you up",
			expectedKind:  QueryFreeText,
		},
		{
			name:          "search term with whitespace",
			input:         "  hello world  ",
			expectedInput: "hello world",
			expectedKind:  QueryFreeText,
		},
		{
			name:           "youtube watch URL",
			input:          "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			expectedInput:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			expectedKind:   QueryDirectLink,
			expectedSource: TrackSourceYouTube,
		},
		{
			name:           "youtube short URL",
			input:          "https://youtu.be/dQw4w9WgXcQ",
			expectedInput:  "https://youtu.be/dQw4w9WgXcQ",
			expectedKind:   QueryDirectLink,
			expectedSource: TrackSourceYouTube,
		},
		{
			name:           "youtube playlist URL",
			input:          "https://youtube.com/playlist?list=PL123",
			expectedInput:  "https://youtube.com/playlist?list=PL123",
			expectedKind:   QueryDirectLink,
			expectedSource: TrackSourceYouTube,
		},
		{
			name:           "youtube music URL",
			input:          "https://music.youtube.com/watch?v=abc",
			expectedInput:  "https://music.youtube.com/watch?v=abc",
			expectedKind:   QueryDirectLink,
			expectedSource: TrackSourceYouTubeMusic,
		},
		{
			name:           "soundcloud URL",
			input:          "https://soundcloud.com/artist/song",
			expectedInput:  "https://soundcloud.com/artist/song",
			expectedKind:   QueryDirectLink,
			expectedSource: TrackSourceSoundCloud,
		},
		{
			name:           "http URL",
			input:          "http://example.com/audio.mp3",
			expectedInput:  "http://example.com/audio.mp3",
			expectedKind:   QueryDirectLink,
			expectedSource: TrackSourceHTTP,
		},
		{
			name:           "www URL",
			input:          "www.youtube.com/watch?v=abc",
			expectedInput:  "https://www.youtube.com/watch?v=abc",
			expectedKind:   QueryDirectLink,
			expectedSource: TrackSourceYouTube,
		},
		{
			name:            "spotify track",
			input:           "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
			expectedInput:   "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
			expectedKind:    QueryMetadataLink,
			expectedSource:  TrackSourceSpotify,
			expectedCatalog: CatalogTrack,
			expectedID:      "4uLU6hMCjMI75M1A2tKUQC",
		},
		{
			name:            "spotify album with locale",
			input:           "https://open.spotify.com/intl-ja/album/1DFixLWuPkv3KT3TnV35m3?si=x",
			expectedInput:   "https://open.spotify.com/intl-ja/album/1DFixLWuPkv3KT3TnV35m3?si=x",
			expectedKind:    QueryMetadataLink,
			expectedSource:  TrackSourceSpotify,
			expectedCatalog: CatalogAlbum,
			expectedID:      "1DFixLWuPkv3KT3TnV35m3",
		},
		{
			name:            "spotify playlist",
			input:           "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M",
			expectedInput:   "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M",
			expectedKind:    QueryMetadataLink,
			expectedSource:  TrackSourceSpotify,
			expectedCatalog: CatalogPlaylist,
			expectedID:      "37i9dQZF1DXcBWIGoYBM5M",
		},
		{
			name:           "spotify artist is a plain link",
			input:          "https://open.spotify.com/artist/0OdUWJ0sBjDrqHygGUXeCF",
			expectedInput:  "https://open.spotify.com/artist/0OdUWJ0sBjDrqHygGUXeCF",
			expectedKind:   QueryDirectLink,
			expectedSource: TrackSourceHTTP,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ParseSearchQuery(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if q.Input != tt.expectedInput {
				t.Errorf("Input = %q, expected %q", q.Input, tt.expectedInput)
			}
			if q.Kind != tt.expectedKind {
				t.Errorf("Kind = %v, expected %v", q.Kind, tt.expectedKind)
			}
			if q.Source != tt.expectedSource {
				t.Errorf("Source = %q, expected %q", q.Source, tt.expectedSource)
			}
			if q.CatalogKind != tt.expectedCatalog {
				t.Errorf("CatalogKind = %q, expected %q", q.CatalogKind, tt.expectedCatalog)
			}
			if q.CatalogID != tt.expectedID {
				t.Errorf("CatalogID = %q, expected %q", q.CatalogID, tt.expectedID)
			}
			if q.IsURL() != (tt.expectedKind != QueryFreeText) {
				t.Errorf("IsURL() = %v for kind %v", q.IsURL(), q.Kind)
			}
		})
	}
}

func TestParseSearchQuery_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   \t\n "},
		{"too long", strings.Repeat("a", MaxQueryLength+1)},
		{"control character", "hello\x00world"},
		{"URL without host", "https://"},
		{"URL with invalid host", "http://exa mple.com/song"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSearchQuery(tt.input)
			if !errors.Is(err, ErrInvalidQuery) {
				t.Errorf("expected ErrInvalidQuery, got %v", err)
			}
		})
	}
}

func TestParseSearchQuery_MaxLengthAccepted(t *testing.T) {
	input := strings.Repeat("あ", MaxQueryLength)

	q, err := ParseSearchQuery(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Kind != QueryFreeText {
		t.Errorf("expected free text, got %v", q.Kind)
	}
}

func TestSearchPrefix_Query(t *testing.T) {
	tests := []struct {
		prefix   SearchPrefix
		expected string
	}{
		{SearchPrefixYouTube, "ytsearch:lofi"},
		{SearchPrefixYouTubeMusic, "ytmsearch:lofi"},
		{SearchPrefixSoundCloud, "scsearch:lofi"},
	}

	for _, tt := range tests {
		if got := tt.prefix.Query("lofi"); got != tt.expected {
			t.Errorf("Query() = %q, expected %q", got, tt.expected)
		}
	}
}
