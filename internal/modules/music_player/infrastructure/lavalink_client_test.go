package infrastructure

import (
	"testing"
	"time"

	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sumire/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sumire/internal/modules/music_player/domain"
)

func TestConvertEndReason(t *testing.T) {
	tests := []struct {
		reason lavalink.TrackEndReason
		want   domain.TrackEndReason
	}{
		{lavalink.TrackEndReasonFinished, domain.TrackEndFinished},
		{lavalink.TrackEndReasonLoadFailed, domain.TrackEndLoadFailed},
		{lavalink.TrackEndReasonStopped, domain.TrackEndStopped},
		{lavalink.TrackEndReasonReplaced, domain.TrackEndReplaced},
		{lavalink.TrackEndReasonCleanup, domain.TrackEndCleanup},
	}

	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			if got := convertEndReason(tt.reason); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestConvertLoadResult(t *testing.T) {
	uri := "https://www.youtube.com/watch?v=abc"
	track := lavalink.Track{
		Encoded: "enc",
		Info: lavalink.TrackInfo{
			Identifier: "abc",
			Title:      "Song",
			Author:     "Artist",
			Length:     lavalink.Duration(90_000),
			URI:        &uri,
			SourceName: "youtube",
		},
	}

	tests := []struct {
		name       string
		data       lavalink.LoadResultData
		wantType   ports.LoadType
		wantTracks int
		wantName   string
		wantError  string
	}{
		{name: "track", data: track, wantType: ports.LoadTypeTrack, wantTracks: 1},
		{
			name:       "playlist",
			data:       lavalink.Playlist{Info: lavalink.PlaylistInfo{Name: "Mix"}, Tracks: []lavalink.Track{track, track}},
			wantType:   ports.LoadTypePlaylist,
			wantTracks: 2,
			wantName:   "Mix",
		},
		{name: "search", data: lavalink.Search{track}, wantType: ports.LoadTypeSearch, wantTracks: 1},
		{name: "error", data: lavalink.Exception{Message: "blocked"}, wantType: ports.LoadTypeError, wantError: "blocked"},
		{name: "empty", data: lavalink.Empty{}, wantType: ports.LoadTypeEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertLoadResult(&lavalink.LoadResult{Data: tt.data})

			if got.Type != tt.wantType {
				t.Errorf("expected type %q, got %q", tt.wantType, got.Type)
			}
			if len(got.Tracks) != tt.wantTracks {
				t.Fatalf("expected %d tracks, got %d", tt.wantTracks, len(got.Tracks))
			}
			if got.PlaylistName != tt.wantName {
				t.Errorf("expected playlist %q, got %q", tt.wantName, got.PlaylistName)
			}
			if got.ErrorMessage != tt.wantError {
				t.Errorf("expected error %q, got %q", tt.wantError, got.ErrorMessage)
			}
			if tt.wantTracks > 0 {
				info := got.Tracks[0]
				if info.Duration != 90*time.Second {
					t.Errorf("expected 90s, got %v", info.Duration)
				}
				if info.URI != uri {
					t.Errorf("expected uri %q, got %q", uri, info.URI)
				}
			}
		})
	}
}

func TestVoiceEventBuffer(t *testing.T) {
	channelID := snowflake.ID(42)
	buffer := &voiceEventBuffer{}

	if buffer.setVoiceState(&channelID, "session") {
		t.Fatal("expected buffer to wait for the voice server update")
	}
	if !buffer.setVoiceServer("token", "endpoint") {
		t.Fatal("expected buffer to be complete")
	}

	gotChannel, sessionID, token, endpoint := buffer.take()
	if gotChannel == nil || *gotChannel != channelID {
		t.Errorf("expected channel %d, got %v", channelID, gotChannel)
	}
	if sessionID != "session" || token != "token" || endpoint != "endpoint" {
		t.Errorf("unexpected buffered values: %q %q %q", sessionID, token, endpoint)
	}

	if buffer.setVoiceServer("token2", "endpoint2") {
		t.Error("expected buffer to be reset after take")
	}
}

func TestPendingVoiceConnection(t *testing.T) {
	pending := &pendingVoiceConnection{ready: make(chan struct{})}

	pending.onEvent(true)
	select {
	case <-pending.ready:
		t.Fatal("expected to wait for both events")
	default:
	}

	pending.onEvent(false)
	pending.onEvent(false)
	select {
	case <-pending.ready:
	default:
		t.Fatal("expected ready after both events")
	}
}
