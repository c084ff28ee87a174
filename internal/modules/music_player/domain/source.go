package domain

// TrackSource represents the origin platform of a track.
type TrackSource string

const (
	TrackSourceYouTube      TrackSource = "youtube"
	TrackSourceYouTubeMusic TrackSource = "youtube_music"
	TrackSourceSoundCloud   TrackSource = "soundcloud"
	TrackSourceSpotify      TrackSource = "spotify"
	TrackSourceHTTP         TrackSource = "http"
	TrackSourceOther        TrackSource = "other"
)

// ParseTrackSource converts a Lavalink source name to a TrackSource.
func ParseTrackSource(name string) TrackSource {
	switch name {
	case "youtube":
		return TrackSourceYouTube
	case "youtube_music", "ytmusic":
		return TrackSourceYouTubeMusic
	case "soundcloud":
		return TrackSourceSoundCloud
	case "spotify":
		return TrackSourceSpotify
	case "http":
		return TrackSourceHTTP
	default:
		return TrackSourceOther
	}
}

// DisplayName returns the platform name shown to users.
func (s TrackSource) DisplayName() string {
	switch s {
	case TrackSourceYouTube:
		return "YouTube"
	case TrackSourceYouTubeMusic:
		return "YouTube Music"
	case TrackSourceSoundCloud:
		return "SoundCloud"
	case TrackSourceSpotify:
		return "Spotify"
	case TrackSourceHTTP:
		return "Direct Link"
	default:
		return "Unknown"
	}
}

// Color returns the brand color of the platform for embeds.
func (s TrackSource) Color() int {
	switch s {
	case TrackSourceYouTube, TrackSourceYouTubeMusic:
		return 0xFF0000
	case TrackSourceSoundCloud:
		return 0xFF5500
	case TrackSourceSpotify:
		return 0x1DB954
	default:
		return 0x5865F2
	}
}

// IconURL returns the favicon of the platform, or an empty string if unknown.
func (s TrackSource) IconURL() string {
	switch s {
	case TrackSourceYouTube:
		return "https://www.youtube.com/favicon.ico"
	case TrackSourceYouTubeMusic:
		return "https://music.youtube.com/favicon.ico"
	case TrackSourceSoundCloud:
		return "https://soundcloud.com/favicon.ico"
	case TrackSourceSpotify:
		return "https://open.spotify.com/favicon.ico"
	default:
		return ""
	}
}
