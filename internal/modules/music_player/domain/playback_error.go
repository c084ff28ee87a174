package domain

import "strings"

// ErrorHint is a coarse classification of a playback failure shown to users.
type ErrorHint string

const (
	HintNotFound         ErrorHint = "not_found"
	HintAgeRestricted    ErrorHint = "age_restricted"
	HintRegionRestricted ErrorHint = "region_restricted"
	HintUnknown          ErrorHint = "unknown"
)

// ClassifyPlaybackError maps a node exception message to an ErrorHint.
func ClassifyPlaybackError(message, cause string) ErrorHint {
	text := strings.ToLower(message + " " + cause)

	switch {
	case strings.Contains(text, "no playable") ||
		strings.Contains(text, "not found"):
		return HintNotFound
	case strings.Contains(text, "age restricted") ||
		strings.Contains(text, "age-restricted") ||
		strings.Contains(text, "sign in to confirm your age"):
		return HintAgeRestricted
	case strings.Contains(text, "region") ||
		strings.Contains(text, "country"):
		return HintRegionRestricted
	default:
		return HintUnknown
	}
}

// Description returns a user-facing explanation of the hint.
func (h ErrorHint) Description() string {
	switch h {
	case HintNotFound:
		return "The track could not be found or is no longer available."
	case HintAgeRestricted:
		return "The track is age restricted."
	case HintRegionRestricted:
		return "The track is not available in this region."
	default:
		return "The track could not be played."
	}
}
