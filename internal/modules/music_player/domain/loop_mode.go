package domain

// LoopMode represents the loop mode of a session.
type LoopMode int

const (
	LoopModeOff   LoopMode = iota // Default: no looping
	LoopModeTrack                 // Replay the current track when it finishes naturally
	LoopModeQueue                 // Re-append every ended track to the queue tail
)

// String returns a human-readable representation of the loop mode.
func (m LoopMode) String() string {
	switch m {
	case LoopModeTrack:
		return "track"
	case LoopModeQueue:
		return "queue"
	default:
		return "off"
	}
}

// ParseLoopMode converts a string to a LoopMode.
// The second return value is false if s names no loop mode.
func ParseLoopMode(s string) (LoopMode, bool) {
	switch s {
	case "off", "none":
		return LoopModeOff, true
	case "track":
		return LoopModeTrack, true
	case "queue":
		return LoopModeQueue, true
	default:
		return LoopModeOff, false
	}
}
