package usecases

import (
	"github.com/sglre6355/sumire/internal/modules/music_player/application/session"
	"github.com/sglre6355/sumire/internal/modules/music_player/domain"
)

// Re-export domain types for presentation layer use.
// This allows presentation to depend only on usecases without importing domain directly.

// Track is an alias for domain.Track.
type Track = domain.Track

// LoopMode is an alias for domain.LoopMode.
type LoopMode = domain.LoopMode

// ResolveResult is an alias for domain.ResolveResult.
type ResolveResult = domain.ResolveResult

// SessionSnapshot is an alias for session.Snapshot.
type SessionSnapshot = session.Snapshot
