package ports

import (
	"context"

	"github.com/sglre6355/sumire/internal/modules/music_player/domain"
)

// TrackLoader loads tracks through the audio node.
type TrackLoader interface {
	// LoadTracks resolves a URL or prefixed search identifier.
	LoadTracks(ctx context.Context, identifier string) (*LoadResult, error)
}

// SearchProvider finds a playable track for a free-text term.
type SearchProvider interface {
	// Name identifies the provider in logs and results.
	Name() string

	// Search returns the best match for term, or nil if the provider has none.
	Search(ctx context.Context, term string) (*domain.Track, error)
}

// CatalogProvider fetches metadata from a catalog that does not serve audio.
type CatalogProvider interface {
	// Lookup returns the entry identified by kind and id.
	Lookup(ctx context.Context, kind domain.CatalogKind, id string) (*CatalogEntry, error)
}
