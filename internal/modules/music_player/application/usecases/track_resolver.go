package usecases

import (
	"context"
	"log/slog"
	"time"

	"github.com/sglre6355/sumire/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sumire/internal/modules/music_player/domain"
	"golang.org/x/sync/errgroup"
)

const (
	defaultProviderTimeout   = 8 * time.Second
	defaultCrossResolveLimit = 25
	crossResolveConcurrency  = 4
)

// TrackResolverConfig tunes the resolver.
type TrackResolverConfig struct {
	// ProviderTimeout bounds every single provider call.
	ProviderTimeout time.Duration
	// CrossResolveLimit caps how many tracks of a linked album or playlist are
	// looked up on the playable provider.
	CrossResolveLimit int
}

// TrackResolver turns user queries into playable tracks.
// Free text is searched on each provider in rank order until one has a
// result. Links to metadata-only catalogs are cross-resolved by searching a
// playable provider for the catalog's title and artist.
type TrackResolver struct {
	loader    ports.TrackLoader
	providers []ports.SearchProvider
	catalog   ports.CatalogProvider
	cross     ports.SearchProvider

	providerTimeout   time.Duration
	crossResolveLimit int
}

// NewTrackResolver creates a new TrackResolver.
// providers are tried in order for free text. catalog may be nil, in which
// case metadata links are handed to the loader unchanged. cross is the
// provider used for cross resolution.
func NewTrackResolver(
	loader ports.TrackLoader,
	providers []ports.SearchProvider,
	catalog ports.CatalogProvider,
	cross ports.SearchProvider,
	cfg TrackResolverConfig,
) *TrackResolver {
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = defaultProviderTimeout
	}
	if cfg.CrossResolveLimit <= 0 {
		cfg.CrossResolveLimit = defaultCrossResolveLimit
	}

	return &TrackResolver{
		loader:            loader,
		providers:         providers,
		catalog:           catalog,
		cross:             cross,
		providerTimeout:   cfg.ProviderTimeout,
		crossResolveLimit: cfg.CrossResolveLimit,
	}
}

// Resolve resolves a query or URL. Provider failures are logged and treated
// as no result; only malformed input returns an error (domain.ErrInvalidQuery).
func (r *TrackResolver) Resolve(ctx context.Context, input string) (domain.ResolveResult, error) {
	query, err := domain.ParseSearchQuery(input)
	if err != nil {
		return domain.NewEmptyResult(domain.EmptyNotFound), err
	}

	switch query.Kind {
	case domain.QueryDirectLink:
		return r.loadLink(ctx, query), nil
	case domain.QueryMetadataLink:
		return r.crossResolve(ctx, query), nil
	default:
		return r.search(ctx, query.Input), nil
	}
}

// search walks the provider chain and returns the first hit.
func (r *TrackResolver) search(ctx context.Context, term string) domain.ResolveResult {
	for _, provider := range r.providers {
		track := r.searchProvider(ctx, provider, term)
		if track == nil {
			continue
		}

		slog.Debug("resolved free text", "provider", provider.Name(), "track", track.Title)
		return domain.NewSingleTrackResult(*track, provider.Name())
	}

	return domain.NewEmptyResult(domain.EmptyNotFound)
}

func (r *TrackResolver) searchProvider(
	ctx context.Context,
	provider ports.SearchProvider,
	term string,
) *domain.Track {
	ctx, cancel := context.WithTimeout(ctx, r.providerTimeout)
	defer cancel()

	track, err := provider.Search(ctx, term)
	if err != nil {
		slog.Warn("provider search failed",
			"provider", provider.Name(),
			"query", term,
			"error", err,
		)
		return nil
	}
	return track
}

// loadLink hands a URL to the node loader.
func (r *TrackResolver) loadLink(ctx context.Context, query domain.SearchQuery) domain.ResolveResult {
	ctx, cancel := context.WithTimeout(ctx, r.providerTimeout)
	defer cancel()

	provider := string(query.Source)

	result, err := r.loader.LoadTracks(ctx, query.Input)
	if err != nil {
		slog.Warn("failed to load link", "url", query.Input, "error", err)
		return domain.NewEmptyResult(domain.EmptyNotFound)
	}

	switch result.Type {
	case ports.LoadTypeTrack, ports.LoadTypeSearch:
		if len(result.Tracks) == 0 {
			break
		}
		return domain.NewSingleTrackResult(result.Tracks[0].ToTrack(), provider)

	case ports.LoadTypePlaylist:
		kind := domain.CollectionPlaylist
		if query.CatalogKind == domain.CatalogAlbum {
			kind = domain.CollectionAlbum
		}
		tracks := make([]domain.Track, len(result.Tracks))
		for i, info := range result.Tracks {
			tracks[i] = info.ToTrack()
		}
		return domain.NewCollectionResult(result.PlaylistName, kind, tracks, provider)

	case ports.LoadTypeError:
		slog.Warn("node failed to load link", "url", query.Input, "error", result.ErrorMessage)
	}

	return domain.NewEmptyResult(domain.EmptyNotFound)
}

// crossResolve finds playable tracks for a metadata-only link.
func (r *TrackResolver) crossResolve(ctx context.Context, query domain.SearchQuery) domain.ResolveResult {
	if r.catalog == nil || r.cross == nil {
		result := r.loadLink(ctx, query)
		if result.IsEmpty() {
			return domain.NewEmptyResult(domain.EmptyCrossResolutionFailed)
		}
		return result.CrossResolvedFrom(query.Source)
	}

	entry := r.lookup(ctx, query)
	if entry == nil || len(entry.Tracks) == 0 {
		return domain.NewEmptyResult(domain.EmptyCrossResolutionFailed)
	}

	if query.CatalogKind == domain.CatalogTrack {
		track := r.searchProvider(ctx, r.cross, entry.Tracks[0].SearchTerm())
		if track == nil {
			slog.Debug("no cross resolution match",
				"url", query.Input,
				"provider", r.cross.Name(),
			)
			return domain.NewEmptyResult(domain.EmptyCrossResolutionFailed)
		}
		return domain.NewSingleTrackResult(*track, r.cross.Name()).CrossResolvedFrom(query.Source)
	}

	tracks := r.crossResolveAll(ctx, entry.Tracks)
	if len(tracks) == 0 {
		return domain.NewEmptyResult(domain.EmptyCrossResolutionFailed)
	}

	kind := domain.CollectionPlaylist
	if query.CatalogKind == domain.CatalogAlbum {
		kind = domain.CollectionAlbum
	}
	return domain.NewCollectionResult(entry.Name, kind, tracks, r.cross.Name()).
		CrossResolvedFrom(query.Source)
}

func (r *TrackResolver) lookup(ctx context.Context, query domain.SearchQuery) *ports.CatalogEntry {
	ctx, cancel := context.WithTimeout(ctx, r.providerTimeout)
	defer cancel()

	entry, err := r.catalog.Lookup(ctx, query.CatalogKind, query.CatalogID)
	if err != nil {
		slog.Warn("catalog lookup failed",
			"kind", query.CatalogKind,
			"id", query.CatalogID,
			"error", err,
		)
		return nil
	}
	return entry
}

// crossResolveAll searches the playable provider for each catalog track,
// keeping catalog order and skipping misses.
func (r *TrackResolver) crossResolveAll(ctx context.Context, entries []ports.CatalogTrack) []domain.Track {
	if len(entries) > r.crossResolveLimit {
		entries = entries[:r.crossResolveLimit]
	}

	found := make([]*domain.Track, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(crossResolveConcurrency)
	for i, entry := range entries {
		g.Go(func() error {
			found[i] = r.searchProvider(gctx, r.cross, entry.SearchTerm())
			return nil
		})
	}
	_ = g.Wait()

	tracks := make([]domain.Track, 0, len(found))
	for _, track := range found {
		if track != nil {
			tracks = append(tracks, *track)
		}
	}

	slog.Debug("cross resolved collection",
		"provider", r.cross.Name(),
		"requested", len(entries),
		"found", len(tracks),
	)
	return tracks
}
