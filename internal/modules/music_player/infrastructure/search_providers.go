package infrastructure

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ppalone/ytsearch"
	"github.com/raitonoberu/ytmusic"
	"github.com/sglre6355/sumire/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sumire/internal/modules/music_player/domain"
	"golang.org/x/time/rate"
)

var (
	_ ports.SearchProvider = (*NodeSearchProvider)(nil)
	_ ports.SearchProvider = (*CatalogSearchProvider)(nil)
)

// NodeSearchProvider searches through a Lavalink search prefix.
type NodeSearchProvider struct {
	name   string
	prefix domain.SearchPrefix
	loader ports.TrackLoader
}

// NewNodeSearchProvider creates a provider that searches with the given prefix.
func NewNodeSearchProvider(
	name string,
	prefix domain.SearchPrefix,
	loader ports.TrackLoader,
) *NodeSearchProvider {
	return &NodeSearchProvider{name: name, prefix: prefix, loader: loader}
}

// Name returns the provider name.
func (p *NodeSearchProvider) Name() string {
	return p.name
}

// Search returns the first track the node finds for term.
func (p *NodeSearchProvider) Search(ctx context.Context, term string) (*domain.Track, error) {
	return firstTrack(ctx, p.loader, p.prefix.Query(term))
}

func firstTrack(ctx context.Context, loader ports.TrackLoader, identifier string) (*domain.Track, error) {
	result, err := loader.LoadTracks(ctx, identifier)
	if err != nil {
		return nil, err
	}

	switch result.Type {
	case ports.LoadTypeTrack, ports.LoadTypeSearch, ports.LoadTypePlaylist:
		if len(result.Tracks) == 0 {
			return nil, nil
		}
		track := result.Tracks[0].ToTrack()
		return &track, nil
	case ports.LoadTypeError:
		return nil, fmt.Errorf("node failed to load %q: %s", identifier, result.ErrorMessage)
	default:
		return nil, nil
	}
}

// VideoLookup finds the video ID of the best match for term on a catalog.
// It returns an empty ID when the catalog has no match.
type VideoLookup func(ctx context.Context, term string) (string, error)

// CatalogSearchProvider looks a term up on a web catalog and loads the
// matching video through the node. When the catalog fails or has no match it
// falls back to the node's own search.
type CatalogSearchProvider struct {
	name     string
	source   domain.TrackSource
	watchURL string
	lookup   VideoLookup
	limiter  *rate.Limiter
	loader   ports.TrackLoader
	fallback *NodeSearchProvider
}

// NewYouTubeSearchProvider creates the YouTube provider.
func NewYouTubeSearchProvider(loader ports.TrackLoader, limiter *rate.Limiter) *CatalogSearchProvider {
	client := ytsearch.NewClient(nil)

	return &CatalogSearchProvider{
		name:     "youtube",
		source:   domain.TrackSourceYouTube,
		watchURL: "https://www.youtube.com/watch?v=",
		lookup: func(ctx context.Context, term string) (string, error) {
			res, err := client.Search(ctx, term)
			if err != nil {
				return "", err
			}
			for _, v := range res.Results {
				if v.VideoID != "" {
					return v.VideoID, nil
				}
			}
			return "", nil
		},
		limiter:  limiter,
		loader:   loader,
		fallback: NewNodeSearchProvider("youtube", domain.SearchPrefixYouTube, loader),
	}
}

// NewYouTubeMusicSearchProvider creates the YouTube Music provider.
func NewYouTubeMusicSearchProvider(loader ports.TrackLoader, limiter *rate.Limiter) *CatalogSearchProvider {
	return &CatalogSearchProvider{
		name:     "youtube_music",
		source:   domain.TrackSourceYouTubeMusic,
		watchURL: "https://music.youtube.com/watch?v=",
		lookup:   searchYouTubeMusic,
		limiter:  limiter,
		loader:   loader,
		fallback: NewNodeSearchProvider("youtube_music", domain.SearchPrefixYouTubeMusic, loader),
	}
}

// searchYouTubeMusic runs a ytmusic track search. The client takes no
// context, so the call is abandoned when ctx expires.
func searchYouTubeMusic(ctx context.Context, term string) (string, error) {
	type outcome struct {
		id  string
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		res, err := ytmusic.TrackSearch(term).Next()
		if err != nil {
			done <- outcome{err: err}
			return
		}
		for _, t := range res.Tracks {
			if t.VideoID != "" {
				done <- outcome{id: t.VideoID}
				return
			}
		}
		done <- outcome{}
	}()

	select {
	case o := <-done:
		return o.id, o.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Name returns the provider name.
func (p *CatalogSearchProvider) Name() string {
	return p.name
}

// Search returns the best match for term, or nil if there is none.
func (p *CatalogSearchProvider) Search(ctx context.Context, term string) (*domain.Track, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	videoID, err := p.lookup(ctx, term)
	if err != nil {
		slog.Debug("catalog search failed, using node search",
			"provider", p.name,
			"error", err,
		)
	}

	var track *domain.Track
	if err != nil || videoID == "" {
		track, err = p.fallback.Search(ctx, term)
	} else {
		track, err = firstTrack(ctx, p.loader, p.watchURL+videoID)
	}
	if err != nil || track == nil {
		return track, err
	}
	track.Source = p.source
	return track, nil
}
