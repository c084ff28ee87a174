package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sglre6355/sumire/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sumire/internal/modules/music_player/domain"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

// ErrCatalogNotFound is returned when the catalog has no entity for an ID.
var ErrCatalogNotFound = errors.New("catalog entry not found")

var _ ports.CatalogProvider = (*SpotifyCatalog)(nil)

// SpotifyConfig contains Spotify Web API credentials.
type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	// TrackLimit caps how many tracks of an album or playlist are fetched.
	TrackLimit int
}

// SpotifyCatalog reads track, album and playlist metadata from the Spotify Web API.
type SpotifyCatalog struct {
	client     *spotify.Client
	trackLimit int
	limiter    *rate.Limiter
}

// NewSpotifyCatalog creates a catalog authenticated with the client credentials flow.
func NewSpotifyCatalog(ctx context.Context, config SpotifyConfig, limiter *rate.Limiter) *SpotifyCatalog {
	credentials := clientcredentials.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	httpClient := credentials.Client(ctx)
	httpClient.Timeout = 10 * time.Second

	return newSpotifyCatalog(spotify.New(httpClient), config.TrackLimit, limiter)
}

func newSpotifyCatalog(client *spotify.Client, trackLimit int, limiter *rate.Limiter) *SpotifyCatalog {
	if trackLimit <= 0 {
		trackLimit = 25
	}
	return &SpotifyCatalog{
		client:     client,
		trackLimit: trackLimit,
		limiter:    limiter,
	}
}

// Lookup returns the catalog entry identified by kind and id.
func (c *SpotifyCatalog) Lookup(
	ctx context.Context,
	kind domain.CatalogKind,
	id string,
) (*ports.CatalogEntry, error) {
	switch kind {
	case domain.CatalogTrack:
		return c.lookupTrack(ctx, spotify.ID(id))
	case domain.CatalogAlbum:
		return c.lookupAlbum(ctx, spotify.ID(id))
	case domain.CatalogPlaylist:
		return c.lookupPlaylist(ctx, spotify.ID(id))
	default:
		return nil, fmt.Errorf("unsupported catalog kind %q", kind)
	}
}

func (c *SpotifyCatalog) lookupTrack(ctx context.Context, id spotify.ID) (*ports.CatalogEntry, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	track, err := c.client.GetTrack(ctx, id)
	if err != nil {
		return nil, mapSpotifyError(err)
	}

	return &ports.CatalogEntry{
		Kind:   domain.CatalogTrack,
		Name:   track.Name,
		Tracks: []ports.CatalogTrack{convertSpotifyTrack(track.SimpleTrack)},
	}, nil
}

func (c *SpotifyCatalog) lookupAlbum(ctx context.Context, id spotify.ID) (*ports.CatalogEntry, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	album, err := c.client.GetAlbum(ctx, id)
	if err != nil {
		return nil, mapSpotifyError(err)
	}

	entry := &ports.CatalogEntry{Kind: domain.CatalogAlbum, Name: album.Name}
	page := &album.Tracks
	for {
		for _, t := range page.Tracks {
			if len(entry.Tracks) >= c.trackLimit {
				return entry, nil
			}
			entry.Tracks = append(entry.Tracks, convertSpotifyTrack(t))
		}

		if page.Next == "" {
			return entry, nil
		}
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		if err := c.client.NextPage(ctx, page); err != nil {
			if errors.Is(err, spotify.ErrNoMorePages) {
				return entry, nil
			}
			return nil, mapSpotifyError(err)
		}
	}
}

func (c *SpotifyCatalog) lookupPlaylist(ctx context.Context, id spotify.ID) (*ports.CatalogEntry, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	playlist, err := c.client.GetPlaylist(ctx, id)
	if err != nil {
		return nil, mapSpotifyError(err)
	}

	entry := &ports.CatalogEntry{Kind: domain.CatalogPlaylist, Name: playlist.Name}
	page := &playlist.Tracks
	for {
		for _, item := range page.Tracks {
			if len(entry.Tracks) >= c.trackLimit {
				return entry, nil
			}
			// Removed and local tracks come back as null.
			if item.Track.Name == "" {
				continue
			}
			entry.Tracks = append(entry.Tracks, convertSpotifyTrack(item.Track.SimpleTrack))
		}

		if page.Next == "" {
			return entry, nil
		}
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		if err := c.client.NextPage(ctx, page); err != nil {
			if errors.Is(err, spotify.ErrNoMorePages) {
				return entry, nil
			}
			return nil, mapSpotifyError(err)
		}
	}
}

func convertSpotifyTrack(t spotify.SimpleTrack) ports.CatalogTrack {
	artist := ""
	if len(t.Artists) > 0 {
		artist = t.Artists[0].Name
	}
	return ports.CatalogTrack{
		Title:    t.Name,
		Artist:   artist,
		Duration: t.TimeDuration(),
	}
}

func (c *SpotifyCatalog) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func mapSpotifyError(err error) error {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return ErrCatalogNotFound
	}
	return fmt.Errorf("catalog request failed: %w", err)
}
