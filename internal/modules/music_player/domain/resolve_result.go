package domain

import "github.com/disgoorg/snowflake/v2"

// ResultKind represents the shape of a resolution result.
type ResultKind int

const (
	ResultEmpty ResultKind = iota
	ResultSingleTrack
	ResultCollection
)

// CollectionKind distinguishes playlists from albums.
type CollectionKind string

const (
	CollectionPlaylist CollectionKind = "playlist"
	CollectionAlbum    CollectionKind = "album"
)

// EmptyReason explains why a resolution produced nothing.
type EmptyReason string

const (
	EmptyNotFound              EmptyReason = "not_found"
	EmptyCrossResolutionFailed EmptyReason = "cross_resolution_failed"
)

// ResolveResult is the outcome of resolving a user query into tracks.
type ResolveResult struct {
	Kind           ResultKind
	Tracks         []Track // one track for ResultSingleTrack, ordered tracks for ResultCollection
	CollectionName string
	CollectionKind CollectionKind
	EmptyReason    EmptyReason

	// Provider names the provider that produced the tracks.
	Provider string
	// CrossResolved is set when the tracks were found by searching a playable
	// provider for metadata taken from Origin.
	CrossResolved bool
	Origin        TrackSource
}

// NewSingleTrackResult creates a result holding one track.
func NewSingleTrackResult(track Track, provider string) ResolveResult {
	return ResolveResult{
		Kind:     ResultSingleTrack,
		Tracks:   []Track{track},
		Provider: provider,
	}
}

// NewCollectionResult creates a result holding an ordered collection.
// A collection with no tracks is reported as not found.
func NewCollectionResult(
	name string,
	kind CollectionKind,
	tracks []Track,
	provider string,
) ResolveResult {
	if len(tracks) == 0 {
		return NewEmptyResult(EmptyNotFound)
	}
	return ResolveResult{
		Kind:           ResultCollection,
		Tracks:         tracks,
		CollectionName: name,
		CollectionKind: kind,
		Provider:       provider,
	}
}

// NewEmptyResult creates a result holding no tracks.
func NewEmptyResult(reason EmptyReason) ResolveResult {
	return ResolveResult{
		Kind:        ResultEmpty,
		EmptyReason: reason,
	}
}

// IsEmpty returns true if the result holds no tracks.
func (r ResolveResult) IsEmpty() bool {
	return r.Kind == ResultEmpty || len(r.Tracks) == 0
}

// First returns the first track of the result, or nil if the result is empty.
func (r ResolveResult) First() *Track {
	if r.IsEmpty() {
		return nil
	}
	t := r.Tracks[0]
	return &t
}

// CrossResolvedFrom returns a copy of the result marked as cross-resolved from origin.
func (r ResolveResult) CrossResolvedFrom(origin TrackSource) ResolveResult {
	r.CrossResolved = true
	r.Origin = origin
	return r
}

// WithRequester returns a copy of the result with every track attributed to requesterID.
func (r ResolveResult) WithRequester(requesterID snowflake.ID) ResolveResult {
	tracks := make([]Track, len(r.Tracks))
	for i, t := range r.Tracks {
		tracks[i] = t.WithRequester(requesterID)
	}
	r.Tracks = tracks
	return r
}
