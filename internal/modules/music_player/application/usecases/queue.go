package usecases

import (
	"context"
	"errors"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sumire/internal/modules/music_player/application/session"
	"github.com/sglre6355/sumire/internal/modules/music_player/domain"
)

const DefaultPageSize = 10

// QueueListInput contains the input for the QueueList use case.
type QueueListInput struct {
	GuildID  snowflake.ID
	Page     int // 1-indexed page number
	PageSize int // Items per page (optional, defaults to 10)
}

// QueueListOutput contains the result of the QueueList use case.
type QueueListOutput struct {
	CurrentTrack *domain.Track
	Tracks       []domain.Track
	TotalTracks  int
	CurrentPage  int
	TotalPages   int
	// Offset is the 1-based queue position of the first track on the page.
	Offset   int
	LoopMode domain.LoopMode
}

// NowPlayingInput contains the input for the NowPlaying use case.
type NowPlayingInput struct {
	GuildID snowflake.ID
}

// NowPlayingOutput contains the result of the NowPlaying use case.
type NowPlayingOutput struct {
	Track    domain.Track
	LoopMode domain.LoopMode
	Volume   int
	Upcoming int
}

// QueueService handles read-only queue queries.
type QueueService struct {
	sessions *session.Registry
}

// NewQueueService creates a new QueueService.
func NewQueueService(sessions *session.Registry) *QueueService {
	return &QueueService{sessions: sessions}
}

// List returns the current track and one page of the queue.
func (q *QueueService) List(ctx context.Context, input QueueListInput) (*QueueListOutput, error) {
	snap, err := q.snapshot(ctx, input.GuildID)
	if err != nil {
		return nil, err
	}

	pageSize := input.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	page := input.Page
	if page <= 0 {
		page = 1
	}

	totalTracks := len(snap.Queue)
	totalPages := (totalTracks + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}

	// Clamp page to valid range
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, totalTracks)

	var pageTracks []domain.Track
	if start < totalTracks {
		pageTracks = snap.Queue[start:end]
	}

	return &QueueListOutput{
		CurrentTrack: snap.Current,
		Tracks:       pageTracks,
		TotalTracks:  totalTracks,
		CurrentPage:  page,
		TotalPages:   totalPages,
		Offset:       start + 1,
		LoopMode:     snap.LoopMode,
	}, nil
}

// NowPlaying returns the track that is currently playing.
func (q *QueueService) NowPlaying(ctx context.Context, input NowPlayingInput) (*NowPlayingOutput, error) {
	snap, err := q.snapshot(ctx, input.GuildID)
	if err != nil {
		return nil, err
	}
	if snap.Current == nil {
		return nil, ErrNotPlaying
	}

	return &NowPlayingOutput{
		Track:    *snap.Current,
		LoopMode: snap.LoopMode,
		Volume:   snap.Volume,
		Upcoming: len(snap.Queue),
	}, nil
}

func (q *QueueService) snapshot(ctx context.Context, guildID snowflake.ID) (session.Snapshot, error) {
	s, ok := q.sessions.Get(guildID)
	if !ok {
		return session.Snapshot{}, ErrNotConnected
	}

	snap, err := s.Snapshot(ctx)
	if errors.Is(err, session.ErrSessionClosed) {
		return session.Snapshot{}, ErrNotConnected
	}
	return snap, err
}
