package domain

// Queue is an ordered FIFO of tracks waiting to be played.
// The currently playing track is never stored in the queue.
type Queue struct {
	tracks []Track
}

// NewQueue creates a new empty Queue.
func NewQueue() Queue {
	return Queue{
		tracks: make([]Track, 0),
	}
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// Len returns the number of queued tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// Append adds tracks to the tail of the queue.
func (q *Queue) Append(tracks ...Track) {
	q.tracks = append(q.tracks, tracks...)
}

// PopFront removes and returns the head of the queue.
// The second return value is false if the queue is empty.
func (q *Queue) PopFront() (Track, bool) {
	if q.IsEmpty() {
		return Track{}, false
	}

	head := q.tracks[0]
	q.tracks[0] = Track{}
	q.tracks = q.tracks[1:]
	return head, true
}

// Contains returns true if a track with the given ID is queued.
func (q *Queue) Contains(id TrackID) bool {
	for _, t := range q.tracks {
		if t.ID == id {
			return true
		}
	}
	return false
}

// List returns a copy of all queued tracks in order.
func (q *Queue) List() []Track {
	result := make([]Track, q.Len())
	copy(result, q.tracks)
	return result
}

// Clear removes all tracks from the queue.
func (q *Queue) Clear() {
	q.tracks = make([]Track, 0)
}
