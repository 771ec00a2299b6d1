// Package memory is an in-process speakerdb.Store. Contents are lost on
// restart; it backs tests and dry runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/speakerkit/embedding"
	"github.com/kbukum/speakerkit/speakerdb"
)

// BackendName is the registry name of this backend.
const BackendName = "memory"

// Store keeps points in insertion order.
type Store struct {
	mu     sync.RWMutex
	points []speakerdb.Point
	now    func() time.Time
}

var _ speakerdb.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{now: time.Now}
}

// Name returns the backend name.
func (s *Store) Name() string { return BackendName }

// IsAvailable always returns true.
func (s *Store) IsAvailable(context.Context) bool { return true }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Search ranks every stored point.
func (s *Store) Search(_ context.Context, vector embedding.Vector, topK int, threshold float64) ([]speakerdb.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return speakerdb.Rank(vector, s.points, topK, threshold), nil
}

// Append stores the vectors under a new or existing identity.
func (s *Store) Append(_ context.Context, req speakerdb.AppendRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, name := req.SpeakerID, req.Name
	if id == "" {
		id = uuid.NewString()
	} else {
		existing := s.find(id)
		if existing == nil {
			return "", speakerdb.NotFound(id)
		}
		name = existing.SpeakerName
	}

	created := s.now().UTC()
	for _, v := range req.Vectors {
		s.points = append(s.points, speakerdb.Point{
			SpeakerID:   id,
			SpeakerName: name,
			AudioSource: req.AudioSource,
			CreatedAt:   created,
			Vector:      append(embedding.Vector(nil), v...),
		})
	}
	return id, nil
}

// List returns every identity in registration order.
func (s *Store) List(context.Context) ([]speakerdb.Speaker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	speakers := speakerdb.Summarize(s.points)
	if speakers == nil {
		speakers = []speakerdb.Speaker{}
	}
	return speakers, nil
}

// Get returns one identity.
func (s *Store) Get(_ context.Context, id string) (*speakerdb.Speaker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var own []speakerdb.Point
	for _, p := range s.points {
		if p.SpeakerID == id {
			own = append(own, p)
		}
	}
	if len(own) == 0 {
		return nil, speakerdb.NotFound(id)
	}
	sp := speakerdb.Summarize(own)[0]
	return &sp, nil
}

// Delete removes the identity and its points.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.points[:0]
	removed := 0
	for _, p := range s.points {
		if p.SpeakerID == id {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	s.points = kept
	if removed == 0 {
		return speakerdb.NotFound(id)
	}
	return nil
}

// Stats counts points and identities.
func (s *Store) Stats(context.Context) (*speakerdb.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &speakerdb.Stats{
		Backend:  BackendName,
		Points:   len(s.points),
		Speakers: len(speakerdb.Summarize(s.points)),
		Status:   "green",
	}, nil
}

func (s *Store) find(id string) *speakerdb.Point {
	for i := range s.points {
		if s.points[i].SpeakerID == id {
			return &s.points[i]
		}
	}
	return nil
}
