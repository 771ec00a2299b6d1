package speakerdb

import (
	"context"
	"time"

	"github.com/kbukum/speakerkit/embedding"
	"github.com/kbukum/speakerkit/errors"
	"github.com/kbukum/speakerkit/provider"
)

// Speaker is a durable identity.
type Speaker struct {
	ID             string    `json:"speaker_id"`
	Name           string    `json:"speaker_name"`
	EmbeddingCount int       `json:"embeddings_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// Candidate is one stored embedding returned by Search.
type Candidate struct {
	SpeakerID   string    `json:"speaker_id"`
	SpeakerName string    `json:"speaker_name"`
	Score       float64   `json:"score"`
	AudioSource string    `json:"audio_source,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// AppendRequest adds embeddings to an identity. An empty SpeakerID creates
// a new identity named Name.
type AppendRequest struct {
	SpeakerID   string
	Name        string
	AudioSource string
	Vectors     []embedding.Vector
}

// Validate checks that the request carries something to store.
func (r AppendRequest) Validate() error {
	if len(r.Vectors) == 0 {
		return errors.ValidationFailed("no embeddings to store")
	}
	if r.SpeakerID == "" && r.Name == "" {
		return errors.MissingField("name")
	}
	for i, v := range r.Vectors {
		if len(v) == 0 {
			return errors.ValidationFailed("empty embedding").WithDetail("index", i)
		}
	}
	return nil
}

// Stats summarizes the store contents.
type Stats struct {
	Backend    string `json:"backend"`
	Collection string `json:"collection_name,omitempty"`
	Points     int    `json:"points_count"`
	Speakers   int    `json:"speakers_count"`
	Status     string `json:"status"`
}

// Searcher is the similarity oracle.
type Searcher interface {
	// Search returns up to topK stored embeddings scoring at least threshold
	// against vector, best first.
	Search(ctx context.Context, vector embedding.Vector, topK int, threshold float64) ([]Candidate, error)
}

// Store is a speaker identity registry.
type Store interface {
	provider.Provider
	Searcher

	// Append stores the vectors and returns the identity id.
	Append(ctx context.Context, req AppendRequest) (string, error)
	// List returns every identity ordered by creation time.
	List(ctx context.Context) ([]Speaker, error)
	// Get returns one identity or NOT_FOUND.
	Get(ctx context.Context, id string) (*Speaker, error)
	// Delete removes the identity and all of its embeddings. Unknown ids
	// return NOT_FOUND.
	Delete(ctx context.Context, id string) error
	// Stats summarizes the store.
	Stats(ctx context.Context) (*Stats, error)
	// Ping checks connectivity.
	Ping(ctx context.Context) error
}

// NotFound is the error returned for unknown speaker ids.
func NotFound(id string) error {
	return errors.NotFound("speaker", id)
}
