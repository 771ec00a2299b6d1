package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/kbukum/speakerkit/diarization"
	"github.com/kbukum/speakerkit/embedding"
	"github.com/kbukum/speakerkit/errors"
	"github.com/kbukum/speakerkit/speakerdb"
	"github.com/kbukum/speakerkit/validation"
)

// MaxNameLength is the longest accepted speaker name.
const MaxNameLength = 100

// SampleInput is one enrollment audio sample.
type SampleInput struct {
	AudioPath string
	// Source is recorded with every embedding, usually the uploaded file name.
	Source string
	// ExtractSegments diarizes the sample as a single speaker and embeds
	// every segment of at least identify.MinEnrollDuration seconds. When
	// false the whole file yields one embedding.
	ExtractSegments bool
}

// RegisterInput describes a new enrollment.
type RegisterInput struct {
	SampleInput
	Name string
}

// EnrollResult reports the identity after an enrollment.
type EnrollResult struct {
	SpeakerID      string `json:"speaker_id"`
	SpeakerName    string `json:"speaker_name"`
	EmbeddingCount int    `json:"embeddings_count"`
	// Added is the number of embeddings stored by this call.
	Added int `json:"-"`
}

// Register enrolls a new speaker from a sample.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*EnrollResult, error) {
	name := strings.TrimSpace(in.Name)
	if verr := validation.New().
		Required("speaker_name", name).
		MaxLength("speaker_name", name, MaxNameLength).
		Validate(); verr != nil {
		return nil, verr
	}

	vectors, err := s.sampleVectors(ctx, in.SampleInput)
	if err != nil {
		return nil, err
	}
	id, err := s.store.Append(ctx, speakerdb.AppendRequest{
		Name:        name,
		AudioSource: in.Source,
		Vectors:     vectors,
	})
	if err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Info("speaker registered", map[string]interface{}{
		"speaker_id": id,
		"embeddings": len(vectors),
	})
	return &EnrollResult{SpeakerID: id, SpeakerName: name, EmbeddingCount: len(vectors), Added: len(vectors)}, nil
}

// AddSample adds embeddings to an existing speaker and returns the updated
// identity. Unknown ids return NOT_FOUND before any producer is called.
func (s *Service) AddSample(ctx context.Context, speakerID string, in SampleInput) (*EnrollResult, error) {
	speaker, err := s.store.Get(ctx, speakerID)
	if err != nil {
		return nil, err
	}

	vectors, err := s.sampleVectors(ctx, in)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Append(ctx, speakerdb.AppendRequest{
		SpeakerID:   speaker.ID,
		Name:        speaker.Name,
		AudioSource: in.Source,
		Vectors:     vectors,
	}); err != nil {
		return nil, err
	}

	updated, err := s.store.Get(ctx, speakerID)
	if err != nil {
		return nil, err
	}
	s.log.WithContext(ctx).Info("speaker sample added", map[string]interface{}{
		"speaker_id": speakerID,
		"added":      len(vectors),
		"total":      updated.EmbeddingCount,
	})
	return &EnrollResult{
		SpeakerID:      updated.ID,
		SpeakerName:    updated.Name,
		EmbeddingCount: updated.EmbeddingCount,
		Added:          len(vectors),
	}, nil
}

func (s *Service) sampleVectors(ctx context.Context, in SampleInput) ([]embedding.Vector, error) {
	if !in.ExtractSegments {
		v, err := s.embedder.Embed(ctx, embedding.EmbedRequest{AudioPath: in.AudioPath})
		if err != nil {
			return nil, err
		}
		if len(v) == 0 {
			return nil, errors.ValidationFailed(s.embedder.Name() + " returned an empty embedding")
		}
		return []embedding.Vector{v}, nil
	}

	dr, err := s.diarize(ctx, in.AudioPath, diarization.Hints{NumSpeakers: 1}, false)
	if err != nil {
		return nil, err
	}
	vectors, err := s.enroll.EmbedSegments(ctx, in.AudioPath, dr.Segments)
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, errors.ValidationFailed(fmt.Sprintf(
			"could not extract any speech segment of at least %gs from the audio", s.enroll.MinDuration()))
	}
	return vectors, nil
}

// SpeakerList is every enrolled speaker.
type SpeakerList struct {
	Speakers   []speakerdb.Speaker `json:"speakers"`
	TotalCount int                 `json:"total_count"`
}

// ListSpeakers returns every enrolled speaker ordered by enrollment time.
func (s *Service) ListSpeakers(ctx context.Context) (*SpeakerList, error) {
	speakers, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if speakers == nil {
		speakers = []speakerdb.Speaker{}
	}
	return &SpeakerList{Speakers: speakers, TotalCount: len(speakers)}, nil
}

// GetSpeaker returns one speaker or NOT_FOUND.
func (s *Service) GetSpeaker(ctx context.Context, id string) (*speakerdb.Speaker, error) {
	return s.store.Get(ctx, id)
}

// DeleteSpeaker removes a speaker and all of its embeddings.
func (s *Service) DeleteSpeaker(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithContext(ctx).Info("speaker deleted", map[string]interface{}{"speaker_id": id})
	return nil
}
