package service

import (
	"context"

	"github.com/kbukum/speakerkit/diarization"
	"github.com/kbukum/speakerkit/errors"
	"github.com/kbukum/speakerkit/identify"
	"github.com/kbukum/speakerkit/transcript"
	"github.com/kbukum/speakerkit/transcription"
)

// DiarizeInput describes a diarization request.
type DiarizeInput struct {
	AudioPath string
	Hints     diarization.Hints
	Exclusive bool
}

// Diarize returns the labeled segments of the audio.
func (s *Service) Diarize(ctx context.Context, in DiarizeInput) (*transcript.Diarization, error) {
	if err := in.Hints.Validate(); err != nil {
		return nil, err
	}
	return s.diarize(ctx, in.AudioPath, in.Hints, in.Exclusive)
}

func (s *Service) diarize(ctx context.Context, audioPath string, hints diarization.Hints, exclusive bool) (*transcript.Diarization, error) {
	dr, err := s.diarizer.Diarize(ctx, diarization.Request{
		AudioPath: audioPath,
		Hints:     hints,
		Exclusive: exclusive,
	})
	if err != nil {
		return nil, err
	}
	if dr == nil {
		return nil, errors.ValidationFailed(s.diarizer.Name() + " returned no diarization")
	}
	return dr, nil
}

// TranscribeInput describes a speaker-attributed transcription request.
type TranscribeInput struct {
	AudioPath string
	Hints     diarization.Hints
	// Language is the expected language; empty lets the producer detect it.
	Language string
	// Threshold overrides the identification threshold. Only used by
	// TranscribeIdentified.
	Threshold *float64
}

// TranscriptResult is a merged transcript, with the identification outcome
// when identification ran.
type TranscriptResult struct {
	*transcript.Transcript
	Mapping       map[string]*string `json:"speaker_mapping,omitempty"`
	NumIdentified int                `json:"num_identified"`
	CacheHit      bool               `json:"-"`
}

// TranscribeDiarized transcribes the audio and attributes every turn to a
// diarization label.
func (s *Service) TranscribeDiarized(ctx context.Context, in TranscribeInput) (*TranscriptResult, error) {
	if err := in.Hints.Validate(); err != nil {
		return nil, err
	}
	dr, err := s.diarize(ctx, in.AudioPath, in.Hints, true)
	if err != nil {
		return nil, err
	}
	return s.transcribeAndMerge(ctx, in, dr, nil)
}

// TranscribeIdentified transcribes the audio, attributes turns to labels and
// annotates labels matched to enrolled speakers.
func (s *Service) TranscribeIdentified(ctx context.Context, in TranscribeInput) (*TranscriptResult, error) {
	if err := in.Hints.Validate(); err != nil {
		return nil, err
	}
	if in.Threshold != nil {
		if err := identify.ValidateThreshold(*in.Threshold); err != nil {
			return nil, err
		}
	}
	dr, err := s.diarize(ctx, in.AudioPath, in.Hints, true)
	if err != nil {
		return nil, err
	}
	labels, err := s.identifyLabels(ctx, in.AudioPath, dr.Segments, in.Threshold)
	if err != nil {
		return nil, err
	}

	res, err := s.transcribeAndMerge(ctx, in, dr, labels.identities())
	if err != nil {
		return nil, err
	}
	res.Mapping = labels.mapping()
	res.NumIdentified = labels.numIdentified()
	return res, nil
}

func (s *Service) transcribeAndMerge(ctx context.Context, in TranscribeInput, dr *transcript.Diarization, ids transcript.IdentityMap) (*TranscriptResult, error) {
	model := s.transcriber.Model()
	tr, hit, err := s.cache.GetOrTranscribe(ctx, in.AudioPath, model, in.Language,
		func(ctx context.Context) (*transcript.Transcription, error) {
			return s.transcriber.Transcribe(ctx, transcription.Request{
				AudioPath: in.AudioPath,
				Language:  in.Language,
				Model:     model,
			})
		})
	if err != nil {
		return nil, err
	}
	if tr == nil {
		return nil, errors.ValidationFailed(s.transcriber.Name() + " returned no transcription")
	}

	merged, err := transcript.Merge(*tr, *dr, ids)
	if err != nil {
		return nil, err
	}
	s.log.WithContext(ctx).Debug("transcript merged", map[string]interface{}{
		"turns":        len(merged.Turns),
		"num_speakers": merged.NumSpeakers,
		"cache_hit":    hit,
	})
	return &TranscriptResult{Transcript: merged, CacheHit: hit}, nil
}
