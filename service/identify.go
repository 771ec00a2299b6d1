package service

import (
	"context"

	"github.com/kbukum/speakerkit/diarization"
	"github.com/kbukum/speakerkit/identify"
	"github.com/kbukum/speakerkit/resilience"
	"github.com/kbukum/speakerkit/transcript"
)

// IdentifyInput describes an identification request.
type IdentifyInput struct {
	AudioPath string
	Hints     diarization.Hints
	// Threshold overrides the configured similarity threshold.
	Threshold *float64
}

// IdentifiedSegment is a diarization segment annotated with the identity
// matched to its label. IdentifiedAs and Confidence are both nil when the
// label matched nobody.
type IdentifiedSegment struct {
	Speaker      string   `json:"speaker"`
	IdentifiedAs *string  `json:"identified_as"`
	Confidence   *float64 `json:"confidence"`
	Start        float64  `json:"start"`
	End          float64  `json:"end"`
	Duration     float64  `json:"duration"`
}

// IdentifyResult is the outcome of Identify.
type IdentifyResult struct {
	Segments      []IdentifiedSegment `json:"segments"`
	Mapping       map[string]*string  `json:"speaker_mapping"`
	NumSpeakers   int                 `json:"num_speakers"`
	NumIdentified int                 `json:"num_identified"`
	AudioDuration float64             `json:"audio_duration"`
}

// Identify diarizes the audio and matches every label against the enrolled
// speakers.
func (s *Service) Identify(ctx context.Context, in IdentifyInput) (*IdentifyResult, error) {
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

	ids := labels.identities()
	segments := make([]IdentifiedSegment, len(dr.Segments))
	for i, seg := range dr.Segments {
		out := IdentifiedSegment{
			Speaker:  seg.Speaker,
			Start:    seg.Start,
			End:      seg.End,
			Duration: seg.Duration(),
		}
		if id, ok := ids[seg.Speaker]; ok {
			name, conf := id.Name, id.Confidence
			out.IdentifiedAs, out.Confidence = &name, &conf
		}
		segments[i] = out
	}

	return &IdentifyResult{
		Segments:      segments,
		Mapping:       labels.mapping(),
		NumSpeakers:   len(labels),
		NumIdentified: labels.numIdentified(),
		AudioDuration: dr.AudioDuration,
	}, nil
}

// labelMatch is the vote outcome for one diarization label.
type labelMatch struct {
	label string
	match *identify.Match
}

type labelMatches []labelMatch

func (m labelMatches) identities() transcript.IdentityMap {
	ids := make(transcript.IdentityMap, len(m))
	for _, lm := range m {
		if lm.match != nil {
			ids[lm.label] = transcript.Identity{Name: lm.match.Identity.Name, Confidence: lm.match.Score}
		}
	}
	return ids
}

func (m labelMatches) mapping() map[string]*string {
	out := make(map[string]*string, len(m))
	for _, lm := range m {
		if lm.match == nil {
			out[lm.label] = nil
			continue
		}
		name := lm.match.Identity.Name
		out[lm.label] = &name
	}
	return out
}

func (m labelMatches) numIdentified() int {
	n := 0
	for _, lm := range m {
		if lm.match != nil {
			n++
		}
	}
	return n
}

// groupByLabel returns the labels in first-seen order and the segments of
// each label in input order.
func groupByLabel(segments []transcript.Segment) ([]string, map[string][]transcript.Segment) {
	var order []string
	groups := make(map[string][]transcript.Segment)
	for _, seg := range segments {
		if _, seen := groups[seg.Speaker]; !seen {
			order = append(order, seg.Speaker)
		}
		groups[seg.Speaker] = append(groups[seg.Speaker], seg)
	}
	return order, groups
}

// identifyLabels votes once per label. Labels run concurrently up to the
// bulkhead limit; the first producer or store error fails the whole call.
func (s *Service) identifyLabels(ctx context.Context, audioPath string, segments []transcript.Segment, threshold *float64) (labelMatches, error) {
	order, groups := groupByLabel(segments)
	log := s.log.WithContext(ctx)

	return resilience.FanOut(ctx, s.bulkhead, order, func(ctx context.Context, label string) (labelMatch, error) {
		vectors, err := s.probe.EmbedSegments(ctx, audioPath, groups[label])
		if err != nil {
			return labelMatch{}, err
		}
		if len(vectors) == 0 {
			log.Debug("label has no segment long enough to identify", map[string]interface{}{
				"label": label,
			})
			return labelMatch{label: label}, nil
		}

		match, err := s.voter.IdentifyByVoting(ctx, vectors, threshold)
		if err != nil {
			return labelMatch{}, err
		}
		if s.metrics != nil {
			score := 0.0
			if match != nil {
				score = match.Score
			}
			s.metrics.RecordIdentification(ctx, match != nil, score)
		}
		return labelMatch{label: label, match: match}, nil
	})
}
