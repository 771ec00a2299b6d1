package embedding

import (
	"context"

	"github.com/kbukum/speakerkit/logger"
	"github.com/kbukum/speakerkit/transcript"
)

// SegmentEmbedder extracts one vector per diarization segment that is at
// least MinDuration seconds long. Shorter segments carry too little voice to
// embed reliably and are skipped.
type SegmentEmbedder struct {
	embedder    Provider
	minDuration float64
	log         *logger.Logger
}

// NewSegmentEmbedder creates a SegmentEmbedder.
func NewSegmentEmbedder(embedder Provider, minDuration float64, log *logger.Logger) *SegmentEmbedder {
	if log == nil {
		log = logger.NewNop()
	}
	return &SegmentEmbedder{
		embedder:    embedder,
		minDuration: minDuration,
		log:         log.WithComponent("segment-embedder"),
	}
}

// MinDuration returns the shortest segment length that is embedded.
func (e *SegmentEmbedder) MinDuration() float64 { return e.minDuration }

// Usable returns the segments long enough to embed, in input order.
func (e *SegmentEmbedder) Usable(segments []transcript.Segment) []transcript.Segment {
	out := make([]transcript.Segment, 0, len(segments))
	for _, s := range segments {
		if s.End-s.Start >= e.minDuration {
			out = append(out, s)
		}
	}
	return out
}

// EmbedSegments embeds every usable segment of audioPath. The first producer
// error aborts the call.
func (e *SegmentEmbedder) EmbedSegments(ctx context.Context, audioPath string, segments []transcript.Segment) ([]Vector, error) {
	usable := e.Usable(segments)
	if skipped := len(segments) - len(usable); skipped > 0 {
		e.log.WithContext(ctx).Debug("skipping short segments", map[string]interface{}{
			"skipped":      skipped,
			"min_duration": e.minDuration,
		})
	}

	vectors := make([]Vector, 0, len(usable))
	for _, s := range usable {
		span := s.Span()
		v, err := e.embedder.Embed(ctx, EmbedRequest{AudioPath: audioPath, Span: &span})
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, v)
	}
	return vectors, nil
}
