package embedding

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/kbukum/speakerkit/transcript"
)

func TestCosineAndSimilarity(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Vector
		wantCos float64
		wantSim float64
	}{
		{"identical", Vector{1, 2, 3}, Vector{1, 2, 3}, 1, 1},
		{"partial", Vector{1, 0}, Vector{0.8, 0.6}, 0.8, 0.8},
		{"orthogonal", Vector{1, 0}, Vector{0, 1}, 0, 0},
		{"opposite", Vector{1, 0}, Vector{-1, 0}, -1, 0},
		{"length mismatch", Vector{1, 0}, Vector{1}, 0, 0},
		{"zero vector", Vector{0, 0}, Vector{1, 0}, 0, 0},
		{"empty", nil, nil, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); math.Abs(got-tt.wantCos) > 1e-6 {
				t.Errorf("Cosine = %v, want %v", got, tt.wantCos)
			}
			if got := Similarity(tt.a, tt.b); math.Abs(got-tt.wantSim) > 1e-6 {
				t.Errorf("Similarity = %v, want %v", got, tt.wantSim)
			}
		})
	}
}

type fakeEmbedder struct {
	spans []transcript.Span
	err   error
}

func (f *fakeEmbedder) Name() string                       { return "fake" }
func (f *fakeEmbedder) IsAvailable(_ context.Context) bool { return true }
func (f *fakeEmbedder) Embed(_ context.Context, req EmbedRequest) (Vector, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.spans = append(f.spans, *req.Span)
	return Vector{float32(req.Span.Start)}, nil
}

func TestSegmentEmbedder_SkipsShortSegments(t *testing.T) {
	fake := &fakeEmbedder{}
	e := NewSegmentEmbedder(fake, 0.5, nil)

	segments := []transcript.Segment{
		{Speaker: "A", Start: 0, End: 0.4},
		{Speaker: "A", Start: 1, End: 1.5},
		{Speaker: "A", Start: 2, End: 4},
	}
	vectors, err := e.EmbedSegments(context.Background(), "/tmp/a.wav", segments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	if vectors[0][0] != 1 || vectors[1][0] != 2 {
		t.Errorf("vectors out of order: %v", vectors)
	}
	if len(fake.spans) != 2 || fake.spans[0] != (transcript.Span{Start: 1, End: 1.5}) {
		t.Errorf("unexpected spans %v", fake.spans)
	}
}

func TestSegmentEmbedder_NoUsableSegments(t *testing.T) {
	e := NewSegmentEmbedder(&fakeEmbedder{}, 1.0, nil)
	vectors, err := e.EmbedSegments(context.Background(), "a.wav", []transcript.Segment{{Start: 0, End: 0.9}})
	if err != nil || len(vectors) != 0 {
		t.Errorf("got %v, %v", vectors, err)
	}
}

func TestSegmentEmbedder_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	e := NewSegmentEmbedder(&fakeEmbedder{err: boom}, 0.5, nil)
	_, err := e.EmbedSegments(context.Background(), "a.wav", []transcript.Segment{{Start: 0, End: 2}})
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}
