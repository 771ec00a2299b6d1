package speakerdb

import (
	"math"
	"testing"
	"time"

	"github.com/kbukum/speakerkit/embedding"
	"github.com/kbukum/speakerkit/errors"
)

func TestRank(t *testing.T) {
	points := []Point{
		{SpeakerID: "a", SpeakerName: "Alice", Vector: embedding.Vector{1, 0}},
		{SpeakerID: "b", SpeakerName: "Bob", Vector: embedding.Vector{0, 1}},
		{SpeakerID: "c", SpeakerName: "Carol", Vector: embedding.Vector{-1, 0}},
		{SpeakerID: "a", SpeakerName: "Alice", Vector: embedding.Vector{1, 1}},
	}

	got := Rank(embedding.Vector{1, 0}, points, 3, 0)
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d: %+v", len(got), got)
	}
	if got[0].SpeakerID != "a" || got[0].Score != 1 {
		t.Errorf("best candidate = %+v", got[0])
	}
	if want := 1 / math.Sqrt2; math.Abs(got[1].Score-want) > 1e-6 {
		t.Errorf("second score = %v, want %v", got[1].Score, want)
	}
	if got[2].SpeakerID != "b" || got[2].Score != 0 {
		t.Errorf("threshold is inclusive and opposite vectors clamp to 0, got %+v", got[2])
	}

	if top1 := Rank(embedding.Vector{1, 0}, points, 1, 0); len(top1) != 1 {
		t.Errorf("topK not applied: %d", len(top1))
	}
	if none := Rank(embedding.Vector{1, 0}, points, 3, 1.01); len(none) != 0 {
		t.Errorf("expected no candidates above 1.0, got %d", len(none))
	}
}

func TestRank_ThresholdIsCosine(t *testing.T) {
	points := []Point{
		{SpeakerID: "far", Vector: embedding.Vector{0.4, 0.916515}},
		{SpeakerID: "near", Vector: embedding.Vector{0.8, 0.6}},
	}

	got := Rank(embedding.Vector{1, 0}, points, 3, 0.7)
	if len(got) != 1 || got[0].SpeakerID != "near" {
		t.Fatalf("expected only the 0.8 neighbour at 0.7, got %+v", got)
	}
	if math.Abs(got[0].Score-0.8) > 1e-6 {
		t.Errorf("score = %v, want the raw cosine 0.8", got[0].Score)
	}
	if got := Rank(embedding.Vector{1, 0}, points, 3, 0.3); len(got) != 2 {
		t.Errorf("expected both neighbours at 0.3, got %+v", got)
	}
}

func TestSummarize(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	points := []Point{
		{SpeakerID: "b", SpeakerName: "Bob", CreatedAt: t0.Add(time.Hour)},
		{SpeakerID: "a", SpeakerName: "Alice", CreatedAt: t0},
		{SpeakerID: "b", SpeakerName: "Bob", CreatedAt: t0},
	}
	got := Summarize(points)
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("unexpected order %+v", got)
	}
	if got[0].EmbeddingCount != 2 || !got[0].CreatedAt.Equal(t0) {
		t.Errorf("bob = %+v", got[0])
	}
}

func TestAppendRequest_Validate(t *testing.T) {
	tests := []struct {
		name string
		req  AppendRequest
		want errors.ErrorCode
	}{
		{"ok", AppendRequest{Name: "Alice", Vectors: []embedding.Vector{{1}}}, ""},
		{"existing id", AppendRequest{SpeakerID: "x", Vectors: []embedding.Vector{{1}}}, ""},
		{"no vectors", AppendRequest{Name: "Alice"}, errors.ErrCodeValidation},
		{"no name", AppendRequest{Vectors: []embedding.Vector{{1}}}, errors.ErrCodeMissingField},
		{"empty vector", AppendRequest{Name: "A", Vectors: []embedding.Vector{{}}}, errors.ErrCodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.want == "" {
				if err != nil {
					t.Errorf("unexpected error %v", err)
				}
				return
			}
			if !errors.HasCode(err, tt.want) {
				t.Errorf("expected %s, got %v", tt.want, err)
			}
		})
	}
}
