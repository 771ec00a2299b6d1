package embedding

import (
	"context"
	"math"

	"github.com/kbukum/speakerkit/provider"
	"github.com/kbukum/speakerkit/transcript"
)

// Vector is a speaker embedding.
type Vector []float32

// EmbedRequest asks for the embedding of AudioPath, restricted to Span when
// it is set.
type EmbedRequest struct {
	AudioPath string
	Span      *transcript.Span
}

// Provider is implemented by embedding backends.
type Provider interface {
	provider.Provider

	// Embed returns one vector for the requested audio.
	Embed(ctx context.Context, req EmbedRequest) (Vector, error)
}

// Cosine returns the cosine of the angle between a and b. Vectors of
// different length or with zero norm yield 0.
func Cosine(a, b Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Similarity is Cosine clamped at 0, the score identity stores report.
func Similarity(a, b Vector) float64 {
	return max(Cosine(a, b), 0)
}
