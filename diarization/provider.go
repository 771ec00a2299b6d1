package diarization

import (
	"context"

	"github.com/kbukum/speakerkit/provider"
	"github.com/kbukum/speakerkit/transcript"
)

// Provider is the interface that diarization backends implement.
type Provider interface {
	provider.Provider

	// Diarize returns the labeled segments of the requested audio.
	Diarize(ctx context.Context, req Request) (*transcript.Diarization, error)
}
