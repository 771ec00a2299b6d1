package transcription

import (
	"context"

	"github.com/kbukum/speakerkit/provider"
	"github.com/kbukum/speakerkit/transcript"
)

// Provider is the interface that transcription backends implement.
type Provider interface {
	provider.Provider

	// Transcribe sends audio for transcription and returns the result.
	Transcribe(ctx context.Context, req Request) (*transcript.Transcription, error)

	// Model returns the model used when a request does not name one.
	Model() string
}
