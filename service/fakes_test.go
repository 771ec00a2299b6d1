package service

import (
	"context"
	"sync"

	"github.com/kbukum/speakerkit/diarization"
	"github.com/kbukum/speakerkit/embedding"
	"github.com/kbukum/speakerkit/transcript"
	"github.com/kbukum/speakerkit/transcription"
)

type fakeDiarizer struct {
	mu       sync.Mutex
	result   transcript.Diarization
	err      error
	down     bool
	requests []diarization.Request
}

func (f *fakeDiarizer) Name() string                       { return "fake-diarizer" }
func (f *fakeDiarizer) IsAvailable(_ context.Context) bool { return !f.down }

func (f *fakeDiarizer) Diarize(_ context.Context, req diarization.Request) (*transcript.Diarization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	out := f.result
	out.Segments = append([]transcript.Segment(nil), f.result.Segments...)
	out.Exclusive = req.Exclusive
	return &out, nil
}

func (f *fakeDiarizer) lastRequest() diarization.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type fakeTranscriber struct {
	mu     sync.Mutex
	result transcript.Transcription
	err    error
	calls  int
}

func (f *fakeTranscriber) Name() string                       { return "fake-transcriber" }
func (f *fakeTranscriber) IsAvailable(_ context.Context) bool { return true }
func (f *fakeTranscriber) Model() string                      { return "fake-model" }

func (f *fakeTranscriber) Transcribe(_ context.Context, _ transcription.Request) (*transcript.Transcription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := f.result
	return &out, nil
}

// fakeEmbedder returns whole for requests without a span and byStart[span.Start]
// otherwise.
type fakeEmbedder struct {
	mu      sync.Mutex
	whole   embedding.Vector
	byStart map[float64]embedding.Vector
	err     error
	calls   int
}

func (f *fakeEmbedder) Name() string                       { return "fake-embedder" }
func (f *fakeEmbedder) IsAvailable(_ context.Context) bool { return true }

func (f *fakeEmbedder) Embed(_ context.Context, req embedding.EmbedRequest) (embedding.Vector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if req.Span == nil {
		return f.whole, nil
	}
	return f.byStart[req.Span.Start], nil
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
