package provider

import "context"

// Codec translates between a domain call [I, O] and the backend call
// [BI, BO] that carries it.
type Codec[I, O, BI, BO any] struct {
	// Encode builds the backend input. An error here skips the backend.
	Encode func(ctx context.Context, input I) (BI, error)
	// Decode turns the backend output into the domain result.
	Decode func(output BO) (O, error)
	// Failure, when set, rewrites backend errors.
	Failure func(err error) error
}

// Adapt exposes backend under a new name with the domain types of codec.
// Producer clients use it to turn the generic HTTP adapter into typed
// diarize, transcribe and embed calls.
func Adapt[I, O, BI, BO any](name string, backend RequestResponse[BI, BO], codec Codec[I, O, BI, BO]) RequestResponse[I, O] {
	return &adapted[I, O, BI, BO]{name: name, backend: backend, codec: codec}
}

type adapted[I, O, BI, BO any] struct {
	name    string
	backend RequestResponse[BI, BO]
	codec   Codec[I, O, BI, BO]
}

func (a *adapted[I, O, BI, BO]) Name() string                         { return a.name }
func (a *adapted[I, O, BI, BO]) IsAvailable(ctx context.Context) bool { return a.backend.IsAvailable(ctx) }

func (a *adapted[I, O, BI, BO]) Execute(ctx context.Context, input I) (out O, err error) {
	in, err := a.codec.Encode(ctx, input)
	if err != nil {
		return out, err
	}
	raw, err := a.backend.Execute(ctx, in)
	switch {
	case err != nil && a.codec.Failure != nil:
		return out, a.codec.Failure(err)
	case err != nil:
		return out, err
	}
	return a.codec.Decode(raw)
}
