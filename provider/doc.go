// Package provider is the generic producer framework behind every external
// call speakerd makes.
//
// A producer is a RequestResponse[I, O]. The HTTP adapter is one for raw
// requests; Adapt maps it to typed domain calls, and middleware adds the
// ambient concerns:
//
//	diarizer := provider.Chain(
//	    provider.WithLogging[diarization.Request, *diarization.Result](log),
//	    provider.WithMetrics[diarization.Request, *diarization.Result](metrics),
//	    provider.WithTracing[diarization.Request, *diarization.Result]("speakerd"),
//	)(provider.WithResilience(pyannoteClient, cfg))
//
// Registry selects pluggable backends (speaker store, transcription cache)
// by the name given in config.
package provider
