// Package transcript aligns a transcription with a diarization timeline and
// produces speaker-attributed turns.
//
// The pipeline is:
//
//	Exclusivize(segments)     -> sorted, non-overlapping timeline
//	Assign(tokens, timeline)  -> tokens tagged by the speaker at their midpoint
//	GroupTurns(tagged)        -> contiguous single-speaker turns
//
// Merge runs the whole pipeline over one transcription and one diarization
// result and optionally annotates turns with identities resolved elsewhere.
// Everything here is pure and safe for concurrent use.
package transcript
