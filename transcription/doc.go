// Package transcription defines the speech-to-text producer contract.
//
// Results are returned as transcript.Transcription with word timings when
// the producer offers them, so they feed Merge directly.
package transcription
