// Package diarization defines the diarization producer contract.
//
// A diarizer splits audio into segments labeled with per-run speaker
// clusters (SPEAKER_00, SPEAKER_01, ...). Labels are not durable identities;
// see the identify package for matching them against enrolled speakers.
// Results are returned as transcript.Diarization so they feed Merge directly.
package diarization
