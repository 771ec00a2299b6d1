// Package embedding defines the speaker-embedding producer contract and the
// vector helpers used for similarity scoring.
//
// An embedding is a fixed-length float vector summarizing a speaker's voice
// over an audio span. Vectors are compared with cosine similarity, clamped at
// 0 by Similarity. Inference happens in an external producer; see the
// wespeaker subpackage for the HTTP client.
package embedding
