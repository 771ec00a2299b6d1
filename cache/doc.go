// Package cache memoizes transcription results.
//
// Transcribing the same recording with the same model and language yields
// the same result, and it is by far the slowest producer call. Results are
// keyed by the BLAKE3 digest of the audio bytes plus the model and language,
// and held in process memory or in Redis.
package cache
