// Package service holds the speakerd flows: diarize, enroll and identify
// speakers, and produce speaker-attributed transcripts.
//
// A Service is built once at startup from explicit Deps and shared by all
// requests. It owns no package state; every flow receives the staged audio
// path from the caller, which also owns the file's lifetime.
package service
