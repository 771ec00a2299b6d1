// Package errors provides the structured error type shared by every speakerkit
// package. Errors carry a machine-readable code, an HTTP status and a retryable
// flag so that producers, stores and HTTP handlers agree on classification.
package errors
