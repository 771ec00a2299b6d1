package errors

import "net/http"

// ErrorCode is the machine-readable code clients switch on.
type ErrorCode string

// Codes a producer, the store or the database can fail with.
const (
	ErrCodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrCodeUpstreamTimeout     ErrorCode = "UPSTREAM_TIMEOUT"
	ErrCodeDatabaseError       ErrorCode = "DATABASE_ERROR"
)

// Codes for bad data, whether it came from the caller or from a
// collaborator.
const (
	// ErrCodeValidation is structurally invalid collaborator data, such as a
	// span whose end precedes its start.
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField    ErrorCode = "MISSING_FIELD"
	ErrCodePayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE"
)

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
)

type codeInfo struct {
	status    int
	retryable bool
}

var catalog = map[ErrorCode]codeInfo{
	ErrCodeUpstreamUnavailable: {http.StatusBadGateway, true},
	ErrCodeUpstreamTimeout:     {http.StatusGatewayTimeout, true},
	ErrCodeDatabaseError:       {http.StatusInternalServerError, true},
	ErrCodeValidation:          {http.StatusUnprocessableEntity, false},
	ErrCodeInvalidInput:        {http.StatusBadRequest, false},
	ErrCodeMissingField:        {http.StatusBadRequest, false},
	ErrCodePayloadTooLarge:     {http.StatusRequestEntityTooLarge, false},
	ErrCodeNotFound:            {http.StatusNotFound, false},
	ErrCodeUnauthorized:        {http.StatusUnauthorized, false},
	ErrCodeForbidden:           {http.StatusForbidden, false},
	ErrCodeInternal:            {http.StatusInternalServerError, false},
}

// HTTPStatus is the status code responses carry for c. Unknown codes map
// to 500.
func (c ErrorCode) HTTPStatus() int {
	if info, ok := catalog[c]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// Retryable reports whether a caller may retry an operation that failed
// with c. speakerkit itself never retries.
func (c ErrorCode) Retryable() bool {
	return catalog[c].retryable
}
