package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
)

// AppError is the error every speakerkit operation returns to its caller.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause records the underlying error.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets one detail.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

// New creates an error whose status and retryability follow code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Retryable:  code.Retryable(),
		HTTPStatus: code.HTTPStatus(),
	}
}

// UpstreamUnavailable reports that a producer or the similarity store
// failed or could not be reached.
func UpstreamUnavailable(service string, cause error) *AppError {
	return New(ErrCodeUpstreamUnavailable, fmt.Sprintf("The %s service is unavailable.", service)).
		WithDetail("service", service).WithCause(cause)
}

// UpstreamTimeout reports that a producer or the similarity store missed
// its deadline.
func UpstreamTimeout(service string, cause error) *AppError {
	return New(ErrCodeUpstreamTimeout, fmt.Sprintf("The %s service did not respond in time.", service)).
		WithDetail("service", service).WithCause(cause)
}

// FromUpstream classifies a failed producer call. AppErrors pass through,
// deadline and network timeouts become UPSTREAM_TIMEOUT and everything
// else becomes UPSTREAM_UNAVAILABLE.
func FromUpstream(service string, err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	var netErr net.Error
	if stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &netErr) && netErr.Timeout()) {
		return UpstreamTimeout(service, err)
	}
	return UpstreamUnavailable(service, err)
}

// ValidationFailed reports structurally invalid data from a collaborator.
func ValidationFailed(reason string) *AppError {
	return New(ErrCodeValidation, reason)
}

// InvalidInput rejects a caller-supplied field.
func InvalidInput(field, reason string) *AppError {
	e := New(ErrCodeInvalidInput, "Invalid input: "+reason)
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// Validation rejects caller input with a free-form message.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message)
}

// MissingField rejects a request without a required field.
func MissingField(field string) *AppError {
	return New(ErrCodeMissingField, "Missing required field: "+field).WithDetail("field", field)
}

// PayloadTooLarge rejects an upload above limit bytes.
func PayloadTooLarge(limit int64) *AppError {
	return New(ErrCodePayloadTooLarge, fmt.Sprintf("Upload exceeds the %d byte limit.", limit)).WithDetail("limit", limit)
}

// NotFound reports a missing resource. An empty id is left out of the
// details.
func NotFound(resource, id string) *AppError {
	e := New(ErrCodeNotFound, fmt.Sprintf("The requested %s was not found.", resource)).WithDetail("resource", resource)
	if id != "" {
		e.WithDetail("id", id)
	}
	return e
}

// Unauthorized rejects a request without valid credentials.
func Unauthorized(reason string) *AppError {
	if reason == "" {
		reason = "Authentication required."
	}
	return New(ErrCodeUnauthorized, reason)
}

// Forbidden rejects a caller that lacks a required scope.
func Forbidden(reason string) *AppError {
	return New(ErrCodeForbidden, reason)
}

// Internal hides cause behind a generic message.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred.").WithCause(cause)
}

// DatabaseError wraps a failed query.
func DatabaseError(cause error) *AppError {
	return New(ErrCodeDatabaseError, "A database error occurred. Please try again.").WithCause(cause)
}
