package httpclient

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"

	"github.com/kbukum/speakerkit/errors"
)

// Kind classifies a failed call.
type Kind string

const (
	KindTimeout     Kind = "timeout"
	KindConnection  Kind = "connection"
	KindAuth        Kind = "auth"
	KindNotFound    Kind = "not_found"
	KindRateLimit   Kind = "rate_limit"
	KindRejected    Kind = "rejected"
	KindServer      Kind = "server"
	KindCircuitOpen Kind = "circuit_open"
)

// retryable lists the kinds a later attempt may cure.
var retryable = map[Kind]bool{
	KindTimeout:     true,
	KindConnection:  true,
	KindRateLimit:   true,
	KindServer:      true,
	KindCircuitOpen: true,
}

// Error is returned for transport failures and non-2xx responses.
type Error struct {
	Kind Kind
	// Status is zero when no response was received.
	Status  int
	Message string
	Body    []byte
	Err     error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("httpclient: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("httpclient: %s (HTTP %d): %s", e.Kind, e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the same call may succeed later.
func (e *Error) Retryable() bool { return retryable[e.Kind] }

// transportError classifies a failure that produced no response.
func transportError(ctx context.Context, err error) *Error {
	kind := KindConnection
	var netErr net.Error
	if ctx.Err() != nil || stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &netErr) && netErr.Timeout()) {
		kind = KindTimeout
	}
	return &Error{Kind: kind, Message: err.Error(), Err: err}
}

func requestError(format string, args ...any) *Error {
	return &Error{Kind: KindRejected, Message: fmt.Sprintf(format, args...)}
}

// statusError returns nil for 2xx and a classified *Error otherwise.
func statusError(status int, body []byte) *Error {
	if status >= 200 && status < 300 {
		return nil
	}
	var kind Kind
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		kind = KindAuth
	case status == http.StatusNotFound:
		kind = KindNotFound
	case status == http.StatusTooManyRequests:
		kind = KindRateLimit
	case status >= 400 && status < 500:
		kind = KindRejected
	default:
		kind = KindServer
	}
	return &Error{Kind: kind, Status: status, Message: excerpt(status, body), Body: body}
}

// excerpt keeps the head of an error body. Producers usually answer with a
// FastAPI {"detail": "..."} document.
func excerpt(status int, body []byte) string {
	const limit = 200
	msg := fmt.Sprintf("HTTP %d", status)
	if len(body) == 0 {
		return msg
	}
	if len(body) > limit {
		return msg + ": " + string(body[:limit]) + "..."
	}
	return msg + ": " + string(body)
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsTimeout reports a call that ran out of time.
func IsTimeout(err error) bool { return KindOf(err) == KindTimeout }

// IsNotFound reports a 404.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsRetryable reports whether err is an *Error a later attempt may cure.
func IsRetryable(err error) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Retryable()
}

// Upstream converts a failed call to service into UPSTREAM_TIMEOUT or
// UPSTREAM_UNAVAILABLE. Application errors pass through unchanged and the
// HTTP status, when there was one, is kept as a detail.
func Upstream(service string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}

	appErr := errors.FromUpstream(service, err)
	if IsTimeout(err) {
		appErr = errors.UpstreamTimeout(service, err)
	}
	var e *Error
	if stderrors.As(err, &e) && e.Status > 0 {
		appErr = appErr.WithDetail("status", e.Status)
	}
	return appErr
}
