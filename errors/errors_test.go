package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		status    int
		retryable bool
	}{
		{"UpstreamUnavailable", UpstreamUnavailable("whisper", nil), ErrCodeUpstreamUnavailable, http.StatusBadGateway, true},
		{"UpstreamTimeout", UpstreamTimeout("pyannote", nil), ErrCodeUpstreamTimeout, http.StatusGatewayTimeout, true},
		{"ValidationFailed", ValidationFailed("end before start"), ErrCodeValidation, http.StatusUnprocessableEntity, false},
		{"InvalidInput", InvalidInput("file", "bad"), ErrCodeInvalidInput, http.StatusBadRequest, false},
		{"Validation", Validation("bad input"), ErrCodeInvalidInput, http.StatusBadRequest, false},
		{"MissingField", MissingField("speaker_name"), ErrCodeMissingField, http.StatusBadRequest, false},
		{"PayloadTooLarge", PayloadTooLarge(10), ErrCodePayloadTooLarge, http.StatusRequestEntityTooLarge, false},
		{"NotFound", NotFound("speaker", "1"), ErrCodeNotFound, http.StatusNotFound, false},
		{"Unauthorized", Unauthorized(""), ErrCodeUnauthorized, http.StatusUnauthorized, false},
		{"Forbidden", Forbidden("missing scope"), ErrCodeForbidden, http.StatusForbidden, false},
		{"Internal", Internal(nil), ErrCodeInternal, http.StatusInternalServerError, false},
		{"DatabaseError", DatabaseError(nil), ErrCodeDatabaseError, http.StatusInternalServerError, true},
		{"unknown code", New("TEAPOT", "short and stout"), "TEAPOT", http.StatusInternalServerError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code || tt.err.HTTPStatus != tt.status || tt.err.Retryable != tt.retryable {
				t.Errorf("got (%s, %d, %t), want (%s, %d, %t)",
					tt.err.Code, tt.err.HTTPStatus, tt.err.Retryable, tt.code, tt.status, tt.retryable)
			}
		})
	}
}

func TestDetails(t *testing.T) {
	if _, ok := NotFound("speaker", "").Details["id"]; ok {
		t.Error("empty id should be left out")
	}
	if got := NotFound("speaker", "abc").Details; got["id"] != "abc" || got["resource"] != "speaker" {
		t.Errorf("details = %v", got)
	}
	if got := InvalidInput("", "bad").Details; len(got) != 0 {
		t.Errorf("empty field should add no details, got %v", got)
	}
	if got := UpstreamTimeout("qdrant", nil).WithDetail("service", "qdrant-2").Details["service"]; got != "qdrant-2" {
		t.Errorf("WithDetail should overwrite, got %v", got)
	}
}

func TestError_String(t *testing.T) {
	if got := Forbidden("missing scope").Error(); got != "FORBIDDEN: missing scope" {
		t.Errorf("Error() = %q", got)
	}
	err := NotFound("speaker", "1").WithCause(fmt.Errorf("root cause"))
	if !strings.Contains(err.Error(), "(cause: root cause)") {
		t.Errorf("Error() = %q", err.Error())
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestFromUpstream(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
	}{
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), ErrCodeUpstreamTimeout},
		{"net timeout", timeoutErr{}, ErrCodeUpstreamTimeout},
		{"refused", fmt.Errorf("connection refused"), ErrCodeUpstreamUnavailable},
		{"app error passthrough", ValidationFailed("bad span"), ErrCodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromUpstream("qdrant", tt.err); got.Code != tt.code {
				t.Errorf("code = %s, want %s", got.Code, tt.code)
			}
		})
	}
	if FromUpstream("qdrant", nil) != nil {
		t.Error("FromUpstream(nil) should return nil")
	}

	cause := fmt.Errorf("dial tcp: refused")
	got := FromUpstream("wespeaker", cause)
	if !stderrors.Is(got, cause) || got.Details["service"] != "wespeaker" {
		t.Errorf("got %v with details %v", got, got.Details)
	}
}

func TestToResponse(t *testing.T) {
	body, err := json.Marshal(UpstreamUnavailable("qdrant", fmt.Errorf("secret dsn")).ToResponse())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"error":{"code":"UPSTREAM_UNAVAILABLE","message":"The qdrant service is unavailable.","retryable":true,"details":{"service":"qdrant"}}}`
	if string(body) != want {
		t.Errorf("body = %s", body)
	}
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("wrap: %w", Internal(nil))
	got, ok := AsAppError(wrapped)
	if !ok || got.Code != ErrCodeInternal {
		t.Fatalf("AsAppError = %v, %t", got, ok)
	}
	if !HasCode(wrapped, ErrCodeInternal) || HasCode(wrapped, ErrCodeNotFound) {
		t.Error("HasCode mismatch")
	}
	if _, ok := AsAppError(fmt.Errorf("plain")); ok {
		t.Error("plain errors are not AppErrors")
	}
}
