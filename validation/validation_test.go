package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/speakerkit/errors"
)

var audioFormats = []string{".wav", ".mp3", ".flac", ".ogg", ".m4a", ".webm"}

func TestValidatorRequired(t *testing.T) {
	if New().Required("speaker_name", "Ada").HasErrors() {
		t.Error("expected no errors for valid input")
	}
	if !New().Required("speaker_name", "").HasErrors() {
		t.Error("expected error for empty required field")
	}
	if !New().Required("speaker_name", "   ").HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorExtension(t *testing.T) {
	tests := []struct {
		filename string
		wantErr  bool
	}{
		{"meeting.wav", false},
		{"MEETING.MP3", false},
		{"clip.webm", false},
		{"notes.txt", true},
		{"noext", true},
		{"", true},
	}
	for _, tc := range tests {
		t.Run(tc.filename, func(t *testing.T) {
			got := New().Extension("file", tc.filename, audioFormats).HasErrors()
			if got != tc.wantErr {
				t.Errorf("Extension(%q) hasErrors=%v, want %v", tc.filename, got, tc.wantErr)
			}
		})
	}
}

func TestValidatorValidate(t *testing.T) {
	if New().Required("a", "x").Validate() != nil {
		t.Error("expected nil AppError without errors")
	}

	appErr := New().Required("speaker_name", "").MaxLength("source", "abcdef", 3).Validate()
	if appErr == nil {
		t.Fatal("expected AppError")
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}
	if !strings.Contains(appErr.Message, "speaker_name: is required") {
		t.Errorf("expected message to list field, got %q", appErr.Message)
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 2 {
		t.Errorf("expected 2 field errors in details, got %v", appErr.Details["fields"])
	}
}

func TestStructValidate(t *testing.T) {
	type Qdrant struct {
		Host string `mapstructure:"host" validate:"required"`
		Port int    `mapstructure:"port" validate:"gt=0,lte=65535"`
	}
	type Config struct {
		Qdrant    Qdrant  `mapstructure:"qdrant"`
		Threshold float64 `json:"similarity_threshold" validate:"gte=0,lte=1"`
	}

	if err := Validate(Config{Qdrant: Qdrant{Host: "qdrant", Port: 6333}, Threshold: 0.7}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	err := Validate(Config{Qdrant: Qdrant{Port: 0}, Threshold: 2})
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"qdrant.host: is required", "qdrant.port: must be greater than 0", "similarity_threshold"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected error to contain %q, got %q", want, msg)
		}
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := snakeCase("EmbeddingDimension"); got != "embedding_dimension" {
		t.Errorf("expected embedding_dimension, got %q", got)
	}
}

func TestStructValidate_FieldComparison(t *testing.T) {
	type hints struct {
		Min int `json:"min_speakers" validate:"gte=0"`
		Max int `json:"max_speakers" validate:"omitempty,gtefield=Min"`
	}
	if err := Validate(hints{Min: 2}); err != nil {
		t.Errorf("unset max should pass: %v", err)
	}
	err := Validate(hints{Min: 3, Max: 2})
	if err == nil || !strings.Contains(err.Error(), "max_speakers: must not be less than min") {
		t.Errorf("got %v", err)
	}
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}
