package diarization

import (
	"testing"

	"github.com/kbukum/speakerkit/errors"
)

func TestHints_Validate(t *testing.T) {
	tests := []struct {
		name    string
		hints   Hints
		wantErr bool
	}{
		{"empty", Hints{}, false},
		{"exact", Hints{NumSpeakers: 2}, false},
		{"bounds", Hints{MinSpeakers: 1, MaxSpeakers: 3}, false},
		{"min only", Hints{MinSpeakers: 4}, false},
		{"negative", Hints{NumSpeakers: -1}, true},
		{"inverted", Hints{MinSpeakers: 3, MaxSpeakers: 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.hints.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.HasCode(err, errors.ErrCodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}
