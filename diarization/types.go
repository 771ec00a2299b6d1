package diarization

import "github.com/kbukum/speakerkit/validation"

// Hints constrain the number of speakers the diarizer may find. Zero
// values mean no constraint.
type Hints struct {
	NumSpeakers int `json:"num_speakers,omitempty" validate:"gte=0"`
	MinSpeakers int `json:"min_speakers,omitempty" validate:"gte=0"`
	MaxSpeakers int `json:"max_speakers,omitempty" validate:"omitempty,gte=0,gtefield=MinSpeakers"`
}

// Validate rejects negative counts and a max_speakers below min_speakers
// with INVALID_INPUT.
func (h Hints) Validate() error {
	return validation.Validate(h)
}

// Request holds parameters for a diarization call.
type Request struct {
	// AudioPath is the audio file to diarize.
	AudioPath string
	Hints
	// Exclusive asks the producer for non-overlapping segments.
	Exclusive bool
}
