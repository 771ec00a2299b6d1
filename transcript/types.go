package transcript

import (
	"fmt"
	"math"

	"github.com/kbukum/speakerkit/errors"
)

const (
	// SpeakerUnknown labels tokens that no segment covers within AlignTolerance.
	SpeakerUnknown = "SPEAKER_UNKNOWN"
	// NoDiarizationSpeaker labels the single turn produced when diarization
	// returned no segments.
	NoDiarizationSpeaker = "SPEAKER_00"
	// AlignTolerance is the largest gap, in seconds, between a timestamp and
	// the nearest segment for which that segment's speaker is still used.
	AlignTolerance = 0.5
)

// Span is a time range in seconds.
type Span struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns End - Start.
func (s Span) Duration() float64 { return s.End - s.Start }

// Midpoint returns the center of the span.
func (s Span) Midpoint() float64 { return (s.Start + s.End) / 2 }

// Validate reports a VALIDATION_ERROR unless 0 <= Start <= End.
func (s Span) Validate() error {
	switch {
	case math.IsNaN(s.Start) || math.IsNaN(s.End):
		return errors.ValidationFailed("span has a NaN bound")
	case s.Start < 0:
		return errors.ValidationFailed(fmt.Sprintf("span starts before zero (start=%g)", s.Start))
	case s.End < s.Start:
		return errors.ValidationFailed(fmt.Sprintf("span ends before it starts (start=%g, end=%g)", s.Start, s.End))
	}
	return nil
}

// Segment is one diarization turn. Speaker is a per-run cluster label, not a
// durable identity.
type Segment struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// Span returns the segment's time range.
func (s Segment) Span() Span { return Span{Start: s.Start, End: s.End} }

// Duration returns the segment length rounded to milliseconds.
func (s Segment) Duration() float64 { return RoundMillis(s.End - s.Start) }

// Token is the smallest timestamped unit of transcribed speech.
type Token struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Span returns the token's time range.
func (t Token) Span() Span { return Span{Start: t.Start, End: t.End} }

// TaggedToken is a token with the speaker label assigned by Assign.
type TaggedToken struct {
	Token
	Speaker string `json:"speaker"`
}

// Turn is a maximal contiguous run of tokens sharing one speaker label.
// IdentifiedAs and Confidence are either both set or both nil.
type Turn struct {
	Speaker      string   `json:"speaker"`
	IdentifiedAs *string  `json:"identified_as"`
	Confidence   *float64 `json:"confidence"`
	Start        float64  `json:"start"`
	End          float64  `json:"end"`
	Duration     float64  `json:"duration"`
	Text         string   `json:"text"`
}

// Identity is the identification result for one diarization label.
type Identity struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// IdentityMap maps diarization labels to identities. Labels without a match
// are absent.
type IdentityMap map[string]Identity

// Annotate sets IdentifiedAs and Confidence on turn when its label is mapped.
func (m IdentityMap) Annotate(turn *Turn) {
	id, ok := m[turn.Speaker]
	if !ok {
		return
	}
	name, conf := id.Name, id.Confidence
	turn.IdentifiedAs = &name
	turn.Confidence = &conf
}

// TextSegment is a coarse transcription segment, optionally carrying its
// own word timings.
type TextSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Token `json:"words,omitempty"`
}

// Transcription is the transcription producer output consumed by Merge.
type Transcription struct {
	Text     string        `json:"text"`
	Words    []Token       `json:"words,omitempty"`
	Segments []TextSegment `json:"segments,omitempty"`
	Duration float64       `json:"duration"`
	Language string        `json:"language,omitempty"`
}

// Diarization is the diarization producer output consumed by Merge.
type Diarization struct {
	Segments      []Segment `json:"segments"`
	NumSpeakers   int       `json:"num_speakers"`
	AudioDuration float64   `json:"audio_duration"`
	Exclusive     bool      `json:"exclusive"`
}

// Transcript is the merged, speaker-attributed result.
type Transcript struct {
	Text        string  `json:"text"`
	Turns       []Turn  `json:"segments"`
	NumSpeakers int     `json:"num_speakers"`
	Duration    float64 `json:"duration"`
	Language    string  `json:"language,omitempty"`
}
