package transcript

import (
	"fmt"
	"strings"

	"github.com/kbukum/speakerkit/errors"
)

// Tokens returns the word-level tokens of tr: top-level words first, then
// words nested inside segments. When neither exists the segments themselves
// are returned as pseudo-tokens and segmentLevel is true.
func (tr Transcription) Tokens() (tokens []Token, segmentLevel bool) {
	if len(tr.Words) > 0 {
		return tr.Words, false
	}
	for _, seg := range tr.Segments {
		tokens = append(tokens, seg.Words...)
	}
	if len(tokens) > 0 {
		return tokens, false
	}
	tokens = make([]Token, 0, len(tr.Segments))
	for _, seg := range tr.Segments {
		tokens = append(tokens, Token{Text: seg.Text, Start: seg.Start, End: seg.End})
	}
	return tokens, len(tokens) > 0
}

// Merge produces the speaker-attributed transcript for one transcription and
// one diarization result. ids may be nil; when present, turns are annotated
// by label lookup only. A span with a negative start or an end before its
// start in either input fails with VALIDATION_ERROR.
func Merge(tr Transcription, dr Diarization, ids IdentityMap) (*Transcript, error) {
	tokens, _ := tr.Tokens()
	if err := validateInputs(tokens, dr.Segments); err != nil {
		return nil, err
	}

	duration := tr.Duration
	if duration <= 0 {
		duration = dr.AudioDuration
	}

	if len(dr.Segments) == 0 {
		return mergeWithoutDiarization(tr, tokens, duration, ids), nil
	}

	// The Exclusive flag comes from the producer; overlaps are checked regardless.
	timeline := dr.Segments
	if !dr.Exclusive || !IsExclusive(dr.Segments) {
		timeline = Exclusivize(dr.Segments)
	}

	turns := GroupTurns(Assign(tokens, timeline))
	for i := range turns {
		ids.Annotate(&turns[i])
	}

	numSpeakers := dr.NumSpeakers
	if numSpeakers <= 0 {
		numSpeakers = CountSpeakers(turns)
	}

	return &Transcript{
		Text:        fullText(tr.Text, turns),
		Turns:       turns,
		NumSpeakers: numSpeakers,
		Duration:    duration,
		Language:    tr.Language,
	}, nil
}

func mergeWithoutDiarization(tr Transcription, tokens []Token, duration float64, ids IdentityMap) *Transcript {
	text := strings.TrimSpace(tr.Text)
	if text == "" {
		text = joinTokens(tokens)
	}
	turn := Turn{
		Speaker:  NoDiarizationSpeaker,
		Start:    0,
		End:      duration,
		Duration: RoundMillis(duration),
		Text:     text,
	}
	ids.Annotate(&turn)
	return &Transcript{
		Text:        text,
		Turns:       []Turn{turn},
		NumSpeakers: 1,
		Duration:    duration,
		Language:    tr.Language,
	}
}

// CountSpeakers returns the number of distinct labels among turns.
func CountSpeakers(turns []Turn) int {
	seen := make(map[string]struct{}, len(turns))
	for _, t := range turns {
		seen[t.Speaker] = struct{}{}
	}
	return len(seen)
}

func fullText(reported string, turns []Turn) string {
	if text := strings.TrimSpace(reported); text != "" {
		return text
	}
	parts := make([]string, 0, len(turns))
	for _, t := range turns {
		parts = append(parts, t.Text)
	}
	return strings.Join(parts, " ")
}

func joinTokens(tokens []Token) string {
	parts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if w := strings.TrimSpace(tok.Text); w != "" {
			parts = append(parts, w)
		}
	}
	return strings.Join(parts, " ")
}

func validateInputs(tokens []Token, segments []Segment) error {
	for i, tok := range tokens {
		if err := tok.Span().Validate(); err != nil {
			return annotate(err, "token", i)
		}
	}
	for i, seg := range segments {
		if err := seg.Span().Validate(); err != nil {
			return annotate(err, "segment", i)
		}
	}
	return nil
}

func annotate(err error, kind string, index int) error {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.WithDetail("source", fmt.Sprintf("%s[%d]", kind, index))
	}
	return err
}
