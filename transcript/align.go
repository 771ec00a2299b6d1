package transcript

import "math"

// FindSpeakerAt returns the label of the segment containing t. When no
// segment contains t, the nearest segment wins if it lies within
// AlignTolerance; otherwise SpeakerUnknown is returned. Ties go to the
// earlier segment in the timeline.
func FindSpeakerAt(t float64, timeline []Segment) string {
	for _, seg := range timeline {
		if seg.Start <= t && t <= seg.End {
			return seg.Speaker
		}
	}

	nearest := -1
	minDistance := math.Inf(1)
	for i, seg := range timeline {
		if d := distance(t, seg); d < minDistance {
			minDistance = d
			nearest = i
		}
	}
	if nearest >= 0 && minDistance < AlignTolerance {
		return timeline[nearest].Speaker
	}
	return SpeakerUnknown
}

func distance(t float64, seg Segment) float64 {
	switch {
	case t < seg.Start:
		return seg.Start - t
	case t > seg.End:
		return t - seg.End
	default:
		return 0
	}
}

// Assign tags every token with the speaker active at its midpoint.
func Assign(tokens []Token, timeline []Segment) []TaggedToken {
	tagged := make([]TaggedToken, len(tokens))
	for i, tok := range tokens {
		tagged[i] = TaggedToken{
			Token:   tok,
			Speaker: FindSpeakerAt(tok.Span().Midpoint(), timeline),
		}
	}
	return tagged
}
