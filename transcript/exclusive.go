package transcript

import "sort"

// Exclusivize turns possibly overlapping segments into a sorted,
// non-overlapping timeline. When a segment starts inside the previously
// accepted one, the previous segment is cut at the new start and dropped if
// nothing of it remains; the later segment always keeps its full span.
// The input slice is not modified.
func Exclusivize(segments []Segment) []Segment {
	if len(segments) == 0 {
		return []Segment{}
	}

	sorted := make([]Segment, len(segments))
	copy(sorted, segments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	out := make([]Segment, 0, len(sorted))
	for _, seg := range sorted {
		if n := len(out); n > 0 {
			last := &out[n-1]
			if seg.Start < last.End {
				last.End = seg.Start
				if last.Duration() <= 0 {
					out = out[:n-1]
				}
			}
		}
		out = append(out, seg)
	}
	return out
}

// IsExclusive reports whether segments are sorted by start and pairwise
// non-overlapping.
func IsExclusive(segments []Segment) bool {
	for i := 1; i < len(segments); i++ {
		prev, cur := segments[i-1], segments[i]
		if cur.Start < prev.Start || cur.Start < prev.End {
			return false
		}
	}
	return true
}
