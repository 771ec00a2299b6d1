package speakerdb

import (
	"sort"
	"time"

	"github.com/kbukum/speakerkit/embedding"
)

// Point is one stored embedding with its identity payload. Backends without
// native vector search rank their points with Rank.
type Point struct {
	SpeakerID   string
	SpeakerName string
	AudioSource string
	CreatedAt   time.Time
	Vector      embedding.Vector
}

// Rank scores every point against query with embedding.Similarity, keeps
// those at or above threshold and returns the best topK. Equal scores keep
// storage order.
func Rank(query embedding.Vector, points []Point, topK int, threshold float64) []Candidate {
	out := make([]Candidate, 0, len(points))
	for _, p := range points {
		score := embedding.Similarity(query, p.Vector)
		if score < threshold {
			continue
		}
		out = append(out, Candidate{
			SpeakerID:   p.SpeakerID,
			SpeakerName: p.SpeakerName,
			Score:       score,
			AudioSource: p.AudioSource,
			CreatedAt:   p.CreatedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}

// Summarize folds points into one Speaker per identity, in first-seen order.
func Summarize(points []Point) []Speaker {
	index := make(map[string]int)
	var speakers []Speaker
	for _, p := range points {
		i, ok := index[p.SpeakerID]
		if !ok {
			index[p.SpeakerID] = len(speakers)
			speakers = append(speakers, Speaker{ID: p.SpeakerID, Name: p.SpeakerName, CreatedAt: p.CreatedAt})
			i = len(speakers) - 1
		}
		speakers[i].EmbeddingCount++
		if p.CreatedAt.Before(speakers[i].CreatedAt) {
			speakers[i].CreatedAt = p.CreatedAt
		}
	}
	return speakers
}
