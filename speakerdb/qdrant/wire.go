package qdrant

import "time"

// Payload keys.
const (
	keySpeakerID   = "speaker_id"
	keySpeakerName = "speaker_name"
)

type envelope[T any] struct {
	Result T       `json:"result"`
	Status any     `json:"status"`
	Time   float64 `json:"time"`
}

type collectionInfo struct {
	Status       string `json:"status"`
	PointsCount  int    `json:"points_count"`
	VectorsCount int    `json:"vectors_count"`
}

type createCollection struct {
	Vectors vectorParams `json:"vectors"`
}

type vectorParams struct {
	Size     int    `json:"size"`
	Distance string `json:"distance"`
}

type createIndex struct {
	FieldName   string `json:"field_name"`
	FieldSchema string `json:"field_schema"`
}

type point struct {
	ID      string    `json:"id"`
	Vector  []float32 `json:"vector,omitempty"`
	Payload payload   `json:"payload"`
}

type payload struct {
	SpeakerID   string `json:"speaker_id"`
	SpeakerName string `json:"speaker_name"`
	AudioSource string `json:"audio_source,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func (p payload) createdAt() time.Time {
	t, _ := time.Parse(time.RFC3339Nano, p.CreatedAt)
	return t
}

type upsertPoints struct {
	Points []point `json:"points"`
}

type queryPoints struct {
	Query          []float32 `json:"query"`
	Limit          int       `json:"limit"`
	ScoreThreshold *float64  `json:"score_threshold,omitempty"`
	WithPayload    bool      `json:"with_payload"`
}

type scoredPoint struct {
	ID      any     `json:"id"`
	Score   float64 `json:"score"`
	Payload payload `json:"payload"`
}

type queryResult struct {
	Points []scoredPoint `json:"points"`
}

type filter struct {
	Must []condition `json:"must"`
}

type condition struct {
	Key   string     `json:"key"`
	Match matchValue `json:"match"`
}

type matchValue struct {
	Value string `json:"value"`
}

func speakerFilter(id string) *filter {
	return &filter{Must: []condition{{Key: keySpeakerID, Match: matchValue{Value: id}}}}
}

type scrollRequest struct {
	Limit       int     `json:"limit"`
	Offset      any     `json:"offset,omitempty"`
	Filter      *filter `json:"filter,omitempty"`
	WithPayload bool    `json:"with_payload"`
	WithVector  bool    `json:"with_vector"`
}

type scrollResult struct {
	Points         []point `json:"points"`
	NextPageOffset any     `json:"next_page_offset"`
}

type countRequest struct {
	Filter *filter `json:"filter,omitempty"`
	Exact  bool    `json:"exact"`
}

type countResult struct {
	Count int `json:"count"`
}

type deleteRequest struct {
	Filter *filter `json:"filter"`
}
