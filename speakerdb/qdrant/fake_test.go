package qdrant

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
)

// fakeQdrant implements the slice of the Qdrant REST API the store uses.
type fakeQdrant struct {
	mu          sync.Mutex
	collections map[string][]point
	indexes     []string
	dimension   map[string]int
	requests    []string
}

func newFakeQdrant(t *testing.T) (*fakeQdrant, *httptest.Server) {
	t.Helper()
	f := &fakeQdrant{collections: map[string][]point{}, dimension: map[string]int{}}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func reply(w http.ResponseWriter, status int, result any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"result": result, "status": "ok", "time": 0.001})
}

func (f *fakeQdrant) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	if r.URL.Path == "/collections" {
		reply(w, http.StatusOK, map[string]any{"collections": []any{}})
		return
	}

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/collections/"), "/")
	name := parts[0]
	rest := strings.Join(parts[1:], "/")
	points, exists := f.collections[name]

	if rest == "" && r.Method == http.MethodPut {
		var body createCollection
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.collections[name] = nil
		f.dimension[name] = body.Vectors.Size
		reply(w, http.StatusOK, true)
		return
	}
	if !exists {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":{"error":"Not found: Collection doesn't exist!"}}`))
		return
	}

	switch {
	case rest == "" && r.Method == http.MethodGet:
		reply(w, http.StatusOK, collectionInfo{Status: "green", PointsCount: len(points), VectorsCount: len(points)})

	case rest == "index":
		var body createIndex
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.indexes = append(f.indexes, body.FieldName+":"+body.FieldSchema)
		reply(w, http.StatusOK, map[string]any{"status": "completed"})

	case rest == "points" && r.Method == http.MethodPut:
		var body upsertPoints
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.collections[name] = append(points, body.Points...)
		reply(w, http.StatusOK, map[string]any{"status": "completed"})

	case rest == "points/query":
		var body queryPoints
		_ = json.NewDecoder(r.Body).Decode(&body)
		var hits []scoredPoint
		for _, p := range points {
			score := cosine(body.Query, p.Vector)
			if body.ScoreThreshold != nil && score < *body.ScoreThreshold {
				continue
			}
			hits = append(hits, scoredPoint{ID: p.ID, Score: score, Payload: p.Payload})
		}
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
		if len(hits) > body.Limit {
			hits = hits[:body.Limit]
		}
		reply(w, http.StatusOK, queryResult{Points: hits})

	case rest == "points/scroll":
		var body scrollRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		matched := filterPoints(points, body.Filter)
		start := 0
		if off, ok := body.Offset.(float64); ok {
			start = int(off)
		}
		end := start + body.Limit
		var next any
		if end < len(matched) {
			next = end
		} else {
			end = len(matched)
		}
		page := make([]point, 0, end-start)
		for _, p := range matched[start:end] {
			page = append(page, point{ID: p.ID, Payload: p.Payload})
		}
		reply(w, http.StatusOK, map[string]any{"points": page, "next_page_offset": next})

	case rest == "points/count":
		var body countRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		reply(w, http.StatusOK, countResult{Count: len(filterPoints(points, body.Filter))})

	case rest == "points/delete":
		var body deleteRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		var kept []point
		for _, p := range points {
			if !matches(p, body.Filter) {
				kept = append(kept, p)
			}
		}
		f.collections[name] = kept
		reply(w, http.StatusOK, map[string]any{"status": "completed"})

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func filterPoints(points []point, f *filter) []point {
	var out []point
	for _, p := range points {
		if matches(p, f) {
			out = append(out, p)
		}
	}
	return out
}

func matches(p point, f *filter) bool {
	if f == nil {
		return true
	}
	for _, c := range f.Must {
		if c.Key == keySpeakerID && p.Payload.SpeakerID != c.Match.Value {
			return false
		}
	}
	return true
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
