// Package qdrant is a speakerdb.Store on the Qdrant vector database, spoken
// to over its REST API.
//
// Each embedding is one point with payload speaker_id, speaker_name,
// audio_source and created_at. The collection uses Cosine distance; scores
// are mapped from Qdrant's [-1, 1] cosine to the [0, 1] similarity used by
// the rest of speakerkit.
package qdrant

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/speakerkit/embedding"
	"github.com/kbukum/speakerkit/errors"
	"github.com/kbukum/speakerkit/httpclient"
	"github.com/kbukum/speakerkit/httpclient/rest"
	"github.com/kbukum/speakerkit/logger"
	"github.com/kbukum/speakerkit/speakerdb"
)

// BackendName is the registry name of this backend.
const BackendName = "qdrant"

// Store implements speakerdb.Store.
type Store struct {
	cfg    Config
	client *rest.Client
	log    *logger.Logger
	now    func() time.Time
}

var _ speakerdb.Store = (*Store)(nil)

// New creates a store. Init must run before use to ensure the collection.
func New(cfg Config, log *logger.Logger) (*Store, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}

	hc := httpclient.Config{
		Name:    BackendName,
		BaseURL: cfg.BaseURL(),
		Timeout: cfg.Timeout,
		TLS:     &cfg.TLS,
	}
	if cfg.APIKey != "" {
		hc.Auth = httpclient.APIKeyAuth(cfg.APIKey, "api-key")
	}
	if cfg.CircuitBreaker {
		hc.CircuitBreaker = httpclient.DefaultCircuitBreakerConfig(BackendName)
	}
	client, err := rest.New(hc)
	if err != nil {
		return nil, err
	}
	return &Store{cfg: cfg, client: client, log: log.WithComponent("qdrant"), now: time.Now}, nil
}

// Name returns the backend name.
func (s *Store) Name() string { return BackendName }

// IsAvailable reports whether Qdrant answers.
func (s *Store) IsAvailable(ctx context.Context) bool { return s.Ping(ctx) == nil }

// Ping lists collections.
func (s *Store) Ping(ctx context.Context) error {
	return upstream(s.client.Get(ctx, "/collections", nil))
}

// Close releases idle connections.
func (s *Store) Close(ctx context.Context) error {
	return s.client.HTTP().Close(ctx)
}

func (s *Store) path(suffix string) string {
	return "/collections/" + url.PathEscape(s.cfg.Collection) + suffix
}

// Init creates the collection with Cosine distance and keyword indexes on
// speaker_id and speaker_name unless it already exists.
func (s *Store) Init(ctx context.Context) error {
	err := s.client.Get(ctx, s.path(""), nil)
	if err == nil {
		s.log.Info("Collection already exists", map[string]interface{}{"collection": s.cfg.Collection})
		return nil
	}
	if !httpclient.IsNotFound(err) {
		return upstream(err)
	}

	s.log.Info("Creating collection", map[string]interface{}{
		"collection": s.cfg.Collection,
		"dimension":  s.cfg.Dimension,
	})
	body := createCollection{Vectors: vectorParams{Size: s.cfg.Dimension, Distance: "Cosine"}}
	if err := s.client.Put(ctx, s.path(""), body, nil); err != nil {
		return upstream(err)
	}
	for _, field := range []string{keySpeakerID, keySpeakerName} {
		idx := createIndex{FieldName: field, FieldSchema: "keyword"}
		if err := s.client.Put(ctx, s.path("/index"), idx, nil, wait); err != nil {
			return upstream(err)
		}
	}
	return nil
}

// Search runs a nearest-neighbor query.
func (s *Store) Search(ctx context.Context, vector embedding.Vector, topK int, threshold float64) ([]speakerdb.Candidate, error) {
	if err := s.checkDimension(vector); err != nil {
		return nil, err
	}
	req := queryPoints{
		Query:          vector,
		Limit:          topK,
		ScoreThreshold: &threshold,
		WithPayload:    true,
	}
	var resp envelope[queryResult]
	if err := s.client.Post(ctx, s.path("/points/query"), req, &resp); err != nil {
		return nil, upstream(err)
	}

	out := make([]speakerdb.Candidate, 0, len(resp.Result.Points))
	for _, p := range resp.Result.Points {
		out = append(out, speakerdb.Candidate{
			SpeakerID:   p.Payload.SpeakerID,
			SpeakerName: p.Payload.SpeakerName,
			Score:       max(p.Score, 0),
			AudioSource: p.Payload.AudioSource,
			CreatedAt:   p.Payload.createdAt(),
		})
	}
	return out, nil
}

// Append upserts one point per vector.
func (s *Store) Append(ctx context.Context, req speakerdb.AppendRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	for _, v := range req.Vectors {
		if err := s.checkDimension(v); err != nil {
			return "", err
		}
	}

	id, name := req.SpeakerID, req.Name
	if id == "" {
		id = uuid.NewString()
	} else {
		existing, err := s.Get(ctx, id)
		if err != nil {
			return "", err
		}
		name = existing.Name
	}

	created := s.now().UTC().Format(time.RFC3339Nano)
	points := make([]point, len(req.Vectors))
	for i, v := range req.Vectors {
		points[i] = point{
			ID:     uuid.NewString(),
			Vector: v,
			Payload: payload{
				SpeakerID:   id,
				SpeakerName: name,
				AudioSource: req.AudioSource,
				CreatedAt:   created,
			},
		}
	}
	if err := s.client.Put(ctx, s.path("/points"), upsertPoints{Points: points}, nil, wait); err != nil {
		return "", upstream(err)
	}
	return id, nil
}

// List scrolls through every point and folds them into speakers.
func (s *Store) List(ctx context.Context) ([]speakerdb.Speaker, error) {
	points, err := s.scroll(ctx, nil, 0)
	if err != nil {
		return nil, err
	}
	speakers := speakerdb.Summarize(points)
	if speakers == nil {
		speakers = []speakerdb.Speaker{}
	}
	return speakers, nil
}

// Get reads one point of the speaker and counts the rest.
func (s *Store) Get(ctx context.Context, id string) (*speakerdb.Speaker, error) {
	points, err := s.scroll(ctx, speakerFilter(id), 1)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, speakerdb.NotFound(id)
	}
	count, err := s.count(ctx, speakerFilter(id))
	if err != nil {
		return nil, err
	}
	return &speakerdb.Speaker{
		ID:             id,
		Name:           points[0].SpeakerName,
		EmbeddingCount: count,
		CreatedAt:      points[0].CreatedAt,
	}, nil
}

// Delete removes every point of the speaker.
func (s *Store) Delete(ctx context.Context, id string) error {
	count, err := s.count(ctx, speakerFilter(id))
	if err != nil {
		return err
	}
	if count == 0 {
		return speakerdb.NotFound(id)
	}
	return upstream(s.client.Post(ctx, s.path("/points/delete"), deleteRequest{Filter: speakerFilter(id)}, nil, wait))
}

// Stats reads the collection info and counts speakers.
func (s *Store) Stats(ctx context.Context) (*speakerdb.Stats, error) {
	var resp envelope[collectionInfo]
	if err := s.client.Get(ctx, s.path(""), &resp); err != nil {
		return nil, upstream(err)
	}
	speakers, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return &speakerdb.Stats{
		Backend:    BackendName,
		Collection: s.cfg.Collection,
		Points:     resp.Result.PointsCount,
		Speakers:   len(speakers),
		Status:     resp.Result.Status,
	}, nil
}

// scroll pages through points matching f. A positive limit stops after
// that many points.
func (s *Store) scroll(ctx context.Context, f *filter, limit int) ([]speakerdb.Point, error) {
	page := s.cfg.ScrollPage
	if limit > 0 && limit < page {
		page = limit
	}

	var out []speakerdb.Point
	var offset any
	for {
		req := scrollRequest{Limit: page, Offset: offset, Filter: f, WithPayload: true}
		var resp envelope[scrollResult]
		if err := s.client.Post(ctx, s.path("/points/scroll"), req, &resp); err != nil {
			return nil, upstream(err)
		}
		for _, p := range resp.Result.Points {
			out = append(out, speakerdb.Point{
				SpeakerID:   p.Payload.SpeakerID,
				SpeakerName: p.Payload.SpeakerName,
				AudioSource: p.Payload.AudioSource,
				CreatedAt:   p.Payload.createdAt(),
			})
		}
		offset = resp.Result.NextPageOffset
		if offset == nil || (limit > 0 && len(out) >= limit) {
			return out, nil
		}
	}
}

func (s *Store) count(ctx context.Context, f *filter) (int, error) {
	var resp envelope[countResult]
	if err := s.client.Post(ctx, s.path("/points/count"), countRequest{Filter: f, Exact: true}, &resp); err != nil {
		return 0, upstream(err)
	}
	return resp.Result.Count, nil
}

func (s *Store) checkDimension(v embedding.Vector) error {
	if len(v) != s.cfg.Dimension {
		return errors.ValidationFailed(fmt.Sprintf("embedding has %d dimensions, collection expects %d", len(v), s.cfg.Dimension))
	}
	return nil
}

// wait makes writes return once they are applied.
var wait = rest.Query("wait", "true")

func upstream(err error) error {
	if err == nil {
		return nil
	}
	return httpclient.Upstream(BackendName, err)
}
