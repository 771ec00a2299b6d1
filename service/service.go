package service

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/kbukum/speakerkit/cache"
	"github.com/kbukum/speakerkit/diarization"
	"github.com/kbukum/speakerkit/embedding"
	"github.com/kbukum/speakerkit/identify"
	"github.com/kbukum/speakerkit/logger"
	"github.com/kbukum/speakerkit/observability"
	"github.com/kbukum/speakerkit/provider"
	"github.com/kbukum/speakerkit/resilience"
	"github.com/kbukum/speakerkit/speakerdb"
	"github.com/kbukum/speakerkit/transcription"
)

// DefaultWorkers bounds how many diarization labels are identified at once.
const DefaultWorkers = 4

// Models names the models behind each producer, reported by Stats.
type Models struct {
	Diarization   string `json:"diarization_model"`
	Embedding     string `json:"embedding_model"`
	Transcription string `json:"transcription_model"`
}

// Deps are the long-lived clients a Service runs on.
type Deps struct {
	Diarizer    diarization.Provider
	Transcriber transcription.Provider
	Embedder    embedding.Provider
	Store       speakerdb.Store

	// Cache is optional; nil disables transcription caching.
	Cache *cache.Transcriptions
	// Metrics is optional.
	Metrics *observability.Metrics

	Identify identify.Config
	Workers  int
	Models   Models
	Version  string
	Logger   *logger.Logger
}

// Service runs the speakerd flows.
type Service struct {
	diarizer    diarization.Provider
	transcriber transcription.Provider
	embedder    embedding.Provider
	store       speakerdb.Store
	cache       *cache.Transcriptions
	metrics     *observability.Metrics

	voter    *identify.Voter
	probe    *embedding.SegmentEmbedder
	enroll   *embedding.SegmentEmbedder
	bulkhead *resilience.Bulkhead

	models  Models
	version string
	log     *logger.Logger
}

// New validates deps and builds a Service.
func New(deps Deps) (*Service, error) {
	switch {
	case deps.Diarizer == nil:
		return nil, fmt.Errorf("service: diarizer is required")
	case deps.Transcriber == nil:
		return nil, fmt.Errorf("service: transcriber is required")
	case deps.Embedder == nil:
		return nil, fmt.Errorf("service: embedder is required")
	case deps.Store == nil:
		return nil, fmt.Errorf("service: speaker store is required")
	}

	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}
	voter, err := identify.NewVoter(deps.Store, deps.Identify, log)
	if err != nil {
		return nil, err
	}
	workers := deps.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	models := deps.Models
	if models.Transcription == "" {
		models.Transcription = deps.Transcriber.Model()
	}

	return &Service{
		diarizer:    deps.Diarizer,
		transcriber: deps.Transcriber,
		embedder:    deps.Embedder,
		store:       deps.Store,
		cache:       deps.Cache,
		metrics:     deps.Metrics,
		voter:       voter,
		probe:       embedding.NewSegmentEmbedder(deps.Embedder, identify.MinIdentifyDuration, log),
		enroll:      embedding.NewSegmentEmbedder(deps.Embedder, identify.MinEnrollDuration, log),
		bulkhead:    resilience.NewBulkhead("identify", workers),
		models:      models,
		version:     deps.Version,
		log:         log.WithComponent("service"),
	}, nil
}

// Threshold returns the default identification threshold.
func (s *Service) Threshold() float64 { return s.voter.Threshold() }

// Close releases the producers, the store and the cache.
func (s *Service) Close(ctx context.Context) error {
	return stderrors.Join(
		provider.CloseAll(ctx, s.diarizer, s.transcriber, s.embedder, s.store),
		s.cache.Close(),
	)
}
