package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/kbukum/speakerkit/cache"
	"github.com/kbukum/speakerkit/component"
	"github.com/kbukum/speakerkit/diarization"
	"github.com/kbukum/speakerkit/diarization/pyannote"
	"github.com/kbukum/speakerkit/embedding"
	"github.com/kbukum/speakerkit/embedding/wespeaker"
	"github.com/kbukum/speakerkit/logger"
	"github.com/kbukum/speakerkit/observability"
	"github.com/kbukum/speakerkit/provider"
	"github.com/kbukum/speakerkit/transcript"
	"github.com/kbukum/speakerkit/transcription"
	"github.com/kbukum/speakerkit/transcription/whisper"
)

// Build opens every client cfg describes and returns a ready Service. Each
// producer call is logged, traced and, when metrics is set, measured.
func Build(ctx context.Context, cfg *Config, metrics *observability.Metrics, log *logger.Logger) (*Service, error) {
	if log == nil {
		log = logger.NewNop()
	}
	producerLog := log.WithComponent("producer")

	diarizer, err := pyannote.NewProvider(cfg.Diarization,
		provider.WithLogging[diarization.Request, *transcript.Diarization](producerLog),
		provider.WithTracing[diarization.Request, *transcript.Diarization](cfg.Name),
		provider.WithMetrics[diarization.Request, *transcript.Diarization](metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("diarization: %w", err)
	}
	transcriber, err := whisper.NewProvider(cfg.Transcription,
		provider.WithLogging[transcription.Request, *transcript.Transcription](producerLog),
		provider.WithTracing[transcription.Request, *transcript.Transcription](cfg.Name),
		provider.WithMetrics[transcription.Request, *transcript.Transcription](metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("transcription: %w", err)
	}
	embedder, err := wespeaker.New(cfg.Embedding,
		provider.WithLogging[embedding.EmbedRequest, embedding.Vector](producerLog),
		provider.WithTracing[embedding.EmbedRequest, embedding.Vector](cfg.Name),
		provider.WithMetrics[embedding.EmbedRequest, embedding.Vector](metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}

	store, err := OpenStore(ctx, cfg.Speakers, log)
	if err != nil {
		return nil, err
	}
	transcriptions, err := cache.Open(cfg.Cache, log)
	if err != nil {
		_ = provider.CloseAll(ctx, store)
		return nil, fmt.Errorf("cache: %w", err)
	}

	svc, err := New(Deps{
		Diarizer:    diarizer,
		Transcriber: transcriber,
		Embedder:    embedder,
		Store:       store,
		Cache:       transcriptions,
		Metrics:     metrics,
		Identify:    cfg.Identify,
		Workers:     cfg.Workers,
		Models: Models{
			Diarization:   cfg.Diarization.Model,
			Embedding:     cfg.Embedding.Model,
			Transcription: cfg.Transcription.Model,
		},
		Version: cfg.Version,
		Logger:  log,
	})
	if err != nil {
		return nil, stderrors.Join(err, provider.CloseAll(ctx, store), transcriptions.Close())
	}
	return svc, nil
}

// Component owns a Service built from config. Mount runs once the service
// is built, so routes exist before the HTTP server starts listening when
// this component is registered ahead of it.
type Component struct {
	cfg     *Config
	metrics *observability.Metrics
	log     *logger.Logger
	mount   func(*Service) error

	mu  sync.RWMutex
	svc *Service
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates the service component. mount may be nil.
func NewComponent(cfg *Config, metrics *observability.Metrics, log *logger.Logger, mount func(*Service) error) *Component {
	if log == nil {
		log = logger.NewNop()
	}
	return &Component{cfg: cfg, metrics: metrics, log: log, mount: mount}
}

// Service returns the built service, or nil before Start.
func (c *Component) Service() *Service {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.svc
}

// Name returns the component name.
func (c *Component) Name() string { return "speaker-service" }

// Start builds the service and mounts it.
func (c *Component) Start(ctx context.Context) error {
	svc, err := Build(ctx, c.cfg, c.metrics, c.log)
	if err != nil {
		return err
	}
	if c.mount != nil {
		if err := c.mount(svc); err != nil {
			return stderrors.Join(err, svc.Close(ctx))
		}
	}
	c.mu.Lock()
	c.svc = svc
	c.mu.Unlock()
	return nil
}

// Stop closes the producers, the store and the cache.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	svc := c.svc
	c.svc = nil
	c.mu.Unlock()
	if svc == nil {
		return nil
	}
	return svc.Close(ctx)
}

// Health maps the service health report. A degraded service stays ready.
func (c *Component) Health(ctx context.Context) component.Health {
	svc := c.Service()
	if svc == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	report := svc.Health(ctx)
	h := component.Health{Name: c.Name(), Status: report.Status}
	if report.Status != component.StatusHealthy {
		h.Message = fmt.Sprintf("models_loaded=%t store_connected=%t", report.ModelsLoaded, report.StoreConnected)
	}
	return h
}

// Describe reports the store backend and producer endpoints.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name: "Speaker Service",
		Type: "service",
		Details: fmt.Sprintf("store=%s diarizer=%s embedder=%s whisper=%s cache=%t",
			c.cfg.Speakers.Backend, c.cfg.Diarization.BaseURL, c.cfg.Embedding.BaseURL,
			c.cfg.Transcription.URL, c.cfg.Cache.Enabled),
	}
}
