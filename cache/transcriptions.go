package cache

import (
	"context"
	"time"

	"github.com/kbukum/speakerkit/logger"
	"github.com/kbukum/speakerkit/redis"
	"github.com/kbukum/speakerkit/transcript"
)

// TranscribeFunc produces a transcription on a cache miss.
type TranscribeFunc func(ctx context.Context) (*transcript.Transcription, error)

// Transcriptions caches transcription results. The zero value and a nil
// *Transcriptions are disabled caches that always call through.
//
// Cache failures never fail a request: they are logged and the producer is
// called as if the entry were missing.
type Transcriptions struct {
	store  Store[transcript.Transcription]
	ttl    time.Duration
	log    *logger.Logger
	closer func() error
}

// NewTranscriptions wraps store. A nil store yields a disabled cache.
func NewTranscriptions(store Store[transcript.Transcription], ttl time.Duration, log *logger.Logger) *Transcriptions {
	if log == nil {
		log = logger.NewNop()
	}
	return &Transcriptions{store: store, ttl: ttl, log: log.WithComponent("cache")}
}

// Open builds the cache described by cfg.
func Open(cfg Config, log *logger.Logger) (*Transcriptions, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return NewTranscriptions(nil, 0, log), nil
	}

	switch cfg.Backend {
	case BackendRedis:
		client, err := redis.New(cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		c := NewTranscriptions(redis.NewTypedStore[transcript.Transcription](client, cfg.KeyPrefix), cfg.TTL, log)
		c.closer = client.Close
		return c, nil
	default:
		return NewTranscriptions(NewMemoryStore[transcript.Transcription](cfg.MaxEntries, cfg.TTL), cfg.TTL, log), nil
	}
}

// Enabled reports whether results are cached.
func (c *Transcriptions) Enabled() bool { return c != nil && c.store != nil }

// GetOrTranscribe returns the cached result for the audio at audioPath, or
// calls fn and caches its result. The boolean reports a cache hit.
func (c *Transcriptions) GetOrTranscribe(ctx context.Context, audioPath, model, language string, fn TranscribeFunc) (*transcript.Transcription, bool, error) {
	if !c.Enabled() {
		tr, err := fn(ctx)
		return tr, false, err
	}

	log := c.log.WithContext(ctx)
	digest, err := FileDigest(audioPath)
	if err != nil {
		log.Warn("cannot digest audio, bypassing cache", map[string]interface{}{"error": err.Error()})
		tr, err := fn(ctx)
		return tr, false, err
	}
	key := Key(digest, model, language)

	cached, err := c.store.Load(ctx, key)
	switch {
	case err != nil:
		log.Warn("cache load failed", map[string]interface{}{"key": key, "error": err.Error()})
	case cached != nil:
		log.Debug("transcription cache hit", map[string]interface{}{"key": key})
		return cached, true, nil
	}

	tr, err := fn(ctx)
	if err != nil {
		return nil, false, err
	}
	if err := c.store.Save(ctx, key, tr, c.ttl); err != nil {
		log.Warn("cache save failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	return tr, false, nil
}

// Close releases the backend connection, if any.
func (c *Transcriptions) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}
	return c.closer()
}
