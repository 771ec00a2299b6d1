package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/kbukum/speakerkit/redis"
	"github.com/kbukum/speakerkit/transcript"
)

// Store holds values of type V by key. Load returns (nil, nil) for missing
// or expired keys.
type Store[V any] interface {
	Load(ctx context.Context, key string) (*V, error)
	Save(ctx context.Context, key string, val *V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

var (
	_ Store[transcript.Transcription] = (*MemoryStore[transcript.Transcription])(nil)
	_ Store[transcript.Transcription] = (*redis.TypedStore[transcript.Transcription])(nil)
)

type entry[V any] struct {
	val     V
	expires time.Time
}

// MemoryStore is an in-process Store backed by an expirable LRU. The store
// ttl bounds every entry; a shorter ttl passed to Save wins for that entry.
// When full, the least recently used entry is evicted.
type MemoryStore[V any] struct {
	lru *expirable.LRU[string, entry[V]]
	now func() time.Time
}

// NewMemoryStore creates a MemoryStore holding at most maxEntries values
// for at most ttl. Non-positive values disable the bound.
func NewMemoryStore[V any](maxEntries int, ttl time.Duration) *MemoryStore[V] {
	return &MemoryStore[V]{
		lru: expirable.NewLRU[string, entry[V]](max(maxEntries, 0), nil, ttl),
		now: time.Now,
	}
}

// Load returns a copy of the stored value.
func (s *MemoryStore[V]) Load(_ context.Context, key string) (*V, error) {
	e, ok := s.lru.Get(key)
	if !ok {
		return nil, nil
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		s.lru.Remove(key)
		return nil, nil
	}
	val := e.val
	return &val, nil
}

// Save stores val. A zero ttl leaves only the store ttl.
func (s *MemoryStore[V]) Save(_ context.Context, key string, val *V, ttl time.Duration) error {
	e := entry[V]{val: *val}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	s.lru.Add(key, e)
	return nil
}

// Delete removes key.
func (s *MemoryStore[V]) Delete(_ context.Context, key string) error {
	s.lru.Remove(key)
	return nil
}

// Len returns the number of entries, including expired ones not yet dropped.
func (s *MemoryStore[V]) Len() int { return s.lru.Len() }
