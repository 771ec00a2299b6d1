package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// TypedStore keeps JSON-encoded values of type V under prefix:key.
type TypedStore[V any] struct {
	client *Client
	prefix string
}

// NewTypedStore binds a store to client. An empty prefix stores bare keys.
func NewTypedStore[V any](client *Client, prefix string) *TypedStore[V] {
	return &TypedStore[V]{client: client, prefix: prefix}
}

func (s *TypedStore[V]) key(k string) string {
	if s.prefix == "" {
		return k
	}
	return s.prefix + ":" + k
}

// Load returns the value under key, or (nil, nil) when it is missing or
// expired.
func (s *TypedStore[V]) Load(ctx context.Context, key string) (*V, error) {
	raw, err := s.client.rdb.Get(ctx, s.key(key)).Bytes()
	if stderrors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis load %s: %w", key, err)
	}
	var v V
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("redis decode %s: %w", key, err)
	}
	return &v, nil
}

// Save stores v under key. A zero ttl keeps it until deleted.
func (s *TypedStore[V]) Save(ctx context.Context, key string, v *V, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("redis encode %s: %w", key, err)
	}
	if err := s.client.rdb.Set(ctx, s.key(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis save %s: %w", key, err)
	}
	return nil
}

// Delete removes key. A missing key is not an error.
func (s *TypedStore[V]) Delete(ctx context.Context, key string) error {
	if err := s.client.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}
