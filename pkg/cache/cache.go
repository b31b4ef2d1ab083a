// Package cache stores compiled circuits keyed by their inputs.
//
// A compilation is a pure function of the source circuit, the target and the
// compiler options, so its result can be reused across CLI runs and service
// requests. [Keyer] turns those inputs into keys; [Cache] implementations
// hold the serialized results:
//
//   - [NullCache] never stores anything (caching disabled)
//   - [FileCache] writes one JSON file per entry, for the CLI
//   - [MemoryCache] keeps a bounded LRU in process
//   - [RedisCache] shares entries between service replicas
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// GetJSON decodes the entry under key into v. It returns ErrCacheMiss when
// the key is absent or the entry no longer decodes.
func GetJSON(ctx context.Context, c Cache, key string, v any) error {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok || json.Unmarshal(data, v) != nil {
		return ErrCacheMiss
	}
	return nil
}

// SetJSON encodes v and stores it under key. It returns the encoded size.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) (int, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	return len(data), c.Set(ctx, key, data, ttl)
}
