package redis

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/logging"
	"github.com/patentminer/patentminer/pkg/errors"
)

const (
	passKeyPrefix    = "patminer:discovery:pass:"
	macroSnapshotKey = "patminer:finance:macro_snapshot"
)

// Cache is the JSON-codec cache used by the discovery pipeline and the
// financial model.  Cache failures are reported to callers, who treat them
// as misses; a flaky Redis must never fail a run.
type Cache struct {
	client *Client
	ttl    time.Duration
	logger logging.Logger
}

// NewCache builds a Cache with a default TTL applied when Set callers pass 0.
func NewCache(client *Client, defaultTTL time.Duration, log logging.Logger) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &Cache{client: client, ttl: defaultTTL, logger: log.Named("cache")}
}

// PassKey derives a stable cache key from a pass name and its payload.
func PassKey(pass string, payload map[string]any) string {
	encoded, _ := json.Marshal(payload)
	sum := sha256.Sum256(append([]byte(pass+"|"), encoded...))
	return passKeyPrefix + base64.RawURLEncoding.EncodeToString(sum[:16])
}

// GetJSON loads and decodes a cached value into dest.  ok is false on a miss.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, key)
	if IsNil(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "cache read failed")
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		// Poisoned entry: drop it so the next write repairs the key.
		if delErr := c.client.Del(ctx, key); delErr != nil {
			c.logger.Warn("failed to evict corrupt cache entry",
				logging.String("key", key), logging.Err(delErr))
		}
		return false, errors.Wrap(err, errors.ErrCodeSerialization,
			fmt.Sprintf("corrupt cache entry at %s", key))
	}
	return true, nil
}

// SetJSON encodes and stores a value.  A zero ttl uses the cache default.
func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "cache encode failed")
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	if err := c.client.Set(ctx, key, encoded, ttl); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache write failed")
	}
	return nil
}

// GetMacroSnapshot loads the cached macro signal snapshot, if fresh.
func (c *Cache) GetMacroSnapshot(ctx context.Context, dest any) (bool, error) {
	return c.GetJSON(ctx, macroSnapshotKey, dest)
}

// SetMacroSnapshot stores a macro signal snapshot with the snapshot TTL.
func (c *Cache) SetMacroSnapshot(ctx context.Context, snapshot any, ttl time.Duration) error {
	return c.SetJSON(ctx, macroSnapshotKey, snapshot, ttl)
}

// InvalidateMacroSnapshot drops the snapshot so the next read refreshes it.
func (c *Cache) InvalidateMacroSnapshot(ctx context.Context) error {
	if err := c.client.Del(ctx, macroSnapshotKey); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache invalidation failed")
	}
	return nil
}
