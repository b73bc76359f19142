package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Cache wraps a Backend with JSON encoding and collapses concurrent loads of
// the same key. Load errors are never cached.
type Cache struct {
	backend Backend
	group   singleflight.Group
	// epoch advances on every invalidation; loads started in an older epoch
	// are not stored.
	epoch atomic.Uint64
	// stores are read-held across the epoch check and Set; invalidation
	// write-holds it so a store cannot land between the two.
	stores sync.RWMutex
	log    *logrus.Entry
}

// New builds a Cache over backend.
func New(backend Backend) *Cache {
	return &Cache{
		backend: backend,
		log:     logrus.WithField("component", "cache"),
	}
}

// Fetch returns the cached value for key or calls load and caches its result for ttl.
func Fetch[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var zero T

	if b, ok := c.get(ctx, key); ok {
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			return v, nil
		}
		c.log.WithField("key", key).Warn("discarding undecodable cache entry")
	}

	epoch := c.epoch.Load()
	flightKey := strconv.FormatUint(epoch, 10) + ":" + key
	res, err, _ := c.group.Do(flightKey, func() (interface{}, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		c.store(ctx, epoch, key, b, ttl)
		return b, nil
	})
	if err != nil {
		return zero, err
	}

	var v T
	if err := json.Unmarshal(res.([]byte), &v); err != nil {
		return zero, err
	}
	return v, nil
}

func (c *Cache) store(ctx context.Context, epoch uint64, key string, b []byte, ttl time.Duration) {
	c.stores.RLock()
	defer c.stores.RUnlock()
	if c.epoch.Load() != epoch {
		return
	}
	if err := c.backend.Set(ctx, key, b, ttl); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache set failed")
	}
}

// InvalidatePrefix drops every entry whose key starts with prefix. It waits
// for stores already past their epoch check.
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) {
	c.stores.Lock()
	defer c.stores.Unlock()
	c.epoch.Add(1)
	if err := c.backend.DeletePrefix(ctx, prefix); err != nil {
		c.log.WithError(err).WithField("prefix", prefix).Warn("cache invalidation failed")
	}
}

func (c *Cache) get(ctx context.Context, key string) ([]byte, bool) {
	b, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache get failed")
		return nil, false
	}
	return b, ok
}
