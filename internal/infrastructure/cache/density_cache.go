package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/shared/service"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

const (
	defaultDensityTTL       = 10 * time.Minute
	defaultDensityKeyPrefix = "kitchen:density:"
)

// RemoteStore is the subset of the Redis client used by the density cache
type RemoteStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// densityEntry is the cached lookup result. Misses are cached too so an
// unknown class does not hit the database on every conversion.
type densityEntry struct {
	GramsPerMilliliter string `msgpack:"g"`
	Found              bool   `msgpack:"f"`
}

type localDensityEntry struct {
	entry     densityEntry
	expiresAt time.Time
}

// DensityCacheStats reports hit counters for monitoring
type DensityCacheStats struct {
	LocalHits  int64
	RemoteHits int64
	Misses     int64
}

// DensityCache is a read-through density lookup with two tiers.
// L1 is process-local; L2 is Redis and optional. Redis failures degrade to
// the wrapped lookup instead of failing the conversion.
type DensityCache struct {
	inner     service.DensityLookup
	remote    RemoteStore
	ttl       time.Duration
	keyPrefix string
	logger    *zap.Logger

	local sync.Map // key -> *localDensityEntry

	localHits  atomic.Int64
	remoteHits atomic.Int64
	misses     atomic.Int64
}

var _ service.DensityLookup = (*DensityCache)(nil)

// DensityCacheOption configures a DensityCache
type DensityCacheOption func(*DensityCache)

// WithRemote enables the Redis tier
func WithRemote(store RemoteStore) DensityCacheOption {
	return func(c *DensityCache) {
		c.remote = store
	}
}

// WithTTL sets how long entries live in both tiers
func WithTTL(ttl time.Duration) DensityCacheOption {
	return func(c *DensityCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithKeyPrefix overrides the Redis key prefix
func WithKeyPrefix(prefix string) DensityCacheOption {
	return func(c *DensityCache) {
		if prefix != "" {
			c.keyPrefix = prefix
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) DensityCacheOption {
	return func(c *DensityCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewDensityCache wraps inner with a cache
func NewDensityCache(inner service.DensityLookup, opts ...DensityCacheOption) *DensityCache {
	c := &DensityCache{
		inner:     inner,
		ttl:       defaultDensityTTL,
		keyPrefix: defaultDensityKeyPrefix,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GramsPerMilliliter implements service.DensityLookup.
func (c *DensityCache) GramsPerMilliliter(ctx context.Context, productID uuid.UUID, class string) (decimal.Decimal, bool, error) {
	key := c.key(productID, class)

	if entry, ok := c.getLocal(key); ok {
		c.localHits.Add(1)
		return entry.value()
	}

	if c.remote != nil {
		if entry, ok := c.getRemote(ctx, key); ok {
			c.remoteHits.Add(1)
			c.setLocal(key, entry)
			return entry.value()
		}
	}

	c.misses.Add(1)
	grams, found, err := c.inner.GramsPerMilliliter(ctx, productID, class)
	if err != nil {
		return decimal.Zero, false, err
	}

	entry := densityEntry{GramsPerMilliliter: grams.String(), Found: found}
	c.setLocal(key, entry)
	if c.remote != nil {
		c.setRemote(ctx, key, entry)
	}
	return grams, found, nil
}

// Stats returns the current hit counters
func (c *DensityCache) Stats() DensityCacheStats {
	return DensityCacheStats{
		LocalHits:  c.localHits.Load(),
		RemoteHits: c.remoteHits.Load(),
		Misses:     c.misses.Load(),
	}
}

func (c *DensityCache) key(productID uuid.UUID, class string) string {
	return c.keyPrefix + productID.String() + ":" + strings.ToLower(strings.TrimSpace(class))
}

func (c *DensityCache) getLocal(key string) (densityEntry, bool) {
	v, ok := c.local.Load(key)
	if !ok {
		return densityEntry{}, false
	}
	le := v.(*localDensityEntry)
	if time.Now().After(le.expiresAt) {
		c.local.CompareAndDelete(key, v)
		return densityEntry{}, false
	}
	return le.entry, true
}

func (c *DensityCache) setLocal(key string, entry densityEntry) {
	c.local.Store(key, &localDensityEntry{entry: entry, expiresAt: time.Now().Add(c.ttl)})
}

func (c *DensityCache) getRemote(ctx context.Context, key string) (densityEntry, bool) {
	raw, err := c.remote.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("density cache read failed", zap.String("key", key), zap.Error(err))
		}
		return densityEntry{}, false
	}

	var entry densityEntry
	if err := msgpack.Unmarshal(raw, &entry); err != nil {
		c.logger.Warn("discarding undecodable density cache entry", zap.String("key", key), zap.Error(err))
		return densityEntry{}, false
	}
	if _, err := decimal.NewFromString(entry.GramsPerMilliliter); err != nil {
		return densityEntry{}, false
	}
	return entry, true
}

func (c *DensityCache) setRemote(ctx context.Context, key string, entry densityEntry) {
	raw, err := msgpack.Marshal(&entry)
	if err != nil {
		c.logger.Warn("density cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.remote.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("density cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (e densityEntry) value() (decimal.Decimal, bool, error) {
	if !e.Found {
		return decimal.Zero, false, nil
	}
	d, err := decimal.NewFromString(e.GramsPerMilliliter)
	if err != nil {
		return decimal.Zero, false, err
	}
	return d, true, nil
}
