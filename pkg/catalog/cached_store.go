package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"stock-ticker-be/internal/pkg/logger"
	"stock-ticker-be/pkg/ticker"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ticker:catalog:"

// CachedStore memoizes lookups in process (L1) and optionally in redis (L2).
// The catalog only changes on re-ingestion, so entries simply expire.
// Failed lookups are never cached.
type CachedStore struct {
	next   ticker.CatalogStore
	local  *cache.Cache
	remote *redis.Client
	l2TTL  time.Duration
	logger logger.ILogger
}

var _ ticker.CatalogStore = (*CachedStore)(nil)

// NewCachedStore wraps next. remote may be nil.
func NewCachedStore(next ticker.CatalogStore, l1TTL, l2TTL time.Duration, remote *redis.Client, log logger.ILogger) *CachedStore {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &CachedStore{
		next:   next,
		local:  cache.New(l1TTL, 2*l1TTL),
		remote: remote,
		l2TTL:  l2TTL,
		logger: log,
	}
}

func (c *CachedStore) ExactSymbol(ctx context.Context, symbol string) ([]ticker.CatalogRecord, error) {
	return c.lookup(ctx, ticker.LookupExact, symbol, c.next.ExactSymbol)
}

func (c *CachedStore) FuzzySymbol(ctx context.Context, fragment string) ([]ticker.CatalogRecord, error) {
	return c.lookup(ctx, ticker.LookupFuzzy, fragment, c.next.FuzzySymbol)
}

func (c *CachedStore) FullTextName(ctx context.Context, name string) ([]ticker.CatalogRecord, error) {
	return c.lookup(ctx, ticker.LookupFullText, name, c.next.FullTextName)
}

func (c *CachedStore) lookup(
	ctx context.Context,
	kind, key string,
	fn func(context.Context, string) ([]ticker.CatalogRecord, error),
) ([]ticker.CatalogRecord, error) {
	k := keyPrefix + kind + ":" + key

	if x, found := c.local.Get(k); found {
		return clone(x.([]ticker.CatalogRecord)), nil
	}

	if c.remote != nil {
		raw, err := c.remote.Get(ctx, k).Bytes()
		switch {
		case err == nil:
			var records []ticker.CatalogRecord
			if jsonErr := json.Unmarshal(raw, &records); jsonErr == nil {
				c.local.Set(k, records, cache.DefaultExpiration)
				return clone(records), nil
			}
		case !errors.Is(err, redis.Nil):
			c.logger.Warn("catalog.cache", "Redis read failed", map[string]interface{}{
				"key":   k,
				"error": err.Error(),
			})
		}
	}

	records, err := fn(ctx, key)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []ticker.CatalogRecord{}
	}

	c.local.Set(k, clone(records), cache.DefaultExpiration)
	if c.remote != nil {
		if raw, err := json.Marshal(records); err == nil {
			if err := c.remote.Set(ctx, k, raw, c.l2TTL).Err(); err != nil {
				c.logger.Warn("catalog.cache", "Redis write failed", map[string]interface{}{
					"key":   k,
					"error": err.Error(),
				})
			}
		}
	}
	return records, nil
}

func clone(records []ticker.CatalogRecord) []ticker.CatalogRecord {
	return append([]ticker.CatalogRecord{}, records...)
}
