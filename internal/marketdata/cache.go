package marketdata

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

// CachedGateway wraps a Gateway with a Redis read-through cache. Cache
// failures never block a lookup; they fall through to the live source.
type CachedGateway struct {
	inner Gateway
	rdb   *redis.Client
	ttl   time.Duration
}

// NewCachedGateway decorates gw with snapshot caching. A nil Redis client
// disables caching and returns gw unchanged.
func NewCachedGateway(gw Gateway, rdb *redis.Client, ttl time.Duration) Gateway {
	if rdb == nil {
		return gw
	}
	return &CachedGateway{inner: gw, rdb: rdb, ttl: ttl}
}

func (g *CachedGateway) Fetch(ctx context.Context, symbol string) (*Snapshot, error) {
	key := "quote:" + symbol

	if val, err := g.rdb.Get(ctx, key).Result(); err == nil {
		var snapshot Snapshot
		if err := json.Unmarshal([]byte(val), &snapshot); err == nil {
			return &snapshot, nil
		}
	}

	snapshot, err := g.inner.Fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(snapshot); err == nil {
		g.rdb.Set(ctx, key, b, g.ttl)
	}

	return snapshot, nil
}
