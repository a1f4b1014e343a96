// Package cache keeps the rendered public site payload in redis so the
// landing page does not hit the settings store on every anonymous read.
package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/emeraldsmp/portal/pkg/logger"
)

const siteCacheKey = "site_payload"
const siteStaleKey = "site_payload_stale"
const siteCacheTTL = time.Second * 30

// SiteCache serves a fresh copy within the TTL and falls back to the
// last known payload while a regeneration is in flight.
type SiteCache struct {
	RedisClient *redis.Client
}

func NewSiteCache(r *redis.Client) *SiteCache {
	return &SiteCache{RedisClient: r}
}

func (sc *SiteCache) Set(ctx context.Context, payload []byte) error {
	res := sc.RedisClient.Set(ctx, siteStaleKey, payload, 0)
	if res.Err() != nil {
		logger.Error("failed to set stale site payload in redis", zap.Error(res.Err()))
		return res.Err()
	}

	res = sc.RedisClient.SetEX(ctx, siteCacheKey, payload, siteCacheTTL)
	return res.Err()
}

// Get returns the cached payload and whether the caller should
// regenerate it. A stale hit still returns bytes so readers never see
// an empty page during regeneration.
func (sc *SiteCache) Get(ctx context.Context) ([]byte, bool, error) {
	shouldRegen := true
	res := sc.RedisClient.Get(ctx, siteCacheKey)
	if err := res.Err(); err != nil {
		if err == redis.Nil {
			res = sc.RedisClient.Get(ctx, siteStaleKey)
			if res.Err() == redis.Nil {
				return nil, shouldRegen, nil
			}
		} else {
			logger.Error("failed to get site payload from redis", zap.Error(err))
			return nil, shouldRegen, err
		}
	} else {
		shouldRegen = false
	}

	b, err := res.Bytes()
	if err != nil {
		return nil, shouldRegen, err
	}
	return b, shouldRegen, nil
}

// Invalidate drops both copies after a settings write.
func (sc *SiteCache) Invalidate(ctx context.Context) error {
	return sc.RedisClient.Del(ctx, siteCacheKey, siteStaleKey).Err()
}
