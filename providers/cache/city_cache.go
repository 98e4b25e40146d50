package cache

import (
	"context"
	"encoding/json"
	"time"

	"cityinfo.app/models"
)

// CityCacheInterface defines the typed caching operations used by the aggregator
type CityCacheInterface interface {
	Get(ctx context.Context, key string) (*models.CityInfo, bool)
	Set(ctx context.Context, key string, value *models.CityInfo, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Clear(ctx context.Context)
}

// CityCache wraps a generic byte cache with CityInfo marshalling
type CityCache struct {
	cache Cache
}

func NewCityCache(cache Cache) *CityCache {
	return &CityCache{cache: cache}
}

func (c *CityCache) Get(ctx context.Context, key string) (*models.CityInfo, bool) {
	data, found := c.cache.Get(ctx, key)
	if !found {
		return nil, false
	}

	var info models.CityInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, false
	}

	return &info, true
}

func (c *CityCache) Set(ctx context.Context, key string, value *models.CityInfo, ttl time.Duration) {
	if value == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}

	c.cache.Set(ctx, key, data, ttl)
}

func (c *CityCache) Delete(ctx context.Context, key string) {
	c.cache.Delete(ctx, key)
}

func (c *CityCache) Clear(ctx context.Context) {
	c.cache.Clear(ctx)
}
