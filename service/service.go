package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"cityinfo.app/errors"
	"cityinfo.app/models"
	"cityinfo.app/providers"
	"cityinfo.app/providers/cache"
)

const cacheKeyPrefix = "city:"

// CityService aggregates per-city data from the four providers. It owns the
// cache: handlers above it never cache, providers below it never see the
// cache.
type CityService struct {
	cache        cache.CityCacheInterface
	weather      providers.WeatherProvider
	localTime    providers.TimeProvider
	news         providers.NewsProvider
	currency     providers.CurrencyProvider
	cacheTTL     time.Duration
	fetchTimeout time.Duration
}

// NewCityService creates a new aggregation service
func NewCityService(
	cityCache cache.CityCacheInterface,
	weather providers.WeatherProvider,
	localTime providers.TimeProvider,
	news providers.NewsProvider,
	currency providers.CurrencyProvider,
	cacheTTL time.Duration,
	fetchTimeout time.Duration,
) *CityService {
	return &CityService{
		cache:        cityCache,
		weather:      weather,
		localTime:    localTime,
		news:         news,
		currency:     currency,
		cacheTTL:     cacheTTL,
		fetchTimeout: fetchTimeout,
	}
}

// CacheKey returns the cache key for a city. Keys are case-insensitive so
// "London" and "LONDON" share one entry.
func CacheKey(city string) string {
	return cacheKeyPrefix + strings.ToLower(strings.TrimSpace(city))
}

// GetCityInfo returns aggregated data for a city, serving from the cache when
// a fresh entry exists. On a miss all four providers are queried concurrently
// and every outcome is awaited; a failing provider degrades its own field and
// never aborts the request.
func (s *CityService) GetCityInfo(ctx context.Context, city string) (*models.CityInfo, error) {
	trimmed := strings.TrimSpace(city)
	if trimmed == "" {
		return nil, errors.NewValidationError("City parameter is required")
	}

	key := CacheKey(trimmed)
	if cached, found := s.cache.Get(ctx, key); found {
		slog.Debug("serving city info from cache", "city", trimmed)
		result := *cached
		result.Cached = true
		return &result, nil
	}

	info := s.fetchAndMerge(ctx, trimmed)

	s.cache.Set(ctx, key, info, s.cacheTTL)

	return info, nil
}

func (s *CityService) fetchAndMerge(ctx context.Context, city string) *models.CityInfo {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	var (
		wg          sync.WaitGroup
		weather     *models.WeatherInfo
		weatherErr  error
		timeInfo    *models.TimeInfo
		news        []models.NewsItem
		newsErr     error
		currency    *models.CurrencyInfo
		currencyErr error
	)

	// Each goroutine writes its own variables; the WaitGroup orders those
	// writes before the merge below.
	wg.Add(4)
	go func() {
		defer wg.Done()
		weather, weatherErr = s.weather.FetchWeather(fetchCtx, city)
	}()
	go func() {
		defer wg.Done()
		timeInfo = s.localTime.FetchTime(city)
	}()
	go func() {
		defer wg.Done()
		news, newsErr = s.news.FetchNews(fetchCtx, city)
	}()
	go func() {
		defer wg.Done()
		currency, currencyErr = s.currency.FetchCurrency(fetchCtx)
	}()
	wg.Wait()

	if weatherErr != nil {
		slog.Warn("weather provider failed", "city", city, "error", weatherErr)
		weather = nil
	}
	if newsErr != nil {
		slog.Warn("news provider failed", "city", city, "error", newsErr)
		news = nil
	}
	if currencyErr != nil {
		slog.Warn("currency provider failed", "city", city, "error", currencyErr)
		currency = nil
	}
	if news == nil {
		news = []models.NewsItem{}
	}

	return &models.CityInfo{
		City:      city,
		Country:   "Unknown",
		Weather:   weather,
		Time:      timeInfo,
		News:      news,
		Currency:  currency,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Cached:    false,
	}
}

// EvictCity removes a single city's cache entry
func (s *CityService) EvictCity(ctx context.Context, city string) error {
	trimmed := strings.TrimSpace(city)
	if trimmed == "" {
		return errors.NewValidationError("City parameter is required")
	}

	s.cache.Delete(ctx, CacheKey(trimmed))
	return nil
}

// FlushCache clears every cached entry
func (s *CityService) FlushCache(ctx context.Context) {
	s.cache.Clear(ctx)
}
