package providers

import (
	"context"

	"cityinfo.app/models"
)

// WeatherProvider defines the interface for weather data providers
type WeatherProvider interface {
	FetchWeather(ctx context.Context, city string) (*models.WeatherInfo, error)
}

// TimeProvider defines the interface for local time resolution.
// Resolution always succeeds; unknown cities fall back to UTC.
type TimeProvider interface {
	FetchTime(city string) *models.TimeInfo
}

// NewsProvider defines the interface for news headline providers
type NewsProvider interface {
	FetchNews(ctx context.Context, city string) ([]models.NewsItem, error)
}

// CurrencyProvider defines the interface for exchange rate providers.
// Rates are global, not per-city.
type CurrencyProvider interface {
	FetchCurrency(ctx context.Context) (*models.CurrencyInfo, error)
}
