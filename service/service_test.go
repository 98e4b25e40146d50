package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"cityinfo.app/errors"
	"cityinfo.app/models"
	"cityinfo.app/providers/cache"
)

// MockWeatherProvider for testing
type MockWeatherProvider struct {
	mock.Mock
}

func (m *MockWeatherProvider) FetchWeather(ctx context.Context, city string) (*models.WeatherInfo, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WeatherInfo), args.Error(1)
}

// MockTimeProvider for testing
type MockTimeProvider struct {
	mock.Mock
}

func (m *MockTimeProvider) FetchTime(city string) *models.TimeInfo {
	args := m.Called(city)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.TimeInfo)
}

// MockNewsProvider for testing
type MockNewsProvider struct {
	mock.Mock
}

func (m *MockNewsProvider) FetchNews(ctx context.Context, city string) ([]models.NewsItem, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.NewsItem), args.Error(1)
}

// MockCurrencyProvider for testing
type MockCurrencyProvider struct {
	mock.Mock
}

func (m *MockCurrencyProvider) FetchCurrency(ctx context.Context) (*models.CurrencyInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CurrencyInfo), args.Error(1)
}

type testSetup struct {
	service  *CityService
	weather  *MockWeatherProvider
	time     *MockTimeProvider
	news     *MockNewsProvider
	currency *MockCurrencyProvider
}

func newTestService(t *testing.T, cacheTTL time.Duration) *testSetup {
	t.Helper()

	backend := cache.NewMemoryCache(time.Minute)
	t.Cleanup(backend.Stop)

	weather := new(MockWeatherProvider)
	timeProvider := new(MockTimeProvider)
	news := new(MockNewsProvider)
	currency := new(MockCurrencyProvider)

	svc := NewCityService(
		cache.NewCityCache(backend),
		weather,
		timeProvider,
		news,
		currency,
		cacheTTL,
		5*time.Second,
	)

	return &testSetup{
		service:  svc,
		weather:  weather,
		time:     timeProvider,
		news:     news,
		currency: currency,
	}
}

func sampleWeather() *models.WeatherInfo {
	return &models.WeatherInfo{Temperature: 15.3, Description: "light rain", Humidity: 76, WindSpeed: 4.6}
}

func sampleTime() *models.TimeInfo {
	return &models.TimeInfo{Timezone: "Europe/London", Datetime: "2025-01-01T12:00:00Z", UTCOffset: "+00:00"}
}

func sampleNews() []models.NewsItem {
	return []models.NewsItem{{Title: "Headline", URL: "https://example.com/1", PublishedAt: "2025-01-01T10:00:00Z"}}
}

func sampleCurrency() *models.CurrencyInfo {
	return &models.CurrencyInfo{BaseCurrency: "USD", Rates: map[string]float64{"EUR": 0.92}}
}

func (s *testSetup) expectAllProvidersSucceed(city string) {
	s.weather.On("FetchWeather", mock.Anything, city).Return(sampleWeather(), nil)
	s.time.On("FetchTime", city).Return(sampleTime())
	s.news.On("FetchNews", mock.Anything, city).Return(sampleNews(), nil)
	s.currency.On("FetchCurrency", mock.Anything).Return(sampleCurrency(), nil)
}

func TestGetCityInfoValidation(t *testing.T) {
	tests := []struct {
		name string
		city string
	}{
		{"EmptyCity", ""},
		{"WhitespaceCity", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup := newTestService(t, 5*time.Minute)

			info, err := setup.service.GetCityInfo(context.Background(), tt.city)

			assert.Nil(t, info)
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))

			setup.weather.AssertNotCalled(t, "FetchWeather")
			setup.time.AssertNotCalled(t, "FetchTime")
			setup.news.AssertNotCalled(t, "FetchNews")
			setup.currency.AssertNotCalled(t, "FetchCurrency")
		})
	}
}

func TestGetCityInfoMergesAllProviders(t *testing.T) {
	setup := newTestService(t, 5*time.Minute)
	setup.expectAllProvidersSucceed("London")

	info, err := setup.service.GetCityInfo(context.Background(), "London")

	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "London", info.City)
	assert.Equal(t, "Unknown", info.Country)
	assert.Equal(t, sampleWeather(), info.Weather)
	assert.Equal(t, sampleTime(), info.Time)
	assert.Equal(t, sampleNews(), info.News)
	assert.Equal(t, sampleCurrency(), info.Currency)
	assert.False(t, info.Cached)

	_, parseErr := time.Parse(time.RFC3339, info.Timestamp)
	assert.NoError(t, parseErr)
}

func TestGetCityInfoPartialFailure(t *testing.T) {
	setup := newTestService(t, 5*time.Minute)
	setup.weather.On("FetchWeather", mock.Anything, "London").
		Return(nil, errors.NewExternalAPIError("upstream down", nil))
	setup.time.On("FetchTime", "London").Return(sampleTime())
	setup.news.On("FetchNews", mock.Anything, "London").Return(sampleNews(), nil)
	setup.currency.On("FetchCurrency", mock.Anything).Return(sampleCurrency(), nil)

	info, err := setup.service.GetCityInfo(context.Background(), "London")

	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Nil(t, info.Weather)
	assert.Equal(t, sampleTime(), info.Time)
	assert.Equal(t, sampleNews(), info.News)
	assert.Equal(t, sampleCurrency(), info.Currency)
}

func TestGetCityInfoAllRemoteProvidersFail(t *testing.T) {
	setup := newTestService(t, 5*time.Minute)
	setup.weather.On("FetchWeather", mock.Anything, "London").
		Return(nil, errors.NewConfigurationError("missing OPENWEATHER_API_KEY", nil))
	setup.time.On("FetchTime", "London").Return(sampleTime())
	setup.news.On("FetchNews", mock.Anything, "London").
		Return(nil, errors.NewExternalAPIError("newsapi down", nil))
	setup.currency.On("FetchCurrency", mock.Anything).
		Return(nil, errors.NewExternalAPIError("exchangerate down", nil))

	info, err := setup.service.GetCityInfo(context.Background(), "London")

	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Nil(t, info.Weather)
	assert.Nil(t, info.Currency)
	assert.NotNil(t, info.News)
	assert.Empty(t, info.News)
	assert.Equal(t, sampleTime(), info.Time)
}

func TestGetCityInfoServesSecondCallFromCache(t *testing.T) {
	setup := newTestService(t, 5*time.Minute)
	setup.expectAllProvidersSucceed("London")

	first, err := setup.service.GetCityInfo(context.Background(), "London")
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := setup.service.GetCityInfo(context.Background(), "London")
	require.NoError(t, err)
	assert.True(t, second.Cached)

	setup.weather.AssertNumberOfCalls(t, "FetchWeather", 1)
	setup.news.AssertNumberOfCalls(t, "FetchNews", 1)
	setup.currency.AssertNumberOfCalls(t, "FetchCurrency", 1)
}

func TestGetCityInfoCacheKeyIsCaseInsensitive(t *testing.T) {
	setup := newTestService(t, 5*time.Minute)
	setup.expectAllProvidersSucceed("London")

	first, err := setup.service.GetCityInfo(context.Background(), "London")
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := setup.service.GetCityInfo(context.Background(), "LONDON")
	require.NoError(t, err)
	assert.True(t, second.Cached)

	setup.weather.AssertNumberOfCalls(t, "FetchWeather", 1)
}

func TestGetCityInfoZeroTTLNeverHitsCache(t *testing.T) {
	setup := newTestService(t, 0)
	setup.expectAllProvidersSucceed("London")

	_, err := setup.service.GetCityInfo(context.Background(), "London")
	require.NoError(t, err)

	second, err := setup.service.GetCityInfo(context.Background(), "London")
	require.NoError(t, err)
	assert.False(t, second.Cached)

	setup.weather.AssertNumberOfCalls(t, "FetchWeather", 2)
}

func TestGetCityInfoFetchesConcurrently(t *testing.T) {
	const providerDelay = 100 * time.Millisecond

	setup := newTestService(t, 5*time.Minute)
	setup.weather.On("FetchWeather", mock.Anything, "London").
		Run(func(mock.Arguments) { time.Sleep(providerDelay) }).
		Return(sampleWeather(), nil)
	setup.time.On("FetchTime", "London").
		Run(func(mock.Arguments) { time.Sleep(providerDelay) }).
		Return(sampleTime())
	setup.news.On("FetchNews", mock.Anything, "London").
		Run(func(mock.Arguments) { time.Sleep(providerDelay) }).
		Return(sampleNews(), nil)
	setup.currency.On("FetchCurrency", mock.Anything).
		Run(func(mock.Arguments) { time.Sleep(providerDelay) }).
		Return(sampleCurrency(), nil)

	start := time.Now()
	_, err := setup.service.GetCityInfo(context.Background(), "London")
	elapsed := time.Since(start)

	require.NoError(t, err)
	// Sequential execution would take four provider delays; concurrent
	// execution is bounded by the slowest one plus overhead.
	assert.Less(t, elapsed, 3*providerDelay)
}

func TestEvictCity(t *testing.T) {
	setup := newTestService(t, 5*time.Minute)
	setup.expectAllProvidersSucceed("London")

	_, err := setup.service.GetCityInfo(context.Background(), "London")
	require.NoError(t, err)

	require.NoError(t, setup.service.EvictCity(context.Background(), "LONDON"))

	refetched, err := setup.service.GetCityInfo(context.Background(), "London")
	require.NoError(t, err)
	assert.False(t, refetched.Cached)
	setup.weather.AssertNumberOfCalls(t, "FetchWeather", 2)
}

func TestEvictCityValidation(t *testing.T) {
	setup := newTestService(t, 5*time.Minute)

	err := setup.service.EvictCity(context.Background(), "  ")

	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestFlushCache(t *testing.T) {
	setup := newTestService(t, 5*time.Minute)
	setup.expectAllProvidersSucceed("London")

	_, err := setup.service.GetCityInfo(context.Background(), "London")
	require.NoError(t, err)

	setup.service.FlushCache(context.Background())

	refetched, err := setup.service.GetCityInfo(context.Background(), "London")
	require.NoError(t, err)
	assert.False(t, refetched.Cached)
	setup.weather.AssertNumberOfCalls(t, "FetchWeather", 2)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "city:london", CacheKey("London"))
	assert.Equal(t, "city:london", CacheKey("  LONDON  "))
	assert.Equal(t, "city:new york", CacheKey("New York"))
}
