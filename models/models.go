// Package models defines data structures used throughout the application
package models

// WeatherInfo represents current weather conditions for a city
type WeatherInfo struct {
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
}

// TimeInfo represents the local time resolved for a city
type TimeInfo struct {
	Timezone  string `json:"timezone"`
	Datetime  string `json:"datetime"`
	UTCOffset string `json:"utcOffset"`
}

// NewsItem represents a single news headline
type NewsItem struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	URL         string  `json:"url"`
	PublishedAt string  `json:"publishedAt"`
}

// CurrencyInfo represents exchange rates against a base currency
type CurrencyInfo struct {
	BaseCurrency string             `json:"baseCurrency"`
	Rates        map[string]float64 `json:"rates"`
}

// CityInfo is the aggregated response for a single city. Weather, time and
// currency are nil when the corresponding provider failed; news is always a
// slice, possibly empty. Cached is computed on the read path and never stored.
type CityInfo struct {
	City      string        `json:"city"`
	Country   string        `json:"country"`
	Weather   *WeatherInfo  `json:"weather"`
	Time      *TimeInfo     `json:"time"`
	News      []NewsItem    `json:"news"`
	Currency  *CurrencyInfo `json:"currency"`
	Timestamp string        `json:"timestamp"`
	Cached    bool          `json:"cached"`
}

// WarmRequest represents data required to pre-populate the cache
type WarmRequest struct {
	Cities []string `json:"cities" binding:"required,min=1,dive,notblank"`
}

// ErrorResponse represents an error message structure for API responses
type ErrorResponse struct {
	Error string `json:"error"`
}
