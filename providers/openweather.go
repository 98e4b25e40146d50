package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"cityinfo.app/config"
	"cityinfo.app/errors"
	"cityinfo.app/models"
)

// OpenWeatherProvider implements WeatherProvider for OpenWeatherMap
type OpenWeatherProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type openWeatherResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Message string `json:"message,omitempty"`
}

// NewOpenWeatherProvider creates a new OpenWeatherMap provider
func NewOpenWeatherProvider(cfg *config.ProvidersConfig) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		apiKey:  cfg.OpenWeatherAPIKey,
		baseURL: cfg.OpenWeatherBaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

// FetchWeather retrieves current weather for a city in metric units
func (p *OpenWeatherProvider) FetchWeather(ctx context.Context, city string) (*models.WeatherInfo, error) {
	if p.apiKey == "" {
		return nil, errors.NewConfigurationError("missing OPENWEATHER_API_KEY", nil)
	}

	params := url.Values{}
	params.Set("q", city)
	params.Set("appid", p.apiKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.NewExternalAPIError("build weather request", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewExternalAPIError("openweathermap request failed", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, p.handleHTTPError(resp.StatusCode)
	}

	var apiResponse openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, errors.NewExternalAPIError("decode openweathermap response", err)
	}

	return p.convertToWeatherInfo(&apiResponse), nil
}

func (p *OpenWeatherProvider) handleHTTPError(statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized:
		return errors.NewExternalAPIError("openweathermap: invalid API key", nil)
	case http.StatusNotFound:
		return errors.NewNotFoundError("openweathermap: city not found")
	case http.StatusTooManyRequests:
		return errors.NewExternalAPIError("openweathermap: rate limit exceeded", nil)
	default:
		return errors.NewExternalAPIError(fmt.Sprintf("openweathermap: HTTP %d error", statusCode), nil)
	}
}

func (p *OpenWeatherProvider) convertToWeatherInfo(apiResp *openWeatherResponse) *models.WeatherInfo {
	description := "Unavailable"
	if len(apiResp.Weather) > 0 && apiResp.Weather[0].Description != "" {
		description = apiResp.Weather[0].Description
	}

	return &models.WeatherInfo{
		Temperature: apiResp.Main.Temp,
		Description: description,
		Humidity:    apiResp.Main.Humidity,
		WindSpeed:   apiResp.Wind.Speed,
	}
}
