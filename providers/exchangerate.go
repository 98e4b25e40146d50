package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"cityinfo.app/config"
	"cityinfo.app/errors"
	"cityinfo.app/models"
)

const defaultBaseCurrency = "USD"

// ExchangeRateProvider implements CurrencyProvider for ExchangeRate-API v6
type ExchangeRateProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type exchangeRateResponse struct {
	Result          string             `json:"result"`
	BaseCode        string             `json:"base_code"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
}

// NewExchangeRateProvider creates a new ExchangeRate-API provider
func NewExchangeRateProvider(cfg *config.ProvidersConfig) *ExchangeRateProvider {
	return &ExchangeRateProvider{
		apiKey:  cfg.ExchangeRateAPIKey,
		baseURL: cfg.ExchangeRateBaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

// FetchCurrency retrieves the full USD rate table
func (p *ExchangeRateProvider) FetchCurrency(ctx context.Context) (*models.CurrencyInfo, error) {
	if p.apiKey == "" {
		return nil, errors.NewConfigurationError("missing EXCHANGERATE_API_KEY", nil)
	}

	requestURL := fmt.Sprintf("%s/%s/latest/%s", p.baseURL, p.apiKey, defaultBaseCurrency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, errors.NewExternalAPIError("build currency request", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewExternalAPIError("exchangerate request failed", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternalAPIError(fmt.Sprintf("exchangerate: HTTP %d error", resp.StatusCode), nil)
	}

	var apiResponse exchangeRateResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, errors.NewExternalAPIError("decode exchangerate response", err)
	}

	if apiResponse.ConversionRates == nil {
		return nil, errors.NewExternalAPIError("exchangerate: response missing conversion rates", nil)
	}

	return &models.CurrencyInfo{
		BaseCurrency: defaultBaseCurrency,
		Rates:        apiResponse.ConversionRates,
	}, nil
}
