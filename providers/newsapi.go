package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"cityinfo.app/config"
	"cityinfo.app/errors"
	"cityinfo.app/models"
)

const maxArticles = 5

// NewsAPIProvider implements NewsProvider for NewsAPI.org
type NewsAPIProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Article fields are pointers so missing upstream values can be detected and
// defaulted without aborting the whole fetch.
type newsAPIResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		URL         *string `json:"url"`
		PublishedAt *string `json:"publishedAt"`
	} `json:"articles"`
}

// NewNewsAPIProvider creates a new NewsAPI.org provider
func NewNewsAPIProvider(cfg *config.ProvidersConfig) *NewsAPIProvider {
	return &NewsAPIProvider{
		apiKey:  cfg.NewsAPIKey,
		baseURL: cfg.NewsBaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

// FetchNews retrieves up to five headlines mentioning the city, newest first
func (p *NewsAPIProvider) FetchNews(ctx context.Context, city string) ([]models.NewsItem, error) {
	if p.apiKey == "" {
		return nil, errors.NewConfigurationError("missing NEWS_API_KEY", nil)
	}

	params := url.Values{}
	params.Set("q", city)
	params.Set("pageSize", strconv.Itoa(maxArticles))
	params.Set("sortBy", "publishedAt")
	params.Set("apiKey", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.NewExternalAPIError("build news request", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewExternalAPIError("newsapi request failed", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternalAPIError(fmt.Sprintf("newsapi: HTTP %d error", resp.StatusCode), nil)
	}

	var apiResponse newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, errors.NewExternalAPIError("decode newsapi response", err)
	}

	return p.convertArticles(&apiResponse), nil
}

func (p *NewsAPIProvider) convertArticles(apiResp *newsAPIResponse) []models.NewsItem {
	items := make([]models.NewsItem, 0, maxArticles)

	for _, article := range apiResp.Articles {
		if len(items) == maxArticles {
			break
		}

		item := models.NewsItem{
			Title:       "Untitled",
			Description: article.Description,
			URL:         "",
			PublishedAt: "",
		}
		if article.Title != nil && *article.Title != "" {
			item.Title = *article.Title
		}
		if article.URL != nil {
			item.URL = *article.URL
		}
		if article.PublishedAt != nil {
			item.PublishedAt = *article.PublishedAt
		}

		items = append(items, item)
	}

	return items
}
