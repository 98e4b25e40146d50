package service

import (
	"context"

	"cityinfo.app/models"
)

// CityServiceInterface defines the aggregation operations consumed by the API layer
type CityServiceInterface interface {
	GetCityInfo(ctx context.Context, city string) (*models.CityInfo, error)
	EvictCity(ctx context.Context, city string) error
	FlushCache(ctx context.Context)
}
