package app

import (
	"fmt"
	"log/slog"
	"time"

	"cityinfo.app/api"
	"cityinfo.app/config"
	"cityinfo.app/providers"
	"cityinfo.app/providers/cache"
	"cityinfo.app/service"
)

// Application represents the main application with all its dependencies
type Application struct {
	config      *config.Config
	server      *api.Server
	memoryCache *cache.MemoryCache
	redisCache  *cache.RedisCache
}

// NewApplication creates and initializes a new application instance
func NewApplication() (*Application, error) {
	app := &Application{}

	if err := app.loadConfiguration(); err != nil {
		return nil, err
	}

	if err := app.initializeServices(); err != nil {
		return nil, err
	}

	return app, nil
}

func (app *Application) loadConfiguration() error {
	slog.Info("Loading configuration...")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return fmt.Errorf("load application configuration: %w", err)
	}

	app.config = cfg
	slog.Info("Configuration loaded successfully")
	return nil
}

func (app *Application) initializeServices() error {
	slog.Info("Initializing services...")

	genericCache, err := app.createCache()
	if err != nil {
		return fmt.Errorf("create cache: %w", err)
	}

	cityCache := cache.NewCityCache(
		cache.NewInstrumentedCache(genericCache, app.config.Cache.Type),
	)

	providerCfg := &app.config.Providers
	cityService := service.NewCityService(
		cityCache,
		providers.NewOpenWeatherProvider(providerCfg),
		providers.NewLocalTimeProvider(),
		providers.NewNewsAPIProvider(providerCfg),
		providers.NewExchangeRateProvider(providerCfg),
		app.config.Cache.TTL(),
		providerCfg.Timeout(),
	)

	app.server = api.NewServer(app.config, cityService)

	slog.Info("Services initialized successfully")
	return nil
}

// createCache builds the configured cache backend
func (app *Application) createCache() (cache.Cache, error) {
	switch app.config.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(&cache.RedisCacheConfig{
			Addr:         app.config.Cache.RedisAddr,
			Password:     app.config.Cache.RedisPassword,
			DB:           app.config.Cache.RedisDB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
		if err != nil {
			return nil, err
		}
		app.redisCache = redisCache
		return redisCache, nil
	default:
		memoryCache := cache.NewMemoryCache(app.config.Cache.CheckPeriod())
		app.memoryCache = memoryCache
		return memoryCache, nil
	}
}

// Start starts the application
func (app *Application) Start() error {
	slog.Info("Starting HTTP server", "port", app.config.Server.Port)
	return app.server.Start()
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	slog.Info("Shutting down application...")

	if app.memoryCache != nil {
		app.memoryCache.Stop()
	}
	if app.redisCache != nil {
		if err := app.redisCache.Close(); err != nil {
			slog.Warn("Error closing Redis connection", "error", err)
		}
	}

	slog.Info("Application shutdown complete")
	return nil
}

// Config returns the application configuration
func (app *Application) Config() *config.Config {
	return app.config
}
