package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	"cityinfo.app/config"
	cityerr "cityinfo.app/errors"
	"cityinfo.app/models"
	"cityinfo.app/service"
)

// Server represents the HTTP server and API handler
type Server struct {
	router      *gin.Engine
	config      *config.Config
	cityService service.CityServiceInterface
}

// validateNotBlank rejects strings that are empty or whitespace-only
func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// NewServer creates and configures a new HTTP server
func NewServer(cfg *config.Config, cityService service.CityServiceInterface) *Server {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("notblank", validateNotBlank); err != nil {
			slog.Warn("Failed to register notblank validator", "error", err)
		}
	}

	router := gin.Default()
	router.Use(requestIDMiddleware())

	server := &Server{
		router:      router,
		config:      cfg,
		cityService: cityService,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.health)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	{
		api.GET("/city", s.missingCity)
		api.GET("/city/:city", s.rateLimitMiddleware(), s.getCityInfo)
		api.DELETE("/cache/:city", s.evictCity)
		api.POST("/cache/flush", s.flushCache)
		api.POST("/cache/warm", s.warmCache)
	}
}

// Start begins the HTTP server
func (s *Server) Start() error {
	return s.router.Run(fmt.Sprintf(":%d", s.config.Server.Port))
}

// GetRouter returns the router for testing purposes
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// requestIDMiddleware attaches an X-Request-ID to every request
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// rateLimitMiddleware applies a fixed window per-client limit to the city endpoint
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	rate := limiter.Rate{
		Period: s.config.RateLimit.Window(),
		Limit:  int64(s.config.RateLimit.MaxRequests),
	}

	return mgin.NewMiddleware(
		limiter.New(memorystore.NewStore(), rate),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		}),
	)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) missingCity(c *gin.Context) {
	s.handleError(c, cityerr.NewValidationError("City parameter is required"))
}

func (s *Server) getCityInfo(c *gin.Context) {
	city := c.Param("city")

	slog.Debug("Getting city info", "city", city, "request_id", c.GetString("request_id"))
	info, err := s.cityService.GetCityInfo(c.Request.Context(), city)
	if err != nil {
		slog.Error("City service error", "error", err, "city", city)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

func (s *Server) evictCity(c *gin.Context) {
	city := c.Param("city")

	if err := s.cityService.EvictCity(c.Request.Context(), city); err != nil {
		s.handleError(c, err)
		return
	}

	slog.Debug("Cache entry evicted", "city", city)
	c.JSON(http.StatusOK, gin.H{"message": "Cache entry evicted"})
}

func (s *Server) flushCache(c *gin.Context) {
	s.cityService.FlushCache(c.Request.Context())

	slog.Debug("Cache flushed")
	c.JSON(http.StatusOK, gin.H{"message": "Cache flushed"})
}

func (s *Server) warmCache(c *gin.Context) {
	var req models.WarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("Request binding error", "error", err)
		s.handleError(c, cityerr.NewValidationError("invalid request format"))
		return
	}

	warmed := 0
	for _, city := range req.Cities {
		if _, err := s.cityService.GetCityInfo(c.Request.Context(), city); err != nil {
			slog.Warn("Cache warm skipped city", "city", city, "error", err)
			continue
		}
		warmed++
	}

	c.JSON(http.StatusOK, gin.H{"warmed": warmed})
}

// handleError handles different types of application errors
func (s *Server) handleError(c *gin.Context, err error) {
	var appErr *cityerr.AppError
	var statusCode int
	var message string

	if errors.As(err, &appErr) {
		switch appErr.Type {
		case cityerr.ValidationError:
			statusCode = http.StatusBadRequest
			message = appErr.Message
		case cityerr.NotFoundError:
			statusCode = http.StatusNotFound
			message = appErr.Message
		case cityerr.ExternalAPIError:
			statusCode = http.StatusServiceUnavailable
			message = "External service unavailable"
		default:
			statusCode = http.StatusInternalServerError
			message = "Internal server error"
		}
	} else {
		statusCode = http.StatusInternalServerError
		message = "Internal server error"
	}

	c.JSON(statusCode, models.ErrorResponse{Error: message})
}
