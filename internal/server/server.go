package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/culina-ai/backend/config"
	"github.com/pageza/culina-ai/backend/internal/api"
	"github.com/pageza/culina-ai/backend/internal/database"
	"github.com/pageza/culina-ai/backend/internal/metrics"
	"github.com/pageza/culina-ai/backend/internal/middleware"
	"github.com/pageza/culina-ai/backend/internal/service"
)

// Dependencies are the clients the server is built on. Redis and S3 may be nil.
type Dependencies struct {
	DB       *gorm.DB
	Redis    *redis.Client
	S3       *config.S3Config
	Registry *prometheus.Registry
	Logger   *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
	redis  *redis.Client
	logger *zap.Logger
}

// New wires the services and routes
func New(cfg *config.Config, deps Dependencies) *Server {
	log := deps.Logger.Named("server")

	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	m := metrics.New(reg)

	authService := service.NewAuthService(cfg.JWTSecret)
	quotaService := service.NewQuotaService(deps.DB, deps.Logger)
	preferenceService := service.NewPreferenceService(deps.DB, deps.Logger)
	recipeService := service.NewRecipeService(deps.DB)
	generationService := service.NewGenerationService(
		quotaService,
		preferenceService,
		service.NewCompletionClient(cfg, m, deps.Logger),
		service.NewRecipeWriterService(deps.DB, cfg.StrictPersistence, deps.Logger),
		cfg.QuotaMode,
		m,
		deps.Logger,
	)

	services := api.Services{
		Auth:          authService,
		Generator:     generationService,
		Recipes:       recipeService,
		Favorites:     service.NewFavoriteService(deps.DB, recipeService),
		Comments:      service.NewCommentService(deps.DB),
		Preferences:   preferenceService,
		Subscriptions: service.NewSubscriptionService(deps.DB, quotaService, deps.Logger),
		Usage:         quotaService,
	}
	if deps.S3 != nil {
		services.Images = service.NewImageService(deps.S3, recipeService, deps.Logger)
	}
	if deps.Redis != nil {
		services.RateLimiter = middleware.NewGenerationRateLimiter(deps.Redis, cfg.GenerationRatePerHour, deps.Logger)
	} else {
		log.Warn("redis not configured, generation burst limit disabled")
	}

	router := gin.New()
	router.Use(middleware.ErrorHandler(deps.Logger))
	router.Use(middleware.RequestLogger(deps.Logger, m))
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	s := &Server{
		router: router,
		db:     deps.DB,
		redis:  deps.Redis,
		logger: log,
	}

	router.GET("/health", s.healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	api.SetupAPI(router, services, deps.Logger)

	s.http = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root http handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// healthCheck reports database and redis reachability
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"status": "healthy", "database": "ok"}
	code := http.StatusOK

	if err := database.HealthCheck(ctx, s.db); err != nil {
		s.logger.Error("database health check failed", zap.Error(err))
		status["status"] = "unhealthy"
		status["database"] = "unreachable"
		code = http.StatusServiceUnavailable
	}

	// redis only backs the burst limiter, which fails open
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			status["redis"] = "unreachable"
		} else {
			status["redis"] = "ok"
		}
	}

	c.JSON(code, status)
}
