package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/culina-ai/backend/config"
	"github.com/pageza/culina-ai/backend/internal/database"
	"github.com/pageza/culina-ai/backend/internal/server"
	"github.com/pageza/culina-ai/backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		// no logger yet
		zap.NewExample().Fatal("failed to load configuration", zap.Error(err))
	}

	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: config.IsDevelopment(),
	})
	defer func() { _ = log.Sync() }()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.RunMigrations(context.Background(), db, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// the burst limiter fails open, so redis is optional
	var redisClient *redis.Client
	if client, err := database.NewRedisClient(cfg, log); err != nil {
		log.Warn("redis unavailable, continuing without generation rate limit", zap.Error(err))
	} else {
		redisClient = client
		defer redisClient.Close()
	}

	var s3Config *config.S3Config
	if cfg.S3BucketName != "" {
		s3Config, err = config.NewS3Config(context.Background(), cfg)
		if err != nil {
			log.Warn("S3 unavailable, image upload disabled", zap.Error(err))
			s3Config = nil
		}
	}

	srv := server.New(cfg, server.Dependencies{
		DB:     db,
		Redis:  redisClient,
		S3:     s3Config,
		Logger: log,
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		log.Info("received signal", zap.String("signal", sig.String()))
	}

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
	log.Info("server stopped")
}
