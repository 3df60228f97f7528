package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/pageza/culina-ai/backend/config"
	"github.com/pageza/culina-ai/backend/internal/database"
	"github.com/pageza/culina-ai/backend/pkg/logger"
)

func main() {
	down := flag.Bool("down", false, "roll back the latest migration instead of applying pending ones")
	timeout := flag.Duration("timeout", 2*time.Minute, "maximum time to wait for the database")
	flag.Parse()

	log := logger.New(logger.Config{Level: "info", Format: "console"})
	defer func() { _ = log.Sync() }()

	// DATABASE_URL wins over the discrete DB_* settings
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatal("failed to load configuration", zap.Error(err))
		}
		dsn = cfg.PostgresURL()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	m, err := database.NewMigrator(ctx, db, database.Migrations, log)
	if err != nil {
		log.Fatal("failed to prepare migrations", zap.Error(err))
	}
	defer m.Close()

	if *down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	version, dirty, err := m.Version()
	if err != nil {
		log.Fatal("failed to read schema version", zap.Error(err))
	}
	log.Info("schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
}
