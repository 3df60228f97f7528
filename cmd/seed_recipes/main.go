// Command seed_recipes fills a development database with public recipes by
// running the regular generation pipeline for a demo account.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/pageza/culina-ai/backend/config"
	"github.com/pageza/culina-ai/backend/internal/database"
	"github.com/pageza/culina-ai/backend/internal/metrics"
	"github.com/pageza/culina-ai/backend/internal/service"
	"github.com/pageza/culina-ai/backend/pkg/logger"
)

var recipePrompts = []string{
	"Un gratin dauphinois crémeux pour quatre personnes",
	"Une salade de lentilles vertes du Puy, vinaigrette à la moutarde",
	"Un curry de légumes doux au lait de coco",
	"Une tarte aux poireaux et au chèvre",
	"Un risotto aux champignons de saison",
	"Une soupe froide de concombre et menthe",
	"Un poulet rôti au citron et au thym",
	"Une mousse au chocolat sans œufs",
	"Un bol de quinoa, pois chiches rôtis et légumes croquants",
	"Des crêpes de sarrasin garnies pour un dîner rapide",
	"Une ratatouille mijotée à l'huile d'olive",
	"Un pain perdu à la cannelle pour le brunch",
}

func main() {
	count := flag.Int("count", len(recipePrompts), "number of recipes to generate")
	user := flag.String("user", "", "owner of the seeded recipes (random when empty)")
	timeout := flag.Duration("timeout", 90*time.Second, "time allowed per generation")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		zap.NewExample().Fatal("failed to load configuration", zap.Error(err))
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", Development: true})
	defer func() { _ = log.Sync() }()

	if config.IsProduction() {
		log.Fatal("refusing to seed a production database")
	}

	db, err := database.Open(cfg, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.RunMigrations(context.Background(), db, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	ownerID := uuid.New()
	if *user != "" {
		if ownerID, err = uuid.Parse(*user); err != nil {
			log.Fatal("invalid user id", zap.Error(err))
		}
	}

	quota := service.NewQuotaService(db, log)
	recipes := service.NewRecipeService(db)
	m := metrics.New(prometheus.NewRegistry())
	generator := service.NewGenerationService(
		quota,
		service.NewPreferenceService(db, log),
		service.NewCompletionClient(cfg, m, log),
		service.NewRecipeWriterService(db, cfg.StrictPersistence, log),
		cfg.QuotaMode,
		m,
		log,
	)

	// the demo account is pro so the free monthly cap does not cut the run short
	if _, err := service.NewSubscriptionService(db, quota, log).Upgrade(context.Background(), ownerID); err != nil {
		log.Fatal("failed to upgrade seed user", zap.Error(err))
	}

	created := 0
	for i := 0; i < *count; i++ {
		prompt := recipePrompts[i%len(recipePrompts)]
		recipeLog := log.With(zap.Int("n", i+1), zap.String("prompt", prompt))

		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		result, err := generator.Generate(ctx, service.GenerateRequest{UserID: ownerID, Prompt: prompt})
		if err != nil {
			cancel()
			recipeLog.Warn("generation failed", zap.String("code", string(service.CodeOf(err))), zap.Error(err))
			continue
		}
		if result.QuotaExceeded {
			cancel()
			recipeLog.Warn("quota exhausted, stopping")
			break
		}
		if _, err := recipes.SetVisibility(ctx, ownerID, result.RecipeID, true); err != nil {
			recipeLog.Warn("failed to publish recipe", zap.Error(err))
		}
		cancel()

		created++
		recipeLog.Info("recipe seeded",
			zap.String("recipe_id", result.RecipeID.String()),
			zap.Bool("degraded", result.Degraded))
	}

	log.Info("seeding finished",
		zap.String("user_id", ownerID.String()),
		zap.Int("created", created),
		zap.Int("requested", *count))
}
