package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/culina-ai/backend/internal/middleware"
	"github.com/pageza/culina-ai/backend/internal/service"
)

// Services groups what the handlers depend on. Images and RateLimiter may be nil.
type Services struct {
	Auth          middleware.TokenValidator
	Generator     service.RecipeGenerator
	Recipes       service.IRecipeService
	Favorites     service.IFavoriteService
	Comments      service.ICommentService
	Preferences   service.IPreferenceService
	Subscriptions service.ISubscriptionService
	Usage         service.UsageReader
	Images        service.IImageService
	RateLimiter   *middleware.RateLimiter
}

// SetupAPI registers every /api/v1 route on router
func SetupAPI(router *gin.Engine, s Services, logger *zap.Logger) {
	v1 := router.Group("/api/v1")

	NewGenerationHandler(s.Generator, s.Auth, s.RateLimiter, logger).RegisterRoutes(v1)
	NewRecipeHandler(s.Recipes, s.Favorites, s.Auth, logger).RegisterRoutes(v1)
	NewCommentHandler(s.Comments, s.Auth, logger).RegisterRoutes(v1)
	NewProfileHandler(s.Preferences, s.Subscriptions, s.Usage, s.Auth, logger).RegisterRoutes(v1)

	if s.Images != nil {
		NewImageHandler(s.Images, s.Auth, logger).RegisterRoutes(v1)
	} else {
		logger.Warn("image storage not configured, image upload route disabled")
	}
}
