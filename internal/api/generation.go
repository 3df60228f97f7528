package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/culina-ai/backend/internal/middleware"
	"github.com/pageza/culina-ai/backend/internal/service"
	"github.com/pageza/culina-ai/backend/internal/types"
)

// GenerationHandler serves the recipe generation endpoint
type GenerationHandler struct {
	generator   service.RecipeGenerator
	auth        middleware.TokenValidator
	rateLimiter *middleware.RateLimiter
	logger      *zap.Logger
}

// NewGenerationHandler creates a new GenerationHandler instance. rateLimiter may be nil.
func NewGenerationHandler(generator service.RecipeGenerator, auth middleware.TokenValidator, rateLimiter *middleware.RateLimiter, logger *zap.Logger) *GenerationHandler {
	return &GenerationHandler{
		generator:   generator,
		auth:        auth,
		rateLimiter: rateLimiter,
		logger:      logger.Named("api.generation"),
	}
}

// RegisterRoutes registers the generation route
func (h *GenerationHandler) RegisterRoutes(router *gin.RouterGroup) {
	handlers := []gin.HandlerFunc{middleware.AuthMiddleware(h.auth)}
	if h.rateLimiter != nil {
		handlers = append(handlers, h.rateLimiter.RateLimitMiddleware())
	}
	handlers = append(handlers, h.GenerateRecipe)
	router.POST("/generate-recipe", handlers...)
}

// GenerateRecipe runs one generation for the authenticated user
func (h *GenerationHandler) GenerateRecipe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req types.GenerateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	// userId is optional in the body but may not name somebody else
	if req.UserID != "" {
		claimed, err := uuid.Parse(req.UserID)
		if err != nil {
			badRequest(c)
			return
		}
		if claimed != userID {
			c.JSON(http.StatusForbidden, types.ErrorResponse{
				Error: messages[service.CodeForbidden],
				Code:  string(service.CodeForbidden),
			})
			return
		}
	}

	result, err := h.generator.Generate(c.Request.Context(), service.GenerateRequest{
		UserID: userID,
		Prompt: req.Prompt,
	})
	if err != nil {
		respondError(c, h.logger, err, service.MessageGenerationFailed)
		return
	}

	if result.QuotaExceeded {
		c.JSON(http.StatusForbidden, types.ErrorResponse{
			Error: service.MessageQuotaExceeded,
			Code:  string(service.CodeQuotaExceeded),
		})
		return
	}

	resp := types.GenerateRecipeResponse{
		Success:  true,
		RecipeID: result.RecipeID,
	}
	if result.Degraded {
		resp.Degraded = true
		resp.Ingredients = string(result.Ingredients)
		resp.Steps = string(result.Steps)
	}
	c.JSON(http.StatusOK, resp)
}
