package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/culina-ai/backend/internal/middleware"
	"github.com/pageza/culina-ai/backend/internal/models"
	"github.com/pageza/culina-ai/backend/internal/service"
	"github.com/pageza/culina-ai/backend/internal/types"
)

const messageRecipesFailed = "Impossible de charger les recettes"

// RecipeHandler serves the recipe feed, details and favorites
type RecipeHandler struct {
	recipes   service.IRecipeService
	favorites service.IFavoriteService
	auth      middleware.TokenValidator
	logger    *zap.Logger
}

// NewRecipeHandler creates a new RecipeHandler instance
func NewRecipeHandler(recipes service.IRecipeService, favorites service.IFavoriteService, auth middleware.TokenValidator, logger *zap.Logger) *RecipeHandler {
	return &RecipeHandler{
		recipes:   recipes,
		favorites: favorites,
		auth:      auth,
		logger:    logger.Named("api.recipes"),
	}
}

// RegisterRoutes registers the recipe routes
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", middleware.OptionalAuth(h.auth), h.GetRecipe)
		recipes.GET("/:id/cooking", middleware.OptionalAuth(h.auth), h.GetCookingMode)
		recipes.PATCH("/:id/visibility", middleware.AuthMiddleware(h.auth), h.UpdateVisibility)
		recipes.POST("/:id/favorite", middleware.AuthMiddleware(h.auth), h.FavoriteRecipe)
		recipes.DELETE("/:id/favorite", middleware.AuthMiddleware(h.auth), h.UnfavoriteRecipe)
	}

	me := router.Group("/me", middleware.AuthMiddleware(h.auth))
	{
		me.GET("/recipes", h.ListMyRecipes)
		me.GET("/favorites", h.ListFavorites)
	}
}

// ListRecipes returns the public feed
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	q, ok := listQuery(c)
	if !ok {
		return
	}

	recipes, err := h.recipes.ListPublic(c.Request.Context(), q.Query, q.Limit, q.Offset)
	if err != nil {
		respondError(c, h.logger, err, messageRecipesFailed)
		return
	}
	c.JSON(http.StatusOK, types.ListResponse[models.Recipe]{Items: recipes, Limit: q.Limit, Offset: q.Offset})
}

// GetRecipe returns a recipe with its ingredients and steps
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	viewer, _ := middleware.UserID(c)

	detail, err := h.recipes.GetDetail(c.Request.Context(), viewer, id)
	if err != nil {
		respondError(c, h.logger, err, messageRecipesFailed)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// GetCookingMode returns the step-by-step view of a recipe
func (h *RecipeHandler) GetCookingMode(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	viewer, _ := middleware.UserID(c)

	mode, err := h.recipes.GetCookingMode(c.Request.Context(), viewer, id)
	if err != nil {
		respondError(c, h.logger, err, messageRecipesFailed)
		return
	}
	c.JSON(http.StatusOK, mode)
}

// UpdateVisibility publishes or unpublishes one of the user's recipes
func (h *RecipeHandler) UpdateVisibility(c *gin.Context) {
	userID, id, ok := ownerRequest(c)
	if !ok {
		return
	}

	var req types.UpdateVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	recipe, err := h.recipes.SetVisibility(c.Request.Context(), userID, id, *req.IsPublic)
	if err != nil {
		respondError(c, h.logger, err, messageRecipesFailed)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// FavoriteRecipe saves a recipe for the user
func (h *RecipeHandler) FavoriteRecipe(c *gin.Context) {
	userID, id, ok := ownerRequest(c)
	if !ok {
		return
	}

	if err := h.favorites.AddFavorite(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.logger, err, messageRecipesFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorite": true})
}

// UnfavoriteRecipe removes a saved recipe
func (h *RecipeHandler) UnfavoriteRecipe(c *gin.Context) {
	userID, id, ok := ownerRequest(c)
	if !ok {
		return
	}

	if err := h.favorites.RemoveFavorite(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.logger, err, messageRecipesFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorite": false})
}

// ListMyRecipes returns the recipes the user generated
func (h *RecipeHandler) ListMyRecipes(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	q, ok := listQuery(c)
	if !ok {
		return
	}

	recipes, err := h.recipes.ListByUser(c.Request.Context(), userID, q.Limit, q.Offset)
	if err != nil {
		respondError(c, h.logger, err, messageRecipesFailed)
		return
	}
	c.JSON(http.StatusOK, types.ListResponse[models.Recipe]{Items: recipes, Limit: q.Limit, Offset: q.Offset})
}

// ListFavorites returns the user's saved recipes
func (h *RecipeHandler) ListFavorites(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	q, ok := listQuery(c)
	if !ok {
		return
	}

	recipes, err := h.favorites.ListFavorites(c.Request.Context(), userID, q.Limit, q.Offset)
	if err != nil {
		respondError(c, h.logger, err, messageRecipesFailed)
		return
	}
	c.JSON(http.StatusOK, types.ListResponse[models.Recipe]{Items: recipes, Limit: q.Limit, Offset: q.Offset})
}

// requireUser reads the authenticated user, answering 401 when absent
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "user not authenticated", Code: "UNAUTHORIZED"})
		return uuid.Nil, false
	}
	return userID, true
}

// ownerRequest reads the authenticated user and the :id path parameter
func ownerRequest(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := requireUser(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, ok := pathID(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}
