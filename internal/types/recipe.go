package types

import (
	"github.com/google/uuid"
	"github.com/pageza/culina-ai/backend/internal/models"
)

// GenerateRecipeResponse is returned by a successful generation
type GenerateRecipeResponse struct {
	Success     bool      `json:"success"`
	RecipeID    uuid.UUID `json:"recipeId"`
	Degraded    bool      `json:"degraded,omitempty"`
	Ingredients string    `json:"ingredients,omitempty"`
	Steps       string    `json:"steps,omitempty"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// RecipeDetail is a recipe with its ordered children
type RecipeDetail struct {
	models.Recipe
	Ingredients []models.RecipeIngredient `json:"ingredients"`
	Steps       []models.RecipeStep       `json:"steps"`
	IsFavorite  bool                      `json:"is_favorite"`
}

// CookingMode is the step-by-step view of a recipe
type CookingMode struct {
	RecipeID    uuid.UUID                 `json:"recipe_id"`
	Title       string                    `json:"title"`
	Servings    int                       `json:"servings"`
	Ingredients []models.RecipeIngredient `json:"ingredients"`
	Steps       []models.RecipeStep       `json:"steps"`
	TotalSteps  int                       `json:"total_steps"`
}

// UsageResponse reports this month's generation usage
type UsageResponse struct {
	Month           string `json:"month"`
	GenerationCount int    `json:"generation_count"`
	MonthlyLimit    int    `json:"monthly_limit"`
	Remaining       int    `json:"remaining"`
	Unlimited       bool   `json:"unlimited"`
}

// ListResponse wraps a page of results
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
