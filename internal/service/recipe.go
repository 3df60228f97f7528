package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/culina-ai/backend/internal/models"
	"github.com/pageza/culina-ai/backend/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Page sizes of list endpoints
const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

// RecipeService handles recipe reads and owner updates
type RecipeService struct {
	db *gorm.DB
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// ClampPage applies the default and maximum page size
func ClampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ListPublic returns the public feed, newest first, optionally filtered by title
func (s *RecipeService) ListPublic(ctx context.Context, query string, limit, offset int) ([]models.Recipe, error) {
	limit, offset = ClampPage(limit, offset)
	db := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("is_public = ?", true)

	query = strings.TrimSpace(query)
	if query != "" {
		db = db.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(query)+"%")
	}

	if query != "" && s.db.Dialector.Name() == "postgres" {
		db = db.Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:                "embedding <-> ?, created_at DESC",
			Vars:               []interface{}{GenerateEmbedding(query)},
			WithoutParentheses: true,
		}})
	} else {
		db = db.Order("created_at DESC")
	}

	var recipes []models.Recipe
	if err := db.Limit(limit).Offset(offset).Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}

// ListByUser returns the recipes a user generated, newest first
func (s *RecipeService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Recipe, error) {
	limit, offset = ClampPage(limit, offset)
	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user recipes: %w", err)
	}
	return recipes, nil
}

// GetRecipe returns a recipe header visible to viewer.
// Private recipes are only visible to their owner; viewer may be uuid.Nil.
func (s *RecipeService) GetRecipe(ctx context.Context, viewer, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	if !recipe.IsPublic && recipe.UserID != viewer {
		return nil, ErrNotFound
	}
	return &recipe, nil
}

// GetDetail returns a recipe with ingredients ordered by order_index and steps by step_number
func (s *RecipeService) GetDetail(ctx context.Context, viewer, id uuid.UUID) (*types.RecipeDetail, error) {
	recipe, err := s.GetRecipe(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	detail := &types.RecipeDetail{Recipe: *recipe}
	db := s.db.WithContext(ctx)
	if err := db.Where("recipe_id = ?", id).Order("order_index ASC").Find(&detail.Ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to get ingredients: %w", err)
	}
	if err := db.Where("recipe_id = ?", id).Order("step_number ASC").Find(&detail.Steps).Error; err != nil {
		return nil, fmt.Errorf("failed to get steps: %w", err)
	}

	if viewer != uuid.Nil {
		var count int64
		if err := db.Model(&models.Favorite{}).Where("user_id = ? AND recipe_id = ?", viewer, id).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to check favorite: %w", err)
		}
		detail.IsFavorite = count > 0
	}
	return detail, nil
}

// GetCookingMode returns the step-by-step view of a recipe
func (s *RecipeService) GetCookingMode(ctx context.Context, viewer, id uuid.UUID) (*types.CookingMode, error) {
	detail, err := s.GetDetail(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	return &types.CookingMode{
		RecipeID:    detail.ID,
		Title:       detail.Title,
		Servings:    detail.Servings,
		Ingredients: detail.Ingredients,
		Steps:       detail.Steps,
		TotalSteps:  len(detail.Steps),
	}, nil
}

// SetVisibility publishes or unpublishes a recipe. Only the owner may do it.
func (s *RecipeService) SetVisibility(ctx context.Context, userID, id uuid.UUID, public bool) (*models.Recipe, error) {
	recipe, err := s.ownedRecipe(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(recipe).Update("is_public", public).Error; err != nil {
		return nil, fmt.Errorf("failed to update visibility: %w", err)
	}
	recipe.IsPublic = public
	return recipe, nil
}

// SetImageURL stores the picture of a recipe. Only the owner may do it.
func (s *RecipeService) SetImageURL(ctx context.Context, userID, id uuid.UUID, url string) error {
	recipe, err := s.ownedRecipe(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(recipe).Update("image_url", url).Error; err != nil {
		return fmt.Errorf("failed to update image: %w", err)
	}
	return nil
}

// EnsureOwner fails with ErrNotFound or ErrForbidden unless userID owns the recipe
func (s *RecipeService) EnsureOwner(ctx context.Context, userID, id uuid.UUID) error {
	_, err := s.ownedRecipe(ctx, userID, id)
	return err
}

func (s *RecipeService) ownedRecipe(ctx context.Context, userID, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	if recipe.UserID != userID {
		if !recipe.IsPublic {
			return nil, ErrNotFound
		}
		return nil, ErrForbidden
	}
	return &recipe, nil
}
