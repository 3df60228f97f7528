package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/culina-ai/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FavoriteService manages saved recipes
type FavoriteService struct {
	db      *gorm.DB
	recipes *RecipeService
}

// NewFavoriteService creates a new FavoriteService instance
func NewFavoriteService(db *gorm.DB, recipes *RecipeService) *FavoriteService {
	return &FavoriteService{
		db:      db,
		recipes: recipes,
	}
}

// AddFavorite saves a recipe for the user. Saving twice is a no-op.
// Free users are capped at their plan's saved-recipe limit.
func (s *FavoriteService) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	if _, err := s.recipes.GetRecipe(ctx, userID, recipeID); err != nil {
		return err
	}

	db := s.db.WithContext(ctx)

	var existing int64
	if err := db.Model(&models.Favorite{}).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to check favorite: %w", err)
	}
	if existing > 0 {
		return nil
	}

	limit, err := s.maxSaved(ctx, userID)
	if err != nil {
		return err
	}
	var count int64
	if err := db.Model(&models.Favorite{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count favorites: %w", err)
	}
	if count >= int64(limit) {
		return ErrFavoriteLimit
	}

	fav := &models.Favorite{UserID: userID, RecipeID: recipeID}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(fav).Error; err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite unsaves a recipe
func (s *FavoriteService) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(&models.Favorite{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove favorite: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFavorites returns the user's saved recipes, most recently saved first
func (s *FavoriteService) ListFavorites(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Recipe, error) {
	limit, offset = ClampPage(limit, offset)
	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Joins("JOIN user_favorites ON user_favorites.recipe_id = recipes.id").
		Where("user_favorites.user_id = ?", userID).
		Where("recipes.is_public = ? OR recipes.user_id = ?", true, userID).
		Order("user_favorites.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return recipes, nil
}

func (s *FavoriteService) maxSaved(ctx context.Context, userID uuid.UUID) (int, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.FreeMaxSavedRecipes, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub.MaxSavedRecipes <= 0 {
		return models.MaxSavedForTier(sub.Tier), nil
	}
	return sub.MaxSavedRecipes, nil
}
