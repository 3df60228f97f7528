package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/culina-ai/backend/internal/models"
	"github.com/pageza/culina-ai/backend/internal/testhelpers"
)

func TestFavoriteServiceAddAndRemove(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := NewFavoriteService(db, NewRecipeService(db))
	ctx := context.Background()
	userID := uuid.New()
	recipe := testhelpers.CreateRecipe(t, db, uuid.New(), "Publique", true)

	require.NoError(t, svc.AddFavorite(ctx, userID, recipe.ID))
	require.NoError(t, svc.AddFavorite(ctx, userID, recipe.ID))

	favorites, err := svc.ListFavorites(ctx, userID, 0, 0)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, recipe.ID, favorites[0].ID)

	require.NoError(t, svc.RemoveFavorite(ctx, userID, recipe.ID))
	assert.ErrorIs(t, svc.RemoveFavorite(ctx, userID, recipe.ID), ErrNotFound)

	favorites, err = svc.ListFavorites(ctx, userID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, favorites)
}

func TestFavoriteServiceHiddenRecipe(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := NewFavoriteService(db, NewRecipeService(db))
	recipe := testhelpers.CreateRecipe(t, db, uuid.New(), "Privée", false)

	err := svc.AddFavorite(context.Background(), uuid.New(), recipe.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFavoriteServiceFreeLimit(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := NewFavoriteService(db, NewRecipeService(db))
	ctx := context.Background()
	userID := uuid.New()
	owner := uuid.New()

	for i := 0; i < models.FreeMaxSavedRecipes; i++ {
		recipe := testhelpers.CreateRecipe(t, db, owner, fmt.Sprintf("Recette %d", i), true)
		require.NoError(t, svc.AddFavorite(ctx, userID, recipe.ID))
	}

	extra := testhelpers.CreateRecipe(t, db, owner, "Une de trop", true)
	err := svc.AddFavorite(ctx, userID, extra.ID)
	assert.ErrorIs(t, err, ErrFavoriteLimit)
	assert.Equal(t, CodeFavoriteLimit, CodeOf(err))

	require.NoError(t, db.Create(&models.Subscription{
		UserID:          userID,
		Tier:            models.TierPro,
		MaxSavedRecipes: models.ProMaxSavedRecipes,
	}).Error)
	assert.NoError(t, svc.AddFavorite(ctx, userID, extra.ID))
}
