package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/culina-ai/backend/internal/models"
	"github.com/pageza/culina-ai/backend/internal/types"
)

// RecipeGenerator runs the generation pipeline
type RecipeGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	ListPublic(ctx context.Context, query string, limit, offset int) ([]models.Recipe, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Recipe, error)
	GetDetail(ctx context.Context, viewer, id uuid.UUID) (*types.RecipeDetail, error)
	GetCookingMode(ctx context.Context, viewer, id uuid.UUID) (*types.CookingMode, error)
	SetVisibility(ctx context.Context, userID, id uuid.UUID, public bool) (*models.Recipe, error)
}

// IFavoriteService defines the interface for saved recipes
type IFavoriteService interface {
	AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) error
	RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error
	ListFavorites(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Recipe, error)
}

// ICommentService defines the interface for recipe comments
type ICommentService interface {
	AddComment(ctx context.Context, userID, recipeID uuid.UUID, body string) (*models.Comment, error)
	ListComments(ctx context.Context, recipeID uuid.UUID, limit, offset int) ([]models.Comment, error)
	DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error
}

// IPreferenceService defines the interface for dietary preferences
type IPreferenceService interface {
	Get(ctx context.Context, userID uuid.UUID) (*Preferences, error)
	Save(ctx context.Context, userID uuid.UUID, restrictions, allergies []string) (*Preferences, error)
}

// ISubscriptionService defines the interface for plans
type ISubscriptionService interface {
	GetSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	Upgrade(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
}

// IImageService defines the interface for recipe pictures
type IImageService interface {
	UploadRecipeImage(ctx context.Context, userID, recipeID uuid.UUID, data []byte) (string, error)
}

// UsageReader reports generation usage
type UsageReader interface {
	Usage(ctx context.Context, userID uuid.UUID) (*models.UsageRecord, error)
}
