package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/culina-ai/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ChildOutcome is the result of one child-row bulk insert
type ChildOutcome string

const (
	ChildOK      ChildOutcome = "ok"
	ChildSkipped ChildOutcome = "skipped"
	ChildFailed  ChildOutcome = "failed"
)

// WriteResult reports what was stored for one generated recipe
type WriteResult struct {
	RecipeID    uuid.UUID
	Ingredients ChildOutcome
	Steps       ChildOutcome
}

// Degraded is true when the header was stored but a child insert failed
func (r *WriteResult) Degraded() bool {
	return r.Ingredients == ChildFailed || r.Steps == ChildFailed
}

// RecipeWriter stores an extracted recipe for a user
type RecipeWriter interface {
	Write(ctx context.Context, userID uuid.UUID, payload *RecipePayload) (*WriteResult, error)
}

// RecipeWriterService persists generated recipes with gorm.
// In tolerant mode child failures are logged and reported; in strict mode everything
// runs in one transaction and any failure rolls back.
type RecipeWriterService struct {
	db     *gorm.DB
	strict bool
	logger *zap.Logger
}

// NewRecipeWriterService creates a new RecipeWriterService instance
func NewRecipeWriterService(db *gorm.DB, strict bool, logger *zap.Logger) *RecipeWriterService {
	return &RecipeWriterService{
		db:     db,
		strict: strict,
		logger: logger.Named("writer"),
	}
}

// Write stores the header, then ingredients, then steps
func (s *RecipeWriterService) Write(ctx context.Context, userID uuid.UUID, payload *RecipePayload) (*WriteResult, error) {
	if s.strict {
		var result *WriteResult
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			result, err = s.write(tx, userID, payload, true)
			return err
		})
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return s.write(s.db.WithContext(ctx), userID, payload, false)
}

func (s *RecipeWriterService) write(db *gorm.DB, userID uuid.UUID, payload *RecipePayload, strict bool) (*WriteResult, error) {
	recipe := payload.ToRecipe()
	recipe.UserID = userID
	recipe.Embedding = GenerateEmbedding(recipeSearchText(recipe.Title, recipe.CuisineType, recipe.Description))

	if err := db.Create(recipe).Error; err != nil {
		return nil, &PersistenceError{Op: "insert recipe", Err: err}
	}

	result := &WriteResult{
		RecipeID:    recipe.ID,
		Ingredients: ChildSkipped,
		Steps:       ChildSkipped,
	}

	if len(payload.Ingredients) > 0 {
		rows := make([]models.RecipeIngredient, len(payload.Ingredients))
		for i, ing := range payload.Ingredients {
			rows[i] = models.RecipeIngredient{
				RecipeID:   recipe.ID,
				Name:       ing.Name,
				Quantity:   float64(ing.Quantity),
				Unit:       ing.Unit,
				OrderIndex: int(ing.OrderIndex),
			}
		}
		if err := db.Create(&rows).Error; err != nil {
			if strict {
				return nil, &PersistenceError{Op: "insert ingredients", Err: err}
			}
			s.logger.Error("failed to insert ingredients",
				zap.String("recipe_id", recipe.ID.String()),
				zap.Int("count", len(rows)),
				zap.Error(err))
			result.Ingredients = ChildFailed
		} else {
			result.Ingredients = ChildOK
		}
	}

	if len(payload.Steps) > 0 {
		rows := make([]models.RecipeStep, len(payload.Steps))
		for i, step := range payload.Steps {
			rows[i] = models.RecipeStep{
				RecipeID:    recipe.ID,
				StepNumber:  int(step.StepNumber),
				Instruction: step.Instruction,
			}
		}
		if err := db.Create(&rows).Error; err != nil {
			if strict {
				return nil, &PersistenceError{Op: "insert steps", Err: err}
			}
			s.logger.Error("failed to insert steps",
				zap.String("recipe_id", recipe.ID.String()),
				zap.Int("count", len(rows)),
				zap.Error(err))
			result.Steps = ChildFailed
		} else {
			result.Steps = ChildOK
		}
	}

	if result.Degraded() {
		s.logger.Warn("recipe stored without all of its children",
			zap.String("recipe_id", recipe.ID.String()),
			zap.String("ingredients", string(result.Ingredients)),
			zap.String("steps", string(result.Steps)))
	}

	return result, nil
}

// String is used in log fields
func (r *WriteResult) String() string {
	return fmt.Sprintf("recipe=%s ingredients=%s steps=%s", r.RecipeID, r.Ingredients, r.Steps)
}
