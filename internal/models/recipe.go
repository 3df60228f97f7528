package models

import (
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// Difficulty levels
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// EmbeddingDimensions is the size of the recipe search vector
const EmbeddingDimensions = 3

// NutritionalInfo holds per-serving nutrition figures
type NutritionalInfo struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Recipe is the header row of a recipe
type Recipe struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Title           string           `gorm:"size:255;not null" json:"title"`
	Description     string           `gorm:"type:text" json:"description"`
	PrepTimeMinutes int              `json:"prep_time_minutes"`
	CookTimeMinutes int              `json:"cook_time_minutes"`
	Servings        int              `json:"servings"`
	Difficulty      string           `gorm:"size:20" json:"difficulty"`
	CuisineType     string           `gorm:"size:100" json:"cuisine_type"`
	ChefTip         string           `gorm:"type:text" json:"chef_tip"`
	NutritionalInfo *NutritionalInfo `gorm:"type:jsonb;serializer:json" json:"nutritional_info"`
	ImageURL        string           `gorm:"size:512" json:"image_url"`
	IsPublic        bool             `gorm:"not null;default:false;index" json:"is_public"`
	Embedding       pgvector.Vector  `gorm:"type:vector(3)" json:"-"`
	CreatedAt       time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	DeletedAt       gorm.DeletedAt   `gorm:"index" json:"-"`
}

// BeforeCreate assigns the recipe id
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	assignID(&r.ID)
	return nil
}

// RecipeIngredient is one ingredient line; OrderIndex is stored as received
type RecipeIngredient struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RecipeID   uuid.UUID `gorm:"type:uuid;not null;index" json:"recipe_id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Quantity   float64   `json:"quantity"`
	Unit       string    `gorm:"size:50" json:"unit"`
	OrderIndex int       `gorm:"not null" json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
}

// BeforeCreate assigns the ingredient id
func (i *RecipeIngredient) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// RecipeStep is one instruction; StepNumber is stored as received
type RecipeStep struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RecipeID    uuid.UUID `gorm:"type:uuid;not null;index" json:"recipe_id"`
	StepNumber  int       `gorm:"not null" json:"step_number"`
	Instruction string    `gorm:"type:text;not null" json:"instruction"`
	CreatedAt   time.Time `json:"created_at"`
}

// BeforeCreate assigns the step id
func (s *RecipeStep) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}
