package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscription tiers
const (
	TierFree = "free"
	TierPro  = "pro"
)

// Saved-recipe caps per tier
const (
	FreeMaxSavedRecipes = 10
	ProMaxSavedRecipes  = 999999
)

// Subscription is a user's plan
type Subscription struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Tier            string    `gorm:"size:20;not null;default:'free'" json:"subscription_tier"`
	MaxSavedRecipes int       `gorm:"not null" json:"max_saved_recipes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "user_subscription"
}

// BeforeCreate assigns the subscription id
func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// MonthlyLimitForTier returns the generation limit a new usage record gets for tier
func MonthlyLimitForTier(tier string) int {
	if tier == TierPro {
		return ProMonthlyLimit
	}
	return FreeMonthlyLimit
}

// MaxSavedForTier returns the favorite cap for tier
func MaxSavedForTier(tier string) int {
	if tier == TierPro {
		return ProMaxSavedRecipes
	}
	return FreeMaxSavedRecipes
}
