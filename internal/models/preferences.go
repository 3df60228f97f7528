package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserPreferences holds a user's dietary restrictions and allergies
type UserPreferences struct {
	ID                  uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	DietaryRestrictions JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"dietary_restrictions"`
	Allergies           JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"allergies"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

func (UserPreferences) TableName() string {
	return "user_preferences"
}

// BeforeCreate assigns the preferences id
func (p *UserPreferences) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}
