package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Monthly generation limits per tier. ProMonthlyLimit is a sentinel for "unlimited".
const (
	FreeMonthlyLimit = 5
	ProMonthlyLimit  = 999999
)

// UsageRecord counts a user's generations for one UTC calendar month
type UsageRecord struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_usage_user_month,priority:1" json:"user_id"`
	Month           string    `gorm:"size:7;not null;uniqueIndex:idx_usage_user_month,priority:2" json:"month"`
	GenerationCount int       `gorm:"not null;default:0" json:"generation_count"`
	MonthlyLimit    int       `gorm:"not null" json:"monthly_limit"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (UsageRecord) TableName() string {
	return "user_ai_usage"
}

// BeforeCreate assigns the usage record id
func (u *UsageRecord) BeforeCreate(tx *gorm.DB) error {
	assignID(&u.ID)
	return nil
}

// Remaining returns how many generations are left this month
func (u *UsageRecord) Remaining() int {
	if u.GenerationCount >= u.MonthlyLimit {
		return 0
	}
	return u.MonthlyLimit - u.GenerationCount
}
