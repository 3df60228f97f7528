package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxCommentLength bounds a comment body in characters
const MaxCommentLength = 1000

// Comment is a user's note on a public recipe
type Comment struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RecipeID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"recipe_id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Body      string         `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Comment) TableName() string {
	return "recipe_comments"
}

// BeforeCreate assigns the comment id
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}
