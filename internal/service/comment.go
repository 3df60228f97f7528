package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pageza/culina-ai/backend/internal/models"
	"gorm.io/gorm"
)

// CommentService manages comments on public recipes
type CommentService struct {
	db *gorm.DB
}

// NewCommentService creates a new CommentService instance
func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

// AddComment posts a comment on a public recipe
func (s *CommentService) AddComment(ctx context.Context, userID, recipeID uuid.UUID, body string) (*models.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, &InputError{Field: "body", Message: "must not be empty"}
	}
	if utf8.RuneCountInString(body) > models.MaxCommentLength {
		return nil, &InputError{Field: "body", Message: fmt.Sprintf("must be at most %d characters", models.MaxCommentLength)}
	}

	if err := s.requirePublic(ctx, recipeID); err != nil {
		return nil, err
	}

	comment := &models.Comment{RecipeID: recipeID, UserID: userID, Body: body}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

// ListComments returns a page of comments of a public recipe, newest first
func (s *CommentService) ListComments(ctx context.Context, recipeID uuid.UUID, limit, offset int) ([]models.Comment, error) {
	if err := s.requirePublic(ctx, recipeID); err != nil {
		return nil, err
	}
	limit, offset = ClampPage(limit, offset)

	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// DeleteComment removes a comment. Only its author may do it.
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error {
	var comment models.Comment
	err := s.db.WithContext(ctx).First(&comment, "id = ?", commentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get comment: %w", err)
	}
	if comment.UserID != userID {
		return ErrForbidden
	}
	if err := s.db.WithContext(ctx).Delete(&comment).Error; err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

func (s *CommentService) requirePublic(ctx context.Context, recipeID uuid.UUID) error {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Select("id", "is_public").First(&recipe, "id = ?", recipeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get recipe: %w", err)
	}
	if !recipe.IsPublic {
		return ErrNotFound
	}
	return nil
}
