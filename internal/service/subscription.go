package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/culina-ai/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LimitRaiser lifts the current month's generation limit
type LimitRaiser interface {
	RaiseLimit(ctx context.Context, userID uuid.UUID, limit int) error
}

// SubscriptionService manages a user's plan
type SubscriptionService struct {
	db     *gorm.DB
	limits LimitRaiser
	logger *zap.Logger
}

// NewSubscriptionService creates a new SubscriptionService instance
func NewSubscriptionService(db *gorm.DB, limits LimitRaiser, logger *zap.Logger) *SubscriptionService {
	return &SubscriptionService{
		db:     db,
		limits: limits,
		logger: logger.Named("subscription"),
	}
}

// GetSubscription returns the user's plan, a free plan when none is stored
func (s *SubscriptionService) GetSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Subscription{
			UserID:          userID,
			Tier:            models.TierFree,
			MaxSavedRecipes: models.FreeMaxSavedRecipes,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return &sub, nil
}

// Upgrade moves the user to pro: unlimited saved recipes and the current
// month's generation limit raised to the pro sentinel.
// No payment is taken here.
func (s *SubscriptionService) Upgrade(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	sub := &models.Subscription{
		UserID:          userID,
		Tier:            models.TierPro,
		MaxSavedRecipes: models.ProMaxSavedRecipes,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"tier", "max_saved_recipes", "updated_at"}),
	}).Create(sub).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade subscription: %w", err)
	}

	if err := s.limits.RaiseLimit(ctx, userID, models.ProMonthlyLimit); err != nil {
		return nil, err
	}

	s.logger.Info("subscription upgraded", zap.String("user_id", userID.String()))
	return s.GetSubscription(ctx, userID)
}
