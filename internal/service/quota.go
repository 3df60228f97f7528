package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/culina-ai/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuotaLedger tracks monthly generation counts per user
type QuotaLedger interface {
	CheckQuota(ctx context.Context, userID uuid.UUID) (bool, error)
	RecordUsage(ctx context.Context, userID uuid.UUID) error
	Reserve(ctx context.Context, userID uuid.UUID) (bool, error)
	Release(ctx context.Context, userID uuid.UUID) error
	Usage(ctx context.Context, userID uuid.UUID) (*models.UsageRecord, error)
	RaiseLimit(ctx context.Context, userID uuid.UUID, limit int) error
}

// QuotaService is the gorm-backed QuotaLedger
type QuotaService struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewQuotaService creates a new QuotaService instance
func NewQuotaService(db *gorm.DB, logger *zap.Logger) *QuotaService {
	return &QuotaService{
		db:     db,
		logger: logger.Named("quota"),
		now:    time.Now,
	}
}

// MonthKey formats t as the UTC calendar month the ledger is keyed on
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

func (s *QuotaService) month() string {
	return MonthKey(s.now())
}

// CheckQuota reports whether the user may generate another recipe this month.
// A missing record counts as zero usage.
func (s *QuotaService) CheckQuota(ctx context.Context, userID uuid.UUID) (bool, error) {
	var record models.UsageRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND month = ?", userID, s.month()).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, nil
	}
	if err != nil {
		return false, &QuotaCheckError{Err: err}
	}
	return record.GenerationCount < record.MonthlyLimit, nil
}

// RecordUsage increments this month's count, creating the record with the
// user's current tier limit when it does not exist yet
func (s *QuotaService) RecordUsage(ctx context.Context, userID uuid.UUID) error {
	month := s.month()
	db := s.db.WithContext(ctx)

	res := db.Model(&models.UsageRecord{}).
		Where("user_id = ? AND month = ?", userID, month).
		Updates(map[string]interface{}{
			"generation_count": gorm.Expr("generation_count + 1"),
			"updated_at":       s.now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to increment usage: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	record := &models.UsageRecord{
		UserID:          userID,
		Month:           month,
		GenerationCount: 1,
		MonthlyLimit:    s.limitFor(ctx, userID),
	}
	res = db.Clauses(clause.OnConflict{DoNothing: true}).Create(record)
	if res.Error != nil {
		return fmt.Errorf("failed to create usage record: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// another request created the row in between
	err := db.Model(&models.UsageRecord{}).
		Where("user_id = ? AND month = ?", userID, month).
		Update("generation_count", gorm.Expr("generation_count + 1")).Error
	if err != nil {
		return fmt.Errorf("failed to increment usage: %w", err)
	}
	return nil
}

// Reserve atomically takes one generation from this month's allowance.
// It returns false when the allowance is used up.
func (s *QuotaService) Reserve(ctx context.Context, userID uuid.UUID) (bool, error) {
	month := s.month()

	reserved, err := s.tryReserve(ctx, userID, month)
	if err != nil || reserved {
		return reserved, err
	}

	record := &models.UsageRecord{
		UserID:          userID,
		Month:           month,
		GenerationCount: 0,
		MonthlyLimit:    s.limitFor(ctx, userID),
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(record).Error; err != nil {
		return false, &QuotaCheckError{Err: err}
	}

	return s.tryReserve(ctx, userID, month)
}

func (s *QuotaService) tryReserve(ctx context.Context, userID uuid.UUID, month string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.UsageRecord{}).
		Where("user_id = ? AND month = ? AND generation_count < monthly_limit", userID, month).
		Updates(map[string]interface{}{
			"generation_count": gorm.Expr("generation_count + 1"),
			"updated_at":       s.now(),
		})
	if res.Error != nil {
		return false, &QuotaCheckError{Err: res.Error}
	}
	return res.RowsAffected == 1, nil
}

// Release gives back a reservation taken by Reserve. The count never drops below zero.
func (s *QuotaService) Release(ctx context.Context, userID uuid.UUID) error {
	err := s.db.WithContext(ctx).Model(&models.UsageRecord{}).
		Where("user_id = ? AND month = ? AND generation_count > 0", userID, s.month()).
		Updates(map[string]interface{}{
			"generation_count": gorm.Expr("generation_count - 1"),
			"updated_at":       s.now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to release reservation: %w", err)
	}
	return nil
}

// Usage returns this month's record, or an unsaved zero record carrying the tier limit
func (s *QuotaService) Usage(ctx context.Context, userID uuid.UUID) (*models.UsageRecord, error) {
	month := s.month()
	var record models.UsageRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND month = ?", userID, month).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.UsageRecord{
			UserID:       userID,
			Month:        month,
			MonthlyLimit: s.limitFor(ctx, userID),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get usage: %w", err)
	}
	return &record, nil
}

// RaiseLimit sets this month's limit, creating the record if needed
func (s *QuotaService) RaiseLimit(ctx context.Context, userID uuid.UUID, limit int) error {
	record := &models.UsageRecord{
		UserID:       userID,
		Month:        s.month(),
		MonthlyLimit: limit,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "month"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"monthly_limit": limit, "updated_at": s.now()}),
	}).Create(record).Error
	if err != nil {
		return fmt.Errorf("failed to raise monthly limit: %w", err)
	}
	return nil
}

// limitFor snapshots the limit a new record gets. An unreadable tier counts as free.
func (s *QuotaService) limitFor(ctx context.Context, userID uuid.UUID) int {
	tier, err := lookupTier(ctx, s.db, userID)
	if err != nil {
		s.logger.Warn("tier lookup failed, using free limit",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}
	return models.MonthlyLimitForTier(tier)
}

// lookupTier reads the user's subscription tier, defaulting to free when absent
func lookupTier(ctx context.Context, db *gorm.DB, userID uuid.UUID) (string, error) {
	var sub models.Subscription
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.TierFree, nil
	}
	if err != nil {
		return models.TierFree, fmt.Errorf("failed to get subscription: %w", err)
	}
	return sub.Tier, nil
}
