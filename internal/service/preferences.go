package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/culina-ai/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Preferences are the dietary constraints injected into the system prompt
type Preferences struct {
	Restrictions []string `json:"dietary_restrictions"`
	Allergies    []string `json:"allergies"`
}

// PreferenceResolver loads a user's dietary constraints
type PreferenceResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) Preferences
}

// PreferenceService reads and stores user preferences
type PreferenceService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPreferenceService creates a new PreferenceService instance
func NewPreferenceService(db *gorm.DB, logger *zap.Logger) *PreferenceService {
	return &PreferenceService{
		db:     db,
		logger: logger.Named("preferences"),
	}
}

// Resolve never fails: a missing row or a lookup error yields empty preferences
func (s *PreferenceService) Resolve(ctx context.Context, userID uuid.UUID) Preferences {
	prefs, err := s.Get(ctx, userID)
	if err != nil {
		s.logger.Warn("preference lookup failed, generating without constraints",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return Preferences{}
	}
	return *prefs
}

// Get returns the stored preferences, empty when the user has none
func (s *PreferenceService) Get(ctx context.Context, userID uuid.UUID) (*Preferences, error) {
	var row models.UserPreferences
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Preferences{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return &Preferences{
		Restrictions: []string(row.DietaryRestrictions),
		Allergies:    []string(row.Allergies),
	}, nil
}

// Save replaces the user's preferences
func (s *PreferenceService) Save(ctx context.Context, userID uuid.UUID, restrictions, allergies []string) (*Preferences, error) {
	row := &models.UserPreferences{
		UserID:              userID,
		DietaryRestrictions: models.JSONBStringArray(normalizeLabels(restrictions)),
		Allergies:           models.JSONBStringArray(normalizeLabels(allergies)),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"dietary_restrictions", "allergies", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}
	return &Preferences{
		Restrictions: []string(row.DietaryRestrictions),
		Allergies:    []string(row.Allergies),
	}, nil
}

// normalizeLabels trims labels, drops blanks and removes duplicates keeping first occurrence
func normalizeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		key := strings.ToLower(l)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, l)
	}
	return out
}
