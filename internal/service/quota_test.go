package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/culina-ai/backend/internal/models"
	"github.com/pageza/culina-ai/backend/internal/testhelpers"
)

func newTestQuotaService(t *testing.T) (*QuotaService, *gorm.DB) {
	t.Helper()
	db := testhelpers.NewSQLiteDB(t)
	return NewQuotaService(db, zap.NewNop()), db
}

func seedUsage(t *testing.T, db *gorm.DB, userID uuid.UUID, month string, count, limit int) {
	t.Helper()
	require.NoError(t, db.Create(&models.UsageRecord{
		UserID:          userID,
		Month:           month,
		GenerationCount: count,
		MonthlyLimit:    limit,
	}).Error)
}

func loadUsage(t *testing.T, db *gorm.DB, userID uuid.UUID, month string) models.UsageRecord {
	t.Helper()
	var record models.UsageRecord
	require.NoError(t, db.Where("user_id = ? AND month = ?", userID, month).First(&record).Error)
	return record
}

func TestMonthKey(t *testing.T) {
	paris := time.FixedZone("Paris", 2*60*60)
	assert.Equal(t, "2026-10", MonthKey(time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-09", MonthKey(time.Date(2026, 10, 1, 1, 0, 0, 0, paris)))
}

func TestQuotaServiceCheckQuota(t *testing.T) {
	svc, db := newTestQuotaService(t)
	ctx := context.Background()
	month := MonthKey(time.Now())

	t.Run("no record", func(t *testing.T) {
		ok, err := svc.CheckQuota(ctx, uuid.New())
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("under limit", func(t *testing.T) {
		userID := uuid.New()
		seedUsage(t, db, userID, month, 4, 5)
		ok, err := svc.CheckQuota(ctx, userID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("at limit", func(t *testing.T) {
		userID := uuid.New()
		seedUsage(t, db, userID, month, 5, 5)
		ok, err := svc.CheckQuota(ctx, userID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("last month does not count", func(t *testing.T) {
		userID := uuid.New()
		seedUsage(t, db, userID, "1999-01", 5, 5)
		ok, err := svc.CheckQuota(ctx, userID)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestQuotaServiceCheckQuotaStoreFailure(t *testing.T) {
	svc, db := newTestQuotaService(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = svc.CheckQuota(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, CodeQuotaCheckFailed, CodeOf(err))
}

func TestQuotaServiceRecordUsage(t *testing.T) {
	svc, db := newTestQuotaService(t)
	ctx := context.Background()
	month := MonthKey(time.Now())

	t.Run("creates record with free limit", func(t *testing.T) {
		userID := uuid.New()
		require.NoError(t, svc.RecordUsage(ctx, userID))

		record := loadUsage(t, db, userID, month)
		assert.Equal(t, 1, record.GenerationCount)
		assert.Equal(t, models.FreeMonthlyLimit, record.MonthlyLimit)
	})

	t.Run("creates record with pro limit", func(t *testing.T) {
		userID := uuid.New()
		require.NoError(t, db.Create(&models.Subscription{
			UserID:          userID,
			Tier:            models.TierPro,
			MaxSavedRecipes: models.ProMaxSavedRecipes,
		}).Error)

		require.NoError(t, svc.RecordUsage(ctx, userID))
		record := loadUsage(t, db, userID, month)
		assert.Equal(t, 1, record.GenerationCount)
		assert.Equal(t, models.ProMonthlyLimit, record.MonthlyLimit)
	})

	t.Run("increments existing record", func(t *testing.T) {
		userID := uuid.New()
		seedUsage(t, db, userID, month, 2, 5)

		require.NoError(t, svc.RecordUsage(ctx, userID))
		require.NoError(t, svc.RecordUsage(ctx, userID))

		record := loadUsage(t, db, userID, month)
		assert.Equal(t, 4, record.GenerationCount)
		assert.Equal(t, 5, record.MonthlyLimit)
	})

	t.Run("new month starts a new record", func(t *testing.T) {
		userID := uuid.New()
		seedUsage(t, db, userID, "1999-01", 5, 5)

		require.NoError(t, svc.RecordUsage(ctx, userID))
		assert.Equal(t, 1, loadUsage(t, db, userID, month).GenerationCount)
		assert.Equal(t, 5, loadUsage(t, db, userID, "1999-01").GenerationCount)
	})
}

func TestQuotaServiceReserveAndRelease(t *testing.T) {
	svc, db := newTestQuotaService(t)
	ctx := context.Background()
	month := MonthKey(time.Now())
	userID := uuid.New()

	for i := 0; i < models.FreeMonthlyLimit; i++ {
		ok, err := svc.Reserve(ctx, userID)
		require.NoError(t, err)
		require.True(t, ok, "reservation %d", i+1)
	}

	ok, err := svc.Reserve(ctx, userID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, models.FreeMonthlyLimit, loadUsage(t, db, userID, month).GenerationCount)

	require.NoError(t, svc.Release(ctx, userID))
	assert.Equal(t, models.FreeMonthlyLimit-1, loadUsage(t, db, userID, month).GenerationCount)

	ok, err = svc.Reserve(ctx, userID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestQuotaServiceReleaseNeverGoesNegative(t *testing.T) {
	svc, db := newTestQuotaService(t)
	ctx := context.Background()
	month := MonthKey(time.Now())

	t.Run("no record", func(t *testing.T) {
		require.NoError(t, svc.Release(ctx, uuid.New()))
	})

	t.Run("zero count", func(t *testing.T) {
		userID := uuid.New()
		seedUsage(t, db, userID, month, 0, 5)
		require.NoError(t, svc.Release(ctx, userID))
		assert.Equal(t, 0, loadUsage(t, db, userID, month).GenerationCount)
	})
}

func TestQuotaServiceUsage(t *testing.T) {
	svc, db := newTestQuotaService(t)
	ctx := context.Background()
	month := MonthKey(time.Now())

	t.Run("no record", func(t *testing.T) {
		userID := uuid.New()
		record, err := svc.Usage(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, month, record.Month)
		assert.Equal(t, 0, record.GenerationCount)
		assert.Equal(t, models.FreeMonthlyLimit, record.MonthlyLimit)
		assert.Equal(t, models.FreeMonthlyLimit, record.Remaining())
	})

	t.Run("existing record", func(t *testing.T) {
		userID := uuid.New()
		seedUsage(t, db, userID, month, 3, 5)
		record, err := svc.Usage(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 3, record.GenerationCount)
		assert.Equal(t, 2, record.Remaining())
	})
}

func TestQuotaServiceRaiseLimit(t *testing.T) {
	svc, db := newTestQuotaService(t)
	ctx := context.Background()
	month := MonthKey(time.Now())

	t.Run("existing exhausted record", func(t *testing.T) {
		userID := uuid.New()
		seedUsage(t, db, userID, month, 5, 5)

		require.NoError(t, svc.RaiseLimit(ctx, userID, models.ProMonthlyLimit))

		record := loadUsage(t, db, userID, month)
		assert.Equal(t, 5, record.GenerationCount)
		assert.Equal(t, models.ProMonthlyLimit, record.MonthlyLimit)

		ok, err := svc.CheckQuota(ctx, userID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("no record yet", func(t *testing.T) {
		userID := uuid.New()
		require.NoError(t, svc.RaiseLimit(ctx, userID, models.ProMonthlyLimit))

		record := loadUsage(t, db, userID, month)
		assert.Equal(t, 0, record.GenerationCount)
		assert.Equal(t, models.ProMonthlyLimit, record.MonthlyLimit)
	})
}
