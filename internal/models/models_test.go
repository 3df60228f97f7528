package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONBStringArray(t *testing.T) {
	v, err := JSONBStringArray(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = JSONBStringArray{"vegan", "sans gluten"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["vegan","sans gluten"]`, v)

	var a JSONBStringArray
	require.NoError(t, a.Scan([]byte(`["arachides"]`)))
	assert.Equal(t, JSONBStringArray{"arachides"}, a)

	require.NoError(t, a.Scan(nil))
	assert.Empty(t, a)

	assert.Error(t, a.Scan(42))
}

func TestTierLimits(t *testing.T) {
	assert.Equal(t, FreeMonthlyLimit, MonthlyLimitForTier(TierFree))
	assert.Equal(t, FreeMonthlyLimit, MonthlyLimitForTier(""))
	assert.Equal(t, ProMonthlyLimit, MonthlyLimitForTier(TierPro))
	assert.Equal(t, FreeMaxSavedRecipes, MaxSavedForTier(TierFree))
	assert.Equal(t, ProMaxSavedRecipes, MaxSavedForTier(TierPro))
}

func TestUsageRecordRemaining(t *testing.T) {
	assert.Equal(t, 2, (&UsageRecord{GenerationCount: 3, MonthlyLimit: 5}).Remaining())
	assert.Equal(t, 0, (&UsageRecord{GenerationCount: 5, MonthlyLimit: 5}).Remaining())
	assert.Equal(t, 0, (&UsageRecord{GenerationCount: 7, MonthlyLimit: 5}).Remaining())
}
