package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/culina-ai/backend/internal/models"
	"github.com/pageza/culina-ai/backend/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockQuotaLedger is a mock implementation of the QuotaLedger interface
type MockQuotaLedger struct {
	mock.Mock
}

func (m *MockQuotaLedger) CheckQuota(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockQuotaLedger) RecordUsage(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockQuotaLedger) Reserve(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockQuotaLedger) Release(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockQuotaLedger) Usage(ctx context.Context, userID uuid.UUID) (*models.UsageRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UsageRecord), args.Error(1)
}

func (m *MockQuotaLedger) RaiseLimit(ctx context.Context, userID uuid.UUID, limit int) error {
	args := m.Called(ctx, userID, limit)
	return args.Error(0)
}

// MockPreferenceResolver is a mock implementation of the PreferenceResolver interface
type MockPreferenceResolver struct {
	mock.Mock
}

func (m *MockPreferenceResolver) Resolve(ctx context.Context, userID uuid.UUID) service.Preferences {
	args := m.Called(ctx, userID)
	return args.Get(0).(service.Preferences)
}

// MockCompleter is a mock implementation of the Completer interface
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	args := m.Called(ctx, systemPrompt, userPrompt)
	return args.String(0), args.Error(1)
}

// MockRecipeWriter is a mock implementation of the RecipeWriter interface
type MockRecipeWriter struct {
	mock.Mock
}

func (m *MockRecipeWriter) Write(ctx context.Context, userID uuid.UUID, payload *service.RecipePayload) (*service.WriteResult, error) {
	args := m.Called(ctx, userID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.WriteResult), args.Error(1)
}

// MockRecipeGenerator is a mock implementation of the RecipeGenerator interface
type MockRecipeGenerator struct {
	mock.Mock
}

func (m *MockRecipeGenerator) Generate(ctx context.Context, req service.GenerateRequest) (*service.GenerateResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GenerateResult), args.Error(1)
}
