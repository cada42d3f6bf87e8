package mocks

import (
	"context"

	"SiteJSON_Frontend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockOrchestrator is a mock implementation of orchestrator.Service
type MockOrchestrator struct {
	mock.Mock
}

func (m *MockOrchestrator) Fetch(ctx context.Context, domainInput string, forceRefresh bool) models.Outcome {
	args := m.Called(ctx, domainInput, forceRefresh)
	return args.Get(0).(models.Outcome)
}
