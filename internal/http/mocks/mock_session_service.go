package mocks

import (
	"context"

	"SiteJSON_Frontend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockSessionService is a mock implementation of poller.Service
type MockSessionService struct {
	mock.Mock
}

// State mocks the State method of poller.Service
func (m *MockSessionService) State(ctx context.Context, domainInput string) (models.SessionState, error) {
	args := m.Called(ctx, domainInput)
	return args.Get(0).(models.SessionState), args.Error(1)
}

// Refresh mocks the Refresh method of poller.Service
func (m *MockSessionService) Refresh(ctx context.Context, domainInput string) (models.SessionState, error) {
	args := m.Called(ctx, domainInput)
	return args.Get(0).(models.SessionState), args.Error(1)
}

// CloseAll mocks the CloseAll method of poller.Service
func (m *MockSessionService) CloseAll() {
	m.Called()
}

// Size mocks the Size method of poller.Service
func (m *MockSessionService) Size() int {
	args := m.Called()
	return args.Int(0)
}
