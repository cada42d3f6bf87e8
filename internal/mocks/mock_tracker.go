package mocks

import (
	"context"

	"SiteJSON_Frontend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockTracker is a mock implementation of tracker.Service
type MockTracker struct {
	mock.Mock
}

// Get mocks the Get method of tracker.Service
func (m *MockTracker) Get(ctx context.Context, domain string) (models.TrackingEntry, error) {
	args := m.Called(ctx, domain)
	return args.Get(0).(models.TrackingEntry), args.Error(1)
}

// SetJobID mocks the SetJobID method of tracker.Service
func (m *MockTracker) SetJobID(ctx context.Context, domain, jobID string) error {
	args := m.Called(ctx, domain, jobID)
	return args.Error(0)
}

// MarkWithoutID mocks the MarkWithoutID method of tracker.Service
func (m *MockTracker) MarkWithoutID(ctx context.Context, domain string) error {
	args := m.Called(ctx, domain)
	return args.Error(0)
}

// Clear mocks the Clear method of tracker.Service
func (m *MockTracker) Clear(ctx context.Context, domain string) error {
	args := m.Called(ctx, domain)
	return args.Error(0)
}
