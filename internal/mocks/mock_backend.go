package mocks

import (
	"context"

	"SiteJSON_Frontend/internal/backend"
	"SiteJSON_Frontend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockBackend is a mock implementation of backend.Service
type MockBackend struct {
	mock.Mock
}

// StartAnalysis mocks the StartAnalysis method of backend.Service
func (m *MockBackend) StartAnalysis(ctx context.Context, domain string, forceRefresh bool) backend.StartResult {
	args := m.Called(ctx, domain, forceRefresh)
	return args.Get(0).(backend.StartResult)
}

// JobStatus mocks the JobStatus method of backend.Service
func (m *MockBackend) JobStatus(ctx context.Context, jobID string) backend.JobStatusResult {
	args := m.Called(ctx, jobID)
	return args.Get(0).(backend.JobStatusResult)
}

// SiteReport mocks the SiteReport method of backend.Service
func (m *MockBackend) SiteReport(ctx context.Context, domain string) backend.ReportResult {
	args := m.Called(ctx, domain)
	return args.Get(0).(backend.ReportResult)
}

// Directory mocks the Directory method of backend.Service
func (m *MockBackend) Directory(ctx context.Context, dirType, slug string, page, pageSize int) (models.DirectoryListing, error) {
	args := m.Called(ctx, dirType, slug, page, pageSize)
	return args.Get(0).(models.DirectoryListing), args.Error(1)
}

// Alternatives mocks the Alternatives method of backend.Service
func (m *MockBackend) Alternatives(ctx context.Context, domain string) ([]models.AlternativeSite, error) {
	args := m.Called(ctx, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AlternativeSite), args.Error(1)
}
