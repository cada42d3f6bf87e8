package backend

import (
	"context"

	"SiteJSON_Frontend/internal/models"
)

// StartResult is the typed outcome of a start-analysis call. ErrMessage is
// non-empty only when the backend declined or could not be reached; the
// caller never retries at this layer.
type StartResult struct {
	JobID      string
	Processing bool
	Message    string
	ErrMessage string
}

// Failed reports whether the start call ended in an error outcome
func (r StartResult) Failed() bool {
	return r.ErrMessage != ""
}

// JobStatusResult is the 3-way projection of a backend job status read.
// Progress is nil when the backend reported none.
type JobStatusResult struct {
	State    models.JobState
	Message  string
	Progress *int
	Stage    string
}

// ReportResult is the outcome of a report read. Status carries the upstream
// HTTP status (0 on transport failure) so the orchestrator can tell a 404
// apart from other failures.
type ReportResult struct {
	Status     int
	Report     *models.SiteReport
	IsStale    bool
	ErrMessage string
}

// Service defines the interface for talking to the SiteJSON backend API.
// External packages should use this interface, not the concrete client.
type Service interface {
	StartAnalysis(ctx context.Context, domain string, forceRefresh bool) StartResult
	JobStatus(ctx context.Context, jobID string) JobStatusResult
	SiteReport(ctx context.Context, domain string) ReportResult
	Directory(ctx context.Context, dirType, slug string, page, pageSize int) (models.DirectoryListing, error)
	Alternatives(ctx context.Context, domain string) ([]models.AlternativeSite, error)
}
