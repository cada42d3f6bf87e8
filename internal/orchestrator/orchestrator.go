package orchestrator

import (
	"context"
	"net/http"

	"SiteJSON_Frontend/internal/backend"
	"SiteJSON_Frontend/internal/domain"
	"SiteJSON_Frontend/internal/logger"
	"SiteJSON_Frontend/internal/models"
	"SiteJSON_Frontend/internal/tracker"
)

const (
	msgInvalidDomain  = "Invalid domain"
	msgAnalysisFailed = "Analysis failed"
	msgReportFailed   = "Failed to load site report"
	msgRunning        = "Analysis running..."
	msgAnalyzing      = "Analyzing..."
	msgQueued         = "Analysis queued"

	// Progress handed out for a freshly queued job is pinned low regardless
	// of backend hints, so the poller's synthetic ramp starts without a jump
	queuedProgress = 5
	// Progress reported while a report started without a job id materializes
	materializingProgress = 25

	stageQueued       = "queued"
	stageOrchestrator = "orchestrator"
)

// orchestrator implements Service. It is stateless apart from the injected
// job tracker; concurrent calls for different domains are independent, and
// the poll loop serializes calls per domain.
type orchestrator struct {
	backend backend.Service
	tracker tracker.Service
	logger  logger.Service
}

// New creates a new orchestrator
func New(backend backend.Service, tracker tracker.Service, logger logger.Service) Service {
	return &orchestrator{
		backend: backend,
		tracker: tracker,
		logger:  logger,
	}
}

// Fetch runs one decision pass for a domain: start a new analysis, poll a
// tracked job, or read the finished report.
func (o *orchestrator) Fetch(ctx context.Context, domainInput string, forceRefresh bool) models.Outcome {
	dom, err := domain.Normalize(domainInput)
	if err != nil {
		return errorOutcome(msgInvalidDomain)
	}

	if forceRefresh {
		if outcome, done := o.forceStart(ctx, dom); done {
			return outcome
		}
		// Backend performed the refresh synchronously; fall through with no
		// tracked job and read the report directly
	}

	// Job completion in this same pass moves the domain to the without-id
	// variant, so a trailing report 404 reads as "materializing"
	withoutID := false

	entry, err := o.tracker.Get(ctx, dom)
	if err != nil {
		o.logger.LogError(ctx, logger.OpOrchestrate, dom, "Job tracker read failed", err, models.LogSeverityMedium, nil)
		entry = models.Untracked()
	}

	switch entry.State {
	case models.TrackingWithID:
		status := o.backend.JobStatus(ctx, entry.JobID)
		switch status.State {
		case models.JobStateCompleted:
			if err := o.tracker.MarkWithoutID(ctx, dom); err != nil {
				o.logger.LogError(ctx, logger.OpPollJob, dom, "Failed to downgrade tracking entry", err, models.LogSeverityLow, nil)
			}
			withoutID = true
		case models.JobStateFailed:
			if err := o.tracker.Clear(ctx, dom); err != nil {
				o.logger.LogError(ctx, logger.OpPollJob, dom, "Failed to clear tracking entry", err, models.LogSeverityLow, nil)
			}
			o.logger.LogError(ctx, logger.OpPollJob, dom, "Analysis job failed", nil, models.LogSeverityMedium, map[string]interface{}{
				"job_id": entry.JobID,
			})
			return errorOutcome(messageOr(status.Message, msgAnalysisFailed))
		default:
			return models.Outcome{
				Status:   models.OutcomeProcessing,
				Message:  messageOr(status.Message, msgAnalyzing),
				Progress: progressValue(status.Progress),
				Stage:    status.Stage,
			}
		}
	case models.TrackingWithoutID:
		withoutID = true
	}

	return o.readReport(ctx, dom, withoutID)
}

// forceStart clears any tracked job and triggers a forced analysis. The
// second return value is false when the backend handled the refresh
// synchronously and the caller should read the report instead.
func (o *orchestrator) forceStart(ctx context.Context, dom string) (models.Outcome, bool) {
	if err := o.tracker.Clear(ctx, dom); err != nil {
		o.logger.LogError(ctx, logger.OpRefresh, dom, "Failed to clear tracking entry", err, models.LogSeverityLow, nil)
	}

	started := o.backend.StartAnalysis(ctx, dom, true)
	if started.Failed() {
		o.logger.LogError(ctx, logger.OpStartAnalysis, dom, "Forced analysis rejected", nil, models.LogSeverityMedium, map[string]interface{}{
			"error": started.ErrMessage,
		})
		return errorOutcome(started.ErrMessage), true
	}

	if started.Processing {
		o.recordTracking(ctx, dom, started.JobID)
		o.logger.LogSuccess(ctx, logger.OpStartAnalysis, dom, "Forced analysis queued", map[string]interface{}{
			"job_id": started.JobID,
		})
		return processingQueued(started.Message), true
	}

	return models.Outcome{}, false
}

// readReport resolves the pass via the report endpoint, including the
// first-ever-view start path.
func (o *orchestrator) readReport(ctx context.Context, dom string, withoutID bool) models.Outcome {
	report := o.backend.SiteReport(ctx, dom)

	if report.Status == http.StatusOK && report.Report != nil {
		if err := o.tracker.Clear(ctx, dom); err != nil {
			o.logger.LogError(ctx, logger.OpReadReport, dom, "Failed to clear tracking entry", err, models.LogSeverityLow, nil)
		}
		o.logger.LogSuccess(ctx, logger.OpReadReport, dom, "Site report loaded", map[string]interface{}{
			"is_stale": report.IsStale,
		})
		return models.Outcome{Status: models.OutcomeCompleted, Report: report.Report, IsStale: report.IsStale}
	}

	if report.Status == http.StatusNotFound {
		if withoutID {
			// An analysis was already started for this domain; the report has
			// just not become visible yet. Do not trigger another one.
			return models.Outcome{
				Status:   models.OutcomeProcessing,
				Message:  msgRunning,
				Progress: materializingProgress,
				Stage:    stageOrchestrator,
			}
		}
		return o.firstView(ctx, dom)
	}

	o.logger.LogError(ctx, logger.OpReadReport, dom, "Site report read failed", nil, models.LogSeverityMedium, map[string]interface{}{
		"upstream_status": report.Status,
	})
	return errorOutcome(messageOr(report.ErrMessage, msgReportFailed))
}

// firstView handles the first-ever sight of a domain: report missing and no
// job tracked, so an analysis is started exactly once.
func (o *orchestrator) firstView(ctx context.Context, dom string) models.Outcome {
	started := o.backend.StartAnalysis(ctx, dom, false)
	if started.Failed() {
		return errorOutcome(started.ErrMessage)
	}

	if started.Processing {
		o.recordTracking(ctx, dom, started.JobID)
		o.logger.LogSuccess(ctx, logger.OpStartAnalysis, dom, "Analysis queued on first view", map[string]interface{}{
			"job_id": started.JobID,
		})
		return processingQueued(started.Message)
	}

	// Accepted without processing: the backend completed synchronously, the
	// report should be readable now
	refetched := o.backend.SiteReport(ctx, dom)
	if refetched.Status == http.StatusOK && refetched.Report != nil {
		return models.Outcome{Status: models.OutcomeCompleted, Report: refetched.Report, IsStale: refetched.IsStale}
	}

	return errorOutcome(messageOr(refetched.ErrMessage, msgReportFailed))
}

func (o *orchestrator) recordTracking(ctx context.Context, dom, jobID string) {
	var err error
	if jobID != "" {
		err = o.tracker.SetJobID(ctx, dom, jobID)
	} else {
		err = o.tracker.MarkWithoutID(ctx, dom)
	}
	if err != nil {
		o.logger.LogError(ctx, logger.OpStartAnalysis, dom, "Failed to record job tracking", err, models.LogSeverityMedium, nil)
	}
}

func processingQueued(message string) models.Outcome {
	return models.Outcome{
		Status:   models.OutcomeProcessing,
		Message:  messageOr(message, msgQueued),
		Progress: queuedProgress,
		Stage:    stageQueued,
	}
}

func errorOutcome(message string) models.Outcome {
	return models.Outcome{Status: models.OutcomeError, Message: message}
}

func messageOr(message, fallback string) string {
	if message != "" {
		return message
	}
	return fallback
}

func progressValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
