package orchestrator

import (
	"context"
	"net/http"
	"testing"
	"time"

	"SiteJSON_Frontend/internal/backend"
	"SiteJSON_Frontend/internal/cache"
	"SiteJSON_Frontend/internal/mocks"
	"SiteJSON_Frontend/internal/models"
	"SiteJSON_Frontend/internal/tracker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// newTestOrchestrator wires a mocked backend to a real in-memory tracker so
// call sequences across passes exercise the actual bookkeeping.
func newTestOrchestrator(t *testing.T) (Service, *mocks.MockBackend, tracker.Service) {
	t.Helper()

	mockBackend := &mocks.MockBackend{}
	mockLogger := &mocks.MockLogger{}
	mockLogger.AllowAll()

	jobTracker := tracker.New(cache.NewMemoryCache(), time.Hour)
	return New(mockBackend, jobTracker, mockLogger), mockBackend, jobTracker
}

func intPtr(v int) *int { return &v }

func TestFetch_InvalidDomain(t *testing.T) {
	orch, mockBackend, _ := newTestOrchestrator(t)

	outcome := orch.Fetch(context.Background(), "not a domain", false)

	assert.Equal(t, models.OutcomeError, outcome.Status)
	assert.Equal(t, "Invalid domain", outcome.Message)

	// Fails fast, before any network call
	mockBackend.AssertNotCalled(t, "SiteReport")
	mockBackend.AssertNotCalled(t, "StartAnalysis")
	mockBackend.AssertNotCalled(t, "JobStatus")
}

func TestFetch_FirstView_StartsAnalysisExactlyOnce(t *testing.T) {
	orch, mockBackend, _ := newTestOrchestrator(t)
	ctx := context.Background()

	mockBackend.On("SiteReport", mock.Anything, "new.example").
		Return(backend.ReportResult{Status: http.StatusNotFound}).Once()
	mockBackend.On("StartAnalysis", mock.Anything, "new.example", false).
		Return(backend.StartResult{JobID: "j-1", Processing: true, Message: "Analysis queued"}).Once()

	outcome := orch.Fetch(ctx, "new.example", false)

	assert.Equal(t, models.OutcomeProcessing, outcome.Status)
	assert.Equal(t, "Analysis queued", outcome.Message)
	assert.Equal(t, 5, outcome.Progress)
	assert.Equal(t, "queued", outcome.Stage)

	mockBackend.AssertExpectations(t)
	mockBackend.AssertNotCalled(t, "JobStatus")
}

func TestFetch_TrackedJob_PollsJobStatusNotReport(t *testing.T) {
	orch, mockBackend, jobTracker := newTestOrchestrator(t)
	ctx := context.Background()

	require.NoError(t, jobTracker.SetJobID(ctx, "acme.io", "J1"))

	mockBackend.On("JobStatus", mock.Anything, "J1").
		Return(backend.JobStatusResult{
			State:    models.JobStateProcessing,
			Message:  "dns",
			Progress: intPtr(40),
			Stage:    "dns",
		}).Once()

	outcome := orch.Fetch(ctx, "acme.io", false)

	assert.Equal(t, models.OutcomeProcessing, outcome.Status)
	// Backend-reported progress and stage pass through untouched; the poll
	// loop owns smoothing
	assert.Equal(t, 40, outcome.Progress)
	assert.Equal(t, "dns", outcome.Stage)
	assert.Equal(t, "dns", outcome.Message)

	mockBackend.AssertExpectations(t)
	mockBackend.AssertNotCalled(t, "SiteReport")
	mockBackend.AssertNotCalled(t, "StartAnalysis")
}

func TestFetch_JobCompleted_ReportNotYetVisible(t *testing.T) {
	orch, mockBackend, jobTracker := newTestOrchestrator(t)
	ctx := context.Background()

	require.NoError(t, jobTracker.SetJobID(ctx, "acme.io", "J1"))

	mockBackend.On("JobStatus", mock.Anything, "J1").
		Return(backend.JobStatusResult{State: models.JobStateCompleted}).Once()
	mockBackend.On("SiteReport", mock.Anything, "acme.io").
		Return(backend.ReportResult{Status: http.StatusNotFound}).Once()

	outcome := orch.Fetch(ctx, "acme.io", false)

	// A 404 right after completion means "materializing", not "missing"
	assert.Equal(t, models.OutcomeProcessing, outcome.Status)
	assert.Equal(t, "Analysis running...", outcome.Message)
	assert.Equal(t, 25, outcome.Progress)
	assert.Equal(t, "orchestrator", outcome.Stage)

	// Tracking moved to the without-id variant, no re-trigger
	entry, err := jobTracker.Get(ctx, "acme.io")
	require.NoError(t, err)
	assert.Equal(t, models.TrackingWithoutID, entry.State)
	mockBackend.AssertNotCalled(t, "StartAnalysis")
}

func TestFetch_JobCompleted_ReportReady(t *testing.T) {
	orch, mockBackend, jobTracker := newTestOrchestrator(t)
	ctx := context.Background()

	require.NoError(t, jobTracker.SetJobID(ctx, "acme.io", "J1"))

	report := &models.SiteReport{Domain: "acme.io"}
	mockBackend.On("JobStatus", mock.Anything, "J1").
		Return(backend.JobStatusResult{State: models.JobStateCompleted}).Once()
	mockBackend.On("SiteReport", mock.Anything, "acme.io").
		Return(backend.ReportResult{Status: http.StatusOK, Report: report, IsStale: true}).Once()

	outcome := orch.Fetch(ctx, "acme.io", false)

	assert.Equal(t, models.OutcomeCompleted, outcome.Status)
	assert.Same(t, report, outcome.Report)
	assert.True(t, outcome.IsStale)

	// Terminal state removes all tracking
	entry, err := jobTracker.Get(ctx, "acme.io")
	require.NoError(t, err)
	assert.Equal(t, models.TrackingNone, entry.State)
}

func TestFetch_JobFailed(t *testing.T) {
	orch, mockBackend, jobTracker := newTestOrchestrator(t)
	ctx := context.Background()

	require.NoError(t, jobTracker.SetJobID(ctx, "acme.io", "J1"))

	mockBackend.On("JobStatus", mock.Anything, "J1").
		Return(backend.JobStatusResult{State: models.JobStateFailed, Message: "Analysis worker failed"}).Once()

	outcome := orch.Fetch(ctx, "acme.io", false)

	assert.Equal(t, models.OutcomeError, outcome.Status)
	assert.Equal(t, "Analysis worker failed", outcome.Message)
	mockBackend.AssertNotCalled(t, "SiteReport")

	// Tracking dropped so a later pass starts clean
	entry, err := jobTracker.Get(ctx, "acme.io")
	require.NoError(t, err)
	assert.Equal(t, models.TrackingNone, entry.State)
}

func TestFetch_ForceRefresh_ReplacesTrackedJob(t *testing.T) {
	orch, mockBackend, jobTracker := newTestOrchestrator(t)
	ctx := context.Background()

	require.NoError(t, jobTracker.SetJobID(ctx, "acme.io", "j-old"))

	mockBackend.On("StartAnalysis", mock.Anything, "acme.io", true).
		Return(backend.StartResult{JobID: "j-new", Processing: true, Message: "Analysis queued"}).Once()

	outcome := orch.Fetch(ctx, "acme.io", true)

	assert.Equal(t, models.OutcomeProcessing, outcome.Status)
	assert.Equal(t, 5, outcome.Progress)
	assert.Equal(t, "queued", outcome.Stage)

	// The stale job id must not be polled
	mockBackend.AssertNotCalled(t, "JobStatus")

	entry, err := jobTracker.Get(ctx, "acme.io")
	require.NoError(t, err)
	assert.Equal(t, models.TrackingWithID, entry.State)
	assert.Equal(t, "j-new", entry.JobID)
}

func TestFetch_ForceRefresh_SynchronousFallThrough(t *testing.T) {
	orch, mockBackend, _ := newTestOrchestrator(t)
	ctx := context.Background()

	report := &models.SiteReport{Domain: "acme.io"}
	mockBackend.On("StartAnalysis", mock.Anything, "acme.io", true).
		Return(backend.StartResult{Processing: false}).Once()
	mockBackend.On("SiteReport", mock.Anything, "acme.io").
		Return(backend.ReportResult{Status: http.StatusOK, Report: report}).Once()

	outcome := orch.Fetch(ctx, "acme.io", true)

	assert.Equal(t, models.OutcomeCompleted, outcome.Status)
	assert.Same(t, report, outcome.Report)
	mockBackend.AssertExpectations(t)
}

func TestFetch_ForceRefresh_Error(t *testing.T) {
	orch, mockBackend, _ := newTestOrchestrator(t)

	mockBackend.On("StartAnalysis", mock.Anything, "acme.io", true).
		Return(backend.StartResult{ErrMessage: "quota exhausted"}).Once()

	outcome := orch.Fetch(context.Background(), "acme.io", true)

	assert.Equal(t, models.OutcomeError, outcome.Status)
	assert.Equal(t, "quota exhausted", outcome.Message)
	mockBackend.AssertNotCalled(t, "SiteReport")
}

func TestFetch_AlreadyRunning_ThenReportSucceeds(t *testing.T) {
	orch, mockBackend, jobTracker := newTestOrchestrator(t)
	ctx := context.Background()

	// First pass: 409 with no job id, tracked without id
	mockBackend.On("SiteReport", mock.Anything, "spam.example").
		Return(backend.ReportResult{Status: http.StatusNotFound}).Once()
	mockBackend.On("StartAnalysis", mock.Anything, "spam.example", false).
		Return(backend.StartResult{Processing: true, Message: "Analysis already running"}).Once()

	outcome := orch.Fetch(ctx, "spam.example", false)

	assert.Equal(t, models.OutcomeProcessing, outcome.Status)
	assert.Equal(t, "Analysis already running", outcome.Message)

	entry, err := jobTracker.Get(ctx, "spam.example")
	require.NoError(t, err)
	assert.Equal(t, models.TrackingWithoutID, entry.State)

	// Second pass: report is there now
	report := &models.SiteReport{Domain: "spam.example"}
	mockBackend.On("SiteReport", mock.Anything, "spam.example").
		Return(backend.ReportResult{Status: http.StatusOK, Report: report}).Once()

	outcome = orch.Fetch(ctx, "spam.example", false)

	assert.Equal(t, models.OutcomeCompleted, outcome.Status)
	assert.Same(t, report, outcome.Report)
	mockBackend.AssertNotCalled(t, "JobStatus")
	mockBackend.AssertExpectations(t)
}

func TestFetch_TrackedWithoutID_DoesNotRetrigger(t *testing.T) {
	orch, mockBackend, jobTracker := newTestOrchestrator(t)
	ctx := context.Background()

	require.NoError(t, jobTracker.MarkWithoutID(ctx, "acme.io"))

	mockBackend.On("SiteReport", mock.Anything, "acme.io").
		Return(backend.ReportResult{Status: http.StatusNotFound}).Once()

	outcome := orch.Fetch(ctx, "acme.io", false)

	assert.Equal(t, models.OutcomeProcessing, outcome.Status)
	assert.Equal(t, "Analysis running...", outcome.Message)
	mockBackend.AssertNotCalled(t, "StartAnalysis")
}

func TestFetch_FirstView_SynchronousCompletion(t *testing.T) {
	orch, mockBackend, _ := newTestOrchestrator(t)
	ctx := context.Background()

	report := &models.SiteReport{Domain: "tiny.example"}
	mockBackend.On("SiteReport", mock.Anything, "tiny.example").
		Return(backend.ReportResult{Status: http.StatusNotFound}).Once()
	mockBackend.On("StartAnalysis", mock.Anything, "tiny.example", false).
		Return(backend.StartResult{Processing: false}).Once()
	mockBackend.On("SiteReport", mock.Anything, "tiny.example").
		Return(backend.ReportResult{Status: http.StatusOK, Report: report}).Once()

	outcome := orch.Fetch(ctx, "tiny.example", false)

	assert.Equal(t, models.OutcomeCompleted, outcome.Status)
	assert.Same(t, report, outcome.Report)
	mockBackend.AssertNumberOfCalls(t, "SiteReport", 2)
}

func TestFetch_ReportErrorSurfacedVerbatim(t *testing.T) {
	orch, mockBackend, _ := newTestOrchestrator(t)

	mockBackend.On("SiteReport", mock.Anything, "acme.io").
		Return(backend.ReportResult{Status: http.StatusTooManyRequests, ErrMessage: "rate limited"}).Once()

	outcome := orch.Fetch(context.Background(), "acme.io", false)

	assert.Equal(t, models.OutcomeError, outcome.Status)
	assert.Equal(t, "rate limited", outcome.Message)
	mockBackend.AssertNotCalled(t, "StartAnalysis")
}

func TestFetch_NormalizesInputBeforeBackendCalls(t *testing.T) {
	orch, mockBackend, _ := newTestOrchestrator(t)

	report := &models.SiteReport{Domain: "acme.io"}
	mockBackend.On("SiteReport", mock.Anything, "acme.io").
		Return(backend.ReportResult{Status: http.StatusOK, Report: report}).Once()

	outcome := orch.Fetch(context.Background(), "HTTPS://WWW.Acme.io/pricing", false)

	assert.Equal(t, models.OutcomeCompleted, outcome.Status)
	mockBackend.AssertExpectations(t)
}

func TestFetch_TrackerReadFailureDegradesToUntracked(t *testing.T) {
	mockBackend := &mocks.MockBackend{}
	mockTracker := &mocks.MockTracker{}
	mockLogger := &mocks.MockLogger{}
	mockLogger.AllowAll()

	orch := New(mockBackend, mockTracker, mockLogger)
	ctx := context.Background()

	mockTracker.On("Get", mock.Anything, "acme.io").
		Return(models.Untracked(), assert.AnError).Once()
	mockTracker.On("Clear", mock.Anything, "acme.io").Return(nil).Once()

	report := &models.SiteReport{Domain: "acme.io"}
	mockBackend.On("SiteReport", mock.Anything, "acme.io").
		Return(backend.ReportResult{Status: http.StatusOK, Report: report}).Once()

	outcome := orch.Fetch(ctx, "acme.io", false)

	// A broken tracker must not take the page down
	assert.Equal(t, models.OutcomeCompleted, outcome.Status)
	mockTracker.AssertExpectations(t)
}
