package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpMocks "SiteJSON_Frontend/internal/http/mocks"
	"SiteJSON_Frontend/internal/mocks"
	"SiteJSON_Frontend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// newTestServer builds a full server with permissive rate limiting so the
// routing table and middleware chain are exercised end to end
func newTestServer(t *testing.T) (*Server, *httpMocks.MockSessionService, *mocks.MockBackend) {
	t.Helper()

	mockSessions := &httpMocks.MockSessionService{}
	mockBackend := &mocks.MockBackend{}
	mockLogger := &mocks.MockLogger{}
	mockLogger.AllowAll()

	mockLimiter := &httpMocks.MockRateLimiter{}
	mockLimiter.On("Allow", mock.Anything).Return(true)

	handler := NewHandler(mockSessions, mockBackend, mockLogger)
	srv := NewServer(":0", handler, mockLogger, mockLimiter, 5*time.Second, 5*time.Second)
	return srv, mockSessions, mockBackend
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.server.Handler.ServeHTTP(w, r)
}

func TestServer_RouteSiteState(t *testing.T) {
	srv, mockSessions, _ := newTestServer(t)

	state := models.SessionState{Domain: "example.com", IsProcessing: true, Progress: 30}
	mockSessions.On("State", mock.Anything, "example.com").Return(state, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/sites/example.com/state", nil)
	w := httptest.NewRecorder()

	srv.serve(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var response models.SessionState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "example.com", response.Domain)
}

func TestServer_RouteRefresh(t *testing.T) {
	srv, mockSessions, _ := newTestServer(t)

	mockSessions.On("Refresh", mock.Anything, "example.com").
		Return(models.SessionState{Domain: "example.com", IsLoading: true}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/sites/example.com/refresh", nil)
	w := httptest.NewRecorder()

	srv.serve(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestServer_RouteAnalyze(t *testing.T) {
	srv, mockSessions, _ := newTestServer(t)

	mockSessions.On("State", mock.Anything, "example.com").
		Return(models.SessionState{Domain: "example.com"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"domain":"example.com"}`))
	w := httptest.NewRecorder()

	srv.serve(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestServer_RouteAlternativesBeforeReport(t *testing.T) {
	srv, _, mockBackend := newTestServer(t)

	mockBackend.On("Alternatives", mock.Anything, "example.com").
		Return([]models.AlternativeSite{}, nil)

	// The more specific /alternatives route must win over /api/sites/{domain}
	req := httptest.NewRequest(http.MethodGet, "/api/sites/example.com/alternatives", nil)
	w := httptest.NewRecorder()

	srv.serve(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockBackend.AssertNotCalled(t, "SiteReport")
}

func TestServer_RouteJobStatus(t *testing.T) {
	srv, _, mockBackend := newTestServer(t)

	progress := 10
	mockBackend.On("JobStatus", mock.Anything, "job-9").
		Return(backendJobStatus(models.JobStateProcessing, "", &progress, "queued"))

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/job-9", nil)
	w := httptest.NewRecorder()

	srv.serve(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_RouteDirectory(t *testing.T) {
	srv, _, mockBackend := newTestServer(t)

	mockBackend.On("Directory", mock.Anything, "category", "news", 1, 20).
		Return(models.DirectoryListing{Items: []models.DirectoryItem{}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/directory/category/news", nil)
	w := httptest.NewRecorder()

	srv.serve(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_RootListsEndpoints(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	srv.serve(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/sites/{domain}/state")
}

func TestServer_UnknownRoute(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	w := httptest.NewRecorder()

	srv.serve(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/analyze", nil)
	w := httptest.NewRecorder()

	srv.serve(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestServer_RateLimitedRequest(t *testing.T) {
	mockSessions := &httpMocks.MockSessionService{}
	mockBackend := &mocks.MockBackend{}
	mockLogger := &mocks.MockLogger{}
	mockLogger.AllowAll()

	mockLimiter := &httpMocks.MockRateLimiter{}
	mockLimiter.On("Allow", mock.Anything).Return(false)

	handler := NewHandler(mockSessions, mockBackend, mockLogger)
	srv := NewServer(":0", handler, mockLogger, mockLimiter, 5*time.Second, 5*time.Second)

	req := httptest.NewRequest(http.MethodGet, "/api/sites/example.com/state", nil)
	w := httptest.NewRecorder()

	srv.serve(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	mockSessions.AssertNotCalled(t, "State")
}
