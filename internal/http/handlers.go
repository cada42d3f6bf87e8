package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"SiteJSON_Frontend/internal/backend"
	"SiteJSON_Frontend/internal/logger"
	"SiteJSON_Frontend/internal/models"
	"SiteJSON_Frontend/internal/poller"

	"github.com/gorilla/mux"
)

const (
	defaultDirectoryPage     = 1
	defaultDirectoryPageSize = 20
	maxDirectoryPageSize     = 100
)

// Handler contains the HTTP handlers for the frontend API
type Handler struct {
	sessions poller.Service
	backend  backend.Service
	logger   logger.Service
}

// NewHandler creates a new HTTP handler
func NewHandler(
	sessions poller.Service,
	backendClient backend.Service,
	logger logger.Service,
) *Handler {
	return &Handler{
		sessions: sessions,
		backend:  backendClient,
		logger:   logger,
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Sessions  int       `json:"sessions"`
}

// AnalyzeRequest is the body of POST /api/analyze
type AnalyzeRequest struct {
	Domain       string `json:"domain"`
	ForceRefresh bool   `json:"force_refresh"`
}

// reportResponse wraps a proxied site report with its freshness flag
type reportResponse struct {
	Domain  string             `json:"domain"`
	IsStale bool               `json:"is_stale"`
	Report  *models.SiteReport `json:"report"`
}

// jobStatusResponse is the proxied job status shape
type jobStatusResponse struct {
	State    models.JobState `json:"state"`
	Message  string          `json:"message,omitempty"`
	Progress *int            `json:"progress,omitempty"`
	Stage    string          `json:"stage,omitempty"`
}

// alternativesResponse wraps similar-site suggestions for a domain
type alternativesResponse struct {
	Domain       string                   `json:"domain"`
	Alternatives []models.AlternativeSite `json:"alternatives"`
}

// writeJSONResponse writes a JSON response with standard headers including X-Request-ID
func (h *Handler) writeJSONResponse(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) error {
	// Extract LogEvent from context to get ProcessID for X-Request-ID header
	logEvent := logger.GetLogEvent(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", logEvent.ProcessID)
	w.WriteHeader(statusCode)

	return json.NewEncoder(w).Encode(data)
}

// SiteState handles GET /api/sites/{domain}/state
func (h *Handler) SiteState(w http.ResponseWriter, r *http.Request) {
	// LogEvent is automatically created by logging middleware
	ctx := r.Context()

	domain := mux.Vars(r)["domain"]
	if domain == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "domain is required", "")
		return
	}

	state, err := h.sessions.State(ctx, domain)
	if err != nil {
		h.logger.LogError(ctx, logger.OpSiteState, domain, "Failed to resolve site state", err, models.LogSeverityLow, nil)
		h.writeErrorResponse(w, r, h.getStatusCodeForError(err), "failed to resolve site state", err.Error())
		return
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, state); err != nil {
		h.logger.LogError(ctx, logger.OpSiteState, domain, "Failed to encode state response", err, models.LogSeverityLow, nil)
	}
}

// RefreshSite handles POST /api/sites/{domain}/refresh
func (h *Handler) RefreshSite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	domain := mux.Vars(r)["domain"]
	if domain == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "domain is required", "")
		return
	}

	state, err := h.sessions.Refresh(ctx, domain)
	if err != nil {
		h.logger.LogError(ctx, logger.OpRefresh, domain, "Failed to refresh site", err, models.LogSeverityLow, nil)
		h.writeErrorResponse(w, r, h.getStatusCodeForError(err), "failed to refresh site", err.Error())
		return
	}

	if err := h.writeJSONResponse(w, r, http.StatusAccepted, state); err != nil {
		h.logger.LogError(ctx, logger.OpRefresh, domain, "Failed to encode refresh response", err, models.LogSeverityLow, nil)
		return
	}

	h.logger.LogSuccess(ctx, logger.OpRefresh, domain, "Refresh accepted", nil)
}

// Analyze handles POST /api/analyze
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var request AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.logger.LogError(ctx, logger.OpStartAnalysis, "", "Invalid request body", err, models.LogSeverityLow, nil)
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if request.Domain == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "domain is required", "")
		return
	}

	h.logger.LogInfo(ctx, logger.OpStartAnalysis, fmt.Sprintf("Analysis requested for domain: %s", request.Domain), map[string]interface{}{
		"domain":        request.Domain,
		"force_refresh": request.ForceRefresh,
	})

	var state models.SessionState
	var err error
	if request.ForceRefresh {
		state, err = h.sessions.Refresh(ctx, request.Domain)
	} else {
		state, err = h.sessions.State(ctx, request.Domain)
	}
	if err != nil {
		h.logger.LogError(ctx, logger.OpStartAnalysis, request.Domain, "Failed to start analysis", err, models.LogSeverityMedium, nil)
		h.writeErrorResponse(w, r, h.getStatusCodeForError(err), "failed to start analysis", err.Error())
		return
	}

	if err := h.writeJSONResponse(w, r, http.StatusAccepted, state); err != nil {
		h.logger.LogError(ctx, logger.OpStartAnalysis, request.Domain, "Failed to encode analyze response", err, models.LogSeverityLow, nil)
		return
	}

	h.logger.LogSuccess(ctx, logger.OpStartAnalysis, request.Domain, "Analysis session running", nil)
}

// SiteReport handles GET /api/sites/{domain} and proxies the raw report
func (h *Handler) SiteReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	domain := mux.Vars(r)["domain"]
	if domain == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "domain is required", "")
		return
	}

	result := h.backend.SiteReport(ctx, domain)
	switch {
	case result.Status == http.StatusOK && result.Report != nil:
		response := reportResponse{
			Domain:  result.Report.Domain,
			IsStale: result.IsStale,
			Report:  result.Report,
		}
		if err := h.writeJSONResponse(w, r, http.StatusOK, response); err != nil {
			h.logger.LogError(ctx, logger.OpReadReport, domain, "Failed to encode report response", err, models.LogSeverityLow, nil)
			return
		}
		h.logger.LogSuccess(ctx, logger.OpReadReport, domain, "Report served", nil)

	case result.Status == http.StatusNotFound:
		h.writeErrorResponse(w, r, http.StatusNotFound, "report not found", "no report exists for this domain yet")

	default:
		h.logger.LogError(ctx, logger.OpReadReport, domain, "Report read failed", errors.New(result.ErrMessage), models.LogSeverityMedium, map[string]interface{}{
			"upstream_status": result.Status,
		})
		h.writeErrorResponse(w, r, http.StatusBadGateway, "report unavailable", result.ErrMessage)
	}
}

// JobStatus handles GET /api/jobs/{id} and proxies the job state
func (h *Handler) JobStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jobID := mux.Vars(r)["id"]
	if jobID == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "job id is required", "")
		return
	}

	status := h.backend.JobStatus(ctx, jobID)
	response := jobStatusResponse{
		State:    status.State,
		Message:  status.Message,
		Progress: status.Progress,
		Stage:    status.Stage,
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, response); err != nil {
		h.logger.LogError(ctx, logger.OpPollJob, jobID, "Failed to encode job status response", err, models.LogSeverityLow, nil)
	}
}

// Directory handles GET /api/directory/{type}/{slug}
func (h *Handler) Directory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vars := mux.Vars(r)
	dirType := vars["type"]
	slug := vars["slug"]
	if dirType == "" || slug == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "directory type and slug are required", "")
		return
	}

	page := queryInt(r, "page", defaultDirectoryPage)
	pageSize := queryInt(r, "page_size", defaultDirectoryPageSize)
	if page < 1 {
		page = defaultDirectoryPage
	}
	if pageSize < 1 || pageSize > maxDirectoryPageSize {
		pageSize = defaultDirectoryPageSize
	}

	listing, err := h.backend.Directory(ctx, dirType, slug, page, pageSize)
	if err != nil {
		h.logger.LogError(ctx, logger.OpDirectory, slug, "Directory listing failed", err, models.LogSeverityMedium, map[string]interface{}{
			"type": dirType,
			"page": page,
		})
		h.writeErrorResponse(w, r, http.StatusBadGateway, "directory unavailable", err.Error())
		return
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, listing); err != nil {
		h.logger.LogError(ctx, logger.OpDirectory, slug, "Failed to encode directory response", err, models.LogSeverityLow, nil)
		return
	}

	h.logger.LogSuccess(ctx, logger.OpDirectory, slug, "Directory page served", map[string]interface{}{
		"type":  dirType,
		"page":  page,
		"items": len(listing.Items),
	})
}

// Alternatives handles GET /api/sites/{domain}/alternatives
func (h *Handler) Alternatives(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	domain := mux.Vars(r)["domain"]
	if domain == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "domain is required", "")
		return
	}

	alternatives, err := h.backend.Alternatives(ctx, domain)
	if err != nil {
		h.logger.LogError(ctx, logger.OpAlternatives, domain, "Alternatives lookup failed", err, models.LogSeverityMedium, nil)
		h.writeErrorResponse(w, r, http.StatusBadGateway, "alternatives unavailable", err.Error())
		return
	}
	if alternatives == nil {
		alternatives = []models.AlternativeSite{}
	}

	response := alternativesResponse{
		Domain:       domain,
		Alternatives: alternatives,
	}
	if err := h.writeJSONResponse(w, r, http.StatusOK, response); err != nil {
		h.logger.LogError(ctx, logger.OpAlternatives, domain, "Failed to encode alternatives response", err, models.LogSeverityLow, nil)
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
		Sessions:  h.sessions.Size(),
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, response); err != nil {
		h.logger.LogError(ctx, logger.OpHealthCheck, "", "Failed to encode health response", err, models.LogSeverityLow, nil)
		return
	}

	h.logger.LogInfo(ctx, logger.OpHealthCheck, "Health check performed successfully", nil)
}

// writeErrorResponse writes a standardized error response
func (h *Handler) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, error, message string) {
	response := ErrorResponse{
		Error:     error,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}

	if err := h.writeJSONResponse(w, r, statusCode, response); err != nil {
		h.logger.LogError(r.Context(), "response_encoding", "", "Failed to encode error response", err, models.LogSeverityLow, nil)
	}
}

// getStatusCodeForError maps session errors to HTTP status codes
func (h *Handler) getStatusCodeForError(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidDomain):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrSessionClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, models.ErrBackendUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
