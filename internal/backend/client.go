package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"SiteJSON_Frontend/internal/models"
)

const (
	basePath = "/api/v1"

	codeJobAlreadyRunning = "JOB_ALREADY_RUNNING"

	msgAnalysisQueued     = "Analysis queued"
	msgAlreadyRunning     = "Analysis already running"
	msgStartFailed        = "Failed to start analysis"
	msgJobPollFailed      = "Failed to poll job status"
	msgWorkerFailed       = "Analysis worker failed"
	msgAwaitingVisibility = "Awaiting job visibility"
)

// envelope is the top-level JSON shape every backend response carries
type envelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *backendError   `json:"error"`
}

type backendError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *envelope) errorMessage(fallback string) string {
	if e != nil && e.Error != nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return fallback
}

// Client implements Service over HTTP with a hard per-request timeout
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a new SiteJSON backend client
func NewClient(baseURL, apiKey string, timeout time.Duration) Service {
	return newClient(baseURL, apiKey, timeout)
}

// newClient creates the concrete implementation
func newClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// StartAnalysis triggers backend analysis for a domain. forceRefresh bypasses
// the backend cache and re-runs the AI evaluation.
func (c *Client) StartAnalysis(ctx context.Context, domain string, forceRefresh bool) StartResult {
	body := map[string]interface{}{
		"domain":        domain,
		"force_refresh": forceRefresh,
		"force_ai":      forceRefresh,
		"priority":      "high",
	}

	status, env := c.request(ctx, http.MethodPost, basePath+"/sites/analyze", body)

	if status == http.StatusAccepted && env != nil && env.OK {
		var data struct {
			JobID string `json:"job_id"`
		}
		_ = json.Unmarshal(env.Data, &data)

		if data.JobID != "" {
			return StartResult{JobID: data.JobID, Processing: true, Message: msgAnalysisQueued}
		}
		// Accepted without a job id: the backend handled it synchronously,
		// the caller falls back to reading the report directly
		return StartResult{Processing: false}
	}

	if status == http.StatusConflict && env != nil && env.Error != nil && env.Error.Code == codeJobAlreadyRunning {
		return StartResult{Processing: true, Message: msgAlreadyRunning}
	}

	return StartResult{ErrMessage: env.errorMessage(msgStartFailed)}
}

// JobStatus reads the status of a backend job. A 404 is deliberately folded
// into a processing state: the job may not have propagated to the status
// store yet, which is eventual consistency rather than failure.
func (c *Client) JobStatus(ctx context.Context, jobID string) JobStatusResult {
	status, env := c.request(ctx, http.MethodGet, basePath+"/jobs/"+url.PathEscape(jobID), nil)

	if status == http.StatusOK && env != nil && env.OK && len(env.Data) > 0 {
		var data struct {
			JobID    string           `json:"job_id"`
			Status   models.JobStatus `json:"status"`
			Progress *int             `json:"progress"`
			Stage    string           `json:"stage"`
		}
		if err := json.Unmarshal(env.Data, &data); err == nil {
			switch data.Status {
			case models.JobStatusCompleted:
				return JobStatusResult{State: models.JobStateCompleted}
			case models.JobStatusFailed:
				return JobStatusResult{State: models.JobStateFailed, Message: msgWorkerFailed}
			default:
				message := data.Stage
				if message == "" {
					message = "Analyzing"
				}
				return JobStatusResult{
					State:    models.JobStateProcessing,
					Message:  message,
					Progress: data.Progress,
					Stage:    data.Stage,
				}
			}
		}
	}

	if status == http.StatusNotFound {
		return JobStatusResult{State: models.JobStateProcessing, Message: msgAwaitingVisibility}
	}

	return JobStatusResult{State: models.JobStateFailed, Message: env.errorMessage(msgJobPollFailed)}
}

// SiteReport reads the completed report for a domain. The upstream HTTP
// status is surfaced so the orchestrator can interpret a 404 contextually.
func (c *Client) SiteReport(ctx context.Context, domain string) ReportResult {
	status, env := c.request(ctx, http.MethodGet, basePath+"/sites/"+url.PathEscape(domain), nil)

	if status == http.StatusOK && env != nil && env.OK {
		var data struct {
			Domain    string `json:"domain"`
			Freshness struct {
				IsStale   bool   `json:"is_stale"`
				UpdatedAt string `json:"updated_at"`
			} `json:"freshness"`
			Report *models.SiteReport `json:"report"`
		}
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return ReportResult{Status: status, ErrMessage: fmt.Sprintf("malformed report payload: %v", err)}
		}

		report := data.Report
		if report == nil {
			report = &models.SiteReport{}
		}
		if report.Domain == "" {
			report.Domain = data.Domain
		}

		return ReportResult{Status: status, Report: report, IsStale: data.Freshness.IsStale}
	}

	return ReportResult{Status: status, ErrMessage: env.errorMessage("")}
}

// Directory reads one page of a directory listing and normalizes its
// pagination. Items without a domain are dropped.
func (c *Client) Directory(ctx context.Context, dirType, slug string, page, pageSize int) (models.DirectoryListing, error) {
	empty := models.DirectoryListing{Items: []models.DirectoryItem{}, Page: page, PageSize: pageSize}

	path := fmt.Sprintf("%s/directory/%s/%s?page=%d&page_size=%d",
		basePath, url.PathEscape(dirType), url.PathEscape(slug), page, pageSize)

	status, env := c.request(ctx, http.MethodGet, path, nil)
	if status != http.StatusOK || env == nil || !env.OK {
		return empty, fmt.Errorf("directory listing %s/%s failed: %s", dirType, slug, describeFailure(status, env))
	}

	var data struct {
		Items      []models.DirectoryItem `json:"items"`
		Pagination struct {
			Page     int `json:"page"`
			PageSize int `json:"page_size"`
			Total    int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return empty, fmt.Errorf("malformed directory payload: %w", err)
	}

	items := make([]models.DirectoryItem, 0, len(data.Items))
	for _, item := range data.Items {
		if item.Domain == "" {
			continue
		}
		items = append(items, item)
	}

	listing := models.DirectoryListing{
		Items:    items,
		Page:     data.Pagination.Page,
		PageSize: data.Pagination.PageSize,
		Total:    data.Pagination.Total,
	}
	if listing.Page == 0 {
		listing.Page = page
	}
	if listing.PageSize == 0 {
		listing.PageSize = pageSize
	}
	if listing.Total == 0 {
		listing.Total = len(items)
	}
	if listing.Total > 0 && listing.PageSize > 0 {
		listing.TotalPages = (listing.Total + listing.PageSize - 1) / listing.PageSize
	}

	return listing, nil
}

// Alternatives reads similar-site suggestions for a domain
func (c *Client) Alternatives(ctx context.Context, domain string) ([]models.AlternativeSite, error) {
	status, env := c.request(ctx, http.MethodGet, basePath+"/sites/"+url.PathEscape(domain)+"/alternatives", nil)
	if status != http.StatusOK || env == nil || !env.OK {
		return []models.AlternativeSite{}, fmt.Errorf("alternatives for %s failed: %s", domain, describeFailure(status, env))
	}

	var data struct {
		Algorithm string                   `json:"algorithm"`
		Items     []models.AlternativeSite `json:"items"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return []models.AlternativeSite{}, fmt.Errorf("malformed alternatives payload: %w", err)
	}
	if data.Items == nil {
		data.Items = []models.AlternativeSite{}
	}

	return data.Items, nil
}

// request performs one backend round-trip and decodes the response envelope.
// Transport failures and non-JSON bodies yield status 0 / nil envelope; the
// typed mappers above turn those into their generic outcomes.
func (c *Client) request(ctx context.Context, method, path string, body interface{}) (int, *envelope) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, nil
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return resp.StatusCode, nil
	}

	var env envelope
	if len(raw) == 0 || json.Unmarshal(raw, &env) != nil {
		return resp.StatusCode, nil
	}

	return resp.StatusCode, &env
}

func describeFailure(status int, env *envelope) string {
	if msg := env.errorMessage(""); msg != "" {
		return msg
	}
	if status == 0 {
		return "backend unreachable"
	}
	return fmt.Sprintf("HTTP %d", status)
}
