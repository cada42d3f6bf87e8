package models

import (
	"time"
)

// JobStatus is the backend-owned lifecycle status of an analysis job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// JobState is the coarser 3-way projection of JobStatus the client observes
type JobState string

const (
	JobStateProcessing JobState = "processing"
	JobStateCompleted  JobState = "completed"
	JobStateFailed     JobState = "failed"
)

// AnalysisJob represents backend-side async work for one domain
type AnalysisJob struct {
	JobID    string    `json:"job_id,omitempty"`
	Status   JobStatus `json:"status"`
	Progress int       `json:"progress,omitempty"`
	Stage    string    `json:"stage,omitempty"`
}

// TrackingState identifies the variant of a job tracking entry
type TrackingState string

const (
	// TrackingNone means no job was ever observed for the domain
	TrackingNone TrackingState = "untracked"
	// TrackingWithID means a job id is known and should be polled via the job endpoint
	TrackingWithID TrackingState = "with_id"
	// TrackingWithoutID means an analysis was triggered but the backend returned
	// no job id; status is inferred by retrying the report read
	TrackingWithoutID TrackingState = "without_id"
)

// TrackingEntry is the per-domain client-side job bookkeeping
type TrackingEntry struct {
	State TrackingState `json:"state"`
	JobID string        `json:"job_id,omitempty"`
}

// Untracked is the entry returned for domains with no known job
func Untracked() TrackingEntry {
	return TrackingEntry{State: TrackingNone}
}

// OutcomeStatus classifies the result of one orchestrator pass
type OutcomeStatus string

const (
	OutcomeProcessing OutcomeStatus = "processing"
	OutcomeCompleted  OutcomeStatus = "completed"
	OutcomeError      OutcomeStatus = "error"
)

// Outcome is the result of a single orchestrator pass for one domain.
// Message/Progress/Stage accompany processing and error outcomes,
// Report/IsStale accompany completed ones.
type Outcome struct {
	Status   OutcomeStatus `json:"status"`
	Message  string        `json:"message,omitempty"`
	Progress int           `json:"progress,omitempty"`
	Stage    string        `json:"stage,omitempty"`
	Report   *SiteReport   `json:"data,omitempty"`
	IsStale  bool          `json:"is_stale,omitempty"`
}

// SessionPhase is the tagged state of a poll session. Exactly one phase
// holds at a time; the boolean pair in SessionState is derived from it,
// never stored.
type SessionPhase string

const (
	PhaseIdle       SessionPhase = "idle"
	PhaseLoading    SessionPhase = "loading"
	PhaseProcessing SessionPhase = "processing"
	PhaseCompleted  SessionPhase = "completed"
	PhaseFailed     SessionPhase = "failed"
)

// Terminal reports whether the phase ends a polling lifecycle
func (p SessionPhase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseFailed
}

// SessionState is the full contract a view layer may rely on for one domain
type SessionState struct {
	Domain        string      `json:"domain"`
	Data          *SiteReport `json:"data"`
	IsStale       bool        `json:"is_stale"`
	IsLoading     bool        `json:"is_loading"`
	IsProcessing  bool        `json:"is_processing"`
	Progress      int         `json:"progress"`
	Error         string      `json:"error,omitempty"`
	StatusMessage string      `json:"status_message"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// DirectoryItem is a single entry in a directory listing
type DirectoryItem struct {
	Domain      string   `json:"domain"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Score       *int     `json:"score,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// DirectoryListing is the re-shaped, pagination-normalized directory page
type DirectoryListing struct {
	Items      []DirectoryItem `json:"items"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
}

// AlternativeSite is one similar-site suggestion for a domain
type AlternativeSite struct {
	Domain string `json:"domain"`
	Title  string `json:"title,omitempty"`
	Score  *int   `json:"score,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// LogSeverity represents the severity level of a log entry
type LogSeverity string

const (
	LogSeverityLow    LogSeverity = "low"
	LogSeverityMedium LogSeverity = "medium"
	LogSeverityHigh   LogSeverity = "high"
)

// ProcessType represents the type of process that created the log
type ProcessType string

const (
	ProcessTypeRequest  ProcessType = "request"
	ProcessTypeInternal ProcessType = "internal"
)

// LogEvent represents a process-specific logging context
type LogEvent struct {
	ProcessID   string      `json:"process_id"`
	ProcessType ProcessType `json:"process_type"`
	StartTime   time.Time   `json:"start_time"`
	ClientIP    string      `json:"client_ip,omitempty"`
}

// LogEntry represents a structured log entry for database storage
type LogEntry struct {
	ID          string                 `json:"id"`
	Timestamp   time.Time              `json:"timestamp"`
	Severity    LogSeverity            `json:"severity,omitempty"`
	Message     string                 `json:"message"`
	Operation   string                 `json:"operation"`
	TargetName  string                 `json:"target_name,omitempty"`
	ProcessID   string                 `json:"process_id"`
	ProcessType ProcessType            `json:"process_type"`
	ClientIP    string                 `json:"client_ip,omitempty"`
	Error       string                 `json:"error,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}
