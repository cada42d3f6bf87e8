package poller

import (
	"context"

	"SiteJSON_Frontend/internal/models"
)

// Service manages one polling session per domain and exposes their
// rendered state to the HTTP layer
type Service interface {
	// State returns the current session state for a domain, creating a
	// session and starting its poll loop on first sight
	State(ctx context.Context, domainInput string) (models.SessionState, error)

	// Refresh cancels the domain's in-flight polling, resets its state and
	// starts a forced re-analysis
	Refresh(ctx context.Context, domainInput string) (models.SessionState, error)

	// CloseAll stops every session and the background janitor
	CloseAll()

	// Size returns the number of live sessions
	Size() int
}
