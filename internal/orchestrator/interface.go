package orchestrator

import (
	"context"

	"SiteJSON_Frontend/internal/models"
)

// Service advances a domain's analysis toward a terminal outcome, one pass
// per call. The caller re-invokes on an interval while the outcome is
// processing; a single pass never blocks beyond its 1-3 backend round-trips.
type Service interface {
	Fetch(ctx context.Context, domainInput string, forceRefresh bool) models.Outcome
}
