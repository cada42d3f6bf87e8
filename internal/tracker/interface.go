package tracker

import (
	"context"

	"SiteJSON_Frontend/internal/models"
)

// Service defines the interface for per-domain job tracking. The orchestrator
// is the only writer; entries describe whether an analysis job is known for a
// domain, and under which variant (with id / without id).
type Service interface {
	Get(ctx context.Context, domain string) (models.TrackingEntry, error)
	SetJobID(ctx context.Context, domain, jobID string) error
	MarkWithoutID(ctx context.Context, domain string) error
	Clear(ctx context.Context, domain string) error
}
