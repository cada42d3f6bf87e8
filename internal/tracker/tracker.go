package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"SiteJSON_Frontend/internal/cache"
	"SiteJSON_Frontend/internal/models"
)

// jobTracker implements Service on top of a generic cache. With the memory
// cache this is the plain process-lifetime map; with the Redis cache the
// correlation survives restarts and is shared across replicas. Entries carry
// a TTL so jobs abandoned mid-poll age out instead of pinning a domain to a
// dead job id forever.
type jobTracker struct {
	cache cache.Service
	ttl   time.Duration
}

// New creates a new job tracker backed by the given cache
func New(cache cache.Service, ttl time.Duration) Service {
	return &jobTracker{
		cache: cache,
		ttl:   ttl,
	}
}

// Get retrieves the tracking entry for a domain. Domains with no entry
// (or an expired one) report as untracked.
func (t *jobTracker) Get(ctx context.Context, domain string) (models.TrackingEntry, error) {
	value, err := t.cache.Get(ctx, trackingKey(domain))
	if err != nil {
		if err == models.ErrCacheMiss {
			return models.Untracked(), nil
		}
		return models.Untracked(), err
	}

	// Handle type conversion
	switch v := value.(type) {
	case models.TrackingEntry:
		// Memory cache returns the stored value
		return v, nil
	case *models.TrackingEntry:
		return *v, nil
	case string:
		// Redis cache returns JSON string, unmarshal it
		var entry models.TrackingEntry
		if err := json.Unmarshal([]byte(v), &entry); err != nil {
			return models.Untracked(), fmt.Errorf("failed to unmarshal tracking entry: %w", err)
		}
		return entry, nil
	default:
		return models.Untracked(), fmt.Errorf("unexpected type in tracker cache: %T", v)
	}
}

// SetJobID records a known job id for a domain
func (t *jobTracker) SetJobID(ctx context.Context, domain, jobID string) error {
	entry := models.TrackingEntry{State: models.TrackingWithID, JobID: jobID}
	return t.cache.Set(ctx, trackingKey(domain), entry, t.ttl)
}

// MarkWithoutID records that an analysis was started but the backend handed
// back no job id; status must be inferred by retrying the report read.
func (t *jobTracker) MarkWithoutID(ctx context.Context, domain string) error {
	entry := models.TrackingEntry{State: models.TrackingWithoutID}
	return t.cache.Set(ctx, trackingKey(domain), entry, t.ttl)
}

// Clear removes all tracking for a domain
func (t *jobTracker) Clear(ctx context.Context, domain string) error {
	return t.cache.Delete(ctx, trackingKey(domain))
}

func trackingKey(domain string) string {
	return fmt.Sprintf("tracker:%s", domain)
}
