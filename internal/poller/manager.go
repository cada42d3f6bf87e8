package poller

import (
	"context"
	"sync"
	"time"

	"SiteJSON_Frontend/internal/domain"
	"SiteJSON_Frontend/internal/logger"
	"SiteJSON_Frontend/internal/models"
	"SiteJSON_Frontend/internal/orchestrator"
)

// Manager keys sessions by normalized domain so every spelling of a site
// shares one poll loop
type Manager struct {
	orchestrator orchestrator.Service
	logger       logger.Service
	pollInterval time.Duration
	tickInterval time.Duration
	idleTTL      time.Duration

	mu       sync.Mutex
	sessions map[string]*session
	closed   bool

	stopJanitor chan struct{}
	janitorDone chan struct{}
}

// NewManager creates a session manager and starts its eviction janitor
func NewManager(orch orchestrator.Service, log logger.Service, pollInterval, tickInterval, idleTTL time.Duration) Service {
	m := &Manager{
		orchestrator: orch,
		logger:       log,
		pollInterval: pollInterval,
		tickInterval: tickInterval,
		idleTTL:      idleTTL,
		sessions:     make(map[string]*session),
		stopJanitor:  make(chan struct{}),
		janitorDone:  make(chan struct{}),
	}
	go m.evictIdleSessions()
	return m
}

func (m *Manager) State(ctx context.Context, domainInput string) (models.SessionState, error) {
	s, err := m.acquire(ctx, domainInput)
	if err != nil {
		return models.SessionState{}, err
	}
	return s.snapshot(), nil
}

func (m *Manager) Refresh(ctx context.Context, domainInput string) (models.SessionState, error) {
	normalized, err := domain.Normalize(domainInput)
	if err != nil {
		return models.SessionState{}, err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return models.SessionState{}, models.ErrSessionClosed
	}
	s, exists := m.sessions[normalized]
	if !exists {
		// First sight through a refresh still forces a fresh analysis
		s = newSession(normalized, m.orchestrator, m.pollInterval, m.tickInterval)
		m.sessions[normalized] = s
	}
	m.mu.Unlock()

	s.refresh()
	m.logger.LogInfo(ctx, logger.OpRefresh, "analysis refresh requested", map[string]interface{}{
		"domain": normalized,
	})
	return s.snapshot(), nil
}

func (m *Manager) CloseAll() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	sessions := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*session)
	m.mu.Unlock()

	close(m.stopJanitor)
	<-m.janitorDone

	for _, s := range sessions {
		s.close()
	}
}

func (m *Manager) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) acquire(ctx context.Context, domainInput string) (*session, error) {
	normalized, err := domain.Normalize(domainInput)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, models.ErrSessionClosed
	}
	if s, exists := m.sessions[normalized]; exists {
		return s, nil
	}

	s := newSession(normalized, m.orchestrator, m.pollInterval, m.tickInterval)
	m.sessions[normalized] = s
	m.logger.LogInfo(ctx, logger.OpSiteState, "polling session started", map[string]interface{}{
		"domain": normalized,
	})
	return s, nil
}

// evictIdleSessions drops terminal sessions that nobody looked at for a
// while. Live polling sessions are never evicted.
func (m *Manager) evictIdleSessions() {
	defer close(m.janitorDone)

	interval := m.idleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopJanitor:
			return
		case <-ticker.C:
			m.sweepOnce()
		}
	}
}

func (m *Manager) sweepOnce() {
	now := time.Now()
	var expired []*session

	m.mu.Lock()
	for key, s := range m.sessions {
		terminal, updatedAt := s.idleInfo()
		if terminal && now.Sub(updatedAt) > m.idleTTL {
			expired = append(expired, s)
			delete(m.sessions, key)
		}
	}
	m.mu.Unlock()

	ctx := logger.WithLogEvent(context.Background(), logger.NewInternalLogEvent())
	for _, s := range expired {
		s.close()
		m.logger.LogInfo(ctx, logger.OpSessionEvicted, "idle session evicted", map[string]interface{}{
			"domain": s.domain,
		})
	}
}
