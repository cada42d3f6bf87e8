package poller

import (
	"context"
	"sync"
	"time"

	"SiteJSON_Frontend/internal/models"
	"SiteJSON_Frontend/internal/orchestrator"
)

const (
	completedMessage = "Analysis complete"
	fallbackMessage  = "Analyzing..."

	// Backend-reported progress never fills the bar; the last stretch is
	// reserved for the completion event
	backendProgressCap = 95

	// Cosmetic ticks stall here until the backend catches up
	cosmeticProgressCap = 90
)

// cosmeticStages maps progress quarters to the message shown between
// backend updates
var cosmeticStages = []string{
	"Queued...",
	"Fetching DNS...",
	"Running Providers...",
	"Building Report...",
}

// session runs the poll loop for a single domain. All mutable state is
// guarded by mu; the poll and ticker goroutines of an abandoned lineage
// detect their staleness through the generation counter and exit without
// touching state.
type session struct {
	domain       string
	orchestrator orchestrator.Service
	pollInterval time.Duration
	tickInterval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu            sync.Mutex
	generation    uint64
	lineageCancel context.CancelFunc
	phase         models.SessionPhase
	data          *models.SiteReport
	isStale       bool
	progress      int
	errMessage    string
	statusMessage string
	updatedAt     time.Time
}

func newSession(domain string, orch orchestrator.Service, pollInterval, tickInterval time.Duration) *session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		domain:       domain,
		orchestrator: orch,
		pollInterval: pollInterval,
		tickInterval: tickInterval,
		ctx:          ctx,
		cancel:       cancel,
		phase:        models.PhaseIdle,
	}

	s.mu.Lock()
	s.startLineage(false)
	s.mu.Unlock()
	return s
}

// startLineage abandons the current poll lineage and begins a fresh one.
// Caller must hold mu.
func (s *session) startLineage(forceRefresh bool) {
	if s.lineageCancel != nil {
		s.lineageCancel()
	}

	lineageCtx, lineageCancel := context.WithCancel(s.ctx)
	s.lineageCancel = lineageCancel
	s.generation++
	generation := s.generation

	s.phase = models.PhaseLoading
	s.data = nil
	s.isStale = false
	s.progress = 0
	s.errMessage = ""
	s.statusMessage = ""
	s.updatedAt = time.Now()

	s.wg.Add(2)
	go s.pollLoop(lineageCtx, generation, forceRefresh)
	go s.progressTicker(lineageCtx, generation)
}

// refresh restarts the session with a forced re-analysis. Any outcome from
// the previous lineage that is still in flight is discarded.
func (s *session) refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return
	}
	s.startLineage(true)
}

func (s *session) pollLoop(ctx context.Context, generation uint64, forceRefresh bool) {
	defer s.wg.Done()

	for {
		outcome := s.orchestrator.Fetch(ctx, s.domain, forceRefresh)
		forceRefresh = false

		if ctx.Err() != nil {
			return
		}
		if terminal := s.apply(generation, outcome); terminal {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.pollInterval):
		}
	}
}

// apply folds an orchestrator outcome into session state. Returns true when
// the session reached a terminal phase and polling must stop.
func (s *session) apply(generation uint64, outcome models.Outcome) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		// A refresh superseded this lineage while the fetch was in flight
		return true
	}
	s.updatedAt = time.Now()

	switch outcome.Status {
	case models.OutcomeError:
		s.phase = models.PhaseFailed
		s.errMessage = outcome.Message
		return true

	case models.OutcomeCompleted:
		s.phase = models.PhaseCompleted
		s.data = outcome.Report
		s.isStale = outcome.IsStale
		s.progress = 100
		s.errMessage = ""
		s.statusMessage = completedMessage
		return true

	default:
		s.phase = models.PhaseProcessing
		if reported := clampProgress(outcome.Progress); reported > s.progress {
			s.progress = reported
		}
		switch {
		case outcome.Message != "":
			s.statusMessage = outcome.Message
		case outcome.Stage != "":
			s.statusMessage = outcome.Stage
		case s.statusMessage == "":
			s.statusMessage = fallbackMessage
		}
		return false
	}
}

// progressTicker nudges the bar between backend polls so slow analyses still
// feel alive. It never crosses cosmeticProgressCap and never moves backwards.
func (s *session) progressTicker(ctx context.Context, generation uint64) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		if generation != s.generation || s.phase.Terminal() {
			s.mu.Unlock()
			return
		}
		if s.phase == models.PhaseProcessing && s.progress < cosmeticProgressCap {
			if s.progress <= 60 {
				s.progress += 8
			} else {
				s.progress += 2
			}
			if s.progress > cosmeticProgressCap {
				s.progress = cosmeticProgressCap
			}
			s.statusMessage = cosmeticStageFor(s.progress)
		}
		s.mu.Unlock()
	}
}

// snapshot renders the session into the shape handlers serve
func (s *session) snapshot() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.SessionState{
		Domain:        s.domain,
		Data:          s.data,
		IsStale:       s.isStale,
		IsLoading:     s.phase == models.PhaseLoading,
		IsProcessing:  s.phase == models.PhaseProcessing,
		Progress:      s.progress,
		Error:         s.errMessage,
		StatusMessage: s.statusMessage,
		UpdatedAt:     s.updatedAt,
	}
}

// idleInfo reports whether the session is terminal and when it last changed
func (s *session) idleInfo() (terminal bool, updatedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase.Terminal(), s.updatedAt
}

// close cancels the session and waits for its goroutines to drain
func (s *session) close() {
	s.mu.Lock()
	s.generation++
	if s.lineageCancel != nil {
		s.lineageCancel()
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

func clampProgress(progress int) int {
	if progress < 0 {
		return 0
	}
	if progress > backendProgressCap {
		return backendProgressCap
	}
	return progress
}

func cosmeticStageFor(progress int) string {
	index := progress / 25
	if index >= len(cosmeticStages) {
		index = len(cosmeticStages) - 1
	}
	return cosmeticStages[index]
}
