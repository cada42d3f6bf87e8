package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	waitPollInterval = 100 * time.Millisecond

	bucketSweepInterval = 10 * time.Minute
	bucketMaxIdle       = 30 * time.Minute
)

// tokenBucket is a refilling bucket with fractional accrual, so low rates
// still make steady progress between checks
type tokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	ratePerSec float64
	lastRefill time.Time
}

func newTokenBucket(capacity, ratePerSec int64) *tokenBucket {
	return &tokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		ratePerSec: float64(ratePerSec),
		lastRefill: time.Now(),
	}
}

// take consumes one token if available
func (b *tokenBucket) take() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refillLocked(time.Now())
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// putBack returns a previously taken token
func (b *tokenBucket) putBack() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.tokens < b.capacity {
		b.tokens++
	}
}

func (b *tokenBucket) refillLocked(now time.Time) {
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}
	b.tokens += elapsed * b.ratePerSec
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.lastRefill = now
}

func (b *tokenBucket) lastActivity() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastRefill
}

// TwoTierLimiter applies a global ceiling plus a per-client bucket so a
// single aggressive poller cannot starve everyone else
type TwoTierLimiter struct {
	global      *tokenBucket
	clients     sync.Map // map[string]*tokenBucket
	perIPCap    int64
	perIPRate   int64
	stopSweeper chan struct{}
	sweeperDone chan struct{}
}

// NewTwoTierLimiter creates a limiter and starts its idle-bucket sweeper
func NewTwoTierLimiter(globalCapacity, globalRate, perIPCapacity, perIPRate int64) *TwoTierLimiter {
	l := &TwoTierLimiter{
		global:      newTokenBucket(globalCapacity, globalRate),
		perIPCap:    perIPCapacity,
		perIPRate:   perIPRate,
		stopSweeper: make(chan struct{}),
		sweeperDone: make(chan struct{}),
	}
	go l.sweepIdleBuckets()
	return l
}

func (l *TwoTierLimiter) Allow(clientIP string) bool {
	if !l.global.take() {
		return false
	}

	if !l.clientBucket(clientIP).take() {
		// The global token was consumed but the request will not proceed,
		// give it back
		l.global.putBack()
		return false
	}
	return true
}

// Wait blocks until the client may proceed or the context ends
func (l *TwoTierLimiter) Wait(ctx context.Context, clientIP string) error {
	ticker := time.NewTicker(waitPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.Allow(clientIP) {
				return nil
			}
		}
	}
}

// Stop terminates the background sweeper
func (l *TwoTierLimiter) Stop() {
	select {
	case <-l.stopSweeper:
		return
	default:
		close(l.stopSweeper)
		<-l.sweeperDone
	}
}

func (l *TwoTierLimiter) clientBucket(clientIP string) *tokenBucket {
	if bucket, ok := l.clients.Load(clientIP); ok {
		return bucket.(*tokenBucket)
	}
	bucket, _ := l.clients.LoadOrStore(clientIP, newTokenBucket(l.perIPCap, l.perIPRate))
	return bucket.(*tokenBucket)
}

// sweepIdleBuckets drops client buckets that went quiet, bounding memory
// under IP churn
func (l *TwoTierLimiter) sweepIdleBuckets() {
	defer close(l.sweeperDone)

	ticker := time.NewTicker(bucketSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopSweeper:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-bucketMaxIdle)
			l.clients.Range(func(key, value interface{}) bool {
				if value.(*tokenBucket).lastActivity().Before(cutoff) {
					l.clients.Delete(key)
				}
				return true
			})
		}
	}
}
