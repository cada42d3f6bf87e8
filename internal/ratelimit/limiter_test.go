package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucket_BurstThenDeny(t *testing.T) {
	bucket := newTokenBucket(3, 1)

	for i := 0; i < 3; i++ {
		assert.True(t, bucket.take(), "request %d should pass", i+1)
	}
	assert.False(t, bucket.take(), "burst capacity exhausted")
}

func TestTokenBucket_Refill(t *testing.T) {
	bucket := newTokenBucket(5, 10)

	for i := 0; i < 5; i++ {
		bucket.take()
	}
	require.False(t, bucket.take())

	// 10/sec refill: ~2 tokens accrue in 200ms
	time.Sleep(220 * time.Millisecond)

	assert.True(t, bucket.take())
	assert.True(t, bucket.take())
	assert.False(t, bucket.take())
}

func TestTokenBucket_FractionalAccrual(t *testing.T) {
	bucket := newTokenBucket(10, 2)

	for i := 0; i < 10; i++ {
		bucket.take()
	}

	// 2/sec means half a second buys one token
	time.Sleep(550 * time.Millisecond)

	assert.True(t, bucket.take())
	assert.False(t, bucket.take())
}

func TestTokenBucket_PutBackCapped(t *testing.T) {
	bucket := newTokenBucket(2, 1)

	bucket.putBack()
	bucket.putBack()

	// A full bucket stays at capacity
	assert.True(t, bucket.take())
	assert.True(t, bucket.take())
	assert.False(t, bucket.take())
}

func TestTwoTierLimiter_PerClientIsolation(t *testing.T) {
	limiter := NewTwoTierLimiter(10, 10, 3, 3)
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("192.168.1.1"))
	}
	assert.False(t, limiter.Allow("192.168.1.1"), "per-client cap reached")

	// A different client is unaffected
	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("192.168.1.2"))
	}
}

func TestTwoTierLimiter_GlobalCeiling(t *testing.T) {
	limiter := NewTwoTierLimiter(2, 2, 10, 10)
	defer limiter.Stop()

	assert.True(t, limiter.Allow("192.168.1.1"))
	assert.True(t, limiter.Allow("192.168.1.2"))
	assert.False(t, limiter.Allow("192.168.1.3"), "global ceiling reached")
}

func TestTwoTierLimiter_GlobalTokenReturnedOnClientDenial(t *testing.T) {
	limiter := NewTwoTierLimiter(10, 10, 2, 2)
	defer limiter.Stop()

	limiter.Allow("192.168.1.1")
	limiter.Allow("192.168.1.1")
	require.False(t, limiter.Allow("192.168.1.1"))

	// The denial above must not have burned a global token
	assert.True(t, limiter.Allow("192.168.1.2"))
}

func TestTwoTierLimiter_Wait(t *testing.T) {
	limiter := NewTwoTierLimiter(1, 10, 1, 10)
	defer limiter.Stop()

	require.True(t, limiter.Allow("192.168.1.1"))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := limiter.Wait(ctx, "192.168.1.1")
	assert.NoError(t, err)
}

func TestTwoTierLimiter_WaitTimeout(t *testing.T) {
	limiter := NewTwoTierLimiter(1, 1, 1, 1)
	defer limiter.Stop()

	limiter.Allow("192.168.1.1")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx, "192.168.1.1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTwoTierLimiter_ConcurrentClients(t *testing.T) {
	limiter := NewTwoTierLimiter(1000, 1000, 10, 10)
	defer limiter.Stop()

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				limiter.Allow(fmt.Sprintf("10.%d.1.%d", id, i))
			}
		}(g)
	}
	wg.Wait()

	count := 0
	limiter.clients.Range(func(key, value interface{}) bool {
		count++
		return true
	})
	assert.Equal(t, 50, count)
}

func TestTwoTierLimiter_StopIsIdempotent(t *testing.T) {
	limiter := NewTwoTierLimiter(1, 1, 1, 1)

	limiter.Stop()
	limiter.Stop()
}
