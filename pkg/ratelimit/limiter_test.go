package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock is an adjustable clock for deterministic window tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(limit int64, window time.Duration) (*Limiter, *fakeClock) {
	clock := newFakeClock()
	limiter := NewLimiter(Config{
		Limit:  limit,
		Window: window,
		Now:    clock.Now,
	})
	return limiter, clock
}

// ============================================================================
// Window Behavior Tests
// ============================================================================

func TestLimiter_FirstRequestOpensWindow(t *testing.T) {
	limiter, clock := newTestLimiter(100, time.Hour)

	decision := limiter.Check("client-a")
	if !decision.Allowed {
		t.Fatal("Expected first request to be allowed")
	}
	if decision.Limit != 100 {
		t.Errorf("Expected limit 100, got %d", decision.Limit)
	}
	if decision.Remaining != 99 {
		t.Errorf("Expected 99 remaining after first request, got %d", decision.Remaining)
	}

	wantReset := clock.Now().Add(time.Hour)
	if !decision.Reset.Equal(wantReset) {
		t.Errorf("Expected reset at %v, got %v", wantReset, decision.Reset)
	}
}

func TestLimiter_CountsWithinWindow(t *testing.T) {
	limiter, _ := newTestLimiter(5, time.Minute)

	for i := 0; i < 5; i++ {
		decision := limiter.Check("client-a")
		if !decision.Allowed {
			t.Fatalf("Expected request %d to be allowed", i+1)
		}
		wantRemaining := int64(5 - i - 1)
		if decision.Remaining != wantRemaining {
			t.Errorf("Request %d: expected %d remaining, got %d", i+1, wantRemaining, decision.Remaining)
		}
	}

	// Sixth request in the same window is rejected
	decision := limiter.Check("client-a")
	if decision.Allowed {
		t.Error("Expected request over the limit to be rejected")
	}
	if decision.Reason != "rate limit exceeded" {
		t.Errorf("Expected 'rate limit exceeded', got %q", decision.Reason)
	}
	if decision.Remaining != 0 {
		t.Errorf("Expected 0 remaining, got %d", decision.Remaining)
	}
}

func TestLimiter_RejectionDoesNotMutateWindow(t *testing.T) {
	limiter, clock := newTestLimiter(2, time.Minute)

	limiter.Check("client-a")
	allowed := limiter.Check("client-a")
	if !allowed.Allowed {
		t.Fatal("Expected second request to be allowed")
	}
	originalReset := allowed.Reset

	// Hammer the closed window; the reset time must not move.
	for i := 0; i < 10; i++ {
		clock.Advance(time.Second)
		decision := limiter.Check("client-a")
		if decision.Allowed {
			t.Fatalf("Expected rejection %d inside window", i+1)
		}
		if !decision.Reset.Equal(originalReset) {
			t.Fatalf("Rejection moved reset from %v to %v", originalReset, decision.Reset)
		}
	}

	// Once the original window passes, the client is admitted again.
	clock.Advance(time.Minute)
	decision := limiter.Check("client-a")
	if !decision.Allowed {
		t.Error("Expected request after window reset to be allowed")
	}
	if decision.Remaining != 1 {
		t.Errorf("Expected fresh window with 1 remaining, got %d", decision.Remaining)
	}
}

func TestLimiter_WindowResetsAfterExpiry(t *testing.T) {
	limiter, clock := newTestLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		limiter.Check("client-a")
	}
	if limiter.Check("client-a").Allowed {
		t.Fatal("Expected window to be full")
	}

	// Just past the reset time a fresh window opens with count 1.
	clock.Advance(time.Minute + time.Millisecond)
	decision := limiter.Check("client-a")
	if !decision.Allowed {
		t.Fatal("Expected request in fresh window to be allowed")
	}
	if decision.Remaining != 2 {
		t.Errorf("Expected 2 remaining in fresh window, got %d", decision.Remaining)
	}

	wantReset := clock.Now().Add(time.Minute)
	if !decision.Reset.Equal(wantReset) {
		t.Errorf("Expected new reset at %v, got %v", wantReset, decision.Reset)
	}
}

func TestLimiter_ResetBoundaryStillInWindow(t *testing.T) {
	limiter, clock := newTestLimiter(1, time.Minute)

	limiter.Check("client-a")

	// Exactly at the reset instant the window is still live.
	clock.Advance(time.Minute)
	decision := limiter.Check("client-a")
	if decision.Allowed {
		t.Error("Expected request exactly at reset time to still hit the old window")
	}
}

func TestLimiter_RetryAfter(t *testing.T) {
	limiter, clock := newTestLimiter(1, time.Minute)

	limiter.Check("client-a")
	clock.Advance(20 * time.Second)

	decision := limiter.Check("client-a")
	if decision.Allowed {
		t.Fatal("Expected rejection")
	}
	if decision.RetryAfter != 40*time.Second {
		t.Errorf("Expected RetryAfter 40s, got %v", decision.RetryAfter)
	}
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(1, time.Minute)

	if !limiter.Check("client-a").Allowed {
		t.Error("Expected client-a to be allowed")
	}
	if !limiter.Check("client-b").Allowed {
		t.Error("Expected client-b to be allowed despite client-a's full window")
	}
	if limiter.Check("client-a").Allowed {
		t.Error("Expected client-a to be rejected")
	}
	if limiter.Check("client-b").Allowed {
		t.Error("Expected client-b to be rejected")
	}
}

// ============================================================================
// Concurrency Tests
// ============================================================================

func TestLimiter_LastSlotAdmitsExactlyOne(t *testing.T) {
	limiter, _ := newTestLimiter(5, time.Minute)

	// Fill all but one slot.
	for i := 0; i < 4; i++ {
		limiter.Check("client-a")
	}

	var wg sync.WaitGroup
	start := make(chan struct{})
	allowedCount := 0
	var mu sync.Mutex

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if limiter.Check("client-a").Allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}

	close(start)
	wg.Wait()

	if allowedCount != 1 {
		t.Errorf("Expected exactly 1 admission for the last slot, got %d", allowedCount)
	}
}

func TestLimiter_ConcurrentChecksRespectLimit(t *testing.T) {
	limiter, _ := newTestLimiter(50, time.Minute)

	var wg sync.WaitGroup
	allowedCount := 0
	var mu sync.Mutex

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Check("client-a").Allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	if allowedCount != 50 {
		t.Errorf("Expected exactly 50 admissions, got %d", allowedCount)
	}
}

// ============================================================================
// Eviction Tests
// ============================================================================

func TestLimiter_SweepExpired(t *testing.T) {
	limiter, clock := newTestLimiter(10, time.Minute)

	limiter.Check("expired-a")
	limiter.Check("expired-b")

	clock.Advance(2 * time.Minute)
	limiter.Check("live-c")

	if limiter.Size() != 3 {
		t.Fatalf("Expected 3 tracked clients, got %d", limiter.Size())
	}

	removed := limiter.SweepExpired(0)
	if removed != 2 {
		t.Errorf("Expected 2 removed, got %d", removed)
	}
	if limiter.Size() != 1 {
		t.Errorf("Expected 1 tracked client after sweep, got %d", limiter.Size())
	}

	// The surviving client's window is intact.
	decision := limiter.Check("live-c")
	if !decision.Allowed || decision.Remaining != 8 {
		t.Errorf("Expected live client to keep its window, got allowed=%v remaining=%d",
			decision.Allowed, decision.Remaining)
	}
}

func TestLimiter_SweepExpired_Bounded(t *testing.T) {
	limiter, clock := newTestLimiter(10, time.Minute)

	for i := 0; i < 10; i++ {
		limiter.Check(fmt.Sprintf("client-%d", i))
	}
	clock.Advance(2 * time.Minute)

	// A bounded pass examines at most 3 entries.
	removed := limiter.SweepExpired(3)
	if removed > 3 {
		t.Errorf("Bounded sweep removed %d, want <= 3", removed)
	}
	if limiter.Size() != 10-removed {
		t.Errorf("Expected %d tracked after sweep, got %d", 10-removed, limiter.Size())
	}

	// Repeated passes eventually drain the table.
	for i := 0; i < 10; i++ {
		limiter.SweepExpired(3)
	}
	if limiter.Size() != 0 {
		t.Errorf("Expected empty table after repeated sweeps, got %d", limiter.Size())
	}
}

func TestLimiter_MaxClientsSweepsInline(t *testing.T) {
	clock := newFakeClock()
	limiter := NewLimiter(Config{
		Limit:      10,
		Window:     time.Minute,
		MaxClients: 2,
		Now:        clock.Now,
	})

	limiter.Check("client-a")
	limiter.Check("client-b")
	clock.Advance(2 * time.Minute)

	// Table is at cap but both entries are expired; the new client
	// triggers an inline sweep and is admitted.
	decision := limiter.Check("client-c")
	if !decision.Allowed {
		t.Fatal("Expected new client to be admitted after inline sweep")
	}
	if limiter.Size() != 1 {
		t.Errorf("Expected only the new client tracked, got %d", limiter.Size())
	}
}

func TestLimiter_MaxClientsSoftCap(t *testing.T) {
	clock := newFakeClock()
	limiter := NewLimiter(Config{
		Limit:      10,
		Window:     time.Minute,
		MaxClients: 2,
		Now:        clock.Now,
	})

	limiter.Check("client-a")
	limiter.Check("client-b")

	// All windows are live, so nothing can be reclaimed. The new
	// client is still admitted; capacity pressure must not turn into
	// spurious rejections.
	decision := limiter.Check("client-c")
	if !decision.Allowed {
		t.Error("Expected new client to be admitted even at cap")
	}
}

func TestLimiter_Reset(t *testing.T) {
	limiter, _ := newTestLimiter(1, time.Minute)

	limiter.Check("client-a")
	if limiter.Check("client-a").Allowed {
		t.Fatal("Expected full window")
	}

	limiter.Reset()

	if limiter.Size() != 0 {
		t.Errorf("Expected empty table after reset, got %d", limiter.Size())
	}
	if !limiter.Check("client-a").Allowed {
		t.Error("Expected request to be allowed after reset")
	}
}

// ============================================================================
// Benchmarks
// ============================================================================

func BenchmarkLimiter_Check(b *testing.B) {
	limiter := NewLimiter(Config{
		Limit:  int64(b.N) + 1,
		Window: time.Hour,
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		limiter.Check("client-a")
	}
}

func BenchmarkLimiter_CheckManyClients(b *testing.B) {
	limiter := NewLimiter(Config{
		Limit:  1000000,
		Window: time.Hour,
	})

	clients := make([]string, 1000)
	for i := range clients {
		clients[i] = fmt.Sprintf("client-%d", i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		limiter.Check(clients[i%len(clients)])
	}
}

func BenchmarkLimiter_CheckParallel(b *testing.B) {
	limiter := NewLimiter(Config{
		Limit:  1000000000,
		Window: time.Hour,
	})

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			limiter.Check("client-a")
		}
	})
}
