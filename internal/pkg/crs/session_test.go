package crs

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestSessionCoalescesConcurrentRefresh verifies racing callers share one login.
func TestSessionCoalescesConcurrentRefresh(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s := newSession(func() time.Time { return base })

	var logins atomic.Int64
	login := func(ctx context.Context) (string, time.Duration, error) {
		logins.Add(1)
		time.Sleep(10 * time.Millisecond)
		return "tok", 24 * time.Hour, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.get(context.Background(), login); err != nil {
				t.Errorf("get failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := logins.Load(); got != 1 {
		t.Fatalf("expected concurrent callers to coalesce on 1 login, got %d", got)
	}
}

// TestSessionInvalidateForcesRelogin verifies invalidate drops the cache.
func TestSessionInvalidateForcesRelogin(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s := newSession(func() time.Time { return base })

	var logins int
	login := func(ctx context.Context) (string, time.Duration, error) {
		logins++
		return "tok", 24 * time.Hour, nil
	}

	if _, err := s.get(context.Background(), login); err != nil {
		t.Fatal(err)
	}
	if _, err := s.get(context.Background(), login); err != nil {
		t.Fatal(err)
	}
	if logins != 1 {
		t.Fatalf("expected cached token, got %d logins", logins)
	}

	s.invalidate()
	if _, err := s.get(context.Background(), login); err != nil {
		t.Fatal(err)
	}
	if logins != 2 {
		t.Fatalf("expected re-login after invalidate, got %d logins", logins)
	}
}
