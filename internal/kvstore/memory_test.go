package kvstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/festivent/festivent/internal/kvstore"
	"github.com/festivent/festivent/internal/testutil"
)

// ── MemoryStore ───────────────────────────────────────────────────────────────

func TestMemoryStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	s := kvstore.NewMemoryStore()

	if err := s.Put(ctx, "k", "v", 0); err != nil {
		t.Fatalf("put: %v", err)
	}
	v, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || v != "v" {
		t.Fatalf("get: got (%q, %v, %v)", v, ok, err)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("key should be gone after delete")
	}
	// Deleting a missing key is not an error.
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Errorf("delete missing: %v", err)
	}
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock()
	s := kvstore.NewMemoryStore(kvstore.WithClock(clock.Now))

	s.Put(ctx, "k", "v", time.Hour)
	if _, ok, _ := s.Get(ctx, "k"); !ok {
		t.Fatal("key should be present before expiry")
	}

	clock.Advance(time.Hour + time.Second)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("key should have expired")
	}
}

func TestMemoryStore_IncrPreservesTTL(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock()
	s := kvstore.NewMemoryStore(kvstore.WithClock(clock.Now))

	n, err := s.Incr(ctx, "ctr")
	if err != nil || n != 1 {
		t.Fatalf("first incr: got (%d, %v)", n, err)
	}
	s.Expire(ctx, "ctr", time.Minute)

	n, _ = s.Incr(ctx, "ctr")
	if n != 2 {
		t.Fatalf("second incr: got %d", n)
	}
	ttl, _ := s.TTL(ctx, "ctr")
	if ttl <= 0 {
		t.Error("incr should not clear an existing TTL")
	}

	clock.Advance(2 * time.Minute)
	n, _ = s.Incr(ctx, "ctr")
	if n != 1 {
		t.Errorf("counter should restart after expiry, got %d", n)
	}
}

func TestMemoryStore_Decr(t *testing.T) {
	ctx := context.Background()
	s := kvstore.NewMemoryStore()
	s.Incr(ctx, "ctr")
	s.Incr(ctx, "ctr")
	n, err := s.Decr(ctx, "ctr")
	if err != nil || n != 1 {
		t.Fatalf("decr: got (%d, %v)", n, err)
	}
}

func TestMemoryStore_TTLMissingKey(t *testing.T) {
	ttl, err := kvstore.NewMemoryStore().TTL(context.Background(), "missing")
	if err != nil || ttl > 0 {
		t.Errorf("expected no TTL for missing key, got (%v, %v)", ttl, err)
	}
}

// ── MemoryLocker ──────────────────────────────────────────────────────────────

func TestMemoryLocker_AcquireRelease(t *testing.T) {
	l := kvstore.NewMemoryLocker()
	ctx := context.Background()

	if !l.TryAcquire(ctx, "a", 10*time.Millisecond) {
		t.Fatal("first acquire should succeed")
	}
	// Second acquire of the same name must time out.
	if l.TryAcquire(ctx, "a", 10*time.Millisecond) {
		t.Fatal("second acquire should time out while held")
	}
	l.Release("a")
	if !l.TryAcquire(ctx, "a", 10*time.Millisecond) {
		t.Fatal("acquire after release should succeed")
	}
}

func TestMemoryLocker_IndependentNames(t *testing.T) {
	l := kvstore.NewMemoryLocker()
	ctx := context.Background()
	if !l.TryAcquire(ctx, "a", 10*time.Millisecond) {
		t.Fatal("acquire a")
	}
	if !l.TryAcquire(ctx, "b", 10*time.Millisecond) {
		t.Fatal("lock b should be independent of lock a")
	}
}

func TestMemoryLocker_ReleaseUnheld(t *testing.T) {
	l := kvstore.NewMemoryLocker()
	// Must not panic or block.
	l.Release("never-held")
}

func TestMemoryLocker_ContextCancel(t *testing.T) {
	l := kvstore.NewMemoryLocker()
	ctx, cancel := context.WithCancel(context.Background())
	l.TryAcquire(ctx, "a", time.Second)

	done := make(chan bool, 1)
	go func() {
		done <- l.TryAcquire(ctx, "a", 5*time.Second)
	}()
	cancel()
	select {
	case got := <-done:
		if got {
			t.Error("cancelled acquire should return false")
		}
	case <-time.After(time.Second):
		t.Fatal("acquire did not return promptly after cancellation")
	}
}
