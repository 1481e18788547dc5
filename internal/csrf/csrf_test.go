package csrf_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/festivent/festivent/internal/csrf"
	"github.com/festivent/festivent/internal/envelope"
	"github.com/festivent/festivent/internal/kvstore"
	"github.com/festivent/festivent/internal/testutil"
)

func quietRecorder() *envelope.Recorder {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return envelope.NewRecorder(logrus.NewEntry(log))
}

func newManager(opts ...csrf.Option) (*csrf.Manager, *testutil.Clock) {
	clock := testutil.NewClock()
	store := kvstore.NewMemoryStore(kvstore.WithClock(clock.Now))
	return csrf.New(store, kvstore.NewMemoryLocker(), quietRecorder(), opts...), clock
}

// ── Issue / Consume lifecycle ─────────────────────────────────────────────────

func TestConsume_ExactlyOnce(t *testing.T) {
	m, _ := newManager()
	ctx := context.Background()

	token, err := m.Issue(ctx)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if len(token) != 64 {
		t.Fatalf("token length = %d, want 64 hex chars", len(token))
	}

	if !m.Consume(ctx, "acme:1.2.3.4", token) {
		t.Fatal("first consumption should succeed")
	}
	if m.Consume(ctx, "acme:1.2.3.4", token) {
		t.Fatal("second consumption of the same token should fail")
	}
}

func TestConsume_UnknownToken(t *testing.T) {
	m, _ := newManager()
	if m.Consume(context.Background(), "acme:1.2.3.4", "deadbeef") {
		t.Fatal("a token that was never issued should not validate")
	}
}

func TestConsume_ExpiredToken(t *testing.T) {
	m, clock := newManager()
	ctx := context.Background()

	token, _ := m.Issue(ctx)
	clock.Advance(csrf.TokenTTL + time.Second)
	if m.Consume(ctx, "acme:1.2.3.4", token) {
		t.Fatal("an expired token should not validate")
	}
}

func TestConsume_StructurallyInvalidTokens(t *testing.T) {
	m, _ := newManager()
	ctx := context.Background()

	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}
	for _, tok := range []string{"", " padded ", "tok\n", string(long)} {
		if m.Consume(ctx, "acme:1.2.3.4", tok) {
			t.Errorf("token %q should be rejected before any store access", tok)
		}
	}
}

func TestConsume_TokensIndependent(t *testing.T) {
	m, _ := newManager()
	ctx := context.Background()

	a, _ := m.Issue(ctx)
	b, _ := m.Issue(ctx)
	if !m.Consume(ctx, "s", a) {
		t.Fatal("token a should consume")
	}
	if !m.Consume(ctx, "s", b) {
		t.Fatal("consuming token a must not invalidate token b")
	}
}

// ── Concurrency ───────────────────────────────────────────────────────────────

// A token presented by many concurrent requests must validate for exactly
// one of them.
func TestConsume_ConcurrentSingleUse(t *testing.T) {
	m, _ := newManager()
	ctx := context.Background()

	token, _ := m.Issue(ctx)

	const n = 16
	var wg sync.WaitGroup
	results := make(chan bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- m.Consume(ctx, "acme:1.2.3.4", token)
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for ok := range results {
		if ok {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("token validated %d times, want exactly 1", wins)
	}
}

// ── Lock degradation ──────────────────────────────────────────────────────────

func TestConsume_LockTimeoutFailsClosed(t *testing.T) {
	ctx := context.Background()

	// Wire the manager by hand so the test can pre-hold the scope lock.
	locker := kvstore.NewMemoryLocker()
	store := kvstore.NewMemoryStore()
	m := csrf.New(store, locker, quietRecorder(), csrf.WithLockWait(20*time.Millisecond))

	token, _ := m.Issue(ctx)
	if !locker.TryAcquire(ctx, "csrf:acme:1.2.3.4", time.Second) {
		t.Fatal("setup: could not pre-hold the scope lock")
	}

	if m.Consume(ctx, "acme:1.2.3.4", token) {
		t.Fatal("consume must fail while the scope lock is held elsewhere")
	}

	// The token was never spent; after the lock frees it is still good.
	locker.Release("csrf:acme:1.2.3.4")
	if !m.Consume(ctx, "acme:1.2.3.4", token) {
		t.Fatal("token should remain spendable after a lock timeout")
	}
}
