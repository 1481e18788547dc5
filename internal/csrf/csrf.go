// Package csrf manages one-time-use tokens proving that a mutating request
// originated from a previously served view.
//
// A token exists in exactly two states: unconsumed (its presence marker is
// in the shared store, subject to TTL) and consumed/expired (absent).
// Consumption is the gateway's only critical section: the presence check and
// the delete must be atomic under a named lock, or two concurrent requests
// carrying the same token could both validate.
package csrf

import (
	"context"
	"strings"
	"time"

	"github.com/festivent/festivent/internal/envelope"
	"github.com/festivent/festivent/internal/kvstore"
	"github.com/festivent/festivent/internal/metrics"
	"github.com/festivent/festivent/pkg/security"
)

const (
	// TokenTTL is how long an unconsumed token stays valid. Expiry is
	// enforced by the store — no in-process timers.
	TokenTTL = time.Hour

	// LockWait bounds how long Consume waits for the scope lock. On
	// timeout the token is treated as invalid rather than blocking the
	// request; under contention a legitimate caller may be asked to retry
	// (fail closed), but the gateway never hangs.
	LockWait = 5 * time.Second

	// maxTokenLen rejects absurd inputs before they reach the store.
	maxTokenLen = 128

	keyPrefix  = "csrf_"
	lockPrefix = "csrf:"
)

// Manager issues and consumes one-time tokens.
type Manager struct {
	store    kvstore.Store
	locks    kvstore.Locker
	rec      *envelope.Recorder
	lockWait time.Duration
}

// Option adjusts a Manager.
type Option func(*Manager)

// WithLockWait overrides the default lock acquisition wait.
func WithLockWait(wait time.Duration) Option {
	return func(m *Manager) { m.lockWait = wait }
}

// New creates a Manager. All three dependencies are required.
func New(store kvstore.Store, locks kvstore.Locker, rec *envelope.Recorder, opts ...Option) *Manager {
	m := &Manager{store: store, locks: locks, rec: rec, lockWait: LockWait}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Issue generates a new high-entropy token and stores its presence marker
// with the standard TTL.
func (m *Manager) Issue(ctx context.Context) (string, error) {
	token := security.NewToken()
	if err := m.store.Put(ctx, keyPrefix+token, "1", TokenTTL); err != nil {
		return "", err
	}
	metrics.CSRFTokens.WithLabelValues("issued").Inc()
	return token, nil
}

// Consume validates and spends a token for the given caller scope
// (session or tenant+IP identity). It returns true exactly once per issued
// token, however many concurrent callers present it.
//
// The lock is scoped to the caller, acquired with a bounded wait; failure to
// acquire degrades to "invalid" with a warning — never to success, and never
// to an unbounded block. Release runs unconditionally and is best-effort.
func (m *Manager) Consume(ctx context.Context, scope, token string) bool {
	ok := m.consume(ctx, scope, token)
	if ok {
		metrics.CSRFTokens.WithLabelValues("consumed").Inc()
	} else {
		metrics.CSRFTokens.WithLabelValues("rejected").Inc()
	}
	return ok
}

func (m *Manager) consume(ctx context.Context, scope, token string) bool {
	// Cheap structural rejection before any lock or store access.
	if !plausibleToken(token) {
		return false
	}

	lockName := lockPrefix + scope
	if !m.locks.TryAcquire(ctx, lockName, m.lockWait) {
		m.rec.Warn("csrf.consume", "lock acquisition timed out", map[string]any{
			"scope": scope,
			"wait":  m.lockWait.String(),
		})
		return false
	}
	defer m.locks.Release(lockName)

	// Critical section: presence check and delete are one atomic step with
	// respect to every other consumer of this scope.
	key := keyPrefix + token
	_, present, err := m.store.Get(ctx, key)
	if err != nil || !present {
		return false
	}
	if err := m.store.Delete(ctx, key); err != nil {
		// The marker survives; the token stays spendable. Fail closed for
		// this caller rather than report an unverified consumption.
		m.rec.Warn("csrf.consume", "marker delete failed", map[string]any{
			"error": err.Error(),
		})
		return false
	}
	return true
}

// plausibleToken rejects missing, empty, padded, or oversized values.
func plausibleToken(token string) bool {
	if token == "" || len(token) > maxTokenLen {
		return false
	}
	return strings.TrimSpace(token) == token
}
