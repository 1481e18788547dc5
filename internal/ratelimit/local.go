// local.go — in-process per-IP token bucket, applied in front of the
// store-backed window limiter to absorb bursts before they cost a store
// round-trip. Keyed entries idle out and are pruned by a janitor goroutine.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Local is a token-bucket limiter cached per key.
type Local struct {
	mu           sync.Mutex
	entries      map[string]*localEntry
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type localEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewLocal creates a Local allowing rps sustained requests per second per
// key with the given burst.
func NewLocal(rps float64, burst int) *Local {
	return &Local{
		entries:      make(map[string]*localEntry),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
}

// Allow reports whether the keyed bucket has a token available.
func (l *Local) Allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	ent, ok := l.entries[key]
	if !ok {
		ent = &localEntry{lim: rate.NewLimiter(l.rps, l.burst)}
		l.entries[key] = ent
	}
	ent.lastSeen = now
	l.mu.Unlock()

	return ent.lim.Allow()
}

// Cleanup removes entries idle longer than the idle TTL.
func (l *Local) Cleanup() {
	cutoff := time.Now().Add(-l.idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()

	for k, ent := range l.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(l.entries, k)
		}
	}
}

// StartJanitor starts a goroutine that prunes idle keys periodically.
// Stop it by cancelling the context.
func (l *Local) StartJanitor(ctx context.Context) {
	t := time.NewTicker(l.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Cleanup()
			}
		}
	}()
}
