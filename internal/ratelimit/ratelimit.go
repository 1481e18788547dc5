// Package ratelimit provides store-backed rate limiting and auth-failure
// lockout tracking for the gateway. When the store is unavailable (nil), all
// limits are disabled — requests pass. This ensures the gateway degrades
// gracefully in dev/test environments without Redis.
//
// Counters are windowed by the store's TTL mechanism; there is no in-process
// pruning. Counters for different identifiers are fully independent — keys
// embed the identifier, so no state crosses tenants or IPs.
package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/festivent/festivent/internal/kvstore"
)

// Default policy. RequestLimit gates every accepted request; SensitiveLimit
// is the narrower gate in front of mutating/admin operations.
const (
	RequestLimit   = 20
	RequestWindow  = time.Minute
	SensitiveLimit = 10
	SensitiveWindow = time.Minute

	// LockoutThreshold failures for the same (tenant, ip) trigger a
	// lockout lasting LockoutDuration, regardless of counter decay.
	LockoutThreshold = 5
	LockoutDuration  = 15 * time.Minute
)

// Limiter performs rate limit and lockout checks against a kvstore.Store.
type Limiter struct {
	store kvstore.Store
}

// New creates a Limiter backed by the given store.
// If store is nil, the Limiter is a no-op that always allows requests.
func New(store kvstore.Store) *Limiter {
	return &Limiter{store: store}
}

// CheckRequest enforces the generic per-identifier request limit:
// 20 requests per 60-second window. Returns true if the request is allowed.
func (l *Limiter) CheckRequest(ctx context.Context, identifier string) bool {
	return l.check(ctx, "rate:req:"+identifier, RequestLimit, RequestWindow)
}

// CheckSensitive enforces the narrower gate used in front of sensitive
// operations: 10 requests per minute.
func (l *Limiter) CheckSensitive(ctx context.Context, identifier string) bool {
	return l.check(ctx, "rate:op:"+identifier, SensitiveLimit, SensitiveWindow)
}

// check is the generic increment-and-check against a counter key.
//
// The increment is atomic; when it pushes the count past max the request is
// rejected and the increment is compensated with a decrement, so rejected
// requests do not consume window budget (retry storms must not compound into
// lockouts). The only race this leaves makes the limiter momentarily
// stricter, never laxer.
func (l *Limiter) check(ctx context.Context, key string, max int64, window time.Duration) bool {
	if l.store == nil {
		return true
	}

	count, err := l.store.Incr(ctx, key)
	if err != nil {
		// Store error — fail open (allow request, don't block on infra issues).
		return true
	}
	if count == 1 {
		l.store.Expire(ctx, key, window)
	}
	if count > max {
		// Rejected requests must not count toward the window.
		l.store.Decr(ctx, key)
		return false
	}
	return true
}

// RecordAuthFailure records a failed auth attempt for (tenant, ip) and
// returns the new failure count. The counter's TTL is the lockout duration,
// refreshed on every failure, so the counter itself acts as the lockout
// marker.
func (l *Limiter) RecordAuthFailure(ctx context.Context, tenant, ip string) int64 {
	if l.store == nil {
		return 0
	}
	key := failKey(tenant, ip)
	count, err := l.store.Incr(ctx, key)
	if err != nil {
		return 0
	}
	l.store.Expire(ctx, key, LockoutDuration)
	return count
}

// IsLockedOut reports whether (tenant, ip) has reached the failure
// threshold. While locked out, callers must reject immediately without
// touching the secret-comparison path at all.
func (l *Limiter) IsLockedOut(ctx context.Context, tenant, ip string) bool {
	if l.store == nil {
		return false
	}
	v, ok, err := l.store.Get(ctx, failKey(tenant, ip))
	if err != nil || !ok {
		return false
	}
	count, _ := strconv.ParseInt(v, 10, 64)
	return count >= LockoutThreshold
}

// ClearAuthFailures resets the failure counter for (tenant, ip). Called on
// successful authentication before the lockout threshold is reached.
func (l *Limiter) ClearAuthFailures(ctx context.Context, tenant, ip string) {
	if l.store == nil {
		return
	}
	l.store.Delete(ctx, failKey(tenant, ip))
}

func failKey(tenant, ip string) string {
	return fmt.Sprintf("auth_fail:%s:%s", tenant, ip)
}

// ClientIP extracts the real client IP from a request, handling reverse
// proxy headers.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	addr := r.RemoteAddr
	if i := strings.LastIndex(addr, ":"); i > 0 {
		return addr[:i]
	}
	return addr
}
