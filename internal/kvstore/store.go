// Package kvstore abstracts the shared key-value store and the named-lock
// service the gateway keeps its cross-request state in: CSRF token presence
// markers, rate counters, and auth-failure counters. All expiry is delegated
// to the store's TTL mechanism — the gateway runs no in-process timers.
//
// In production both are Redis (see redis.go); for single-node deployments
// and tests the in-memory implementations in memory.go serve the same
// contracts.
package kvstore

import (
	"context"
	"time"
)

// Store is the minimal key-value contract the gateway needs. Keys are
// namespaced by purpose: "csrf_<token>", "rate:<identifier>",
// "auth_fail:<tenant>:<ip>".
type Store interface {
	// Put stores value under key with the given TTL (0 = no expiry).
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns the value and whether the key is present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Delete removes one or more keys. Deleting a missing key is not an error.
	Delete(ctx context.Context, keys ...string) error
	// Incr atomically increments a counter key and returns the new value.
	// A missing key counts from zero. The key's TTL is not changed.
	Incr(ctx context.Context, key string) (int64, error)
	// Decr atomically decrements a counter key and returns the new value.
	Decr(ctx context.Context, key string) (int64, error)
	// Expire sets the TTL on a key.
	Expire(ctx context.Context, key string, ttl time.Duration) error
	// TTL returns the remaining time-to-live on a key. Returns 0 or negative
	// if the key is missing or has no expiry.
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// Locker is the mutual-exclusion lock service. The only gateway critical
// section that needs it is CSRF token consumption.
type Locker interface {
	// TryAcquire blocks up to wait for the named lock. It returns false on
	// timeout or context cancellation — callers must treat that as "do not
	// proceed", never as validation success.
	TryAcquire(ctx context.Context, name string, wait time.Duration) bool
	// Release frees the named lock. Best-effort: releasing a lock that has
	// already expired or was never held must not panic or propagate an error.
	Release(name string)
}
