// Package authgate checks admin-secret authentication attempts against the
// tenant directory, with a progressive lockout in front of the compare.
//
// The check order is fixed: lockout first, then tenant lookup, then the
// constant-time secret compare, then the sensitive-operation rate counter.
// A locked-out caller never reaches the compare, so the lockout cannot be
// used as a secret-probing oracle, and a lockout rejection does not consume
// request-rate budget.
package authgate

import (
	"context"
	"fmt"

	"github.com/festivent/festivent/internal/brand"
	"github.com/festivent/festivent/internal/envelope"
	"github.com/festivent/festivent/internal/logger"
	"github.com/festivent/festivent/internal/metrics"
	"github.com/festivent/festivent/internal/ratelimit"
	"github.com/festivent/festivent/pkg/security"
)

// Gate authenticates admin access to tenant-scoped management routes.
type Gate struct {
	dir     *brand.Directory
	secrets brand.SecretSource
	limiter *ratelimit.Limiter
	rec     *envelope.Recorder
}

// New creates a Gate. All dependencies are required; a limiter built on a
// nil store disables lockout and rate accounting (single-node dev mode).
func New(dir *brand.Directory, secrets brand.SecretSource, limiter *ratelimit.Limiter, rec *envelope.Recorder) *Gate {
	return &Gate{dir: dir, secrets: secrets, limiter: limiter, rec: rec}
}

// CheckAttempt validates one admin authentication attempt for the given
// tenant. On success the envelope value is the tenant record and the
// failure counter is cleared; every failure mode returns a typed error
// envelope.
func (g *Gate) CheckAttempt(ctx context.Context, tenantID, ip, secret string) envelope.Envelope {
	if g.limiter.IsLockedOut(ctx, tenantID, ip) {
		g.rec.Warn("authgate.check", "attempt while locked out", map[string]any{
			"tenant": tenantID,
			"ip":     logger.RedactIP(ip),
		})
		return envelope.Err(envelope.CodeRateLimited, fmt.Sprintf(
			"Too many failed attempts. Try again in %d minutes.",
			int(ratelimit.LockoutDuration.Minutes())))
	}

	tenant := g.dir.Lookup(tenantID)
	if tenant == nil {
		return envelope.Err(envelope.CodeNotFound, "Unknown organization")
	}

	want := g.secrets.Resolve(tenant.AdminSecretRef)
	if want == "" {
		// A tenant whose secret cannot be resolved is misconfigured; treat
		// every attempt as a failure rather than letting an empty compare
		// succeed against an empty input.
		return g.fail(ctx, tenantID, ip, "admin secret unresolved")
	}
	if !security.SecureCompare(secret, want) {
		return g.fail(ctx, tenantID, ip, "secret mismatch")
	}

	// Only a fully successful attempt consumes the sensitive-operation
	// budget; rejected attempts are accounted through the failure counter.
	if !g.limiter.CheckSensitive(ctx, tenantID+":"+ip) {
		return envelope.Err(envelope.CodeRateLimited, "Too many requests. Slow down.")
	}

	g.limiter.ClearAuthFailures(ctx, tenantID, ip)
	return envelope.Ok(tenant)
}

// fail records the failed attempt and returns the uniform rejection. The
// reason goes to the log only — the client sees one fixed message for every
// authentication failure.
func (g *Gate) fail(ctx context.Context, tenantID, ip, reason string) envelope.Envelope {
	if count := g.limiter.RecordAuthFailure(ctx, tenantID, ip); count == ratelimit.LockoutThreshold {
		metrics.Lockouts.WithLabelValues(tenantID).Inc()
	}
	g.rec.Warn("authgate.check", "authentication failed", map[string]any{
		"tenant": tenantID,
		"ip":     logger.RedactIP(ip),
		"reason": reason,
	})
	return envelope.Err(envelope.CodeBadInput, "Invalid credentials")
}
