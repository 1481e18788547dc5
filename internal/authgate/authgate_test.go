package authgate_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/festivent/festivent/internal/authgate"
	"github.com/festivent/festivent/internal/brand"
	"github.com/festivent/festivent/internal/envelope"
	"github.com/festivent/festivent/internal/kvstore"
	"github.com/festivent/festivent/internal/ratelimit"
	"github.com/festivent/festivent/internal/testutil"
)

// mapSecrets resolves refs from a plain map, standing in for the env source.
type mapSecrets map[string]string

func (m mapSecrets) Resolve(ref string) string { return m[ref] }

func newGate(t *testing.T) (*authgate.Gate, *testutil.Clock) {
	t.Helper()
	dir, err := brand.New([]brand.Tenant{
		{ID: "acme", Hostnames: []string{"events.acme.com"}, AdminSecretRef: "SECRET_ACME"},
		{ID: "hollow", Hostnames: []string{"events.hollow.io"}, AdminSecretRef: "SECRET_HOLLOW"},
	})
	if err != nil {
		t.Fatalf("directory: %v", err)
	}

	clock := testutil.NewClock()
	store := kvstore.NewMemoryStore(kvstore.WithClock(clock.Now))

	log := logrus.New()
	log.SetOutput(io.Discard)
	rec := envelope.NewRecorder(logrus.NewEntry(log))

	secrets := mapSecrets{"SECRET_ACME": "opensesame"}
	return authgate.New(dir, secrets, ratelimit.New(store), rec), clock
}

func TestCheckAttempt_Success(t *testing.T) {
	g, _ := newGate(t)
	env := g.CheckAttempt(context.Background(), "acme", "1.2.3.4", "opensesame")
	if env.Failed() {
		t.Fatalf("expected success, got %s: %s", env.Code, env.Message)
	}
	tenant, ok := env.Value.(*brand.Tenant)
	if !ok || tenant.ID != "acme" {
		t.Fatalf("envelope value = %#v, want the acme tenant", env.Value)
	}
}

func TestCheckAttempt_UnknownTenant(t *testing.T) {
	g, _ := newGate(t)
	env := g.CheckAttempt(context.Background(), "nosuch", "1.2.3.4", "whatever")
	if env.Code != envelope.CodeNotFound {
		t.Fatalf("code = %s, want NOT_FOUND", env.Code)
	}
}

func TestCheckAttempt_WrongSecret(t *testing.T) {
	g, _ := newGate(t)
	env := g.CheckAttempt(context.Background(), "acme", "1.2.3.4", "wrong")
	if env.Code != envelope.CodeBadInput {
		t.Fatalf("code = %s, want BAD_INPUT", env.Code)
	}
	if env.Message != "Invalid credentials" {
		t.Errorf("message = %q; must not leak why the attempt failed", env.Message)
	}
}

func TestCheckAttempt_UnresolvedSecretNeverMatches(t *testing.T) {
	g, _ := newGate(t)
	// hollow's ref is not in the secret source; an empty input must not
	// pass an empty-vs-empty compare.
	env := g.CheckAttempt(context.Background(), "hollow", "1.2.3.4", "")
	if env.Code != envelope.CodeBadInput {
		t.Fatalf("code = %s, want BAD_INPUT", env.Code)
	}
}

func TestCheckAttempt_LockoutAfterRepeatedFailures(t *testing.T) {
	g, clock := newGate(t)
	ctx := context.Background()

	for i := 0; i < ratelimit.LockoutThreshold; i++ {
		env := g.CheckAttempt(ctx, "acme", "1.2.3.4", "wrong")
		if env.Code != envelope.CodeBadInput {
			t.Fatalf("failure %d: code = %s, want BAD_INPUT", i+1, env.Code)
		}
	}

	// Locked out: even the correct secret is rejected before the compare.
	env := g.CheckAttempt(ctx, "acme", "1.2.3.4", "opensesame")
	if env.Code != envelope.CodeRateLimited {
		t.Fatalf("code = %s, want RATE_LIMITED while locked out", env.Code)
	}

	// After the cool-down the correct secret works again.
	clock.Advance(ratelimit.LockoutDuration + time.Second)
	if env := g.CheckAttempt(ctx, "acme", "1.2.3.4", "opensesame"); env.Failed() {
		t.Fatalf("post-cooldown attempt failed: %s: %s", env.Code, env.Message)
	}
}

func TestCheckAttempt_LockoutScopedToTenantAndIP(t *testing.T) {
	g, _ := newGate(t)
	ctx := context.Background()

	for i := 0; i < ratelimit.LockoutThreshold; i++ {
		g.CheckAttempt(ctx, "acme", "1.2.3.4", "wrong")
	}

	// Same tenant, different IP: not locked out.
	if env := g.CheckAttempt(ctx, "acme", "9.9.9.9", "opensesame"); env.Failed() {
		t.Errorf("different IP should not inherit the lockout: %s", env.Code)
	}
	// Different tenant, same IP: lockout check happens first, so the probe
	// falls through to the lookup/compare path instead.
	if env := g.CheckAttempt(ctx, "hollow", "1.2.3.4", "x"); env.Code == envelope.CodeRateLimited {
		t.Error("different tenant should not inherit the lockout")
	}
}

func TestCheckAttempt_SuccessClearsFailures(t *testing.T) {
	g, _ := newGate(t)
	ctx := context.Background()

	for i := 0; i < ratelimit.LockoutThreshold-1; i++ {
		g.CheckAttempt(ctx, "acme", "1.2.3.4", "wrong")
	}
	if env := g.CheckAttempt(ctx, "acme", "1.2.3.4", "opensesame"); env.Failed() {
		t.Fatalf("attempt below threshold failed: %s", env.Code)
	}

	// The counter was reset, so another run of failures is needed to lock.
	for i := 0; i < ratelimit.LockoutThreshold-1; i++ {
		g.CheckAttempt(ctx, "acme", "1.2.3.4", "wrong")
	}
	if env := g.CheckAttempt(ctx, "acme", "1.2.3.4", "opensesame"); env.Failed() {
		t.Fatalf("failures survived a successful auth: %s", env.Code)
	}
}

func TestCheckAttempt_SensitiveBudgetOnSuccessOnly(t *testing.T) {
	g, _ := newGate(t)
	ctx := context.Background()

	for i := 0; i < ratelimit.SensitiveLimit; i++ {
		if env := g.CheckAttempt(ctx, "acme", "1.2.3.4", "opensesame"); env.Failed() {
			t.Fatalf("attempt %d failed: %s", i+1, env.Code)
		}
	}
	env := g.CheckAttempt(ctx, "acme", "1.2.3.4", "opensesame")
	if env.Code != envelope.CodeRateLimited {
		t.Fatalf("code = %s, want RATE_LIMITED once the sensitive budget is spent", env.Code)
	}
}
