// Package gateway is the orchestrator every inbound request passes through:
// route validation, one-time token consumption, rate limiting, admin
// authentication, and finally dispatch into the handler registry.
//
// The gateway never renders anything itself — it produces an envelope plus
// the route resolution, and the HTTP adapter in internal/handlers decides
// how to put that on the wire.
package gateway

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/festivent/festivent/internal/brand"
	"github.com/festivent/festivent/internal/csrf"
	"github.com/festivent/festivent/internal/envelope"
	"github.com/festivent/festivent/internal/metrics"
	"github.com/festivent/festivent/internal/ratelimit"
	"github.com/festivent/festivent/internal/routes"
	"github.com/festivent/festivent/pkg/telemetry"
)

// Request is the gateway's view of one inbound request. All fields are
// explicit — there is no open payload map for handlers to smuggle state
// through.
type Request struct {
	Method string     `json:"method"`
	Path   string     `json:"path"`
	Host   string     `json:"host"`
	IP     string     `json:"ip"`
	Query  url.Values `json:"query"`

	// Tenant is filled in by the gateway once resolved (path prefix first,
	// hostname second). Handlers read it, never set it.
	Tenant string `json:"tenant,omitempty"`

	// CSRFToken and AdminSecret are extracted by the HTTP adapter from
	// their dedicated headers. Never logged.
	CSRFToken   string `json:"-"`
	AdminSecret string `json:"-"`
}

// adminPages are the canonical pages that demand admin authentication, in
// addition to every registered operation.
var adminPages = map[string]bool{
	"manage":      true,
	"config":      true,
	"reports":     true,
	"diagnostics": true,
}

// Gateway wires the validation chain in front of the handler registry.
type Gateway struct {
	tables   *routes.Tables
	registry *Registry
	tokens   *csrf.Manager
	limiter  *ratelimit.Limiter
	gate     AuthChecker
	dir      *brand.Directory
	rec      *envelope.Recorder
}

// AuthChecker decouples the gateway from the authgate package so tests can
// substitute the admin check. Satisfied by *authgate.Gate.
type AuthChecker interface {
	CheckAttempt(ctx context.Context, tenantID, ip, secret string) envelope.Envelope
}

// New assembles a Gateway. All collaborators are required.
func New(tables *routes.Tables, registry *Registry, tokens *csrf.Manager,
	limiter *ratelimit.Limiter, gate AuthChecker, dir *brand.Directory,
	rec *envelope.Recorder) *Gateway {
	return &Gateway{
		tables:   tables,
		registry: registry,
		tokens:   tokens,
		limiter:  limiter,
		gate:     gate,
		dir:      dir,
		rec:      rec,
	}
}

// Handle runs the full chain for one request and returns the envelope
// together with the route resolution (the adapter needs the class to render
// the envelope, valid or not).
//
// Chain order is a contract: resolve (valid short links return their
// redirect decision here) → CSRF for operations → request rate limit →
// admin gate where the route demands it → dispatch. Each stage rejects
// terminally; later stages never see a request an earlier stage refused.
func (g *Gateway) Handle(ctx context.Context, req *Request) (envelope.Envelope, routes.Result) {
	start := time.Now()
	env, result := g.handle(ctx, req)

	outcome := "ok"
	failedCode := ""
	if env.Failed() {
		outcome = string(env.Code)
		failedCode = string(env.Code)
	}
	metrics.ObserveRequest(string(result.Class), outcome, start, failedCode)
	return env, result
}

func (g *Gateway) handle(ctx context.Context, req *Request) (envelope.Envelope, routes.Result) {
	result := g.tables.Resolve(req.Path, req.Query)
	if !result.Valid {
		return envelope.Err(envelope.CodeNotFound, result.Reason), result
	}

	req.Tenant = g.resolveTenant(req, result)

	// Legacy short links answer with a redirect to the canonical page URL;
	// nothing is served here, so no token, rate, or auth stage applies. The
	// destination page enforces its own requirements when the client follows
	// the redirect.
	if result.Class == routes.ClassRedirect {
		return envelope.Ok(result.Route), result
	}

	isOperation := routes.IsOperation(result.Route)

	// Operations mutate state; each must spend a one-time token.
	if isOperation {
		if !g.tokens.Consume(ctx, csrfScope(req), req.CSRFToken) {
			return envelope.Err(envelope.CodeBadInput, "Invalid or expired token"), result
		}
	}

	if !g.limiter.CheckRequest(ctx, req.IP) {
		return envelope.Err(envelope.CodeRateLimited, "Too many requests. Please retry later."), result
	}

	if isOperation || adminPages[result.Route] {
		if req.Tenant == "" {
			return envelope.Err(envelope.CodeUnauthorized, "No organization context"), result
		}
		authEnv := g.gate.CheckAttempt(ctx, req.Tenant, req.IP, req.AdminSecret)
		if authEnv.Failed() {
			// Pass-through: the gate's envelope is the caller's answer.
			return authEnv, result
		}
	}

	return g.dispatch(ctx, result, req), result
}

// dispatch invokes the registered handler inside the panic boundary and
// enforces the handler contract on the way out.
func (g *Gateway) dispatch(ctx context.Context, result routes.Result, req *Request) (env envelope.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("panic: %v", r)
			}
			telemetry.CaptureError(err, map[string]string{
				"route":  result.Route,
				"tenant": req.Tenant,
			})
			env = g.rec.Internal(envelope.CodeInternal, "gateway.dispatch",
				"handler panicked", map[string]any{
					"route": result.Route,
					"panic": fmt.Sprint(r),
				})
		}
	}()

	h := g.registry.lookup(result.Route)
	if h == nil {
		// A valid route with no handler is a wiring failure, not a caller
		// mistake.
		return g.rec.Internal(envelope.CodeInternal, "gateway.dispatch",
			"no handler registered for route", map[string]any{
				"route": result.Route,
			})
	}

	env = h(ctx, req)
	if !env.Failed() && env.Value == nil {
		// Handler contract: a success envelope carries a value.
		return g.rec.Internal(envelope.CodeContract, "gateway.dispatch",
			"handler returned ok with nil value", map[string]any{
				"route": result.Route,
			})
	}
	return env
}

// resolveTenant prefers the path-derived tenant, falling back to the
// hostname the request arrived on.
func (g *Gateway) resolveTenant(req *Request, result routes.Result) string {
	if result.Tenant != "" {
		return result.Tenant
	}
	if t := g.dir.LookupByHostname(req.Host); t != nil {
		return t.ID
	}
	return ""
}

// csrfScope names the lock a consumption serializes under: per tenant+IP
// when a tenant is known, per IP otherwise.
func csrfScope(req *Request) string {
	if req.Tenant != "" {
		return req.Tenant + ":" + req.IP
	}
	return req.IP
}
