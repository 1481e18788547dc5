// main.go — Festivent Request Gateway entrypoint.
//
// This binary:
//  1. Loads config from environment (via internal/config)
//  2. Loads the brand directory and compiles the route tables
//  3. Connects the shared store (Redis in cluster mode, in-memory in single
//     mode) and wires the full validation chain
//  4. Serves the gateway behind chi with metrics, panic recovery, security
//     headers, and a first-line per-IP burst limiter
//  5. Drains connections on SIGTERM/SIGINT
//
// Business handlers registered here are stubs: they prove the dispatch
// contract and return route descriptors. The real page renderers and
// operation handlers live in their own services and register against the
// same Registry interface.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/festivent/festivent/internal/authgate"
	"github.com/festivent/festivent/internal/brand"
	"github.com/festivent/festivent/internal/config"
	"github.com/festivent/festivent/internal/csrf"
	"github.com/festivent/festivent/internal/envelope"
	"github.com/festivent/festivent/internal/gateway"
	"github.com/festivent/festivent/internal/handlers"
	"github.com/festivent/festivent/internal/kvstore"
	"github.com/festivent/festivent/internal/logger"
	"github.com/festivent/festivent/internal/metrics"
	"github.com/festivent/festivent/internal/ratelimit"
	"github.com/festivent/festivent/internal/routes"
	"github.com/festivent/festivent/internal/shutdown"
	"github.com/festivent/festivent/pkg/logging"
	"github.com/festivent/festivent/pkg/security"
	"github.com/festivent/festivent/pkg/telemetry"
)

const version = "0.1.0"

// burst limits for the in-process first-line limiter, applied per IP before
// any shared-store accounting.
const (
	burstRPS  = 10
	burstSize = 30
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogFormat, cfg.LogLevel)
	log.Info("festivent gateway starting", "mode", cfg.Mode, "version", version)

	if err := telemetry.InitSentry(cfg.SentryDSN, "gateway", version); err != nil {
		log.Error("sentry init failed", "error", err)
		os.Exit(1)
	}
	defer telemetry.Flush()

	dir, err := brand.Load(cfg.BrandsFile)
	if err != nil {
		log.Error("brand directory load failed", "error", err, "file", cfg.BrandsFile)
		os.Exit(1)
	}
	log.Info("brand directory loaded", "tenants", len(dir.Slugs()))

	store, locker, err := connectStore(cfg)
	if err != nil {
		log.Error("store connection failed", "error", err)
		os.Exit(1)
	}

	rec := envelope.NewRecorder(logging.NewLogger("gateway"))
	tokens := csrf.New(store, locker, rec)
	limiter := ratelimit.New(store)
	gate := authgate.New(dir, brand.EnvSecretSource{}, limiter, rec)

	registry := gateway.NewRegistry()
	if err := registerStubs(registry); err != nil {
		log.Error("handler registration failed", "error", err)
		os.Exit(1)
	}

	tables := routes.Default().WithTenants(dir.Slugs())
	gw := gateway.New(tables, registry, tokens, limiter, gate, dir, rec)
	adapter := handlers.NewAdapter(gw)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	burst := ratelimit.NewLocal(burstRPS, burstSize)
	burst.StartJanitor(ctx)

	r := chi.NewRouter()
	r.Use(security.SecurityHeaders)
	r.Use(telemetry.PanicRecoveryMiddleware("gateway"))
	r.Use(chimw.RealIP)
	r.Use(metrics.Middleware)
	r.Use(burstLimit(burst))

	r.Get("/healthz", handlers.HandleHealthz())
	r.Get("/system/info", handlers.HandleSystemInfo(cfg, registry.Names()))
	r.Get("/csrf/token", handlers.HandleCSRFIssue(func(req *http.Request) (string, error) {
		return tokens.Issue(req.Context())
	}))
	r.Handle("/metrics", metrics.Handler())
	r.NotFound(adapter.ServeHTTP)
	r.MethodNotAllowed(adapter.ServeHTTP)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := shutdown.GracefulServe(srv, 30*time.Second, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// connectStore picks the shared state backend for the configured mode.
func connectStore(cfg *config.Config) (kvstore.Store, kvstore.Locker, error) {
	if cfg.IsSingleMode() {
		return kvstore.NewMemoryStore(), kvstore.NewMemoryLocker(), nil
	}

	opt, err := goredis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := goredis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}

	return kvstore.NewRedisStore(client), kvstore.NewRedisLocker(client), nil
}

// burstLimit applies the in-process token bucket before any handler runs.
func burstLimit(l *ratelimit.Local) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(ratelimit.ClientIP(r)) {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// registerStubs binds a descriptor handler to every canonical route and
// operation so dispatch is exercised end to end.
func registerStubs(reg *gateway.Registry) error {
	pages := []string{
		"root", "status", "manage", "events", "display", "poster",
		"public", "sponsors", "config", "reports", "diagnostics",
	}
	ops := []string{
		"event.create", "event.update", "event.delete", "event.list", "event.get",
		"registration.submit", "registration.list",
		"sponsor.add", "sponsor.update", "sponsor.delete", "sponsor.report",
		"analytics.get", "report.export",
		"config.get", "config.save",
		"diagnostics.run",
	}

	for _, name := range pages {
		n := name
		if err := reg.Register(n, func(ctx context.Context, req *gateway.Request) envelope.Envelope {
			return envelope.Ok(map[string]string{"page": n, "tenant": req.Tenant})
		}); err != nil {
			return err
		}
	}
	for _, name := range ops {
		n := name
		if err := reg.Register(n, func(ctx context.Context, req *gateway.Request) envelope.Envelope {
			return envelope.Ok(map[string]string{"op": n, "tenant": req.Tenant})
		}); err != nil {
			return err
		}
	}
	return nil
}
