// Package handlers adapts the gateway's envelope/class results to HTTP. The
// gateway decides WHAT the answer is; this package decides how it goes on
// the wire: JSON bodies for API traffic, an HTML error page for page
// traffic, and 302s for legacy short links.
package handlers

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"

	"github.com/festivent/festivent/internal/envelope"
	"github.com/festivent/festivent/internal/gateway"
	"github.com/festivent/festivent/internal/ratelimit"
	"github.com/festivent/festivent/internal/routes"
)

// Header names the adapter reads credentials from. Query parameters are
// never used for secrets — they end up in access logs.
const (
	HeaderCSRFToken   = "X-Csrf-Token"
	HeaderAdminSecret = "X-Admin-Secret"
)

// Adapter turns HTTP requests into gateway requests and envelopes back into
// HTTP responses.
type Adapter struct {
	gw *gateway.Gateway
}

// NewAdapter wraps a gateway.
func NewAdapter(gw *gateway.Gateway) *Adapter {
	return &Adapter{gw: gw}
}

// ServeHTTP is the catch-all entry point mounted under the router.
func (a *Adapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := &gateway.Request{
		Method:      r.Method,
		Path:        r.URL.Path,
		Host:        r.Host,
		IP:          ratelimit.ClientIP(r),
		Query:       r.URL.Query(),
		CSRFToken:   r.Header.Get(HeaderCSRFToken),
		AdminSecret: r.Header.Get(HeaderAdminSecret),
	}

	env, result := a.gw.Handle(r.Context(), req)
	a.write(w, r, env, result)
}

// write renders one envelope according to the request's class. The class is
// computed even for rejected requests, so an invalid API call gets a JSON
// error body and an invalid page URL gets an HTML error page — never the
// other way round.
func (a *Adapter) write(w http.ResponseWriter, r *http.Request, env envelope.Envelope, result routes.Result) {
	// Valid short links redirect to their canonical page URL; everything
	// else about them is legacy.
	if result.Class == routes.ClassRedirect && !env.Failed() {
		http.Redirect(w, r, canonicalURL(result), http.StatusFound)
		return
	}

	status := env.HTTPStatus()
	if result.Class == routes.ClassJSONAPI {
		writeJSON(w, status, env)
		return
	}
	if env.Failed() {
		writeErrorPage(w, status, env)
		return
	}
	writeJSON(w, status, env)
}

// canonicalURL builds the redirect target for a legacy short link.
func canonicalURL(result routes.Result) string {
	if result.Tenant != "" {
		return "/" + result.Tenant + "/" + result.Route
	}
	return "/" + result.Route
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeErrorPage renders the HTML-class rejection. Message and correlation
// ID are the only dynamic content, both escaped.
func writeErrorPage(w http.ResponseWriter, status int, env envelope.Envelope) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	ref := ""
	if env.CorrID != "" {
		ref = fmt.Sprintf("<p class=\"ref\">Reference: %s</p>", html.EscapeString(env.CorrID))
	}
	fmt.Fprintf(w, `<!DOCTYPE html>
<html><head><title>Festivent — %d</title></head>
<body><h1>%d</h1><p>%s</p>%s</body></html>
`, status, status, html.EscapeString(env.Message), ref)
}
