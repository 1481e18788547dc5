// Package routes holds the canonical route tables and the validation
// algorithm that classifies every inbound request. Every table is a closed,
// explicit allow-list: anything not present is rejected, with no wildcard or
// pattern acceptance and no fallback to a secondary handler.
package routes

import "strings"

// Class tags how a request (valid or not) should be rendered.
type Class string

const (
	// ClassHTML requests render pages; their rejections render an HTML
	// error page.
	ClassHTML Class = "html"
	// ClassJSONAPI requests carry an action, an explicit JSON format flag,
	// or live under /api; their rejections render a JSON error body.
	ClassJSONAPI Class = "json-api"
	// ClassRedirect requests are legacy short-link routes served as
	// redirects to their canonical page URLs.
	ClassRedirect Class = "redirect"
)

// Tables are the canonical allow-lists, compiled at startup and never
// mutated at runtime.
type Tables struct {
	// Pages maps the `page` query value to a canonical page name.
	Pages map[string]string
	// Short maps the legacy `p` shorthand value to a canonical page name.
	// Short routes are served as redirects.
	Short map[string]string
	// Actions maps an explicit `action` name to a canonical operation name.
	// This is the tightest allow-list: verbatim match only.
	Actions map[string]string
	// PathPages maps a URL path segment to a canonical page name.
	PathPages map[string]string
	// Tenants is the set of valid tenant slugs, derived from the brand
	// directory snapshot at startup.
	Tenants map[string]bool
}

// Default returns the production route tables. Action names follow the
// "{resource}.{verb}" convention used across handler and log naming.
func Default() *Tables {
	pages := map[string]string{
		"status":      "status",
		"manage":      "manage",
		"events":      "events",
		"display":     "display",
		"poster":      "poster",
		"public":      "public",
		"sponsors":    "sponsors",
		"config":      "config",
		"reports":     "reports",
		"diagnostics": "diagnostics",
	}

	// The path table mirrors the page table: /acme/events and ?page=events
	// resolve identically.
	pathPages := make(map[string]string, len(pages))
	for k, v := range pages {
		pathPages[k] = v
	}

	return &Tables{
		Pages:     pages,
		PathPages: pathPages,

		// Legacy ?p= names predate the page rename; they redirect to the
		// canonical page URLs.
		Short: map[string]string{
			"status":      "status",
			"admin":       "manage",
			"events":      "events",
			"display":     "display",
			"poster":      "poster",
			"public":      "public",
			"sponsor":     "sponsors",
			"config":      "config",
			"reports":     "reports",
			"diagnostics": "diagnostics",
		},

		Actions: map[string]string{
			"createEvent":        "event.create",
			"updateEvent":        "event.update",
			"deleteEvent":        "event.delete",
			"listEvents":         "event.list",
			"getEvent":           "event.get",
			"submitRegistration": "registration.submit",
			"listRegistrations":  "registration.list",
			"addSponsor":         "sponsor.add",
			"updateSponsor":      "sponsor.update",
			"deleteSponsor":      "sponsor.delete",
			"getSponsorReport":   "sponsor.report",
			"getAnalytics":       "analytics.get",
			"exportReport":       "report.export",
			"getConfig":          "config.get",
			"saveConfig":         "config.save",
			"runDiagnostics":     "diagnostics.run",
		},

		Tenants: map[string]bool{},
	}
}

// IsOperation reports whether a canonical route name is a business-logic
// operation rather than a page. Operations follow "{resource}.{verb}"; page
// names never contain a dot.
func IsOperation(route string) bool {
	return strings.Contains(route, ".")
}

// WithTenants returns a copy of t with the tenant slug set replaced.
// Everything else is shared — the underlying maps are never mutated.
func (t *Tables) WithTenants(slugs []string) *Tables {
	set := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		set[s] = true
	}
	copy := *t
	copy.Tenants = set
	return &copy
}
