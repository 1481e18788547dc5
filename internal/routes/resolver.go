// resolver.go — route validation and request classification.
//
// The precedence order in Resolve is a contract, not an implementation
// detail: it determines which rejection reason a caller sees and prevents
// ambiguity exploits where a request matches more than one table.
package routes

import (
	"net/url"
	"strings"
)

// Result is the resolver's decision for one request.
type Result struct {
	// Valid reports whether the request matched a canonical table.
	Valid bool
	// Class is computed even for invalid requests: it decides whether the
	// rejection is rendered as JSON or HTML.
	Class Class
	// Route is the canonical page or operation name when Valid.
	Route string
	// Tenant is the tenant slug for tenant-prefixed paths, else empty.
	Tenant string
	// Reason is the rejection reason when !Valid.
	Reason string
}

// Rejection reasons. Deliberately terse: they are shown to callers.
const (
	ReasonUnknownAction = "Unknown action"
	ReasonUnknownPage   = "Unknown page"
	ReasonUnknownPath   = "Unknown path"
)

// Resolve validates a request against the canonical tables. First match
// wins, in this fixed order:
//
//  1. explicit `action` parameter — verbatim allow-list, checked first
//     because it is the only way to invoke business-logic operations
//  2. `page` parameter
//  3. `p` shorthand parameter
//  4. URL path segments (first segment a page or tenant slug;
//     tenant-prefixed second segments re-validate against the page table)
//  5. the site root (zero segments) is always valid
//  6. everything else is rejected
//
// Rejections are terminal: there is no fallback proxying for unknown
// routes, however page-like they look.
func (t *Tables) Resolve(path string, query url.Values) Result {
	class := t.Classify(path, query)

	// 1. Explicit action. Present-but-empty counts as present and fails the
	// verbatim match, so it is rejected like any other unknown name.
	if query.Has("action") {
		if op, ok := t.Actions[query.Get("action")]; ok {
			return Result{Valid: true, Class: class, Route: op}
		}
		return Result{Class: class, Reason: ReasonUnknownAction}
	}

	// 2. Page parameter.
	if query.Has("page") {
		if page, ok := t.Pages[query.Get("page")]; ok {
			return Result{Valid: true, Class: class, Route: page}
		}
		return Result{Class: class, Reason: ReasonUnknownPage}
	}

	// 3. Legacy shorthand.
	if query.Has("p") {
		if page, ok := t.Short[query.Get("p")]; ok {
			return Result{Valid: true, Class: class, Route: page}
		}
		return Result{Class: class, Reason: ReasonUnknownPage}
	}

	// 4/5. Path segments.
	segs := splitPath(path)
	switch len(segs) {
	case 0:
		// Site root.
		return Result{Valid: true, Class: class, Route: "root"}
	case 1:
		if page, ok := t.PathPages[segs[0]]; ok {
			return Result{Valid: true, Class: class, Route: page}
		}
		if t.Tenants[segs[0]] {
			// Bare tenant prefix lands on the tenant's public page.
			return Result{Valid: true, Class: class, Route: "public", Tenant: segs[0]}
		}
	case 2:
		if t.Tenants[segs[0]] {
			if page, ok := t.PathPages[segs[1]]; ok {
				return Result{Valid: true, Class: class, Route: page, Tenant: segs[0]}
			}
		}
	}

	// 6. Fail closed.
	return Result{Class: class, Reason: ReasonUnknownPath}
}

// Classify tags a request independently of validity. A rejected request
// still needs a class so the typed 404-equivalent is rendered in the right
// content type — an invalid request must never silently fall through to a
// default handler.
func (t *Tables) Classify(path string, query url.Values) Class {
	if query.Has("action") || query.Get("format") == "json" || underAPINamespace(path) {
		return ClassJSONAPI
	}
	// A `page` parameter outranks `p` in Resolve, so a request carrying both
	// is a page view, not a short link.
	if query.Has("p") && !query.Has("page") {
		return ClassRedirect
	}
	return ClassHTML
}

// underAPINamespace reports whether path is under /api.
func underAPINamespace(path string) bool {
	trimmed := strings.TrimPrefix(path, "/")
	return trimmed == "api" || strings.HasPrefix(trimmed, "api/")
}

// splitPath splits a URL path into non-empty segments.
func splitPath(path string) []string {
	var segs []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}
