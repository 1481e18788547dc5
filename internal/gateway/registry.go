// registry.go — the handler registry the gateway dispatches into.
package gateway

import (
	"context"
	"fmt"
	"sort"

	"github.com/festivent/festivent/internal/envelope"
)

// Handler executes one canonical route or operation. It receives the request
// only after route validation, CSRF, rate limiting, and (where required)
// admin authentication have all passed. Whatever envelope it returns is
// passed through to the caller unmodified.
type Handler func(ctx context.Context, req *Request) envelope.Envelope

// Registry maps canonical route and operation names to handlers. It is
// populated during startup and read-only afterwards; Register is not safe
// for concurrent use with dispatch.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds a handler to a canonical route or operation name.
// Re-registering a name is a wiring bug and returns an error.
func (r *Registry) Register(name string, h Handler) error {
	if name == "" || h == nil {
		return fmt.Errorf("registry: name and handler are required")
	}
	if _, dup := r.handlers[name]; dup {
		return fmt.Errorf("registry: %q already registered", name)
	}
	r.handlers[name] = h
	return nil
}

// lookup returns the handler for name, or nil.
func (r *Registry) lookup(name string) Handler {
	return r.handlers[name]
}

// Names returns all registered names, sorted. Used by /system/info.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
