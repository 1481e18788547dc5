// Package validate provides shared input validation for the Festivent
// gateway: tenant slugs, hostnames, and the request fields the gateway
// destructures at its boundary.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ValidationError describes a single field validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MultiError collects multiple validation errors for a single input.
type MultiError struct {
	Errors []ValidationError
}

// Add appends a validation error. If err is nil, Add is a no-op.
func (m *MultiError) Add(err error) {
	if err == nil {
		return
	}
	if ve, ok := err.(*ValidationError); ok {
		m.Errors = append(m.Errors, *ve)
	} else {
		m.Errors = append(m.Errors, ValidationError{Field: "input", Message: err.Error()})
	}
}

// HasErrors reports whether any errors have been collected.
func (m *MultiError) HasErrors() bool { return len(m.Errors) > 0 }

// Error returns a pipe-delimited summary of all errors.
func (m *MultiError) Error() string {
	parts := make([]string, len(m.Errors))
	for i, e := range m.Errors {
		parts[i] = e.Error()
	}
	return strings.Join(parts, " | ")
}

// NonEmptyString validates that value is not empty or whitespace-only.
func NonEmptyString(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: "must not be empty"}
	}
	return nil
}

// MaxLength validates that value does not exceed max rune count.
func MaxLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return &ValidationError{Field: field, Message: fmt.Sprintf("must not exceed %d characters", max)}
	}
	return nil
}

// tenantSlugRE: lowercase alphanumeric, hyphen-separated, starts with a letter.
var tenantSlugRE = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// IsTenantSlug validates that value is a lowercase tenant slug as used for
// brand IDs and tenant-prefixed URL segments.
func IsTenantSlug(field, value string) error {
	if len(value) > 63 {
		return &ValidationError{Field: field, Message: "must be 63 characters or fewer"}
	}
	if !tenantSlugRE.MatchString(value) {
		return &ValidationError{Field: field, Message: "must be a lowercase slug (letters, digits, hyphens)"}
	}
	return nil
}

// hostnameRE: DNS labels separated by dots, no scheme, no port.
var hostnameRE = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9\-]*[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9\-]*[a-zA-Z0-9])?)+$`)

// IsHostname validates that value looks like a fully-qualified hostname.
func IsHostname(field, value string) error {
	if len(value) > 253 || !hostnameRE.MatchString(value) {
		return &ValidationError{Field: field, Message: "must be a valid hostname"}
	}
	return nil
}

// NoPathTraversal validates that value contains no path traversal sequences
// or null bytes.
func NoPathTraversal(field, value string) error {
	if strings.Contains(value, "..") || strings.ContainsRune(value, 0) {
		return &ValidationError{Field: field, Message: "must not contain path traversal sequences or null bytes"}
	}
	return nil
}
