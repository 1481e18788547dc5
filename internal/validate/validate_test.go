package validate_test

import (
	"testing"

	"github.com/festivent/festivent/internal/validate"
)

func TestNonEmptyString(t *testing.T) {
	if err := validate.NonEmptyString("name", "hello"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := validate.NonEmptyString("name", "   "); err == nil {
		t.Error("expected error for whitespace-only string")
	}
	if err := validate.NonEmptyString("name", ""); err == nil {
		t.Error("expected error for empty string")
	}
}

func TestMaxLength(t *testing.T) {
	if err := validate.MaxLength("name", "hello", 10); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := validate.MaxLength("name", "hello world!", 5); err == nil {
		t.Error("expected error for too-long string")
	}
}

func TestIsTenantSlug(t *testing.T) {
	valid := []string{"acme", "acme-events", "blue2", "a"}
	for _, s := range valid {
		if err := validate.IsTenantSlug("tenant", s); err != nil {
			t.Errorf("expected valid slug %q, got %v", s, err)
		}
	}
	invalid := []string{"", "Acme", "acme_", "-acme", "acme-", "2acme", "a b", "' OR 1=1 --"}
	for _, s := range invalid {
		if err := validate.IsTenantSlug("tenant", s); err == nil {
			t.Errorf("expected invalid slug %q", s)
		}
	}
}

func TestIsHostname(t *testing.T) {
	valid := []string{"events.acme.com", "acme.io", "a-b.example.co.uk"}
	for _, h := range valid {
		if err := validate.IsHostname("host", h); err != nil {
			t.Errorf("expected valid hostname %q, got %v", h, err)
		}
	}
	invalid := []string{"", "localhost", "http://acme.com", "acme.com:8080", "-bad.com", "a..b"}
	for _, h := range invalid {
		if err := validate.IsHostname("host", h); err == nil {
			t.Errorf("expected invalid hostname %q", h)
		}
	}
}

func TestNoPathTraversal(t *testing.T) {
	if err := validate.NoPathTraversal("path", "events/poster"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := validate.NoPathTraversal("path", "../../../etc/passwd"); err == nil {
		t.Error("expected error for path traversal")
	}
	if err := validate.NoPathTraversal("path", "file\x00name"); err == nil {
		t.Error("expected error for null byte")
	}
}

func TestMultiError(t *testing.T) {
	var me validate.MultiError
	if me.HasErrors() {
		t.Error("expected no errors initially")
	}
	me.Add(validate.NonEmptyString("name", ""))
	me.Add(validate.IsTenantSlug("tenant", "BAD"))
	me.Add(nil) // should be no-op
	if !me.HasErrors() {
		t.Error("expected errors after adding")
	}
	if len(me.Errors) != 2 {
		t.Errorf("expected 2 errors, got %d", len(me.Errors))
	}
}
