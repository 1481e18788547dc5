// logger_test.go — Unit tests for the logger package.
package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_JSONFormat(t *testing.T) {
	l := New("json", "info")
	if l == nil {
		t.Fatal("New returned nil")
	}
	var buf bytes.Buffer
	jl := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	jl.Info("probe")
	if !strings.Contains(buf.String(), `"msg"`) {
		t.Error("expected JSON output to contain \"msg\" key")
	}
}

func TestNew_DefaultFormat(t *testing.T) {
	// Any unrecognised format should fall back to JSON (not panic).
	l := New("unknown", "info")
	if l == nil {
		t.Fatal("New returned nil for unknown format")
	}
}

func TestNew_LevelWarn_FiltersInfo(t *testing.T) {
	var buf bytes.Buffer
	h := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})
	l := slog.New(h)
	l.Info("should not appear")
	if strings.Contains(buf.String(), "should not appear") {
		t.Error("Info message appeared at warn level — level filtering broken")
	}
}

// ── WithContext / FromContext ─────────────────────────────────────────────────

func TestWithContext_FromContext_RoundTrip(t *testing.T) {
	original := New("json", "info")
	ctx := WithContext(context.Background(), original)
	if FromContext(ctx) != original {
		t.Error("FromContext returned a different logger than was stored")
	}
}

func TestFromContext_ReturnsDefault_WhenNotSet(t *testing.T) {
	l := FromContext(context.Background())
	if l == nil {
		t.Fatal("FromContext returned nil for empty context")
	}
	if l != slog.Default() {
		t.Error("expected slog.Default() when no logger in context")
	}
}

// ── RedactToken ───────────────────────────────────────────────────────────────

func TestRedactToken_NormalToken(t *testing.T) {
	token := "9f8e7d6c5b4a3f2e1d0c"
	got := RedactToken(token)
	if got != "9f8e7d6c****" {
		t.Errorf("RedactToken(%q) = %q; want %q", token, got, "9f8e7d6c****")
	}
}

func TestRedactToken_ShortToken(t *testing.T) {
	got := RedactToken("abc")
	if got != "abc*" {
		t.Errorf("RedactToken(%q) = %q; want %q", "abc", got, "abc*")
	}
}

func TestRedactToken_Empty(t *testing.T) {
	if got := RedactToken(""); got != "[empty]" {
		t.Errorf("RedactToken(%q) = %q; want [empty]", "", got)
	}
}

// ── RedactIP ──────────────────────────────────────────────────────────────────

func TestRedactIP_IPv4_LastOctetZeroed(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"192.168.1.42", "192.168.1.0"},
		{"10.0.0.1", "10.0.0.0"},
		{"192.168.1.42:54321", "192.168.1.0"},
		{"127.0.0.1", "127.0.0.0"},
	}
	for _, tt := range tests {
		if got := RedactIP(tt.input); got != tt.want {
			t.Errorf("RedactIP(%q) = %q; want %q", tt.input, got, tt.want)
		}
	}
}

func TestRedactIP_IPv6_Last64BitsZeroed(t *testing.T) {
	got := RedactIP("2001:db8::1")
	if strings.Contains(got, "::1") {
		t.Errorf("RedactIP(%q) = %q; last 64 bits should be zeroed", "2001:db8::1", got)
	}
	if !strings.HasPrefix(got, "2001:db8") {
		t.Errorf("RedactIP(%q) = %q; first 64 bits should be preserved", "2001:db8::1", got)
	}
}

func TestRedactIP_Invalid(t *testing.T) {
	if got := RedactIP("not-an-ip"); got != "[invalid-ip]" {
		t.Errorf("RedactIP(%q) = %q; want [invalid-ip]", "not-an-ip", got)
	}
}
