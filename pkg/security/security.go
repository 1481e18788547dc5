// security.go — Shared security primitives for the Festivent gateway.
//
// SecureCompare is the only secret-comparison routine in the codebase; all
// admin-secret checks must go through it. NewToken is the only source of
// opaque one-time tokens.
package security

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
)

// SecureCompare compares two strings in constant time.
//
// The loop runs over max(len(a), len(b)) positions, substituting zero for
// out-of-range characters, so the duration depends only on the longer length —
// never on where the first difference occurs or which input is shorter. A
// length mismatch is folded into the accumulator up front rather than causing
// an early return.
//
// crypto/subtle.ConstantTimeCompare is not used because it returns immediately
// on unequal lengths, which leaks the secret's length to a timing observer.
func SecureCompare(a, b string) bool {
	var result byte
	if len(a) != len(b) {
		result = 1
	}
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		var ca, cb byte
		if i < len(a) {
			ca = a[i]
		}
		if i < len(b) {
			cb = b[i]
		}
		result |= ca ^ cb
	}
	return result == 0
}

// NewToken returns a 64-hex-char high-entropy opaque token (256 bits from
// crypto/rand). Used for CSRF tokens and anything else that must be
// unguessable.
func NewToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// SecurityHeaders adds OWASP-recommended HTTP security headers to all
// responses. Should be the outermost middleware in the gateway chain.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		h.Set("X-XSS-Protection", "0")
		next.ServeHTTP(w, r)
	})
}
