// redact.go — Sensitive data masking for safe structured logging.
//
// All helpers in this file mask credentials and client addresses before they
// reach log output. Use them whenever logging tokens or IP addresses.
//
// Examples:
//
//	logger.Info("csrf consume",
//	    "token",  logger.RedactToken(tok),
//	    "client", logger.RedactIP(r.RemoteAddr),
//	)
package logger

import (
	"net"
	"strings"
)

// RedactToken masks a CSRF token, admin secret, or other opaque credential
// for logging. It keeps the first 8 characters so the value can be correlated
// across log lines, then appends "****" to make redaction obvious.
//
// Examples:
//
//	"9f8e7d6c5b4a3f2e1d0c"  →  "9f8e7d6c****"
//	"tok_abc"               →  "tok_abc*"    (short: show all, append *)
//	""                      →  "[empty]"
func RedactToken(token string) string {
	if len(token) == 0 {
		return "[empty]"
	}
	if len(token) <= 8 {
		return token + "*"
	}
	return token[:8] + "****"
}

// RedactIP masks the host-specific portion of an IP address.
//
// For IPv4: last octet is replaced with "0".
//
//	"192.168.1.42"  →  "192.168.1.0"
//
// For IPv6: last 64 bits (4 groups) are replaced with zeros.
//
// If the input contains a port (e.g. from r.RemoteAddr), the port is stripped.
// Unparseable values are returned as "[invalid-ip]".
func RedactIP(ipStr string) string {
	// Strip port if present (host:port format from net.Addr).
	host, _, err := net.SplitHostPort(ipStr)
	if err != nil {
		// Not host:port — try as raw IP.
		host = ipStr
	}

	ip := net.ParseIP(strings.TrimSpace(host))
	if ip == nil {
		return "[invalid-ip]"
	}

	if ip4 := ip.To4(); ip4 != nil {
		// IPv4: zero the last octet.
		return net.IP{ip4[0], ip4[1], ip4[2], 0}.String()
	}

	// IPv6: zero the last 64 bits (bytes 8-15).
	ip16 := ip.To16()
	masked := make(net.IP, 16)
	copy(masked, ip16)
	for i := 8; i < 16; i++ {
		masked[i] = 0
	}
	return masked.String()
}
