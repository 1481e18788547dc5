// Package envelope defines the result type every gateway component returns
// through, the failure taxonomy, and the correlation log that pairs a
// client-visible error with its server-side record.
//
// Validation failures (route, CSRF, rate limit, auth) are expected outcomes:
// they are returned as typed envelopes via Err and never logged as errors.
// Truly unexpected failures go through Recorder.Internal, which generates a
// correlation ID, writes one structured log record with full internal detail,
// and hands the caller a generic message plus the ID — never the internal
// message itself.
package envelope

import "net/http"

// Code classifies a failure. The set is closed; every component in the
// gateway uses these and nothing else.
type Code string

const (
	// CodeBadInput covers malformed or missing request data, invalid CSRF
	// tokens, and auth secret mismatches.
	CodeBadInput Code = "BAD_INPUT"

	// CodeNotFound covers unknown tenants and unknown routes.
	CodeNotFound Code = "NOT_FOUND"

	// CodeRateLimited covers window limits and auth lockouts.
	CodeRateLimited Code = "RATE_LIMITED"

	// CodeUnauthorized means no usable identity was presented.
	CodeUnauthorized Code = "UNAUTHORIZED"

	// CodeForbidden means the identity is known but insufficient.
	CodeForbidden Code = "FORBIDDEN"

	// CodeInternal is an unexpected failure. Always paired with a
	// correlation ID and a full internal log record.
	CodeInternal Code = "INTERNAL"

	// CodeContract means a downstream component returned a structurally
	// invalid success value.
	CodeContract Code = "CONTRACT"
)

// Envelope is the uniform result shape. Exactly one of Value or Code is
// populated: Ok envelopes carry Value, failures carry Code/Message and
// optionally CorrID. An Envelope is immutable once constructed; a component
// that receives a failed envelope it did not construct must pass it through
// unchanged rather than re-wrapping it.
type Envelope struct {
	OK      bool   `json:"ok"`
	Value   any    `json:"value,omitempty"`
	Code    Code   `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	CorrID  string `json:"corrId,omitempty"`
}

// Ok returns a success envelope wrapping value.
func Ok(value any) Envelope {
	return Envelope{OK: true, Value: value}
}

// Err returns a failure envelope for an expected, local outcome. The message
// is shown to the caller as-is, so it must never contain secrets, stack
// traces, or internal identifiers — anything like that belongs in a
// Recorder.Internal record instead.
func Err(code Code, message string) Envelope {
	return Envelope{OK: false, Code: code, Message: message}
}

// Failed reports whether e is a failure envelope. Downstream code must check
// this first and short-circuit before inspecting Value.
func (e Envelope) Failed() bool { return !e.OK }

// HTTPStatus maps a failure code to its HTTP status. Success envelopes map
// to 200.
func (e Envelope) HTTPStatus() int {
	if e.OK {
		return http.StatusOK
	}
	switch e.Code {
	case CodeBadInput:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default: // INTERNAL, CONTRACT
		return http.StatusInternalServerError
	}
}

// genericMessage is the fixed client-facing text per code, used by
// Recorder.Internal. Internal messages are never echoed to a caller.
func genericMessage(code Code) string {
	switch code {
	case CodeBadInput:
		return "The request could not be processed."
	case CodeNotFound:
		return "The requested resource was not found."
	case CodeRateLimited:
		return "Too many requests. Please retry later."
	case CodeUnauthorized:
		return "Authentication required."
	case CodeForbidden:
		return "You do not have access to this resource."
	default: // INTERNAL, CONTRACT
		return "An unexpected error occurred."
	}
}
