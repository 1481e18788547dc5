// recorder.go — the correlation log: one structured record per internal
// failure, keyed by correlation ID, with sensitive fields redacted.
package envelope

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// redactedPlaceholder replaces any value whose key looks sensitive.
const redactedPlaceholder = "[REDACTED]"

// sensitiveKeyParts are matched case-insensitively as substrings of field
// keys. A key containing any of them has its value redacted before logging.
var sensitiveKeyParts = []string{
	"secret", "token", "password", "key", "authorization", "bearer",
}

// Recorder writes the internal half of a correlated failure. The client half
// (the envelope) carries only a fixed generic message and the correlation ID.
type Recorder struct {
	log *logrus.Entry
}

// NewRecorder wraps a logrus entry (typically logging.NewLogger("gateway")).
func NewRecorder(log *logrus.Entry) *Recorder {
	return &Recorder{log: log}
}

// Internal handles an unexpected failure: it generates a correlation ID,
// emits one structured log record containing where it happened, the internal
// message, and the given context fields (sensitive keys redacted), and
// returns the client-facing envelope. The internal message goes only into
// the log record, never into the envelope.
//
// Log line fields: level, corr_id, where, msg, plus redacted extras.
func (r *Recorder) Internal(code Code, where, internalMsg string, fields map[string]any) Envelope {
	corrID := NewCorrelationID()

	entry := r.log.WithFields(logrus.Fields{
		"corr_id": corrID,
		"where":   where,
	})
	if len(fields) > 0 {
		entry = entry.WithFields(redactFields(fields))
	}
	entry.Error(internalMsg)

	return Envelope{
		OK:      false,
		Code:    code,
		Message: genericMessage(code) + " (ref: " + corrID + ")",
		CorrID:  corrID,
	}
}

// Warn emits a warning-level record without constructing an envelope. Used
// for degraded-but-handled conditions such as lock acquisition timeouts.
func (r *Recorder) Warn(where, msg string, fields map[string]any) {
	entry := r.log.WithField("where", where)
	if len(fields) > 0 {
		entry = entry.WithFields(redactFields(fields))
	}
	entry.Warn(msg)
}

// redactFields copies fields, replacing values under sensitive-looking keys.
func redactFields(fields map[string]any) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for k, v := range fields {
		if isSensitiveKey(k) {
			out[k] = redactedPlaceholder
			continue
		}
		out[k] = v
	}
	return out
}

func isSensitiveKey(k string) bool {
	lower := strings.ToLower(k)
	for _, part := range sensitiveKeyParts {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}
