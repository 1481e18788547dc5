// corrid.go — correlation ID generation.
package envelope

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewCorrelationID returns an opaque, sortable token joining a client-visible
// error to its server-side log record: a UTC time prefix plus a random
// suffix. It is a debugging aid, not a security token — uniqueness across
// restarts is not guaranteed at the level required for secrets.
func NewCorrelationID() string {
	suffix := uuid.New().String()[:8]
	return fmt.Sprintf("%s-%s", time.Now().UTC().Format("20060102T150405Z"), suffix)
}
