// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/dalemusser/orgsite/internal/app/store/audit"
)

// ListLimit is how many entries GET /api/audit returns.
const ListLimit = 200

// entryJSON is the wire shape of one audit entry. Timestamp is RFC 3339
// in UTC, or null when the stored entry has none.
type entryJSON struct {
	ID        string  `json:"id"`
	UserID    string  `json:"userId"`
	UserName  string  `json:"userName"`
	Action    string  `json:"action"`
	Target    string  `json:"target"`
	Details   string  `json:"details"`
	Timestamp *string `json:"timestamp"`
}

func toJSON(e audit.Entry) entryJSON {
	out := entryJSON{
		ID:       e.ID.Hex(),
		UserID:   e.UserID,
		UserName: e.UserName,
		Action:   e.Action,
		Target:   e.Target,
		Details:  e.Details,
	}
	if e.Timestamp != nil && !e.Timestamp.IsZero() {
		ts := e.Timestamp.UTC().Format(time.RFC3339Nano)
		out.Timestamp = &ts
	}
	return out
}
