package audit

import (
	"context"
	"time"
)

// Entry is one append-only audit record.
type Entry struct {
	Action    string
	Actor     string
	Detail    map[string]any
	CreatedAt time.Time
}

// Log records audit entries best-effort. Implementations must swallow their
// own failures: an audit write must never block or undo a financially
// correct operation.
type Log interface {
	Record(ctx context.Context, entry Entry)
}

// Discard is a Log that drops every entry. Useful in tests and tools.
type Discard struct{}

func (Discard) Record(context.Context, Entry) {}
