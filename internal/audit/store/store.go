package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/tilly/internal/audit"
)

// Store appends audit entries to the audit_log table. Failures are logged
// and dropped: the audit trail must never veto the operation it describes.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Record(ctx context.Context, entry audit.Entry) {
	detail, err := json.Marshal(entry.Detail)
	if err != nil {
		slog.Error("failed to encode audit detail", "action", entry.Action, "error", err)
		return
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO audit_log (action, actor, detail, created_at)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := s.db.ExecContext(ctx, query, entry.Action, entry.Actor, detail, createdAt); err != nil {
		slog.Error("failed to write audit entry", "action", entry.Action, "error", err)
	}
}
