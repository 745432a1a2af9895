package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"cocodry/internal/models"

	"github.com/google/uuid"
)

type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

const insertEventSQL = `
		INSERT INTO batch_events (id, occurred_at, type, batch_id, message, meta)
		VALUES (?, ?, ?, ?, ?, ?)
	`

// Append inserts a new event, filling in EventID and OccurredAt when empty.
func (r *EventSQLite) Append(ctx context.Context, e models.BatchEvent) error {
	if r.db == nil {
		return ErrStoreUnavailable
	}
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	var metaPtr *string
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			s := string(b)
			metaPtr = &s
		}
	}

	var batchID *string
	if e.BatchID != "" {
		batchID = &e.BatchID
	}

	_, err := r.db.ExecContext(ctx, insertEventSQL,
		e.EventID,
		e.OccurredAt.Format("2006-01-02 15:04:05"),
		strings.ToUpper(strings.TrimSpace(e.Type)),
		batchID,
		e.Description,
		metaPtr,
	)
	return err
}

// List returns events in [from, to] filtered by type and batch, oldest first.
func (r *EventSQLite) List(ctx context.Context, from, to time.Time, typ, batchID string) ([]models.BatchEvent, error) {
	if r.db == nil {
		return nil, ErrStoreUnavailable
	}
	var (
		conds []string
		args  []any
	)
	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC())
	}
	if typ = strings.ToUpper(strings.TrimSpace(typ)); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}
	if batchID = strings.TrimSpace(batchID); batchID != "" {
		conds = append(conds, "batch_id = ?")
		args = append(args, batchID)
	}

	q := `SELECT id, occurred_at, type, batch_id, message, meta FROM batch_events`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.BatchEvent, 0, 64)
	for rows.Next() {
		var (
			ev      models.BatchEvent
			batch   sql.NullString
			metaStr sql.NullString
		)
		if err := rows.Scan(&ev.EventID, &ev.OccurredAt, &ev.Type, &batch, &ev.Description, &metaStr); err != nil {
			return nil, err
		}
		ev.OccurredAt = ev.OccurredAt.UTC()
		ev.BatchID = batch.String
		if metaStr.Valid && metaStr.String != "" {
			var v any
			if err := json.Unmarshal([]byte(metaStr.String), &v); err == nil {
				ev.Metadata = v
			} else {
				ev.Metadata = metaStr.String
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
