package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// StateSQLite keeps the control state as rows of the control_state table.
type StateSQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db, now: time.Now}
}

var _ StateStore = (*StateSQLite)(nil)

const (
	upsertStateSQL = `
		INSERT INTO control_state (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value=excluded.value,
			updated_at=excluded.updated_at
	`

	selectStateSQL    = `SELECT value FROM control_state WHERE key = ?`
	deleteAllStateSQL = `DELETE FROM control_state`
)

func deleteStateSQL(n int) string {
	return `DELETE FROM control_state WHERE key IN (?` + strings.Repeat(", ?", n-1) + `)`
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

// Get returns the value for key and whether it exists.
func (r *StateSQLite) Get(ctx context.Context, key string) (string, bool, error) {
	if r.db == nil {
		return "", false, ErrStoreUnavailable
	}
	var v string
	if err := r.db.QueryRowContext(ctx, selectStateSQL, key).Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, unavailable(fmt.Sprintf("get %q", key), err)
	}
	return v, true, nil
}

// Set upserts a single key.
func (r *StateSQLite) Set(ctx context.Context, key, value string) error {
	if r.db == nil {
		return ErrStoreUnavailable
	}
	if _, err := r.db.ExecContext(ctx, upsertStateSQL, key, value, r.now().UTC()); err != nil {
		return unavailable(fmt.Sprintf("set %q", key), err)
	}
	return nil
}

// SetMany upserts all values in one transaction, in key order.
func (r *StateSQLite) SetMany(ctx context.Context, values map[string]string) error {
	if r.db == nil {
		return ErrStoreUnavailable
	}
	if len(values) == 0 {
		return nil
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin set", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	ts := r.now().UTC()
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, upsertStateSQL, k, values[k], ts); err != nil {
			return unavailable(fmt.Sprintf("set %q", k), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit set", err)
	}
	return nil
}

// Delete removes the given keys; missing keys are ignored.
func (r *StateSQLite) Delete(ctx context.Context, keys ...string) error {
	if r.db == nil {
		return ErrStoreUnavailable
	}
	if len(keys) == 0 {
		return nil
	}
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	if _, err := r.db.ExecContext(ctx, deleteStateSQL(len(keys)), args...); err != nil {
		return unavailable("delete", err)
	}
	return nil
}

// ClearAll removes every key.
func (r *StateSQLite) ClearAll(ctx context.Context) error {
	if r.db == nil {
		return ErrStoreUnavailable
	}
	if _, err := r.db.ExecContext(ctx, deleteAllStateSQL); err != nil {
		return unavailable("clear", err)
	}
	return nil
}
