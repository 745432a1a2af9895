package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"cocodry/internal/models"
)

// ErrStoreUnavailable marks a durable store that cannot be read or written.
// Callers degrade to in-memory state instead of failing.
var ErrStoreUnavailable = errors.New("state store unavailable")

// Keys persisted for an in-progress batch. They match the dashboard's
// local storage keys.
const (
	KeySystemRunning   = "systemRunning"
	KeyStartTime       = "dryingStartTime"
	KeyBatchID         = "currentBatchId"
	KeyInitialMoisture = "initialMoisture"
	KeyTargetMoisture  = "targetMoisture"
	KeyOperator        = "operatorEmail"
)

// StateStore is a durable key/value store. Writes return only after the
// value is durable, so a restart right after a write still sees it.
type StateStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	SetMany(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	ClearAll(ctx context.Context) error
}

// EventRepo is the append-only batch journal.
type EventRepo interface {
	Append(ctx context.Context, e models.BatchEvent) error
	List(ctx context.Context, from, to time.Time, typ, batchID string) ([]models.BatchEvent, error)
}

type Repository struct {
	State  StateStore
	Events EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		State:  NewStateSQLite(db),
		Events: NewEventSQLite(db),
	}
}

// NewMemoryRepository backs both stores with process memory. Used when the
// database cannot be opened; nothing survives a restart.
func NewMemoryRepository() *Repository {
	return &Repository{
		State:  NewMemoryStore(),
		Events: NewMemoryEvents(),
	}
}
