package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"cocodry/internal/models"

	"github.com/google/uuid"
)

// MemoryStore is a StateStore that lives only as long as the process.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

var _ StateStore = (*MemoryStore)(nil)

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStore) SetMany(_ context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		m.data[k] = v
	}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *MemoryStore) ClearAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]string)
	return nil
}

// Keys returns the stored keys in order.
func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.data))
	for k := range m.data {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// MemoryEvents is an in-process EventRepo.
type MemoryEvents struct {
	mu     sync.Mutex
	events []models.BatchEvent
}

func NewMemoryEvents() *MemoryEvents {
	return &MemoryEvents{}
}

var _ EventRepo = (*MemoryEvents)(nil)

func (m *MemoryEvents) Append(_ context.Context, e models.BatchEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	e.Type = strings.ToUpper(strings.TrimSpace(e.Type))
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *MemoryEvents) List(_ context.Context, from, to time.Time, typ, batchID string) ([]models.BatchEvent, error) {
	typ = strings.ToUpper(strings.TrimSpace(typ))
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.BatchEvent, 0, len(m.events))
	for _, e := range m.events {
		if !from.IsZero() && e.OccurredAt.Before(from) {
			continue
		}
		if !to.IsZero() && e.OccurredAt.After(to) {
			continue
		}
		if typ != "" && e.Type != typ {
			continue
		}
		if batchID != "" && e.BatchID != batchID {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}
