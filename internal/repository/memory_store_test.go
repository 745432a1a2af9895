package repository

import (
	"context"
	"testing"
	"time"

	"cocodry/internal/models"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_ = s.SetMany(ctx, map[string]string{KeyBatchID: "B1", KeySystemRunning: "true"})
	_ = s.Set(ctx, KeyTargetMoisture, "12")

	if v, ok, _ := s.Get(ctx, KeyBatchID); !ok || v != "B1" {
		t.Fatalf("Get = (%q, %v)", v, ok)
	}
	_ = s.Delete(ctx, KeyBatchID, "missing")
	if _, ok, _ := s.Get(ctx, KeyBatchID); ok {
		t.Fatalf("expected deleted")
	}
	if got := s.Keys(); len(got) != 2 || got[0] != KeySystemRunning || got[1] != KeyTargetMoisture {
		t.Fatalf("Keys = %v", got)
	}
	_ = s.ClearAll(ctx)
	if got := s.Keys(); len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
}

func TestMemoryEvents_Filters(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryEvents()
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	_ = r.Append(ctx, models.BatchEvent{OccurredAt: base.Add(2 * time.Minute), Type: "stop", BatchID: "B1"})
	_ = r.Append(ctx, models.BatchEvent{OccurredAt: base, Type: models.EventStart, BatchID: "B1"})
	_ = r.Append(ctx, models.BatchEvent{OccurredAt: base.Add(time.Hour), Type: models.EventStart, BatchID: "B2"})

	all, _ := r.List(ctx, time.Time{}, time.Time{}, "", "")
	if len(all) != 3 || all[0].Type != models.EventStart || all[0].EventID == "" {
		t.Fatalf("unexpected list: %+v", all)
	}
	if all[1].Type != models.EventStop {
		t.Fatalf("type not normalised: %q", all[1].Type)
	}

	b1, _ := r.List(ctx, time.Time{}, time.Time{}, "", "B1")
	if len(b1) != 2 {
		t.Fatalf("batch filter: %d", len(b1))
	}
	window, _ := r.List(ctx, base.Add(time.Minute), base.Add(3*time.Minute), "", "")
	if len(window) != 1 || window[0].Type != models.EventStop {
		t.Fatalf("window filter: %+v", window)
	}
	starts, _ := r.List(ctx, time.Time{}, time.Time{}, " start ", "")
	if len(starts) != 2 {
		t.Fatalf("type filter: %d", len(starts))
	}
}
