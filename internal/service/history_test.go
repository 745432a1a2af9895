package service

import (
	"context"
	"errors"
	"testing"

	"cocodry/internal/models"
)

type fakeArchive struct {
	all, today []models.BatchRecord
	err        error
	gotEmail   string
	calls      []string
}

func (f *fakeArchive) ListBatches(_ context.Context, email string) ([]models.BatchRecord, error) {
	f.gotEmail = email
	f.calls = append(f.calls, "all")
	return f.all, f.err
}

func (f *fakeArchive) ListTodayBatches(_ context.Context, email string) ([]models.BatchRecord, error) {
	f.gotEmail = email
	f.calls = append(f.calls, "today")
	return f.today, f.err
}

func TestHistoryService_Batches(t *testing.T) {
	arch := &fakeArchive{
		all:   []models.BatchRecord{{BatchID: "B1"}, {BatchID: "B2"}},
		today: []models.BatchRecord{{BatchID: "B2"}},
	}
	svc := NewHistoryService(arch)
	ctx := context.Background()

	tests := []struct {
		scope   string
		wantLen int
		wantErr error
	}{
		{scope: "", wantLen: 2},
		{scope: "all", wantLen: 2},
		{scope: " TODAY ", wantLen: 1},
		{scope: "week", wantErr: errInvalidScope},
	}
	for _, tt := range tests {
		got, err := svc.Batches(ctx, "op@plant.lk", tt.scope)
		if !errors.Is(err, tt.wantErr) {
			t.Fatalf("scope %q: err = %v, want %v", tt.scope, err, tt.wantErr)
		}
		if len(got) != tt.wantLen {
			t.Fatalf("scope %q: len = %d, want %d", tt.scope, len(got), tt.wantLen)
		}
	}
	if arch.gotEmail != "op@plant.lk" {
		t.Fatalf("email not forwarded: %q", arch.gotEmail)
	}
}

func TestHistoryService_RequiresOperator(t *testing.T) {
	arch := &fakeArchive{}
	_, err := NewHistoryService(arch).Batches(context.Background(), " ", "all")
	if !errors.Is(err, errMissingOperator) {
		t.Fatalf("want errMissingOperator, got %v", err)
	}
	if len(arch.calls) != 0 {
		t.Fatalf("backend must not be called")
	}
	if !IsValidationError(err) {
		t.Fatalf("missing operator is a validation error")
	}
}

func TestHistoryService_BackendError(t *testing.T) {
	boom := errors.New("backend down")
	_, err := NewHistoryService(&fakeArchive{err: boom}).Batches(context.Background(), "op@plant.lk", "today")
	if !errors.Is(err, boom) {
		t.Fatalf("want backend error, got %v", err)
	}
	if IsValidationError(err) {
		t.Fatalf("backend error is not a validation error")
	}
}
