package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"cocodry/internal/logger"
	"cocodry/internal/models"
	"cocodry/internal/repository"
)

// LogFilter supports journal filtering by time range, type and batch.
type LogFilter struct {
	From    time.Time // inclusive; zero means no lower bound
	To      time.Time // inclusive; zero means no upper bound
	Type    string    // "", "START", "STOP", "COMPLETED", "OVERHEAT", ...
	BatchID string
}

// Journal records lifecycle and hazard events. Recording is best effort.
type Journal interface {
	Record(ctx context.Context, typ, batchID, description string, meta any)
}

type nopJournal struct{}

func (nopJournal) Record(context.Context, string, string, string, any) {}

type EventLogService struct {
	eventRepo repository.EventRepo
	log       *logger.Logger
	now       func() time.Time
}

func NewEventLogService(eventRepo repository.EventRepo, log *logger.Logger) *EventLogService {
	if log == nil {
		log = logger.Nop()
	}
	return &EventLogService{eventRepo: eventRepo, log: log, now: time.Now}
}

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeEventType trims spaces and uppercases the event type filter.
func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f LogFilter) (LogFilter, error) {
	out := LogFilter{
		From:    normalizeToUTC(f.From),
		To:      normalizeToUTC(f.To),
		Type:    normalizeEventType(f.Type),
		BatchID: strings.TrimSpace(f.BatchID),
	}
	if !out.From.IsZero() && !out.To.IsZero() && out.From.After(out.To) {
		return LogFilter{}, errInvalidTimeRange
	}
	return out, nil
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.BatchEvent, error) {
	nf, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, nf.From, nf.To, nf.Type, nf.BatchID)
}

// Record appends an event. A failed write is logged, never returned: the
// control loop must not stall on the journal.
func (s *EventLogService) Record(ctx context.Context, typ, batchID, description string, meta any) {
	err := s.eventRepo.Append(ctx, models.BatchEvent{
		OccurredAt:  s.now().UTC(),
		Type:        typ,
		BatchID:     batchID,
		Description: description,
		Metadata:    meta,
	})
	if err != nil {
		s.log.Warnw("journal_append_failed", "type", typ, "batch_id", batchID, "err", err)
	}
}
