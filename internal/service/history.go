package service

import (
	"context"
	"errors"
	"strings"

	"cocodry/internal/models"
)

// Batch history scopes.
const (
	ScopeAll   = "all"
	ScopeToday = "today"
)

var (
	errInvalidScope    = errors.New("scope must be all or today")
	errMissingOperator = errors.New("operator email required")
)

// HistoryService proxies the backend's batch listings for one operator.
type HistoryService struct {
	archive BatchArchive
}

func NewHistoryService(archive BatchArchive) *HistoryService {
	return &HistoryService{archive: archive}
}

func (s *HistoryService) Batches(ctx context.Context, userEmail string, scope string) ([]models.BatchRecord, error) {
	if strings.TrimSpace(userEmail) == "" {
		return nil, errMissingOperator
	}
	switch strings.ToLower(strings.TrimSpace(scope)) {
	case "", ScopeAll:
		return s.archive.ListBatches(ctx, userEmail)
	case ScopeToday:
		return s.archive.ListTodayBatches(ctx, userEmail)
	default:
		return nil, errInvalidScope
	}
}

// IsValidationError reports whether err is a bad request from the caller
// rather than a backend failure.
func IsValidationError(err error) bool {
	return errors.Is(err, errInvalidScope) ||
		errors.Is(err, errMissingOperator) ||
		errors.Is(err, errInvalidTimeRange) ||
		errors.Is(err, ErrInvalidTarget) ||
		errors.Is(err, ErrInvalidMoisture)
}
