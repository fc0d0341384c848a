package activitylog

import (
	"context"

	"github.com/Hohokz/sting-hive-muay-thai-api/internal/logger"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/metrics"
)

// Recorder is the fire-and-forget audit sink. Record never propagates
// failures to the caller; a lost log line must not break a booking.
type Recorder interface {
	Record(ctx context.Context, rec Record)
}

type Repository interface {
	Insert(ctx context.Context, rec Record) (*Entry, error)
	List(ctx context.Context, filters ListFilters) (*ListResult, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Record(ctx context.Context, rec Record) {
	if _, err := s.repo.Insert(ctx, rec); err != nil {
		logger.Errorf("activity log write failed (service=%s action=%s): %v", rec.Service, rec.Action, err)
		metrics.RecordActivityLogWrite("error")
		return
	}
	metrics.RecordActivityLogWrite("ok")
}

func (s *Service) List(ctx context.Context, filters ListFilters) (*ListResult, error) {
	return s.repo.List(ctx, filters)
}
