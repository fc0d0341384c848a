package job

import (
	"context"
	"time"

	"github.com/Hohokz/sting-hive-muay-thai-api/internal/logger"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/schedule"

	"github.com/robfig/cron/v3"
)

const (
	// rolloverSpec fires just after the day flips so override windows are
	// settled well before the 07:00 booking checkpoint.
	rolloverSpec = "1 0 * * *"
	// cleanupSpec purges long-retired overrides once a month.
	cleanupSpec = "0 1 1 * *"

	configRetention = 90 * 24 * time.Hour
	jobTimeout      = 5 * time.Minute
)

// Rollover is the slice of the schedule service the scheduler needs.
type Rollover interface {
	RunDailyRollover(ctx context.Context) (schedule.RolloverStats, error)
	CleanupInactiveConfigs(ctx context.Context, retention time.Duration) (int64, error)
}

// Scheduler owns the background cron jobs. Cron specs are evaluated in the
// gym's timezone so "just after midnight" means the gym's midnight.
type Scheduler struct {
	cron     *cron.Cron
	rollover Rollover
}

func NewScheduler(rollover Rollover, loc *time.Location) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		rollover: rollover,
	}

	if _, err := s.cron.AddFunc(rolloverSpec, s.runRollover); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc(cleanupSpec, s.runCleanup); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info("background jobs started")
}

// Stop waits for a running job to finish before returning.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.Info("background jobs stopped")
}

func (s *Scheduler) runRollover() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.rollover.RunDailyRollover(ctx); err != nil {
		logger.Errorf("daily rollover failed: %v", err)
	}
}

func (s *Scheduler) runCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.rollover.CleanupInactiveConfigs(ctx, configRetention); err != nil {
		logger.Errorf("advance config cleanup failed: %v", err)
	}
}
