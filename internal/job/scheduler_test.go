package job

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/Hohokz/sting-hive-muay-thai-api/internal/logger"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()

	code := m.Run()
	os.Exit(code)
}

type stubRollover struct {
	rolloverCalls int
	cleanupCalls  int
	retention     time.Duration
	err           error
}

func (s *stubRollover) RunDailyRollover(_ context.Context) (schedule.RolloverStats, error) {
	s.rolloverCalls++
	return schedule.RolloverStats{Applied: 1}, s.err
}

func (s *stubRollover) CleanupInactiveConfigs(_ context.Context, retention time.Duration) (int64, error) {
	s.cleanupCalls++
	s.retention = retention
	return 0, s.err
}

func TestNewSchedulerRegistersJobs(t *testing.T) {
	s, err := NewScheduler(&stubRollover{}, time.UTC)
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 2)
}

func TestRunRolloverDelegates(t *testing.T) {
	stub := &stubRollover{}
	s, err := NewScheduler(stub, time.UTC)
	require.NoError(t, err)

	s.runRollover()
	assert.Equal(t, 1, stub.rolloverCalls)
}

func TestRunCleanupPassesRetention(t *testing.T) {
	stub := &stubRollover{}
	s, err := NewScheduler(stub, time.UTC)
	require.NoError(t, err)

	s.runCleanup()
	assert.Equal(t, 1, stub.cleanupCalls)
	assert.Equal(t, configRetention, stub.retention)
}

func TestRunRolloverSwallowsError(t *testing.T) {
	stub := &stubRollover{err: errors.New("deadlock detected")}
	s, err := NewScheduler(stub, time.UTC)
	require.NoError(t, err)

	// the cron callback has nobody to return an error to
	s.runRollover()
	assert.Equal(t, 1, stub.rolloverCalls)
}
