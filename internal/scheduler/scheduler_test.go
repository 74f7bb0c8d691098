package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mamadbah2/farmdash/internal/config"
	"github.com/mamadbah2/farmdash/internal/domain/models"
	"github.com/mamadbah2/farmdash/internal/session"
)

type countingTaker struct {
	calls int
	err   error
}

func (c *countingTaker) TakeSnapshot(ctx context.Context) (*models.DashboardSnapshot, error) {
	c.calls++
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("snapshot context has no deadline")
	}
	return &models.DashboardSnapshot{}, c.err
}

func TestNewSchedulerRejectsUnknownTimezone(t *testing.T) {
	_, err := NewScheduler(config.ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "Mars/Olympus"}, &countingTaker{}, nil)
	assert.Error(t, err)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s, err := NewScheduler(config.ReportingConfig{CronSchedule: "every evening", Timezone: "UTC"}, &countingTaker{}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Error(t, s.Start())
}

func TestStartAndStop(t *testing.T) {
	s, err := NewScheduler(config.ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "Africa/Conakry"}, &countingTaker{}, zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, s.Start())
	require.Len(t, s.cron.Entries(), 1)
	assert.Equal(t, "Africa/Conakry", s.cron.Location().String())
	s.Stop()
}

func TestRunSnapshotRecordsOutcome(t *testing.T) {
	taker := &countingTaker{}
	s, err := NewScheduler(config.ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "UTC"}, taker, zaptest.NewLogger(t))
	require.NoError(t, err)

	s.runSnapshot()
	ran, lastErr := s.LastRun()
	assert.False(t, ran.IsZero())
	assert.NoError(t, lastErr)

	taker.err = session.ErrNotAuthenticated
	s.runSnapshot()
	_, lastErr = s.LastRun()
	assert.ErrorIs(t, lastErr, session.ErrNotAuthenticated)
	assert.Equal(t, 2, taker.calls)
}
