package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmdash/internal/config"
	"github.com/mamadbah2/farmdash/internal/domain/models"
	"github.com/mamadbah2/farmdash/internal/session"
)

const snapshotTimeout = 2 * time.Minute

// SnapshotTaker captures and stores a dashboard snapshot.
type SnapshotTaker interface {
	TakeSnapshot(ctx context.Context) (*models.DashboardSnapshot, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	snapshots SnapshotTaker
	schedule  string
	logger    *zap.Logger

	mu      sync.Mutex
	lastRun time.Time
	lastErr error
}

// NewScheduler creates a scheduler running in the configured timezone.
func NewScheduler(cfg config.ReportingConfig, snapshots SnapshotTaker, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	// Standard 5-field cron expressions (min, hour, dom, month, dow).
	c := cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	return &Scheduler{
		cron:      c,
		snapshots: snapshots,
		schedule:  cfg.CronSchedule,
		logger:    logger,
	}, nil
}

// Start registers the snapshot job and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.runSnapshot); err != nil {
		s.logger.Error("failed to schedule dashboard snapshot", zap.Error(err))
		return fmt.Errorf("schedule dashboard snapshot %q: %w", s.schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// LastRun reports when the snapshot job last ran and how it ended.
func (s *Scheduler) LastRun() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastErr
}

func (s *Scheduler) runSnapshot() {
	s.logger.Info("taking dashboard snapshot")
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	_, err := s.snapshots.TakeSnapshot(ctx)

	s.mu.Lock()
	s.lastRun = time.Now()
	s.lastErr = err
	s.mu.Unlock()

	switch {
	case err == nil:
		s.logger.Info("dashboard snapshot taken successfully")
	case errors.Is(err, session.ErrNotAuthenticated), errors.Is(err, session.ErrSessionExpired):
		s.logger.Warn("skipping dashboard snapshot, no valid session", zap.Error(err))
	default:
		s.logger.Error("failed to take dashboard snapshot", zap.Error(err))
	}
}
