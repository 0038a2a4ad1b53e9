package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const DefaultRefreshSchedule = "*/30 * * * *"

// RefreshEnqueuer starts a background catalog refresh.
type RefreshEnqueuer interface {
	EnqueueRefresh(reason string) (string, error)
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateSchedule checks a five-field cron spec (descriptors like @hourly allowed).
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// RefreshScheduler enqueues catalog refreshes on a cron schedule.
type RefreshScheduler struct {
	enqueuer RefreshEnqueuer
	schedule string
	logger   *zap.Logger

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

func NewRefreshScheduler(enqueuer RefreshEnqueuer, schedule string, logger *zap.Logger) *RefreshScheduler {
	if schedule == "" {
		schedule = DefaultRefreshSchedule
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefreshScheduler{
		enqueuer: enqueuer,
		schedule: schedule,
		logger:   logger,
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start begins the scheduler. It stops by itself when ctx is cancelled.
func (s *RefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.trigger("schedule")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule refresh job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	s.logger.Info("Refresh scheduler started",
		zap.String("schedule", s.schedule),
		zap.Timep("next_run", s.nextRunLocked()),
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops accepting new jobs and waits for a running job to finish.
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
	s.isRunning = false

	s.logger.Info("Refresh scheduler stopped")
}

// RunNow enqueues a refresh immediately and returns its task id.
func (s *RefreshScheduler) RunNow() (string, error) {
	return s.enqueuer.EnqueueRefresh("manual")
}

// IsRunning returns whether the scheduler is active
func (s *RefreshScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next refresh will be enqueued, nil when stopped.
func (s *RefreshScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isRunning {
		return nil
	}
	return s.nextRunLocked()
}

func (s *RefreshScheduler) nextRunLocked() *time.Time {
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *RefreshScheduler) trigger(reason string) {
	id, err := s.enqueuer.EnqueueRefresh(reason)
	if err != nil {
		s.logger.Error("Failed to enqueue catalog refresh", zap.String("reason", reason), zap.Error(err))
		return
	}
	s.logger.Debug("Catalog refresh enqueued", zap.String("reason", reason), zap.String("task_id", id))
}
