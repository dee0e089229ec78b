package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler periodically re-imports a CSV file from disk. A run is skipped
// when the file has not been modified since the last successful import.
type Scheduler struct {
	cron     *cron.Cron
	svc      *Service
	schedule string
	path     string
	actor    string
	logger   *slog.Logger

	mu      sync.Mutex
	lastMod time.Time
}

// NewScheduler creates a Scheduler that imports path as actor on the given
// cron schedule (standard five-field spec or a descriptor such as "@hourly").
func NewScheduler(svc *Service, schedule, path, actor string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		svc:      svc,
		schedule: schedule,
		path:     path,
		actor:    actor,
		logger:   logger,
	}
}

// Start registers the import job and starts the cron scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Warn("scheduled import failed", "path", s.path, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid import schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.Info("import scheduler started", "schedule", s.schedule, "path", s.path)
	return nil
}

// Stop stops the scheduler and waits for a running import to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("import scheduler stopped")
}

// RunOnce imports the file if it changed since the last successful run.
// It reports whether an import was performed.
func (s *Scheduler) RunOnce(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	if err != nil {
		return false, fmt.Errorf("stat import file: %w", err)
	}
	if !s.lastMod.IsZero() && info.ModTime().Equal(s.lastMod) {
		s.logger.Debug("import file unchanged, skipping", "path", s.path)
		return false, nil
	}

	summary, err := s.svc.ImportFile(ctx, s.actor, s.path)
	if err != nil {
		return false, err
	}
	s.lastMod = info.ModTime()
	s.logger.Info("scheduled import finished", "path", s.path, "changed", summary.Changed())
	return true, nil
}
