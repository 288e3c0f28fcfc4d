package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Refresher reloads data that is cached in memory.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type MaintenanceScheduler struct {
	cronEngine         *cron.Cron
	refs               Refresher
	logger             *logrus.Entry
	cronSpecRefRefresh string
	jobTimeout         time.Duration
}

func NewMaintenanceScheduler(
	refs Refresher,
	logger *logrus.Entry,
	loc *time.Location,
	cronSpecRefRefresh string, // e.g., "*/15 * * * *" (every 15 minutes)
) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		cronEngine:         cron.New(cron.WithLocation(loc)),
		refs:               refs,
		logger:             logger,
		cronSpecRefRefresh: cronSpecRefRefresh,
		jobTimeout:         1 * time.Minute,
	}
}

// Start registers the jobs and starts the cron engine. An invalid cron spec
// is returned as an error and nothing is started.
func (s *MaintenanceScheduler) Start() error {
	s.logger.Info("Starting maintenance scheduler")

	if _, err := s.cronEngine.AddFunc(s.cronSpecRefRefresh, s.refreshReferences); err != nil {
		return fmt.Errorf("add reference refresh job %q: %w", s.cronSpecRefRefresh, err)
	}

	s.cronEngine.Start()
	s.logger.WithField("entries", len(s.cronEngine.Entries())).Info("Maintenance scheduler started")
	return nil
}

func (s *MaintenanceScheduler) refreshReferences() {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	if err := s.refs.Refresh(ctx); err != nil {
		s.logger.WithError(err).Error("Reference refresh failed, keeping previous snapshot")
		return
	}
	s.logger.Debug("Reference data refreshed")
}

// Stop waits for running jobs to finish.
func (s *MaintenanceScheduler) Stop() {
	s.logger.Info("Stopping maintenance scheduler")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Maintenance scheduler stopped")
}
