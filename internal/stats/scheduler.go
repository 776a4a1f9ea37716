package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/store"
)

// Scheduler generates a daily report for every profile on a cron schedule
type Scheduler struct {
	cron   *cron.Cron
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewScheduler creates a new report scheduler
func NewScheduler(s store.Store, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		store:  s,
		logger: logger,
		now:    time.Now,
	}
}

// Start registers the daily report job and starts the cron runner
func (s *Scheduler) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		n, err := s.GenerateDaily(ctx)
		if err != nil {
			s.logger.Error("daily reports incomplete", zap.Int("generated", n), zap.Error(err))
			return
		}
		s.logger.Info("daily reports generated", zap.Int("generated", n))
	})
	if err != nil {
		return fmt.Errorf("schedule reports %q: %w", schedule, err)
	}

	s.cron.Start()
	s.logger.Info("report scheduler started", zap.String("schedule", schedule))
	return nil
}

// Stop stops the runner and waits for a running job to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// GenerateDaily stores a report covering the previous UTC day for every
// profile. A failing profile does not stop the others.
func (s *Scheduler) GenerateDaily(ctx context.Context) (int, error) {
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return 0, fmt.Errorf("list profiles: %w", err)
	}

	end := s.now().UTC().Truncate(24 * time.Hour)
	start := end.Add(-24 * time.Hour)

	var (
		generated int
		errs      []error
	)
	for _, p := range profiles {
		report, err := BuildReport(ctx, s.store, p.UserID, model.ReportDaily, start, end)
		if err == nil {
			err = s.store.SaveReport(ctx, report)
		}
		if err != nil {
			s.logger.Warn("daily report failed", zap.String("user_id", p.UserID), zap.Error(err))
			errs = append(errs, fmt.Errorf("user %s: %w", p.UserID, err))
			continue
		}
		generated++
	}

	return generated, errors.Join(errs...)
}
