// Package schedule runs the pipeline on a cron expression.
package schedule

import (
	"context"

	"github.com/robfig/cron/v3"

	"readingroundup/internal/logger"
)

// Scheduler fires a job on a cron expression until its context ends.
type Scheduler struct {
	cron *cron.Cron
}

// New registers job under expr (standard five-field cron syntax).
func New(expr string, job func()) (*Scheduler, error) {
	c := cron.New()
	if _, err := c.AddFunc(expr, job); err != nil {
		return nil, err
	}
	return &Scheduler{cron: c}, nil
}

// Run starts the schedule and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	logger.Info("scheduler started")
	<-ctx.Done()

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	logger.Info("scheduler stopped")
}
