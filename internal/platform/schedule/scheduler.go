// Package schedule runs recurring ingestion jobs on cron expressions.
package schedule

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/courtline/tennis-data-api/internal/platform/logging"
)

type Scheduler struct {
	cron    *cron.Cron
	logger  *logging.Logger
	baseCtx context.Context
}

func New(logger *logging.Logger, baseCtx context.Context) *Scheduler {
	if logger == nil {
		logger = logging.Default()
	}
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Scheduler{
		cron:    cron.New(),
		logger:  logger,
		baseCtx: baseCtx,
	}
}

// Add registers a named job on a standard 5-field cron spec. The job
// receives the scheduler's base context and any panic it raises is
// logged instead of taking down the process.
func (s *Scheduler) Add(name, spec string, job func(context.Context)) (cron.EntryID, error) {
	return s.cron.AddFunc(spec, func() {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("scheduled job panicked", "job", name, "panic", rec)
			}
		}()

		s.logger.Info("scheduled job starting", "job", name)
		job(s.baseCtx)
	})
}

func (s *Scheduler) Entry(id cron.EntryID) cron.Entry {
	return s.cron.Entry(id)
}

func (s *Scheduler) Start() {
	s.logger.Info("scheduler started")
	s.cron.Start()
}

// Stop halts scheduling and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}
