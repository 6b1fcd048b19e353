/*
scheduler.go - Automatic settlement job

PURPOSE:
  Optionally runs remittance generation on a cron schedule (default:
  02:00 UTC on the first of the month), so outstanding pay is swept
  without anyone calling the API. Disabled unless configured.

DESIGN:
  - gocron scheduler, one job, singleton mode: a run that overlaps the
    next tick reschedules instead of stacking.
  - The job is just Engine.Generate with default period bounds; the
    engine's own idempotency makes a duplicate sweep harmless.
  - Dry-run mode logs the preview totals without settling anything.

SEE ALSO:
  - settlement/batcher.go: Generate
  - config/config.go: SchedulerConfig
*/
package api

import (
	"context"
	"fmt"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/warp/settlement-engine/settlement"
)

// SettlementScheduler drives periodic remittance generation.
type SettlementScheduler struct {
	engine    *settlement.Engine
	logger    *zap.Logger
	scheduler gocron.Scheduler
	cron      string
	dryRun    bool
}

// NewSettlementScheduler creates the scheduler; Start registers and
// launches the job.
func NewSettlementScheduler(engine *settlement.Engine, logger *zap.Logger, cron string, dryRun bool) (*SettlementScheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettlementScheduler{
		engine:    engine,
		logger:    logger,
		scheduler: s,
		cron:      cron,
		dryRun:    dryRun,
	}, nil
}

// Start registers the settlement job and launches the scheduler.
func (ss *SettlementScheduler) Start() error {
	_, err := ss.scheduler.NewJob(
		gocron.CronJob(ss.cron, false),
		gocron.NewTask(ss.run),
		gocron.WithName("settlement-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to register settlement job: %w", err)
	}

	ss.scheduler.Start()
	ss.logger.Info("settlement scheduler started",
		zap.String("cron", ss.cron), zap.Bool("dry_run", ss.dryRun))
	return nil
}

// Stop shuts the scheduler down, waiting for a running job.
func (ss *SettlementScheduler) Stop() {
	if err := ss.scheduler.Shutdown(); err != nil {
		ss.logger.Warn("scheduler shutdown failed", zap.Error(err))
	}
}

func (ss *SettlementScheduler) run() {
	result, err := ss.engine.Generate(context.Background(), settlement.GenerateInput{
		DryRun: ss.dryRun,
	})
	if err != nil {
		ss.logger.Error("scheduled settlement run failed", zap.Error(err))
		return
	}

	ss.logger.Info("scheduled settlement run finished",
		zap.Bool("dry_run", result.DryRun),
		zap.Int("remittances", result.RemittancesCreated),
		zap.String("total_net", result.TotalNet.StringFixed()))
}
