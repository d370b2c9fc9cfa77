package service

import (
	"context"
	"fmt"
	"time"

	"soultrader/config"
	"soultrader/internal/dto"
	"soultrader/pkg/logger"
	"soultrader/pkg/utils"

	"github.com/robfig/cron/v3"
)

// SchedulerService runs the batch analysis on a cron schedule.
type SchedulerService interface {
	Start(ctx context.Context) error
	RunOnce(ctx context.Context) error
}

type schedulerService struct {
	cfg        *config.Config
	log        *logger.Logger
	cronParser cron.Parser
	analysis   AnalysisService
}

func NewSchedulerService(cfg *config.Config, log *logger.Logger, analysis AnalysisService) SchedulerService {
	return &schedulerService{
		cfg:        cfg,
		log:        log,
		cronParser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		analysis:   analysis,
	}
}

// Start blocks until ctx is cancelled, firing a batch run at every cron
// tick. A tick that fires while the previous run is still going is
// skipped per user by the in-progress lock, not queued.
func (s *schedulerService) Start(ctx context.Context) error {
	if !s.cfg.Scheduler.Enabled {
		s.log.Info("Scheduler disabled")
		return nil
	}

	schedule, err := s.cronParser.Parse(s.cfg.Scheduler.CronExpression)
	if err != nil {
		return fmt.Errorf("failed to parse cron expression %q: %w", s.cfg.Scheduler.CronExpression, err)
	}

	s.log.Info("Scheduler started",
		logger.StringField("cron", s.cfg.Scheduler.CronExpression),
	)

	for {
		next := schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info("Scheduler stopped")
			return nil
		case <-timer.C:
			if !utils.ShouldContinue(ctx, s.log) {
				return nil
			}
			utils.GoSafe(func() {
				runCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Scheduler.TimeoutDuration)
				defer cancel()

				if err := s.RunOnce(runCtx); err != nil {
					s.log.Error("Scheduled batch analysis failed", logger.ErrorField(err))
				}
			})
		}
	}
}

// RunOnce fires a single batch run over all active users.
func (s *schedulerService) RunOnce(ctx context.Context) error {
	started := time.Now()
	result, err := s.analysis.BatchAnalyze(ctx, nil, dto.BatchAnalysisOptions{
		AnalysisOptions: dto.AnalysisOptions{
			AutoExecute: &s.cfg.Scheduler.AutoExecute,
		},
	})
	if err != nil {
		return fmt.Errorf("batch analysis failed: %w", err)
	}

	s.log.InfoContext(ctx, "Scheduled batch analysis completed",
		logger.IntField("total_users", result.TotalUsers),
		logger.IntField("succeeded", result.Succeeded),
		logger.IntField("failed", result.Failed),
		logger.Float64Field("elapsed_seconds", time.Since(started).Seconds()),
	)
	return nil
}
