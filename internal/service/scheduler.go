package service

import (
	"context"
	"fmt"
	"time"

	"signal-desk/config"
	"signal-desk/internal/dto"
	"signal-desk/pkg/logger"

	"github.com/robfig/cron/v3"
)

type SchedulerService interface {
	Start(ctx context.Context) error
	Stop()
	// Execute runs one scan of the watchlist.
	Execute(ctx context.Context) (dto.ScanResponse, error)
}

type schedulerService struct {
	cfg         config.Scheduler
	log         *logger.Logger
	cronParser  cron.Parser
	cron        *cron.Cron
	scanService ScanService
	runTimeout  time.Duration
}

func NewSchedulerService(cfg *config.Config, log *logger.Logger, scanService ScanService) SchedulerService {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &schedulerService{
		cfg:         cfg.Scheduler,
		log:         log,
		cronParser:  parser,
		cron:        cron.New(cron.WithParser(parser), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		scanService: scanService,
		runTimeout:  time.Minute,
	}
}

// Start registers the watchlist scan and starts the cron runner. It is a no-op
// when the scheduler is disabled or the watchlist is empty.
func (s *schedulerService) Start(ctx context.Context) error {
	if !s.cfg.Enabled || len(s.cfg.Watchlist) == 0 {
		s.log.InfoContext(ctx, "Scan scheduler disabled")
		return nil
	}

	schedule, err := s.cronParser.Parse(s.cfg.ScanCron)
	if err != nil {
		return fmt.Errorf("failed to parse scan cron %q: %w", s.cfg.ScanCron, err)
	}

	s.cron.Schedule(schedule, cron.FuncJob(func() {
		runCtx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
		defer cancel()
		if _, err := s.Execute(runCtx); err != nil {
			s.log.ErrorContextWithAlert(runCtx, "Scheduled scan failed", logger.ErrorField(err))
		}
	}))
	s.cron.Start()

	s.log.InfoContext(ctx, "Scan scheduler started",
		logger.StringField("cron", s.cfg.ScanCron),
		logger.IntField("watchlist", len(s.cfg.Watchlist)),
		logger.StringField("next_run", schedule.Next(time.Now()).Format(time.RFC3339)),
	)
	return nil
}

func (s *schedulerService) Stop() {
	<-s.cron.Stop().Done()
}

func (s *schedulerService) Execute(ctx context.Context) (dto.ScanResponse, error) {
	s.log.InfoContext(ctx, "Running watchlist scan", logger.IntField("tickers", len(s.cfg.Watchlist)))
	return s.scanService.Scan(ctx, dto.ScanRequest{
		Tickers:   s.cfg.Watchlist,
		Timeframe: s.cfg.Timeframe,
		Trigger:   s.cfg.Trigger,
	})
}
