package service

import (
	"signal-desk/config"
	"signal-desk/internal/repository"
	"signal-desk/pkg/cache"
	"signal-desk/pkg/logger"
)

type Service struct {
	SignalService    SignalService
	PortfolioService PortfolioService
	ScanService      ScanService
	BacktestService  BacktestService
	SchedulerService SchedulerService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	inmemoryCache cache.Cache,
	dispatcher Dispatcher,
) *Service {
	signalService := NewSignalService(cfg, log, inmemoryCache, dispatcher)
	scanService := NewScanService(log, signalService, cfg.Signal.ScanConcurrent)
	return &Service{
		SignalService:    signalService,
		PortfolioService: NewPortfolioService(log, repo.PortfolioRepo, repo.TradeJournalRepo, dispatcher),
		ScanService:      scanService,
		BacktestService:  NewBacktestService(cfg, log),
		SchedulerService: NewSchedulerService(cfg, log, scanService),
	}
}
