package service

import (
	"context"
	"time"

	"signal-desk/config"
	"signal-desk/internal/backtest"
	"signal-desk/internal/dto"
	"signal-desk/pkg/logger"
)

type BacktestService interface {
	RunBacktest(ctx context.Context, req dto.BacktestRequest) (*backtest.Report, error)
}

type backtestService struct {
	cfg config.Backtest
	log *logger.Logger
}

func NewBacktestService(cfg *config.Config, log *logger.Logger) BacktestService {
	return &backtestService{cfg: cfg.Backtest, log: log}
}

// RunBacktest loads the feed and runs the parameter grid. Zero values in req
// fall back to the configured defaults.
func (s *backtestService) RunBacktest(ctx context.Context, req dto.BacktestRequest) (*backtest.Report, error) {
	req = s.withDefaults(req)

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	bars, err := backtest.LoadBars(req.File)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to load backtest feed", logger.StringField("file", req.File), logger.ErrorField(err))
		return nil, err
	}

	engine := backtest.NewEngine(backtest.Params{
		Cash:             req.Cash,
		Commission:       req.Commission,
		Slippage:         req.Slippage,
		PositionFraction: req.PositionFraction,
	}, s.log)

	start := time.Now()
	report, err := backtest.Optimize(ctx, engine, bars, backtest.Grid{
		EntryScores:    req.EntryScores,
		ExitScores:     req.ExitScores,
		MaxConcurrency: s.cfg.MaxConcurrency,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Backtest failed", logger.ErrorField(err))
		return nil, err
	}

	s.log.InfoContext(ctx, "Backtest completed",
		logger.StringField("file", req.File),
		logger.IntField("bars", report.Bars),
		logger.IntField("runs", len(report.Runs)),
		logger.FloatField("best_entry", report.Best.EntryScore),
		logger.FloatField("best_exit", report.Best.ExitScore),
		logger.FloatField("best_sharpe", report.Best.Sharpe),
		logger.StringField("elapsed", time.Since(start).String()),
	)
	return report, nil
}

func (s *backtestService) withDefaults(req dto.BacktestRequest) dto.BacktestRequest {
	if req.File == "" {
		req.File = s.cfg.File
	}
	if req.Cash == 0 {
		req.Cash = s.cfg.Cash
	}
	if req.Commission == 0 {
		req.Commission = s.cfg.Commission
	}
	if req.Slippage == 0 {
		req.Slippage = s.cfg.Slippage
	}
	if req.PositionFraction == 0 {
		req.PositionFraction = s.cfg.PositionFraction
	}
	if len(req.EntryScores) == 0 {
		req.EntryScores = s.cfg.EntryScores
	}
	if len(req.ExitScores) == 0 {
		req.ExitScores = s.cfg.ExitScores
	}
	return req
}
