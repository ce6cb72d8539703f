package service

import (
	"context"

	"signal-desk/internal/dto"
	"signal-desk/pkg/logger"

	"golang.org/x/sync/errgroup"
)

type ScanService interface {
	Scan(ctx context.Context, req dto.ScanRequest) (dto.ScanResponse, error)
}

type scanService struct {
	log           *logger.Logger
	signalService SignalService
	concurrency   int
}

func NewScanService(log *logger.Logger, signalService SignalService, concurrency int) ScanService {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &scanService{
		log:           log,
		signalService: signalService,
		concurrency:   concurrency,
	}
}

// Scan evaluates every ticker and returns results in input order.
func (s *scanService) Scan(ctx context.Context, req dto.ScanRequest) (dto.ScanResponse, error) {
	results := make([]dto.SignalResponse, len(req.Tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, ticker := range req.Tickers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.signalService.Evaluate(gctx, dto.SignalRequest{
				Ticker:    ticker,
				Timeframe: req.Timeframe,
				Trigger:   req.Trigger,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.WarnContext(ctx, "Scan interrupted", logger.ErrorField(err))
		return dto.ScanResponse{}, err
	}

	buys := 0
	for _, r := range results {
		if r.Action == dto.ActionBuy {
			buys++
		}
	}
	s.log.InfoContext(ctx, "Scan completed",
		logger.IntField("tickers", len(req.Tickers)),
		logger.IntField("buys", buys),
	)
	return dto.ScanResponse{Signals: results, Buys: buys}, nil
}
