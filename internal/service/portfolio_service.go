package service

import (
	"context"
	"fmt"

	"signal-desk/internal/dto"
	"signal-desk/internal/repository"
	"signal-desk/pkg/common"
	"signal-desk/pkg/logger"
	"signal-desk/pkg/metrics"
	"signal-desk/pkg/utils"

	"github.com/google/uuid"
)

type PortfolioService interface {
	Buy(ctx context.Context, req dto.TradeRequest) (dto.TradeResponse, error)
	Sell(ctx context.Context, req dto.TradeRequest) (dto.TradeResponse, error)
	Positions(ctx context.Context) (dto.PortfolioResponse, error)
}

type portfolioService struct {
	log           *logger.Logger
	portfolioRepo repository.PortfolioRepository
	journalRepo   repository.TradeJournalRepository
	dispatcher    Dispatcher
}

func NewPortfolioService(
	log *logger.Logger,
	portfolioRepo repository.PortfolioRepository,
	journalRepo repository.TradeJournalRepository,
	dispatcher Dispatcher,
) PortfolioService {
	return &portfolioService{
		log:           log,
		portfolioRepo: portfolioRepo,
		journalRepo:   journalRepo,
		dispatcher:    dispatcher,
	}
}

func (s *portfolioService) Buy(ctx context.Context, req dto.TradeRequest) (dto.TradeResponse, error) {
	ticker := utils.NormalizeTicker(req.Ticker)
	holding, err := s.portfolioRepo.Buy(ctx, ticker, req.Quantity)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to buy", logger.StringField("ticker", ticker), logger.ErrorField(err))
		return dto.TradeResponse{}, fmt.Errorf("failed to buy %s: %w", ticker, err)
	}

	resp := dto.TradeResponse{
		Ticker:   ticker,
		Side:     common.SideBuy,
		Quantity: req.Quantity,
		Holding:  holding,
	}
	s.afterTrade(ctx, resp)
	return resp, nil
}

func (s *portfolioService) Sell(ctx context.Context, req dto.TradeRequest) (dto.TradeResponse, error) {
	ticker := utils.NormalizeTicker(req.Ticker)
	holding, found, err := s.portfolioRepo.Sell(ctx, ticker, req.Quantity)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to sell", logger.StringField("ticker", ticker), logger.ErrorField(err))
		return dto.TradeResponse{}, fmt.Errorf("failed to sell %s: %w", ticker, err)
	}
	if !found {
		s.log.InfoContext(ctx, "Sell of unknown ticker ignored", logger.StringField("ticker", ticker))
	}

	resp := dto.TradeResponse{
		Ticker:   ticker,
		Side:     common.SideSell,
		Quantity: req.Quantity,
		Holding:  holding,
	}
	s.afterTrade(ctx, resp)
	return resp, nil
}

// afterTrade records the journal row and sends the trade notification. Neither
// can fail the trade.
func (s *portfolioService) afterTrade(ctx context.Context, resp dto.TradeResponse) {
	metrics.TradesTotal.WithLabelValues(resp.Side).Inc()

	entry := dto.TradeEntry{
		ID:        uuid.NewString(),
		Timestamp: utils.TimeNowUTC(),
		Ticker:    resp.Ticker,
		Side:      resp.Side,
		Quantity:  resp.Quantity,
		Meta: map[string]string{
			"holding": utils.FormatQuantity(resp.Holding),
		},
	}
	if err := s.journalRepo.Append(ctx, entry); err != nil {
		s.log.ErrorContextWithAlert(ctx, "Failed to append trade journal",
			logger.StringField("trade_id", entry.ID),
			logger.StringField("ticker", entry.Ticker),
			logger.ErrorField(err),
		)
	}

	s.dispatcher.Dispatch(tradeMessage(resp))
}

func (s *portfolioService) Positions(ctx context.Context) (dto.PortfolioResponse, error) {
	positions, err := s.portfolioRepo.All(ctx)
	if err != nil {
		return dto.PortfolioResponse{}, fmt.Errorf("failed to load portfolio: %w", err)
	}
	return dto.PortfolioResponse{Positions: positions}, nil
}
