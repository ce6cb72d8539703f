package service

import (
	"context"
	"fmt"
	"strings"

	"signal-desk/config"
	"signal-desk/internal/dto"
	"signal-desk/pkg/cache"
	"signal-desk/pkg/common"
	"signal-desk/pkg/logger"
	"signal-desk/pkg/metrics"
	"signal-desk/pkg/notifier"
	"signal-desk/pkg/utils"
)

type SignalService interface {
	Evaluate(ctx context.Context, req dto.SignalRequest) dto.SignalResponse
	Score(ctx context.Context, ticker string) dto.ScoreResponse
}

// Dispatcher is the fire-and-forget side of notifier.Dispatcher.
type Dispatcher interface {
	Dispatch(msg notifier.Message)
}

type signalService struct {
	cfg           config.Signal
	log           *logger.Logger
	inmemoryCache cache.Cache
	dispatcher    Dispatcher
}

func NewSignalService(cfg *config.Config, log *logger.Logger, inmemoryCache cache.Cache, dispatcher Dispatcher) SignalService {
	return &signalService{
		cfg:           cfg.Signal,
		log:           log,
		inmemoryCache: inmemoryCache,
		dispatcher:    dispatcher,
	}
}

// isBuy compares case-insensitively only; surrounding whitespace is not
// stripped, so " NEM" does not match.
func (s *signalService) isBuy(ticker, trigger string) bool {
	return strings.ToUpper(ticker) == strings.ToUpper(s.cfg.Symbol) &&
		strings.ToLower(trigger) == strings.ToLower(s.cfg.Trigger)
}

func (s *signalService) Evaluate(ctx context.Context, req dto.SignalRequest) dto.SignalResponse {
	ticker := utils.NormalizeTicker(req.Ticker)

	if !s.isBuy(req.Ticker, req.Trigger) {
		metrics.SignalsTotal.WithLabelValues(dto.ActionHold).Inc()
		return dto.SignalResponse{
			Ticker: ticker,
			Action: dto.ActionHold,
			Reason: "no qualifying setup",
		}
	}

	metrics.SignalsTotal.WithLabelValues(dto.ActionBuy).Inc()
	resp := dto.SignalResponse{
		Ticker:     ticker,
		Action:     dto.ActionBuy,
		Conviction: utils.ToPointer(s.cfg.Conviction),
		Reason:     fmt.Sprintf("%s %s on %s timeframe", ticker, strings.ToLower(req.Trigger), req.Timeframe),
	}
	s.notifyBuy(ctx, req.Timeframe, resp)
	return resp
}

func (s *signalService) notifyBuy(ctx context.Context, timeframe string, resp dto.SignalResponse) {
	key := fmt.Sprintf(common.KEY_LAST_SEND_SIGNAL_BUY, resp.Ticker, strings.ToLower(s.cfg.Trigger), timeframe)
	if !s.inmemoryCache.SetIfAbsent(key, true, s.cfg.NotifyCooldown) {
		s.log.DebugContext(ctx, "Buy signal already sent", logger.StringField("ticker", resp.Ticker))
		return
	}

	s.log.InfoContext(ctx, "Buy signal",
		logger.StringField("ticker", resp.Ticker),
		logger.StringField("timeframe", timeframe),
		logger.FloatField("conviction", s.cfg.Conviction),
	)
	s.dispatcher.Dispatch(buySignalMessage(resp, timeframe))
}

func (s *signalService) Score(ctx context.Context, ticker string) dto.ScoreResponse {
	ticker = utils.NormalizeTicker(ticker)
	score := 0.0
	if ticker == utils.NormalizeTicker(s.cfg.Symbol) {
		score = s.cfg.Conviction
	}
	return dto.ScoreResponse{Ticker: ticker, Conviction: score}
}
