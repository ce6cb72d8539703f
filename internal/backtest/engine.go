package backtest

import (
	"context"
	"fmt"

	"signal-desk/internal/strategy"
	"signal-desk/pkg/logger"
	"signal-desk/pkg/utils"
)

type Params struct {
	Cash             float64
	Commission       float64
	Slippage         float64
	PositionFraction float64
}

type Result struct {
	Strategy   string     `yaml:"strategy" json:"strategy"`
	StartCash  float64    `yaml:"start_cash" json:"start_cash"`
	FinalValue float64    `yaml:"final_value" json:"final_value"`
	ReturnPct  float64    `yaml:"return_pct" json:"return_pct"`
	Sharpe     float64    `yaml:"sharpe" json:"sharpe"`
	Drawdown   Drawdown   `yaml:"drawdown" json:"drawdown"`
	Trades     TradeStats `yaml:"trades" json:"trades"`
	Orders     []Order    `yaml:"orders,omitempty" json:"orders,omitempty"`
}

type Engine struct {
	params Params
	log    *logger.Logger
}

func NewEngine(params Params, log *logger.Logger) *Engine {
	return &Engine{params: params, log: log}
}

func (e *Engine) Params() Params {
	return e.params
}

// Run replays bars through st. A decision taken on a bar is executed at the
// open of the following bar; one taken on the last bar is never filled.
func (e *Engine) Run(ctx context.Context, bars []Bar, st strategy.Strategy) (Result, error) {
	if len(bars) == 0 {
		return Result{}, ErrEmptyFeed
	}

	log := e.log.With(logger.StringField("strategy", st.Name()))
	broker := NewBroker(e.params.Cash, e.params.Commission, e.params.Slippage)
	equity := make([]float64, 0, len(bars))
	result := Result{Strategy: st.Name(), StartCash: e.params.Cash}

	var pending *strategy.Decision
	for i, bar := range bars {
		if i%256 == 0 && ctx.Err() != nil {
			return Result{}, fmt.Errorf("backtest cancelled at bar %d: %w", i, ctx.Err())
		}

		if pending != nil {
			e.execute(log, broker, &result, *pending, bar)
			pending = nil
		}

		decision := st.Next(strategy.Snapshot{
			Close:    bar.Close,
			Score:    bar.SignalScore,
			Equity:   broker.Value(bar.Close),
			Position: broker.Position(),
		})
		if decision.Action != strategy.Hold {
			pending = &decision
		}

		equity = append(equity, broker.Value(bar.Close))
	}

	if pending != nil {
		log.Info("Order left unfilled at end of data",
			logger.StringField("action", pending.Action.String()),
			logger.StringField("date", bars[len(bars)-1].Date.Format("2006-01-02")),
		)
	}
	if broker.Position() > 0 {
		result.Trades.Open = 1
	}
	result.FinalValue = equity[len(equity)-1]
	if e.params.Cash > 0 {
		result.ReturnPct = (result.FinalValue/e.params.Cash - 1) * 100
	}
	result.Sharpe = SharpeRatio(equity)
	result.Drawdown = MaxDrawdown(equity)
	return result, nil
}

// execute fills a decision at the open of bar.
func (e *Engine) execute(log *logger.Logger, broker *Broker, result *Result, decision strategy.Decision, bar Bar) {
	switch decision.Action {
	case strategy.Buy:
		order := broker.Buy(bar.Date.Time, bar.Open, decision.Size)
		e.notifyOrder(log, order)
		if order.Status == StatusCompleted {
			result.Orders = append(result.Orders, order)
		}
	case strategy.Close:
		if broker.Position() > 0 {
			order, pnl := broker.Close(bar.Date.Time, bar.Open)
			e.notifyOrder(log, order)
			result.Orders = append(result.Orders, order)
			result.Trades.record(pnl)
		}
	}
}

func (e *Engine) notifyOrder(log *logger.Logger, order Order) {
	log.Info(fmt.Sprintf("%s - Order %s: %s @ %s",
		order.Date.Format("2006-01-02"),
		order.Status,
		utils.FormatQuantity(order.Size),
		utils.FormatPrice(order.Price),
	))
}
