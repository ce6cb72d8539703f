package backtest

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"signal-desk/internal/strategy"
	"signal-desk/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func day(d int) Date {
	return Date{time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)}
}

func bars(closes, scores []float64) []Bar {
	out := make([]Bar, len(closes))
	for i := range closes {
		out[i] = Bar{Date: day(i + 1), Open: closes[i], Close: closes[i], SignalScore: scores[i]}
	}
	return out
}

func defaultParams() Params {
	return Params{Cash: 100000, Commission: 0.0005, Slippage: 0.001, PositionFraction: 0.1}
}

func TestReadBars_SortsByDate(t *testing.T) {
	csv := `date,open,high,low,close,volume,signal_score
2024-01-03,1,1,1,12,100,2.5
2024-01-01,1,1,1,10,100,8
2024-01-02,1,1,1,11,100,5
`
	got, err := ReadBars(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 10.0, got[0].Close)
	assert.Equal(t, 8.0, got[0].SignalScore)
	assert.Equal(t, 12.0, got[2].Close)
	assert.True(t, got[1].Date.Equal(day(2).Time))
}

func TestReadBars_Errors(t *testing.T) {
	_, err := ReadBars(strings.NewReader("date,open,high,low,close,volume,signal_score\nnot-a-date,1,1,1,1,1,1\n"))
	assert.Error(t, err)

	_, err = ReadBars(strings.NewReader("date,open,high,low,close,volume,signal_score\n"))
	assert.Error(t, err)
}

func TestBroker_RejectsOrderCashCannotCover(t *testing.T) {
	b := NewBroker(100, 0, 0)
	order := b.Buy(day(1).Time, 10, 20)
	assert.Equal(t, StatusMargin, order.Status)
	assert.Equal(t, 100.0, b.Cash())
	assert.Equal(t, 0.0, b.Position())
}

func TestEngine_Run_RoundTrip(t *testing.T) {
	engine := NewEngine(defaultParams(), logger.Nop())
	feed := bars([]float64{100, 150, 160, 170}, []float64{8, 5, 2, 5})

	res, err := engine.Run(context.Background(), feed, strategy.NewScoreThreshold(8, 2, 0.1))
	require.NoError(t, err)

	require.Len(t, res.Orders, 2)
	buy := res.Orders[0]
	assert.Equal(t, SideBuy, buy.Side)
	assert.True(t, buy.Date.Equal(day(2).Time), "filled on the bar after the signal")
	assert.InDelta(t, 100, buy.Size, 1e-9, "10% of 100000 at the signal close of 100")
	assert.InDelta(t, 150.15, buy.Price, 1e-9)
	assert.InDelta(t, 7.5075, buy.Commission, 1e-9)

	sell := res.Orders[1]
	assert.Equal(t, SideSell, sell.Side)
	assert.True(t, sell.Date.Equal(day(4).Time))
	assert.InDelta(t, 169.83, sell.Price, 1e-9)

	assert.Equal(t, 1, res.Trades.Total)
	assert.Equal(t, 1, res.Trades.Won)
	assert.Equal(t, 0, res.Trades.Open)
	assert.InDelta(t, 1952.001, res.Trades.NetPnL, 1e-6)
	assert.InDelta(t, 101952.001, res.FinalValue, 1e-6)
	assert.InDelta(t, 1.952001, res.ReturnPct, 1e-6)
}

func TestEngine_Run_OpenPositionAtEnd(t *testing.T) {
	engine := NewEngine(defaultParams(), logger.Nop())
	feed := bars([]float64{100, 90}, []float64{9, 5})

	res, err := engine.Run(context.Background(), feed, strategy.NewScoreThreshold(8, 2, 0.1))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Trades.Total)
	assert.Equal(t, 1, res.Trades.Open)
	require.Len(t, res.Orders, 1)
	assert.InDelta(t, 90.09, res.Orders[0].Price, 1e-9)
	assert.Less(t, res.FinalValue, 100000.0)
}

func TestEngine_Run_SignalOnLastBarStaysUnfilled(t *testing.T) {
	engine := NewEngine(defaultParams(), logger.Nop())
	feed := bars([]float64{100, 101}, []float64{5, 9})

	res, err := engine.Run(context.Background(), feed, strategy.NewScoreThreshold(8, 2, 0.1))
	require.NoError(t, err)
	assert.Empty(t, res.Orders)
	assert.Equal(t, 0, res.Trades.Open)
	assert.Equal(t, 100000.0, res.FinalValue)
}

func TestEngine_Run_EmptyFeed(t *testing.T) {
	engine := NewEngine(defaultParams(), logger.Nop())
	_, err := engine.Run(context.Background(), nil, strategy.NewScoreThreshold(8, 2, 0.1))
	assert.ErrorIs(t, err, ErrEmptyFeed)
}

func TestSharpeRatio(t *testing.T) {
	assert.Equal(t, 0.0, SharpeRatio([]float64{100, 100, 100, 100}))
	assert.Equal(t, 0.0, SharpeRatio([]float64{100, 101}))

	expected := 0.015 / math.Sqrt(0.00005) * math.Sqrt(252)
	assert.InDelta(t, expected, SharpeRatio([]float64{100, 101, 103.02}), 1e-6)
}

func TestMaxDrawdown(t *testing.T) {
	dd := MaxDrawdown([]float64{100, 120, 90, 130, 117})
	assert.InDelta(t, 30, dd.MaxMoney, 1e-9)
	assert.InDelta(t, 25, dd.MaxPercent, 1e-9)

	assert.Equal(t, Drawdown{}, MaxDrawdown(nil))
}

func TestOptimize_PicksHighestSharpe(t *testing.T) {
	engine := NewEngine(defaultParams(), logger.Nop())
	feed := bars(
		[]float64{100, 102, 101, 105, 108, 104, 100, 97, 103, 110, 112, 109},
		[]float64{6.5, 7.2, 8.1, 9.3, 3.5, 2.5, 1.5, 6.1, 8.5, 9.1, 4.0, 2.0},
	)
	grid := Grid{
		EntryScores:    []float64{6, 7, 8, 9},
		ExitScores:     []float64{2, 3, 4},
		MaxConcurrency: 4,
	}

	report, err := Optimize(context.Background(), engine, feed, grid)
	require.NoError(t, err)
	require.Len(t, report.Runs, 12)

	assert.Equal(t, 6.0, report.Runs[0].EntryScore)
	assert.Equal(t, 2.0, report.Runs[0].ExitScore)
	assert.Equal(t, 9.0, report.Runs[11].EntryScore)
	assert.Equal(t, 4.0, report.Runs[11].ExitScore)

	for _, r := range report.Runs {
		assert.LessOrEqual(t, r.Sharpe, report.Best.Sharpe)
		assert.Nil(t, r.Orders)
	}
	assert.NotEmpty(t, report.Best.Orders)
	assert.Equal(t, 12, report.Bars)
}

func TestOptimize_TieGoesToFirstPair(t *testing.T) {
	engine := NewEngine(defaultParams(), logger.Nop())
	feed := bars([]float64{100, 101, 102}, []float64{0, 0, 0})

	report, err := Optimize(context.Background(), engine, feed, Grid{
		EntryScores: []float64{6, 7},
		ExitScores:  []float64{2, 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 6.0, report.Best.EntryScore)
	assert.Equal(t, 2.0, report.Best.ExitScore)
	assert.Equal(t, 0.0, report.Best.Sharpe)
}

func TestOptimize_EmptyGrid(t *testing.T) {
	engine := NewEngine(defaultParams(), logger.Nop())
	_, err := Optimize(context.Background(), engine, bars([]float64{1}, []float64{1}), Grid{})
	assert.Error(t, err)
}

func TestWriteReport(t *testing.T) {
	report := &Report{
		Bars: 3,
		Best: Run{EntryScore: 8, ExitScore: 2, Result: Result{Strategy: "s", Sharpe: 1.5}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, report))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	best, ok := decoded["best"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 8, best["entry_score"])
	assert.Equal(t, 1.5, best["sharpe"])
	assert.Equal(t, "s", best["strategy"])
}
