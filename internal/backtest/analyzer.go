package backtest

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const tradingDaysPerYear = 252

type TradeStats struct {
	Total    int     `yaml:"total" json:"total"`
	Won      int     `yaml:"won" json:"won"`
	Lost     int     `yaml:"lost" json:"lost"`
	Open     int     `yaml:"open" json:"open"`
	NetPnL   float64 `yaml:"net_pnl" json:"net_pnl"`
	BestPnL  float64 `yaml:"best_pnl" json:"best_pnl"`
	WorstPnL float64 `yaml:"worst_pnl" json:"worst_pnl"`
}

func (t *TradeStats) record(pnl float64) {
	if t.Total == 0 || pnl > t.BestPnL {
		t.BestPnL = pnl
	}
	if t.Total == 0 || pnl < t.WorstPnL {
		t.WorstPnL = pnl
	}
	t.Total++
	t.NetPnL += pnl
	if pnl > 0 {
		t.Won++
	} else {
		t.Lost++
	}
}

type Drawdown struct {
	MaxPercent float64 `yaml:"max_percent" json:"max_percent"`
	MaxMoney   float64 `yaml:"max_money" json:"max_money"`
}

// SharpeRatio annualises the mean over the standard deviation of per-bar
// returns of the equity curve. Curves too short or flat yield 0.
func SharpeRatio(equity []float64) float64 {
	if len(equity) < 3 {
		return 0
	}
	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		if equity[i-1] == 0 {
			continue
		}
		returns = append(returns, equity[i]/equity[i-1]-1)
	}
	if len(returns) < 2 {
		return 0
	}

	mean, std := stat.MeanStdDev(returns, nil)
	if std == 0 || math.IsNaN(std) {
		return 0
	}
	return mean / std * math.Sqrt(tradingDaysPerYear)
}

func MaxDrawdown(equity []float64) Drawdown {
	var dd Drawdown
	if len(equity) == 0 {
		return dd
	}
	peak := equity[0]
	for _, v := range equity {
		if v > peak {
			peak = v
		}
		money := peak - v
		if money > dd.MaxMoney {
			dd.MaxMoney = money
		}
		if peak > 0 {
			if pct := money / peak * 100; pct > dd.MaxPercent {
				dd.MaxPercent = pct
			}
		}
	}
	return dd
}
