package backtest

import (
	"context"
	"fmt"
	"time"

	"signal-desk/internal/strategy"

	"golang.org/x/sync/errgroup"
)

type Grid struct {
	EntryScores    []float64
	ExitScores     []float64
	MaxConcurrency int
}

type Run struct {
	EntryScore float64 `yaml:"entry_score" json:"entry_score"`
	ExitScore  float64 `yaml:"exit_score" json:"exit_score"`
	Result     `yaml:",inline"`
}

type Report struct {
	Bars int       `yaml:"bars" json:"bars"`
	From time.Time `yaml:"from" json:"from"`
	To   time.Time `yaml:"to" json:"to"`
	Best Run       `yaml:"best" json:"best"`
	Runs []Run     `yaml:"runs" json:"runs"`
}

// Optimize runs the score threshold strategy over every entry/exit pair and
// picks the run with the highest Sharpe ratio. Ties go to the earlier pair in
// grid order. Only the best run keeps its order list.
func Optimize(ctx context.Context, engine *Engine, bars []Bar, grid Grid) (*Report, error) {
	if len(bars) == 0 {
		return nil, ErrEmptyFeed
	}
	if len(grid.EntryScores) == 0 || len(grid.ExitScores) == 0 {
		return nil, fmt.Errorf("grid needs at least one entry and one exit score")
	}
	limit := grid.MaxConcurrency
	if limit <= 0 {
		limit = 4
	}

	runs := make([]Run, 0, len(grid.EntryScores)*len(grid.ExitScores))
	for _, entry := range grid.EntryScores {
		for _, exit := range grid.ExitScores {
			runs = append(runs, Run{EntryScore: entry, ExitScore: exit})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range runs {
		g.Go(func() error {
			st := strategy.NewScoreThreshold(runs[i].EntryScore, runs[i].ExitScore, engine.Params().PositionFraction)
			res, err := engine.Run(gctx, bars, st)
			if err != nil {
				return err
			}
			runs[i].Result = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := 0
	for i := 1; i < len(runs); i++ {
		if runs[i].Sharpe > runs[best].Sharpe {
			best = i
		}
	}
	report := &Report{
		Bars: len(bars),
		From: bars[0].Date.Time,
		To:   bars[len(bars)-1].Date.Time,
		Best: runs[best],
	}
	for i := range runs {
		runs[i].Orders = nil
	}
	report.Runs = runs
	return report, nil
}
