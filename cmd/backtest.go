package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"signal-desk/internal/backtest"
	"signal-desk/internal/dto"
	"signal-desk/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var backtestFlags struct {
	file   string
	output string
	entry  []float64
	exit   []float64
}

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run the score threshold strategy grid over a CSV of scored bars",
	RunE:  runBacktest,
}

func runBacktest(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	svc := service.NewBacktestService(cfg, log)
	report, err := svc.RunBacktest(ctx, dto.BacktestRequest{
		File:        backtestFlags.file,
		EntryScores: backtestFlags.entry,
		ExitScores:  backtestFlags.exit,
	})
	if err != nil {
		return err
	}

	best := report.Best
	log.Info("Best parameters",
		zap.Float64("entry_score", best.EntryScore),
		zap.Float64("exit_score", best.ExitScore),
		zap.Float64("sharpe", best.Sharpe),
		zap.Float64("max_drawdown_pct", best.Drawdown.MaxPercent),
		zap.Int("trades", best.Trades.Total),
		zap.Float64("final_value", best.FinalValue),
	)

	if backtestFlags.output == "" {
		return backtest.WriteReport(cmd.OutOrStdout(), report)
	}
	if err := backtest.WriteReportFile(backtestFlags.output, report); err != nil {
		return err
	}
	log.Info("Report written", zap.String("path", backtestFlags.output))
	return nil
}

func init() {
	backtestCmd.Flags().StringVar(&backtestFlags.file, "file", "", "CSV feed (defaults to backtest.file)")
	backtestCmd.Flags().StringVarP(&backtestFlags.output, "output", "o", "", "write the YAML report to this path instead of stdout")
	backtestCmd.Flags().Float64SliceVar(&backtestFlags.entry, "entry", nil, "entry scores to try (defaults to backtest.entry_scores)")
	backtestCmd.Flags().Float64SliceVar(&backtestFlags.exit, "exit", nil, "exit scores to try (defaults to backtest.exit_scores)")
}
