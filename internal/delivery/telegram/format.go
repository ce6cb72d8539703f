package telegram

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"signal-desk/internal/dto"
	"signal-desk/pkg/utils"
)

const signalUsage = "Usage: /signal <ticker> <trigger> [daily|weekly|hourly]"

const helpText = `Signal desk bot

/signal <ticker> <trigger> [timeframe] - evaluate a signal
/portfolio - show current holdings
/help - show this message`

func parseSignalArgs(args []string) (dto.SignalRequest, error) {
	if len(args) < 2 {
		return dto.SignalRequest{}, errors.New("ticker and trigger are required")
	}
	req := dto.SignalRequest{
		Ticker:    args[0],
		Trigger:   args[1],
		Timeframe: dto.TimeframeDaily,
	}
	if len(args) > 2 {
		req.Timeframe = strings.ToLower(args[2])
	}
	return req, nil
}

func formatSignal(resp dto.SignalResponse) string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("%s: %s\n", resp.Ticker, resp.Action))
	if resp.Conviction != nil {
		sb.WriteString(fmt.Sprintf("Conviction: %.1f\n", *resp.Conviction))
	}
	sb.WriteString(resp.Reason)
	return sb.String()
}

func formatPortfolio(positions map[string]float64) string {
	if len(positions) == 0 {
		return "Portfolio is empty"
	}
	tickers := make([]string, 0, len(positions))
	for t := range positions {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	lines := make([]string, 0, len(tickers)+1)
	lines = append(lines, "Portfolio")
	for _, t := range tickers {
		lines = append(lines, fmt.Sprintf("- %s: %s", t, utils.FormatQuantity(positions[t])))
	}
	return strings.Join(lines, "\n")
}
