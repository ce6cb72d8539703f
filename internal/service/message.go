package service

import (
	"fmt"
	"strings"

	"signal-desk/internal/dto"
	"signal-desk/pkg/common"
	"signal-desk/pkg/notifier"
	"signal-desk/pkg/utils"
)

func buySignalMessage(resp dto.SignalResponse, timeframe string) notifier.Message {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("Ticker: %s\n", resp.Ticker))
	sb.WriteString(fmt.Sprintf("Timeframe: %s\n", timeframe))
	if resp.Conviction != nil {
		sb.WriteString(fmt.Sprintf("Conviction: %.1f\n", *resp.Conviction))
	}
	sb.WriteString(fmt.Sprintf("Reason: %s\n", resp.Reason))
	sb.WriteString(fmt.Sprintf("Update: %s", utils.PrettyDate(utils.TimeNowUTC())))
	return notifier.Message{
		Title:    fmt.Sprintf("Signal BUY - %s", resp.Ticker),
		Text:     sb.String(),
		Priority: notifier.PriorityHigh,
	}
}

func tradeMessage(resp dto.TradeResponse) notifier.Message {
	verb := "Bought"
	if resp.Side == common.SideSell {
		verb = "Sold"
	}
	return notifier.Message{
		Title: fmt.Sprintf("%s %s", verb, resp.Ticker),
		Text: fmt.Sprintf("%s %s %s\nHolding: %s",
			verb,
			utils.FormatQuantity(resp.Quantity),
			resp.Ticker,
			utils.FormatQuantity(resp.Holding),
		),
		Priority: notifier.PriorityNormal,
	}
}
