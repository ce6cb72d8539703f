package dto

const (
	ActionBuy  = "BUY"
	ActionHold = "HOLD"
)

const (
	TimeframeDaily  = "daily"
	TimeframeWeekly = "weekly"
	TimeframeHourly = "hourly"
)

type SignalRequest struct {
	Ticker    string  `json:"ticker" validate:"required,max=32"`
	Timeframe string  `json:"timeframe" validate:"required,oneof=daily weekly hourly"`
	Trigger   string  `json:"trigger" validate:"required"`
	Quantity  float64 `json:"quantity" validate:"gte=0"`
}

type SignalResponse struct {
	Ticker     string   `json:"ticker"`
	Action     string   `json:"action"`
	Conviction *float64 `json:"conviction,omitempty"`
	Reason     string   `json:"reason"`
}

type ScoreResponse struct {
	Ticker     string  `json:"ticker"`
	Conviction float64 `json:"conviction"`
}

type ScanRequest struct {
	Tickers   []string `json:"tickers" validate:"required,min=1,max=200,dive,required,max=32"`
	Timeframe string   `json:"timeframe" validate:"required,oneof=daily weekly hourly"`
	Trigger   string   `json:"trigger" validate:"required"`
}

type ScanResponse struct {
	Signals []SignalResponse `json:"signals"`
	Buys    int              `json:"buys"`
}
