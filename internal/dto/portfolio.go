package dto

import "time"

type TradeRequest struct {
	Ticker   string  `json:"ticker" validate:"required,max=32"`
	Quantity float64 `json:"quantity" validate:"gt=0"`
}

type TradeResponse struct {
	Ticker   string  `json:"ticker"`
	Side     string  `json:"side"`
	Quantity float64 `json:"quantity"`
	Holding  float64 `json:"holding"`
}

type PortfolioResponse struct {
	Positions map[string]float64 `json:"positions"`
}

// TradeEntry is one journal row.
type TradeEntry struct {
	ID        string
	Timestamp time.Time
	Ticker    string
	Side      string
	Quantity  float64
	Meta      map[string]string
}
