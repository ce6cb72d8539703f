// Package strategy holds the trading rules driven by the backtest engine.
package strategy

type Action int

const (
	Hold Action = iota
	Buy
	Close
)

func (a Action) String() string {
	switch a {
	case Buy:
		return "BUY"
	case Close:
		return "CLOSE"
	default:
		return "HOLD"
	}
}

// Snapshot is what a strategy sees on each bar.
type Snapshot struct {
	Close    float64
	Score    float64
	Equity   float64
	Position float64
}

// Decision is the order a strategy wants placed on the current bar. Size is
// only meaningful for Buy.
type Decision struct {
	Action Action
	Size   float64
}

type Strategy interface {
	Name() string
	Next(s Snapshot) Decision
}
