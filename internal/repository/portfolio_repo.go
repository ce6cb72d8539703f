package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var ErrInvalidQuantity = errors.New("quantity must be a finite number >= 0")

// PortfolioRepository maps ticker symbols to held quantity. Tickers are
// expected to be normalised by the caller.
type PortfolioRepository interface {
	// Buy adds quantity to ticker, creating the entry, and returns the new holding.
	Buy(ctx context.Context, ticker string, quantity float64) (float64, error)
	// Sell removes quantity from ticker, flooring at zero. Selling a ticker that
	// was never bought is a no-op reported by found == false.
	Sell(ctx context.Context, ticker string, quantity float64) (holding float64, found bool, err error)
	Get(ctx context.Context, ticker string) (float64, bool, error)
	All(ctx context.Context) (map[string]float64, error)
}

func validateQuantity(quantity float64) error {
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity < 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidQuantity, quantity)
	}
	return nil
}

// floorSell is the holding left after selling quantity out of held.
func floorSell(held, quantity float64) float64 {
	return math.Max(0, held-quantity)
}
