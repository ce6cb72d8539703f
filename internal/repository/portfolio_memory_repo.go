package repository

import (
	"context"
	"sync"
)

type memoryPortfolioRepository struct {
	mu        sync.RWMutex
	positions map[string]float64
}

func NewMemoryPortfolioRepository() PortfolioRepository {
	return &memoryPortfolioRepository{
		positions: make(map[string]float64),
	}
}

func (r *memoryPortfolioRepository) Buy(ctx context.Context, ticker string, quantity float64) (float64, error) {
	if err := validateQuantity(quantity); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.positions[ticker] += quantity
	return r.positions[ticker], nil
}

func (r *memoryPortfolioRepository) Sell(ctx context.Context, ticker string, quantity float64) (float64, bool, error) {
	if err := validateQuantity(quantity); err != nil {
		return 0, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	held, ok := r.positions[ticker]
	if !ok {
		return 0, false, nil
	}
	held = floorSell(held, quantity)
	r.positions[ticker] = held
	return held, true, nil
}

func (r *memoryPortfolioRepository) Get(ctx context.Context, ticker string) (float64, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	held, ok := r.positions[ticker]
	return held, ok, nil
}

func (r *memoryPortfolioRepository) All(ctx context.Context) (map[string]float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]float64, len(r.positions))
	for k, v := range r.positions {
		out[k] = v
	}
	return out, nil
}
