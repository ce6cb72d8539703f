package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisRepo(t *testing.T) (PortfolioRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisPortfolioRepository(client, "portfolio"), mr
}

func TestRedisPortfolio_BuyThenSellRestoresHolding(t *testing.T) {
	repo, _ := newRedisRepo(t)
	ctx := context.Background()

	held, err := repo.Buy(ctx, "NEM", 10)
	require.NoError(t, err)
	assert.Equal(t, 10.0, held)

	held, err = repo.Buy(ctx, "NEM", 4)
	require.NoError(t, err)
	assert.Equal(t, 14.0, held)

	held, found, err := repo.Sell(ctx, "NEM", 4)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 10.0, held)

	got, ok, err := repo.Get(ctx, "NEM")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 10.0, got)
}

func TestRedisPortfolio_OversellFloorsAtZero(t *testing.T) {
	repo, mr := newRedisRepo(t)
	ctx := context.Background()

	_, err := repo.Buy(ctx, "GOLD", 2.5)
	require.NoError(t, err)

	held, found, err := repo.Sell(ctx, "GOLD", 7)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 0.0, held)
	assert.Equal(t, "0", mr.HGet("portfolio", "GOLD"))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"GOLD": 0}, all)
}

func TestRedisPortfolio_SellUnknownTicker(t *testing.T) {
	repo, mr := newRedisRepo(t)
	ctx := context.Background()

	held, found, err := repo.Sell(ctx, "AEM", 3)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0.0, held)
	assert.False(t, mr.Exists("portfolio"), "selling an unknown ticker must not create it")

	_, ok, err := repo.Get(ctx, "AEM")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisPortfolio_RejectsInvalidQuantity(t *testing.T) {
	repo, _ := newRedisRepo(t)

	_, err := repo.Buy(context.Background(), "NEM", -1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, _, err = repo.Sell(context.Background(), "NEM", -1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}
