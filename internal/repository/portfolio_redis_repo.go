package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// sellScript floors the hash field at zero atomically. It returns {found, holding}.
var sellScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], ARGV[1])
if not cur then
	return {0, '0'}
end
local n = tonumber(cur) - tonumber(ARGV[2])
if n < 0 then
	n = 0
end
local s = string.format('%.17g', n)
redis.call('HSET', KEYS[1], ARGV[1], s)
return {1, s}
`)

type redisPortfolioRepository struct {
	client *redis.Client
	key    string
}

func NewRedisPortfolioRepository(client *redis.Client, key string) PortfolioRepository {
	return &redisPortfolioRepository{client: client, key: key}
}

func (r *redisPortfolioRepository) Buy(ctx context.Context, ticker string, quantity float64) (float64, error) {
	if err := validateQuantity(quantity); err != nil {
		return 0, err
	}
	held, err := r.client.HIncrByFloat(ctx, r.key, ticker, quantity).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", ticker, err)
	}
	return held, nil
}

func (r *redisPortfolioRepository) Sell(ctx context.Context, ticker string, quantity float64) (float64, bool, error) {
	if err := validateQuantity(quantity); err != nil {
		return 0, false, err
	}
	res, err := sellScript.Run(ctx, r.client, []string{r.key}, ticker, strconv.FormatFloat(quantity, 'g', -1, 64)).Slice()
	if err != nil {
		return 0, false, fmt.Errorf("failed to decrement %s: %w", ticker, err)
	}
	if len(res) != 2 {
		return 0, false, fmt.Errorf("unexpected sell script reply %v", res)
	}

	found, _ := res[0].(int64)
	raw, _ := res[1].(string)
	held, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("failed to parse holding %q: %w", raw, err)
	}
	return held, found == 1, nil
}

func (r *redisPortfolioRepository) Get(ctx context.Context, ticker string) (float64, bool, error) {
	held, err := r.client.HGet(ctx, r.key, ticker).Float64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return held, true, nil
}

func (r *redisPortfolioRepository) All(ctx context.Context) (map[string]float64, error) {
	raw, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(raw))
	for ticker, v := range raw {
		held, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse holding of %s: %w", ticker, err)
		}
		out[ticker] = held
	}
	return out, nil
}
