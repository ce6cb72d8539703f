package repository

import (
	"context"
	"fmt"

	"signal-desk/config"
	"signal-desk/pkg/logger"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Repository struct {
	PortfolioRepo    PortfolioRepository
	TradeJournalRepo TradeJournalRepository
}

// Stores carries the optional storage clients; nil means not configured.
type Stores struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewRepository(ctx context.Context, cfg *config.Config, stores Stores, log *logger.Logger) (*Repository, error) {
	var portfolioRepo PortfolioRepository
	switch cfg.Portfolio.Backend {
	case config.BackendPostgres:
		if stores.DB == nil {
			return nil, fmt.Errorf("portfolio backend %q needs a database", cfg.Portfolio.Backend)
		}
		portfolioRepo = NewPostgresPortfolioRepository(stores.DB)
	case config.BackendRedis:
		if stores.Redis == nil {
			return nil, fmt.Errorf("portfolio backend %q needs redis", cfg.Portfolio.Backend)
		}
		portfolioRepo = NewRedisPortfolioRepository(stores.Redis, cfg.Redis.Key)
	default:
		portfolioRepo = NewMemoryPortfolioRepository()
	}

	var journalRepo TradeJournalRepository
	switch cfg.Journal.Backend {
	case config.BackendPostgres:
		if stores.DB == nil {
			return nil, fmt.Errorf("journal backend %q needs a database", cfg.Journal.Backend)
		}
		journalRepo = NewPostgresTradeJournal(stores.DB)
	case config.BackendSheets:
		sheetsJournal, err := NewSheetsTradeJournal(ctx, cfg.Journal.Sheets)
		if err != nil {
			return nil, err
		}
		journalRepo = sheetsJournal
	default:
		journalRepo = NewNoopTradeJournal()
	}

	log.Info("Repositories ready",
		logger.StringField("portfolio_backend", cfg.Portfolio.Backend),
		logger.StringField("journal_backend", cfg.Journal.Backend),
	)

	return &Repository{
		PortfolioRepo:    portfolioRepo,
		TradeJournalRepo: journalRepo,
	}, nil
}
