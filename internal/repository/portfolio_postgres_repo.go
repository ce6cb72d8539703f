package repository

import (
	"context"
	"errors"
	"fmt"

	"signal-desk/internal/model"
	"signal-desk/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type postgresPortfolioRepository struct {
	db *gorm.DB
}

func byTicker(ticker string) utils.DBOption {
	return utils.WithWhere("ticker = ?", ticker)
}

func NewPostgresPortfolioRepository(db *gorm.DB) PortfolioRepository {
	return &postgresPortfolioRepository{db: db}
}

// upsertPosition inserts the position or adds quantity to the stored one.
func upsertPosition(tx *gorm.DB, ticker string, quantity float64) *gorm.DB {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "ticker"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("portfolio_positions.quantity + EXCLUDED.quantity"),
			"updated_at": utils.TimeNowUTC(),
		}),
	}).Create(&model.PortfolioPosition{Ticker: ticker, Quantity: quantity})
}

func lockPosition(tx *gorm.DB, ticker string, position *model.PortfolioPosition) *gorm.DB {
	return utils.ApplyOptions(tx, utils.WithForUpdate(), byTicker(ticker)).First(position)
}

func updateQuantity(tx *gorm.DB, position *model.PortfolioPosition, quantity float64) *gorm.DB {
	return tx.Model(position).Update("quantity", quantity)
}

func (r *postgresPortfolioRepository) Buy(ctx context.Context, ticker string, quantity float64) (float64, error) {
	if err := validateQuantity(quantity); err != nil {
		return 0, err
	}

	var position model.PortfolioPosition
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertPosition(tx, ticker, quantity).Error; err != nil {
			return fmt.Errorf("failed to upsert position: %w", err)
		}
		return utils.ApplyOptions(tx, byTicker(ticker)).First(&position).Error
	})
	if err != nil {
		return 0, err
	}
	return position.Quantity, nil
}

func (r *postgresPortfolioRepository) Sell(ctx context.Context, ticker string, quantity float64) (float64, bool, error) {
	if err := validateQuantity(quantity); err != nil {
		return 0, false, err
	}

	var (
		held  float64
		found bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var position model.PortfolioPosition
		err := lockPosition(tx, ticker, &position).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to lock position: %w", err)
		}

		found = true
		held = floorSell(position.Quantity, quantity)
		return updateQuantity(tx, &position, held).Error
	})
	if err != nil {
		return 0, false, err
	}
	return held, found, nil
}

func (r *postgresPortfolioRepository) Get(ctx context.Context, ticker string) (float64, bool, error) {
	var position model.PortfolioPosition
	err := utils.ApplyOptions(r.db.WithContext(ctx), byTicker(ticker)).First(&position).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return position.Quantity, true, nil
}

func (r *postgresPortfolioRepository) All(ctx context.Context) (map[string]float64, error) {
	var positions []model.PortfolioPosition
	if err := utils.ApplyOptions(r.db.WithContext(ctx), utils.WithOrder("ticker")).Find(&positions).Error; err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(positions))
	for _, p := range positions {
		out[p.Ticker] = p.Quantity
	}
	return out, nil
}
