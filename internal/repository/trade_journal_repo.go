package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"signal-desk/internal/dto"
	"signal-desk/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TradeJournalRepository appends one row per executed trade.
type TradeJournalRepository interface {
	Append(ctx context.Context, entry dto.TradeEntry) error
}

type noopTradeJournal struct{}

func NewNoopTradeJournal() TradeJournalRepository {
	return noopTradeJournal{}
}

func (noopTradeJournal) Append(ctx context.Context, entry dto.TradeEntry) error {
	return nil
}

type postgresTradeJournal struct {
	db *gorm.DB
}

func NewPostgresTradeJournal(db *gorm.DB) TradeJournalRepository {
	return &postgresTradeJournal{db: db}
}

func (r *postgresTradeJournal) Append(ctx context.Context, entry dto.TradeEntry) error {
	var meta datatypes.JSON
	if len(entry.Meta) > 0 {
		raw, err := json.Marshal(entry.Meta)
		if err != nil {
			return fmt.Errorf("failed to marshal trade meta: %w", err)
		}
		meta = datatypes.JSON(raw)
	}

	row := model.TradeLog{
		ID:        entry.ID,
		Timestamp: entry.Timestamp,
		Ticker:    entry.Ticker,
		Side:      entry.Side,
		Quantity:  entry.Quantity,
		Meta:      meta,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert trade log: %w", err)
	}
	return nil
}
