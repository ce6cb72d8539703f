package model

import (
	"time"

	"gorm.io/datatypes"
)

type TradeLog struct {
	ID        string         `gorm:"primaryKey;type:uuid" json:"id"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	Ticker    string         `gorm:"type:varchar(32);not null;index" json:"ticker"`
	Side      string         `gorm:"type:varchar(8);not null" json:"side"`
	Quantity  float64        `gorm:"not null" json:"quantity"`
	Meta      datatypes.JSON `gorm:"type:jsonb" json:"meta,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (TradeLog) TableName() string {
	return "trade_logs"
}
