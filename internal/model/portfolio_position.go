package model

import "time"

type PortfolioPosition struct {
	Ticker    string    `gorm:"primaryKey;type:varchar(32)" json:"ticker"`
	Quantity  float64   `gorm:"not null;default:0" json:"quantity"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PortfolioPosition) TableName() string {
	return "portfolio_positions"
}
