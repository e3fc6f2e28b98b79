package model

import "time"

type PortfolioHistory struct {
	ID        uint      `gorm:"primaryKey"`
	Date      string    `gorm:"type:varchar(10);not null;index:idx_portfolio_histories_date"`
	Ticker    string    `gorm:"type:varchar(32);not null"`
	Name      string    `gorm:"type:varchar(255)"`
	Action    string    `gorm:"type:varchar(16);not null"`
	Rank      int       `gorm:"type:int"`
	Price     float64   `gorm:"type:numeric"`
	Score     float64   `gorm:"type:numeric"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (PortfolioHistory) TableName() string {
	return "portfolio_histories"
}
