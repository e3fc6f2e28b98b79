package model

import (
	"time"

	"gorm.io/datatypes"
)

type ScanResult struct {
	ID             uint           `gorm:"primaryKey"`
	RunDate        string         `gorm:"type:varchar(10);not null;uniqueIndex:idx_scan_results_run_date_ticker"`
	Ticker         string         `gorm:"type:varchar(32);not null;uniqueIndex:idx_scan_results_run_date_ticker"`
	Name           string         `gorm:"type:varchar(255)"`
	Sector         string         `gorm:"type:varchar(128)"`
	Close          float64        `gorm:"type:numeric"`
	TechScore      float64        `gorm:"type:numeric"`
	FundScore      float64        `gorm:"type:numeric"`
	SentScore      float64        `gorm:"type:numeric"`
	ForecastScore  float64        `gorm:"type:numeric"`
	PreScore       float64        `gorm:"type:numeric"`
	FinalScore     float64        `gorm:"type:numeric"`
	IntrinsicValue float64        `gorm:"type:numeric"`
	MarginOfSafety float64        `gorm:"type:numeric"`
	Reason         string         `gorm:"type:text"`
	Fundamentals   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
}

func (ScanResult) TableName() string {
	return "scan_results"
}

type GetScanResultParam struct {
	RunDate string   `json:"run_date"`
	Tickers []string `json:"tickers"`
	Limit   *int     `json:"limit"`
}
