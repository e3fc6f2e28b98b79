package repository

import (
	"gorm.io/gorm"

	"equityscan/config"
	"equityscan/pkg/cache"
	"equityscan/pkg/logger"
)

type Repository struct {
	MarketDataRepo       MarketDataRepository
	FundamentalsRepo     FundamentalsRepository
	NewsRepo             NewsRepository
	UniverseRepo         UniverseRepository
	ScanResultRepo       ScanResultRepository
	PortfolioHistoryRepo PortfolioHistoryRepository
}

func NewRepository(cfg *config.Config, db *gorm.DB, log *logger.Logger, c cache.Cache) *Repository {
	return &Repository{
		MarketDataRepo:       NewMarketDataRepository(cfg, log, c),
		FundamentalsRepo:     NewFundamentalsRepository(cfg, log, c),
		NewsRepo:             NewNewsRepository(cfg, log, c),
		UniverseRepo:         NewUniverseRepository(cfg, log, c),
		ScanResultRepo:       NewScanResultRepository(db),
		PortfolioHistoryRepo: NewPortfolioHistoryRepository(db),
	}
}
