package repository

import (
	"context"

	"gorm.io/gorm"

	"equityscan/internal/model"
)

type PortfolioHistoryRepository interface {
	AppendBatch(ctx context.Context, entries []model.PortfolioHistory) error
	GetLatestDate(ctx context.Context, before string) (string, error)
	GetByDate(ctx context.Context, date string) ([]model.PortfolioHistory, error)
	GetHeldSet(ctx context.Context, date string) (map[string]model.PortfolioHistory, error)
}

type portfolioHistoryRepository struct {
	db *gorm.DB
}

func NewPortfolioHistoryRepository(db *gorm.DB) PortfolioHistoryRepository {
	return &portfolioHistoryRepository{db: db}
}

// AppendBatch writes one day's classifications. The ledger is append-only;
// past dates are never rewritten.
func (p *portfolioHistoryRepository) AppendBatch(ctx context.Context, entries []model.PortfolioHistory) error {
	if len(entries) == 0 {
		return nil
	}
	return p.db.WithContext(ctx).CreateInBatches(entries, 100).Error
}

// GetLatestDate returns the most recent ledger date strictly before the
// given one, or empty when the ledger has no prior entries.
func (p *portfolioHistoryRepository) GetLatestDate(ctx context.Context, before string) (string, error) {
	var date *string
	err := p.db.WithContext(ctx).
		Model(&model.PortfolioHistory{}).
		Select("MAX(date)").
		Where("date < ?", before).
		Scan(&date).Error
	if err != nil || date == nil {
		return "", err
	}
	return *date, nil
}

func (p *portfolioHistoryRepository) GetByDate(ctx context.Context, date string) ([]model.PortfolioHistory, error) {
	var entries []model.PortfolioHistory
	err := p.db.WithContext(ctx).
		Where("date = ?", date).
		Order("rank ASC").
		Find(&entries).Error
	return entries, err
}

// GetHeldSet returns the HOLD entries for a date keyed by ticker.
func (p *portfolioHistoryRepository) GetHeldSet(ctx context.Context, date string) (map[string]model.PortfolioHistory, error) {
	var entries []model.PortfolioHistory
	err := p.db.WithContext(ctx).
		Where("date = ? AND action = ?", date, "HOLD").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	held := make(map[string]model.PortfolioHistory, len(entries))
	for _, e := range entries {
		held[e.Ticker] = e
	}
	return held, nil
}
