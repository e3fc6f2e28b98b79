package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"equityscan/internal/model"
)

type ScanResultRepository interface {
	Upsert(ctx context.Context, results []model.ScanResult) error
	GetByRunDate(ctx context.Context, param model.GetScanResultParam) ([]model.ScanResult, error)
	GetScannedTickers(ctx context.Context, runDate string) (map[string]bool, error)
	GetTopByFinalScore(ctx context.Context, runDate string, limit int) ([]model.ScanResult, error)
}

type scanResultRepository struct {
	db *gorm.DB
}

func NewScanResultRepository(db *gorm.DB) ScanResultRepository {
	return &scanResultRepository{db: db}
}

// Upsert writes a batch of per-entity results. Re-running a scan for the
// same date overwrites in place, which is what makes restarts idempotent.
func (s *scanResultRepository) Upsert(ctx context.Context, results []model.ScanResult) error {
	if len(results) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "run_date"}, {Name: "ticker"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "sector", "close", "tech_score", "fund_score", "sent_score",
			"forecast_score", "pre_score", "final_score", "intrinsic_value",
			"margin_of_safety", "reason", "fundamentals", "updated_at",
		}),
	}).CreateInBatches(results, 100).Error
}

func (s *scanResultRepository) GetByRunDate(ctx context.Context, param model.GetScanResultParam) ([]model.ScanResult, error) {
	query := s.db.WithContext(ctx).Where("run_date = ?", param.RunDate)
	if len(param.Tickers) > 0 {
		query = query.Where("ticker IN ?", param.Tickers)
	}
	if param.Limit != nil {
		query = query.Limit(*param.Limit)
	}

	var results []model.ScanResult
	err := query.Order("final_score DESC, id ASC").Find(&results).Error
	return results, err
}

// GetScannedTickers returns the set of tickers already persisted for a run
// date, used to skip work on restart.
func (s *scanResultRepository) GetScannedTickers(ctx context.Context, runDate string) (map[string]bool, error) {
	var tickers []string
	err := s.db.WithContext(ctx).
		Model(&model.ScanResult{}).
		Where("run_date = ?", runDate).
		Pluck("ticker", &tickers).Error
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		set[t] = true
	}
	return set, nil
}

func (s *scanResultRepository) GetTopByFinalScore(ctx context.Context, runDate string, limit int) ([]model.ScanResult, error) {
	var results []model.ScanResult
	err := s.db.WithContext(ctx).
		Where("run_date = ?", runDate).
		Order("final_score DESC, id ASC").
		Limit(limit).
		Find(&results).Error
	return results, err
}
