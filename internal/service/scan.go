package service

import (
	"context"

	"equityscan/config"
	"equityscan/internal/dto"
	"equityscan/internal/repository"
	"equityscan/internal/scan"
	"equityscan/pkg/logger"
	"equityscan/pkg/statestore"
)

// ScanService is the read/trigger surface over the daily pipeline.
type ScanService interface {
	Run(ctx context.Context, mode dto.ScanMode, limit int) (*scan.Result, error)
	GetState(ctx context.Context) (statestore.RunState, error)
	GetTopResults(ctx context.Context, runDate string, limit int) ([]*dto.ScoredStock, error)
}

type scanService struct {
	cfg       *config.Config
	log       *logger.Logger
	repo      *repository.Repository
	state     statestore.Store
	scheduler SchedulerService
}

func NewScanService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	state statestore.Store,
	scheduler SchedulerService,
) ScanService {
	return &scanService{
		cfg:       cfg,
		log:       log,
		repo:      repo,
		state:     state,
		scheduler: scheduler,
	}
}

func (s *scanService) Run(ctx context.Context, mode dto.ScanMode, limit int) (*scan.Result, error) {
	return s.scheduler.RunNow(ctx, mode, limit)
}

func (s *scanService) GetState(ctx context.Context) (statestore.RunState, error) {
	return s.state.Load()
}

// GetTopResults returns the highest-scoring rows for a run date. An empty
// runDate resolves to the most recent recorded run.
func (s *scanService) GetTopResults(ctx context.Context, runDate string, limit int) ([]*dto.ScoredStock, error) {
	if runDate == "" {
		state, err := s.state.Load()
		if err != nil {
			return nil, err
		}
		runDate = state.RunDate
	}
	if limit <= 0 {
		limit = s.cfg.Scan.TopN
	}

	rows, err := s.repo.ScanResultRepo.GetTopByFinalScore(ctx, runDate, limit)
	if err != nil {
		return nil, err
	}

	results := make([]*dto.ScoredStock, 0, len(rows))
	for _, row := range rows {
		results = append(results, scan.FromModel(row))
	}
	return results, nil
}
