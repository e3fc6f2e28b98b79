package scan

import (
	"context"
	"sort"

	"equityscan/internal/dto"
	"equityscan/internal/model"
	"equityscan/internal/repository"
	"equityscan/pkg/logger"
)

// Tracker classifies day-over-day portfolio transitions and appends them to
// the ledger.
type Tracker interface {
	Update(ctx context.Context, runDate string, recs []*dto.Recommendation) ([]dto.PortfolioChange, error)
}

type tracker struct {
	repo repository.PortfolioHistoryRepository
	log  *logger.Logger
}

func NewTracker(repo repository.PortfolioHistoryRepository, log *logger.Logger) Tracker {
	return &tracker{repo: repo, log: log}
}

// Update compares today's top set against the most recent prior date's held
// set. An entity absent from the held set enters as NEW_ENTRY even if it
// appeared yesterday as a fresh entry; only a prior HOLD row counts as held.
// Dropouts reuse the last known price and name rather than refetching.
func (t *tracker) Update(ctx context.Context, runDate string, recs []*dto.Recommendation) ([]dto.PortfolioChange, error) {
	lastDate, err := t.repo.GetLatestDate(ctx, runDate)
	if err != nil {
		return nil, err
	}

	held := map[string]model.PortfolioHistory{}
	if lastDate != "" {
		held, err = t.repo.GetHeldSet(ctx, lastDate)
		if err != nil {
			return nil, err
		}
	}

	current := make(map[string]bool, len(recs))
	changes := make([]dto.PortfolioChange, 0, len(recs))
	for i, rec := range recs {
		current[rec.Ticker] = true

		action := dto.ActionHold
		if _, ok := held[rec.Ticker]; !ok {
			action = dto.ActionNewEntry
		}
		changes = append(changes, dto.PortfolioChange{
			Date:   runDate,
			Ticker: rec.Ticker,
			Name:   rec.Name,
			Action: action,
			Rank:   i + 1,
			Price:  rec.Close,
			Score:  rec.FinalScore,
		})
	}

	dropped := make([]string, 0, len(held))
	for ticker := range held {
		if !current[ticker] {
			dropped = append(dropped, ticker)
		}
	}
	sort.Strings(dropped)

	for _, ticker := range dropped {
		prev := held[ticker]
		changes = append(changes, dto.PortfolioChange{
			Date:   runDate,
			Ticker: ticker,
			Name:   prev.Name,
			Action: dto.ActionDropout,
			Rank:   -1,
			Price:  prev.Price,
			Score:  0,
		})
	}

	entries := make([]model.PortfolioHistory, 0, len(changes))
	for _, c := range changes {
		entries = append(entries, model.PortfolioHistory{
			Date:   c.Date,
			Ticker: c.Ticker,
			Name:   c.Name,
			Action: string(c.Action),
			Rank:   c.Rank,
			Price:  c.Price,
			Score:  c.Score,
		})
	}
	if err := t.repo.AppendBatch(ctx, entries); err != nil {
		return nil, err
	}
	return changes, nil
}
