package rank

import (
	"math"
	"sort"

	"equityscan/config"
	"equityscan/internal/dto"
)

const (
	boostThreshold = 0.5
	boostFactor    = 1.2
	boostCap       = 0.99
)

type Ranker interface {
	PreScore(techScore, fundScore, sentScore float64) float64
	Finalize(results []*dto.ScoredStock, forecastScores map[string]float64)
	TopCandidates(results []*dto.ScoredStock, k int) []*dto.ScoredStock
	Allocate(topN []*dto.ScoredStock, budget float64) []*dto.Recommendation
	AllocateWeighted(topN []*dto.ScoredStock, budget float64) []*dto.Recommendation
}

type ranker struct {
	weights config.ScoreWeights
}

func NewRanker(weights config.ScoreWeights) Ranker {
	return &ranker{weights: weights}
}

// PreScore is the cheap composite used to shortlist candidates before the
// expensive forecasting pass.
func (r *ranker) PreScore(techScore, fundScore, sentScore float64) float64 {
	return r.weights.Technical*techScore +
		r.weights.Fundamental*fundScore +
		r.weights.Sentiment*sentScore
}

// TopCandidates returns the k highest pre-scores. The input is sorted in
// place, stable so that ties keep their original order.
func (r *ranker) TopCandidates(results []*dto.ScoredStock, k int) []*dto.ScoredStock {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].PreScore > results[j].PreScore
	})
	if k > len(results) {
		k = len(results)
	}
	return results[:k]
}

// Finalize attaches forecast scores to the refined candidates and computes
// every final score. Entities without a forecast keep final = pre, unboosted:
// they were not penalized, just not refined. Candidates above the boost
// threshold get the capped 1.2x multiplicative separation. Results end sorted
// descending by final score; the sort is stable for reproducible tie order.
func (r *ranker) Finalize(results []*dto.ScoredStock, forecastScores map[string]float64) {
	for _, s := range results {
		fc, refined := forecastScores[s.Ticker]
		if !refined {
			s.FinalScore = s.PreScore
			continue
		}

		s.ForecastScore = fc
		final := s.PreScore + r.weights.Forecast*fc
		if final > boostThreshold {
			final = math.Min(boostCap, final*boostFactor)
		}
		s.FinalScore = final
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})
}

// Allocate splits the budget equally across the top-N. Quantities are whole
// units; a non-positive price buys nothing.
func (r *ranker) Allocate(topN []*dto.ScoredStock, budget float64) []*dto.Recommendation {
	if len(topN) == 0 {
		return nil
	}

	perStock := budget / float64(len(topN))
	recs := make([]*dto.Recommendation, 0, len(topN))
	for _, s := range topN {
		rec := &dto.Recommendation{
			ScoredStock: *s,
			Allocation:  perStock,
		}
		if s.Close > 0 {
			rec.Quantity = int(perStock / s.Close)
		}
		recs = append(recs, rec)
	}
	return recs
}

// AllocateWeighted splits the budget proportionally to final_score^5,
// normalized and rounded to the nearest 10. The fifth power concentrates
// the budget aggressively on the strongest scores.
func (r *ranker) AllocateWeighted(topN []*dto.ScoredStock, budget float64) []*dto.Recommendation {
	if len(topN) == 0 {
		return nil
	}

	weights := make([]float64, len(topN))
	var total float64
	for i, s := range topN {
		weights[i] = math.Pow(s.FinalScore, 5)
		total += weights[i]
	}

	recs := make([]*dto.Recommendation, 0, len(topN))
	for i, s := range topN {
		var alloc float64
		if total > 0 {
			alloc = math.Round(budget*weights[i]/total/10) * 10
		} else {
			alloc = math.Round(budget/float64(len(topN))/10) * 10
		}

		rec := &dto.Recommendation{
			ScoredStock: *s,
			Allocation:  alloc,
		}
		if s.Close > 0 {
			rec.Quantity = int(alloc / s.Close)
		}
		recs = append(recs, rec)
	}
	return recs
}
