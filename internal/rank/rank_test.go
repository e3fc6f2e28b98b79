package rank

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"equityscan/config"
	"equityscan/internal/dto"
)

func defaultWeights() config.ScoreWeights {
	return config.ScoreWeights{
		Technical:   0.4,
		Fundamental: 0.4,
		Sentiment:   0.2,
		Forecast:    0.2,
	}
}

func TestPreScore(t *testing.T) {
	r := NewRanker(defaultWeights())

	// 0.4*0.8 + 0.4*0.6 + 0.2*0.5 = 0.66
	assert.InDelta(t, 0.66, r.PreScore(0.8, 0.6, 0.5), 1e-9)
}

func TestFinalizeBoostsAndCaps(t *testing.T) {
	r := NewRanker(defaultWeights())

	results := []*dto.ScoredStock{
		{Ticker: "AAA", PreScore: 0.66},
		{Ticker: "BBB", PreScore: 0.40},
	}

	r.Finalize(results, map[string]float64{"AAA": 1.0})

	// 0.66 + 0.2*1.0 = 0.86, boosted to min(0.99, 0.86*1.2)
	assert.InDelta(t, 0.99, results[0].FinalScore, 1e-9)
	assert.Equal(t, "AAA", results[0].Ticker)

	// not refined: final stays at pre, no boost even though unrefined
	assert.InDelta(t, 0.40, results[1].FinalScore, 1e-9)
}

func TestFinalizeBoostBelowCap(t *testing.T) {
	r := NewRanker(defaultWeights())

	results := []*dto.ScoredStock{{Ticker: "AAA", PreScore: 0.45}}
	r.Finalize(results, map[string]float64{"AAA": 0.5})

	// 0.45 + 0.1 = 0.55 > 0.5, boosted to 0.66
	assert.InDelta(t, 0.66, results[0].FinalScore, 1e-9)
}

func TestFinalizeNoBoostAtOrBelowThreshold(t *testing.T) {
	r := NewRanker(defaultWeights())

	results := []*dto.ScoredStock{{Ticker: "AAA", PreScore: 0.30}}
	r.Finalize(results, map[string]float64{"AAA": 1.0})

	// 0.30 + 0.2 = 0.50, not strictly above the threshold
	assert.InDelta(t, 0.50, results[0].FinalScore, 1e-9)
}

func TestFinalizeStableSortOnTies(t *testing.T) {
	r := NewRanker(defaultWeights())

	results := []*dto.ScoredStock{
		{Ticker: "AAA", PreScore: 0.30},
		{Ticker: "BBB", PreScore: 0.30},
		{Ticker: "CCC", PreScore: 0.30},
	}
	r.Finalize(results, nil)

	assert.Equal(t, "AAA", results[0].Ticker)
	assert.Equal(t, "BBB", results[1].Ticker)
	assert.Equal(t, "CCC", results[2].Ticker)
}

func TestTopCandidates(t *testing.T) {
	r := NewRanker(defaultWeights())

	results := []*dto.ScoredStock{
		{Ticker: "LOW", PreScore: 0.2},
		{Ticker: "HIGH", PreScore: 0.9},
		{Ticker: "MID", PreScore: 0.5},
	}

	top := r.TopCandidates(results, 2)
	assert.Len(t, top, 2)
	assert.Equal(t, "HIGH", top[0].Ticker)
	assert.Equal(t, "MID", top[1].Ticker)

	all := r.TopCandidates(results, 10)
	assert.Len(t, all, 3)
}

func TestAllocateEqualSplit(t *testing.T) {
	r := NewRanker(defaultWeights())

	topN := []*dto.ScoredStock{
		{Ticker: "AAA", Close: 1200},
		{Ticker: "BBB", Close: 450},
		{Ticker: "ZER", Close: 0},
		{Ticker: "CCC", Close: 5000},
	}

	recs := r.Allocate(topN, 50000)
	assert.Len(t, recs, 4)

	var totalAlloc float64
	for _, rec := range recs {
		assert.Equal(t, 12500.0, rec.Allocation)
		assert.GreaterOrEqual(t, rec.Quantity, 0)
		totalAlloc += rec.Allocation
	}
	assert.InDelta(t, 50000, totalAlloc, 1e-9)

	assert.Equal(t, 10, recs[0].Quantity) // floor(12500/1200)
	assert.Equal(t, 27, recs[1].Quantity)
	assert.Equal(t, 0, recs[2].Quantity) // non-positive price
	assert.Equal(t, 2, recs[3].Quantity)
}

func TestAllocateWeightedConcentratesBudget(t *testing.T) {
	r := NewRanker(defaultWeights())

	topN := []*dto.ScoredStock{
		{Ticker: "STRONG", Close: 100, FinalScore: 0.99},
		{Ticker: "WEAK", Close: 100, FinalScore: 0.40},
	}

	recs := r.AllocateWeighted(topN, 50000)
	assert.Len(t, recs, 2)

	assert.Greater(t, recs[0].Allocation, recs[1].Allocation)
	// fifth power keeps the weak score at a small fraction
	assert.Less(t, recs[1].Allocation, 0.1*recs[0].Allocation)

	for _, rec := range recs {
		assert.Equal(t, 0.0, math.Mod(rec.Allocation, 10))
	}
}

func TestAllocateEmpty(t *testing.T) {
	r := NewRanker(defaultWeights())

	assert.Nil(t, r.Allocate(nil, 50000))
	assert.Nil(t, r.AllocateWeighted(nil, 50000))
}
