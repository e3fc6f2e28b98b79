package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func linearSeries(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func TestNewAppliesDefaults(t *testing.T) {
	f := New(0, 0)
	assert.Equal(t, DefaultLookback, f.lookback)
	assert.Equal(t, DefaultHorizon, f.horizon)
}

func TestScoreNeutralOnShortHistory(t *testing.T) {
	f := New(DefaultLookback, DefaultHorizon)

	assert.Equal(t, 0.5, f.Score(nil))
	assert.Equal(t, 0.5, f.Score(linearSeries(30, 100, 1)))
	// lookback+4 closes is one short of trainable
	assert.Equal(t, 0.5, f.Score(linearSeries(DefaultLookback+4, 100, 1)))
}

func TestTrainRequiresEnoughRows(t *testing.T) {
	f := New(20, 5)

	// 20+5 closes gives 5 training rows, below the minimum of 10
	assert.False(t, f.Train(linearSeries(25, 100, 1)))
	assert.True(t, f.Train(linearSeries(40, 100, 1)))
}

func TestPredictNextDaysLength(t *testing.T) {
	f := New(20, 5)
	closes := linearSeries(120, 100, 0.5)

	preds := f.PredictNextDays(closes, 5)
	assert.Len(t, preds, 5)
	for _, p := range preds {
		assert.False(t, math.IsNaN(p))
		assert.False(t, math.IsInf(p, 0))
	}
}

func TestScoreDeterministic(t *testing.T) {
	closes := linearSeries(120, 100, 0.5)

	a := New(20, 5).Score(closes)
	b := New(20, 5).Score(closes)
	assert.Equal(t, a, b)
}

func TestScoreBullishOnStrongUptrend(t *testing.T) {
	// A steep, perfectly linear ramp extrapolates upward: the mean of the
	// 5-day continuation clears the 2 percent threshold.
	closes := linearSeries(120, 10, 5)

	score := New(20, 5).Score(closes)
	assert.Equal(t, 1.0, score)
}

func TestScoreBearishOnDowntrend(t *testing.T) {
	closes := linearSeries(120, 400, -2)

	score := New(20, 5).Score(closes)
	assert.Equal(t, 0.0, score)
}

func TestScoreHonorsHorizon(t *testing.T) {
	// On the same ramp a one-day horizon extrapolates a mean of roughly
	// close+step, short of the 2 percent threshold, while five days clear it.
	closes := linearSeries(120, 10, 5)

	assert.Equal(t, 1.0, New(20, 5).Score(closes))
	assert.Equal(t, 0.5, New(20, 1).Score(closes))
}
