package bigbets

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	classifierIterations = 2000
	classifierLearnRate  = 0.1
	classifierL2         = 0.01
)

// logisticModel is an L2-regularized logistic regression fit by batch
// gradient descent on standardized features. Zero initialization plus a
// fixed iteration count makes the fit deterministic for a given table.
type logisticModel struct {
	means   []float64
	stds    []float64
	weights []float64
	bias    float64
}

func fitLogistic(features [][]float64, labels []float64) *logisticModel {
	rows := len(features)
	if rows == 0 {
		return nil
	}
	dim := len(features[0])

	m := &logisticModel{
		means:   make([]float64, dim),
		stds:    make([]float64, dim),
		weights: make([]float64, dim),
	}

	col := make([]float64, rows)
	for j := 0; j < dim; j++ {
		for i := range features {
			col[i] = features[i][j]
		}
		m.means[j] = stat.Mean(col, nil)
		m.stds[j] = stat.StdDev(col, nil)
		if m.stds[j] == 0 || math.IsNaN(m.stds[j]) {
			m.stds[j] = 1
		}
	}

	scaled := make([][]float64, rows)
	for i := range features {
		scaled[i] = m.standardize(features[i])
	}

	grad := make([]float64, dim)
	for iter := 0; iter < classifierIterations; iter++ {
		for j := range grad {
			grad[j] = classifierL2 * m.weights[j]
		}
		var gradBias float64

		for i := range scaled {
			err := sigmoid(floats.Dot(m.weights, scaled[i])+m.bias) - labels[i]
			for j := range grad {
				grad[j] += err * scaled[i][j] / float64(rows)
			}
			gradBias += err / float64(rows)
		}

		for j := range m.weights {
			m.weights[j] -= classifierLearnRate * grad[j]
		}
		m.bias -= classifierLearnRate * gradBias
	}
	return m
}

func (m *logisticModel) standardize(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - m.means[j]) / m.stds[j]
	}
	return out
}

func (m *logisticModel) prob(x []float64) float64 {
	return sigmoid(floats.Dot(m.weights, m.standardize(x)) + m.bias)
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
