package forecast

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultLookback = 60
	DefaultHorizon  = 5

	numBags      = 25
	ridgeLambda  = 1.0
	randomSeed   = 42
	minTrainRows = 10
)

// Forecaster is a bagged ridge-regression ensemble over autoregressive price
// windows. Bagging over bootstrap samples smooths the single-model variance;
// the fixed seed keeps every run reproducible for the same input series.
type Forecaster struct {
	lookback int
	horizon  int
	weights  []*mat.VecDense
}

func New(lookback, horizon int) *Forecaster {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	return &Forecaster{lookback: lookback, horizon: horizon}
}

// extractFeatures builds the feature vector for one window: the raw window
// for autoregression, the population standard deviation for volatility, and
// the first-to-last rate of change for momentum.
func (f *Forecaster) extractFeatures(window []float64) []float64 {
	feats := make([]float64, 0, len(window)+2)
	feats = append(feats, window...)
	feats = append(feats, stat.PopStdDev(window, nil))
	feats = append(feats, (window[len(window)-1]-window[0])/(window[0]+1e-9))
	return feats
}

// prepareData slides the lookback window over the series, pairing each
// window's features with the next close. Needs at least lookback+horizon
// closes.
func (f *Forecaster) prepareData(closes []float64) ([][]float64, []float64) {
	if len(closes) < f.lookback+f.horizon {
		return nil, nil
	}

	var features [][]float64
	var targets []float64
	for i := 0; i < len(closes)-f.lookback; i++ {
		window := closes[i : i+f.lookback]
		features = append(features, f.extractFeatures(window))
		targets = append(targets, closes[i+f.lookback])
	}
	return features, targets
}

// Train fits the ensemble. Returns false when the series cannot support a
// model, in which case predictions fall back to the neutral score.
func (f *Forecaster) Train(closes []float64) bool {
	features, targets := f.prepareData(closes)
	if features == nil || len(features) < minTrainRows {
		return false
	}

	rows := len(features)
	dim := len(features[0]) + 1 // intercept column

	rng := rand.New(rand.NewSource(randomSeed))
	f.weights = make([]*mat.VecDense, 0, numBags)

	for bag := 0; bag < numBags; bag++ {
		x := mat.NewDense(rows, dim, nil)
		y := mat.NewVecDense(rows, nil)
		for r := 0; r < rows; r++ {
			pick := rng.Intn(rows)
			x.Set(r, 0, 1)
			for c, v := range features[pick] {
				x.Set(r, c+1, v)
			}
			y.SetVec(r, targets[pick])
		}

		w, ok := solveRidge(x, y, ridgeLambda)
		if !ok {
			continue
		}
		f.weights = append(f.weights, w)
	}
	return len(f.weights) > 0
}

// solveRidge solves the regularized normal equations (XtX + lambda*I)w = Xty.
// The penalty keeps the system nonsingular; the raw window features are
// nearly collinear with the engineered ones.
func solveRidge(x *mat.Dense, y *mat.VecDense, lambda float64) (*mat.VecDense, bool) {
	_, dim := x.Dims()

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	for i := 0; i < dim; i++ {
		xtx.Set(i, i, xtx.At(i, i)+lambda)
	}

	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	var w mat.VecDense
	if err := w.SolveVec(&xtx, &xty); err != nil {
		return nil, false
	}
	return &w, true
}

func (f *Forecaster) predictOne(window []float64) float64 {
	feats := f.extractFeatures(window)

	var sum float64
	for _, w := range f.weights {
		pred := w.AtVec(0)
		for i, v := range feats {
			pred += w.AtVec(i+1) * v
		}
		sum += pred
	}
	return sum / float64(len(f.weights))
}

// PredictNextDays rolls the forecast forward recursively: each prediction is
// appended to the window and the features are recomputed before the next
// step. Returns nil when training is not possible.
func (f *Forecaster) PredictNextDays(closes []float64, days int) []float64 {
	if f.weights == nil {
		if !f.Train(closes) {
			return nil
		}
	}

	window := make([]float64, f.lookback)
	copy(window, closes[len(closes)-f.lookback:])

	preds := make([]float64, 0, days)
	for i := 0; i < days; i++ {
		pred := f.predictOne(window)
		preds = append(preds, pred)

		copy(window, window[1:])
		window[len(window)-1] = pred
	}
	return preds
}

// Score condenses a horizon-day forecast into a ternary signal: 1.0 when the
// mean prediction clears the current close by 2 percent, 0.0 when it sits
// below the close, 0.5 otherwise or whenever no forecast is possible.
func (f *Forecaster) Score(closes []float64) float64 {
	if len(closes) == 0 {
		return 0.5
	}

	current := closes[len(closes)-1]
	preds := f.PredictNextDays(closes, f.horizon)
	if len(preds) == 0 {
		return 0.5
	}

	avg := stat.Mean(preds, nil)
	switch {
	case avg > current*1.02:
		return 1.0
	case avg < current:
		return 0.0
	default:
		return 0.5
	}
}
