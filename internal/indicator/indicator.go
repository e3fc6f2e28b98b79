package indicator

import (
	"errors"

	"equityscan/internal/dto"
)

// ErrInsufficientHistory reports a series too short to support the long
// moving averages. It is an expected condition, not a failure.
var ErrInsufficientHistory = errors.New("insufficient price history for indicators")

const (
	MinHistory    = 50
	RSIWindow     = 14
	SMAShort      = 50
	SMALong       = 200
	MACDFastEMA   = 12
	MACDSlowEMA   = 26
	MACDSignalEMA = 9
)

// SMA computes a trailing simple moving average. The first window-1 slots
// are nil: the average is undefined there, which downstream scoring treats
// differently from zero.
func SMA(values []float64, window int) []*float64 {
	out := make([]*float64, len(values))
	if window <= 0 {
		return out
	}

	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			avg := sum / float64(window)
			out[i] = &avg
		}
	}
	return out
}

// EMA computes an exponential moving average seeded with the first value.
// The seeding matters: an SMA-warmed EMA follows a different trajectory and
// would shift the MACD histogram downstream.
func EMA(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	multiplier := 2.0 / float64(window+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = (values[i]-out[i-1])*multiplier + out[i-1]
	}
	return out
}

// RSI computes Wilder's relative strength index. Values stay at the neutral
// 50 through the warmup; a window with zero average loss pegs at exactly 100.
func RSI(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = 50
	}

	if len(values) <= window {
		return out
	}

	var gainSum, lossSum float64
	for i := 1; i <= window; i++ {
		delta := values[i] - values[i-1]
		if delta > 0 {
			gainSum += delta
		} else {
			lossSum += -delta
		}
	}

	avgGain := gainSum / float64(window)
	avgLoss := lossSum / float64(window)

	for i := window + 1; i < len(values); i++ {
		delta := values[i] - values[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else if delta < 0 {
			loss = -delta
		}

		avgGain = (avgGain*float64(window-1) + gain) / float64(window)
		avgLoss = (avgLoss*float64(window-1) + loss) / float64(window)

		if avgLoss == 0 {
			out[i] = 100
		} else {
			rs := avgGain / avgLoss
			out[i] = 100 - (100 / (1 + rs))
		}
	}
	return out
}

// MACDDiff computes the MACD histogram: EMA(12)-EMA(26) minus its EMA(9)
// signal line.
func MACDDiff(values []float64) []float64 {
	fast := EMA(values, MACDFastEMA)
	slow := EMA(values, MACDSlowEMA)

	macdLine := make([]float64, len(values))
	for i := range values {
		macdLine[i] = fast[i] - slow[i]
	}

	signal := EMA(macdLine, MACDSignalEMA)
	diff := make([]float64, len(values))
	for i := range values {
		diff[i] = macdLine[i] - signal[i]
	}
	return diff
}

// Enrich computes RSI, SMA_50, SMA_200 and the MACD histogram and attaches
// them to the series in place. These derived fields are append-only; they
// are never partially recomputed. Series shorter than MinHistory yield
// ErrInsufficientHistory and no partial indicators.
func Enrich(series dto.PriceSeries) error {
	if len(series) < MinHistory {
		return ErrInsufficientHistory
	}

	closes := series.Closes()

	sma50 := SMA(closes, SMAShort)
	sma200 := SMA(closes, SMALong)
	rsi := RSI(closes, RSIWindow)
	macd := MACDDiff(closes)

	for i := range series {
		series[i].RSI = rsi[i]
		series[i].SMA50 = sma50[i]
		series[i].SMA200 = sma200[i]
		series[i].MACDDiff = macd[i]
	}
	return nil
}
