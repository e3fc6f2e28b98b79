package analysis

import "equityscan/internal/dto"

// TechnicalScore grades the latest enriched point on a points/checks scheme
// and normalizes to [0,1]. Oversold RSI earns a double bullish bonus.
func TechnicalScore(series dto.PriceSeries) float64 {
	if len(series) == 0 {
		return 0
	}

	last := series[len(series)-1]
	score, checks := 0.0, 0.0

	switch {
	case last.RSI <= 30:
		score += 2
	case last.RSI > 40 && last.RSI < 70:
		score += 1
	}
	checks += 2

	if last.MACDDiff > 0 {
		score += 1
	}
	checks += 1

	// Golden cross
	if last.SMA50 != nil && last.SMA200 != nil && *last.SMA50 > *last.SMA200 {
		score += 1
	}
	checks += 1

	if last.Close > 0 && last.SMA200 != nil && last.Close > *last.SMA200 {
		score += 1
	}
	checks += 1

	return score / checks
}
