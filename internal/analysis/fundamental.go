package analysis

import (
	"fmt"
	"math"
	"strings"

	"equityscan/internal/dto"
)

// GrahamNumber estimates an intrinsic value anchor from earnings and book
// value. Valid only when both are positive; 0 means "no opinion" and is
// excluded from the valuation check.
func GrahamNumber(f dto.FundamentalsSnapshot) float64 {
	eps, epsOK := f.Float(dto.KeyTrailingEps)
	bvps, bvOK := f.Float(dto.KeyBookValue)

	if epsOK && bvOK && eps > 0 && bvps > 0 {
		return math.Sqrt(22.5 * eps * bvps)
	}
	return 0
}

// QualityScore is a Piotroski-style financial strength tally: five binary
// checks rescaled onto the familiar 0-9 range.
func QualityScore(f dto.FundamentalsSnapshot) int {
	tally := 0

	if roa, ok := f.Float(dto.KeyReturnOnAssets); ok && roa > 0 {
		tally++
	}
	if ocf, ok := f.Float(dto.KeyOperatingCashflow); ok && ocf > 0 {
		tally++
	}
	// Revenue per share stands in for asset turnover.
	if rps, ok := f.Float(dto.KeyRevenuePerShare); ok && rps > 0 {
		tally++
	}
	if cr, ok := f.Float(dto.KeyCurrentRatio); ok && cr > 1 {
		tally++
	}
	if de, ok := f.Float(dto.KeyDebtToEquity); ok && de != 0 && de < 1 {
		tally++
	}

	return int(float64(tally) / 5 * 9)
}

// FundamentalScore combines valuation, quality and ratio checks into a
// weighted points/checks score in [0,1]. Missing optional metrics skip their
// check entirely rather than counting against the entity; a missing P/E with
// negative trailing earnings still adds an unscored check as a penalty.
func FundamentalScore(f dto.FundamentalsSnapshot) float64 {
	if f.IsEmpty() {
		return 0
	}

	score, checks := 0.0, 0.0

	graham := GrahamNumber(f)
	price := f.CurrentPrice()
	if graham > 0 && price > 0 && price < graham {
		score += 2
	}
	checks += 2

	fScore := QualityScore(f)
	if fScore >= 7 {
		score += 2
	} else if fScore >= 5 {
		score += 1
	}
	checks += 2

	if pe, ok := f.Float(dto.KeyTrailingPE); ok && pe != 0 {
		if pe > 0 && pe < 40 {
			score += 1
		}
		checks += 1
	} else if f.FloatDefault(dto.KeyTrailingEps, 0) < 0 {
		checks += 1
	}

	if peg, ok := f.Float(dto.KeyPegRatio); ok {
		if peg > 0 && peg < 2.0 {
			score += 1
		}
		checks += 1
	}

	if roe, ok := f.Float(dto.KeyReturnOnEquity); ok && roe != 0 {
		if roe > 0.10 {
			score += 1
		}
		checks += 1
	}

	// Provider reports debt/equity in percentage units here.
	if de, ok := f.Float(dto.KeyDebtToEquity); ok {
		if de < 100 {
			score += 1
		}
		checks += 1
	}

	if checks == 0 {
		return 0
	}
	return score / checks
}

// MarginOfSafety is the percentage gap between the intrinsic value estimate
// and the current price; 0 when no estimate exists.
func MarginOfSafety(f dto.FundamentalsSnapshot, price float64) float64 {
	graham := GrahamNumber(f)
	if graham <= 0 || price <= 0 {
		return 0
	}
	return (graham - price) / price * 100
}

// InvestmentThesis builds the deterministic reason narrative: an ordered
// list of triggered signals joined into prose, with a fixed neutral sentence
// when nothing triggers.
func InvestmentThesis(techScore, sentScore, close float64, f dto.FundamentalsSnapshot) string {
	var reasons []string

	if techScore > 0.7 {
		reasons = append(reasons, "Strong technical uptrend (RSI/MACD bullish)")
	}

	graham := GrahamNumber(f)
	if graham > close && close > 0 {
		upside := (graham - close) / close * 100
		reasons = append(reasons, fmt.Sprintf("Undervalued by ~%d%% (Graham)", int(upside)))
	}

	if fScore := QualityScore(f); fScore >= 7 {
		reasons = append(reasons, fmt.Sprintf("High Financial Strength (F-Score %d/9)", fScore))
	}

	if sentScore > 0.6 {
		reasons = append(reasons, "Positive Market Sentiment")
	}

	if len(reasons) == 0 {
		return "Balanced moderate growth candidate."
	}
	return strings.Join(reasons, ". ") + "."
}

// ApplyValuationPrefix prepends the deep under/over-valuation callout when
// the margin of safety is extreme.
func ApplyValuationPrefix(reason string, marginOfSafety float64) string {
	switch {
	case marginOfSafety > 30:
		return fmt.Sprintf("Undervalued by %.0f%% vs intrinsic value. %s", marginOfSafety, reason)
	case marginOfSafety < -20:
		return fmt.Sprintf("Overvalued by %.0f%%. %s", math.Abs(marginOfSafety), reason)
	default:
		return reason
	}
}
