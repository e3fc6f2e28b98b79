package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"equityscan/internal/dto"
)

func fp(v float64) *float64 { return &v }

func TestTechnicalScore(t *testing.T) {
	tests := []struct {
		name     string
		last     dto.PricePoint
		expected float64
	}{
		{
			name:     "all bullish",
			last:     dto.PricePoint{Close: 110, RSI: 55, MACDDiff: 1.2, SMA50: fp(105), SMA200: fp(100)},
			expected: 4.0 / 5.0,
		},
		{
			name:     "oversold rsi earns double",
			last:     dto.PricePoint{Close: 90, RSI: 25, MACDDiff: -0.5, SMA50: fp(95), SMA200: fp(100)},
			expected: 2.0 / 5.0,
		},
		{
			name:     "overbought rsi earns nothing",
			last:     dto.PricePoint{Close: 110, RSI: 75, MACDDiff: 1.0, SMA50: fp(105), SMA200: fp(100)},
			expected: 3.0 / 5.0,
		},
		{
			name:     "missing moving averages skip only their points",
			last:     dto.PricePoint{Close: 110, RSI: 55, MACDDiff: 1.0},
			expected: 2.0 / 5.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := dto.PriceSeries{tt.last}
			assert.InDelta(t, tt.expected, TechnicalScore(series), 1e-9)
		})
	}
}

func TestTechnicalScoreEmptySeries(t *testing.T) {
	assert.Equal(t, 0.0, TechnicalScore(nil))
}

func TestGrahamNumber(t *testing.T) {
	f := dto.FundamentalsSnapshot{
		dto.KeyTrailingEps: 10.0,
		dto.KeyBookValue:   40.0,
	}
	// sqrt(22.5 * 10 * 40) = sqrt(9000)
	assert.InDelta(t, 94.868, GrahamNumber(f), 0.001)

	assert.Equal(t, 0.0, GrahamNumber(dto.FundamentalsSnapshot{
		dto.KeyTrailingEps: -2.0,
		dto.KeyBookValue:   40.0,
	}))
	assert.Equal(t, 0.0, GrahamNumber(dto.FundamentalsSnapshot{}))
}

func TestQualityScore(t *testing.T) {
	full := dto.FundamentalsSnapshot{
		dto.KeyReturnOnAssets:    0.08,
		dto.KeyOperatingCashflow: 1_000_000.0,
		dto.KeyRevenuePerShare:   120.0,
		dto.KeyCurrentRatio:      1.8,
		dto.KeyDebtToEquity:      0.4,
	}
	assert.Equal(t, 9, QualityScore(full))

	three := dto.FundamentalsSnapshot{
		dto.KeyReturnOnAssets:    0.08,
		dto.KeyOperatingCashflow: 1_000_000.0,
		dto.KeyRevenuePerShare:   120.0,
		dto.KeyCurrentRatio:      0.9,
		dto.KeyDebtToEquity:      85.0,
	}
	// 3/5 of the checks rescales to int(5.4)
	assert.Equal(t, 5, QualityScore(three))

	assert.Equal(t, 0, QualityScore(dto.FundamentalsSnapshot{}))
}

func TestFundamentalScore(t *testing.T) {
	f := dto.FundamentalsSnapshot{
		dto.KeyTrailingEps:       10.0,
		dto.KeyBookValue:         40.0,
		dto.KeyCurrentPrice:      80.0, // below graham ~94.87
		dto.KeyTrailingPE:        18.0,
		dto.KeyPegRatio:          1.5,
		dto.KeyReturnOnEquity:    0.15,
		dto.KeyReturnOnAssets:    0.08,
		dto.KeyOperatingCashflow: 1_000_000.0,
		dto.KeyRevenuePerShare:   120.0,
		dto.KeyCurrentRatio:      1.8,
		dto.KeyDebtToEquity:      0.4,
	}
	// graham 2/2, f-score 9 -> 2/2, pe 1/1, peg 1/1, roe 1/1, d/e 1/1
	assert.InDelta(t, 1.0, FundamentalScore(f), 1e-9)

	assert.Equal(t, 0.0, FundamentalScore(dto.FundamentalsSnapshot{}))
}

func TestFundamentalScoreNegativeEarningsPenalty(t *testing.T) {
	f := dto.FundamentalsSnapshot{
		dto.KeyTrailingEps:  -5.0,
		dto.KeyCurrentPrice: 100.0,
	}
	// graham check 0/2, quality 0/2, missing P/E with negative earnings 0/1
	assert.InDelta(t, 0.0, FundamentalScore(f), 1e-9)
}

func TestFundamentalScorePartialMetrics(t *testing.T) {
	f := dto.FundamentalsSnapshot{
		dto.KeyCurrentPrice:   100.0,
		dto.KeyTrailingPE:     25.0,
		dto.KeyReturnOnEquity: 0.20,
	}
	// 0/2 graham, 0/2 quality, 1/1 pe, 1/1 roe = 2/6
	assert.InDelta(t, 2.0/6.0, FundamentalScore(f), 1e-9)
}

func TestMarginOfSafety(t *testing.T) {
	f := dto.FundamentalsSnapshot{
		dto.KeyTrailingEps: 10.0,
		dto.KeyBookValue:   40.0,
	}
	mos := MarginOfSafety(f, 80)
	assert.InDelta(t, 18.585, mos, 0.001)

	assert.Equal(t, 0.0, MarginOfSafety(dto.FundamentalsSnapshot{}, 80))
	assert.Equal(t, 0.0, MarginOfSafety(f, 0))
}

func TestInvestmentThesis(t *testing.T) {
	f := dto.FundamentalsSnapshot{
		dto.KeyTrailingEps:       10.0,
		dto.KeyBookValue:         40.0,
		dto.KeyReturnOnAssets:    0.08,
		dto.KeyOperatingCashflow: 1_000_000.0,
		dto.KeyRevenuePerShare:   120.0,
		dto.KeyCurrentRatio:      1.8,
		dto.KeyDebtToEquity:      0.4,
	}

	reason := InvestmentThesis(0.8, 0.7, 80, f)
	assert.Equal(t,
		"Strong technical uptrend (RSI/MACD bullish). Undervalued by ~18% (Graham). High Financial Strength (F-Score 9/9). Positive Market Sentiment.",
		reason)

	neutral := InvestmentThesis(0.5, 0.5, 80, dto.FundamentalsSnapshot{})
	assert.Equal(t, "Balanced moderate growth candidate.", neutral)
}

func TestApplyValuationPrefix(t *testing.T) {
	base := "Balanced moderate growth candidate."

	assert.Equal(t, base, ApplyValuationPrefix(base, 10))
	assert.Contains(t, ApplyValuationPrefix(base, 45), "Undervalued by 45%")
	assert.Contains(t, ApplyValuationPrefix(base, -30), "Overvalued by 30%")
}

func TestSentimentScore(t *testing.T) {
	scorer := NewSentimentScorer()

	assert.Equal(t, 0.5, scorer.Score(nil))
	assert.Equal(t, 0.5, scorer.Score([]string{}))

	positive := scorer.Score([]string{
		"Company posts record profit, stock surges on great results",
		"Analysts upgrade outlook after excellent quarter",
	})
	assert.Greater(t, positive, 0.5)

	negative := scorer.Score([]string{
		"Company collapses amid fraud scandal, investors lose everything",
	})
	assert.Less(t, negative, 0.5)
}
