package bigbets

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equityscan/config"
)

func testConfig() config.BigBets {
	return config.BigBets{
		MinTrainRows:      20,
		MinPositiveLabels: 2,
		DefaultAmount:     100000,
	}
}

func strongRow(name string) map[string]string {
	return map[string]string{
		"Name":              name,
		"CMP":               "500",
		"ROCE %":            "22",
		"ROE %":             "19",
		"OPM %":             "18",
		"FCF":               "120",
		"DebtEq":            "0.2",
		"IntCoverage":       "8",
		"PromoterHolding":   "62",
		"Chg in Prom 3Yr":   "1.5",
		"Sales Var 3Yrs %":  "14",
		"Profit Var 3Yrs %": "18",
		"Qtr Sales Var %":   "15",
		"Qtr Profit Var %":  "25",
		"200 DMA":           "450",
		"RSI":               "55",
	}
}

func weakRow(name string) map[string]string {
	r := strongRow(name)
	r["ROCE %"] = "5"
	r["ROE %"] = "4"
	r["OPM %"] = "6"
	r["FCF"] = "-10"
	r["DebtEq"] = "1.8"
	r["IntCoverage"] = "1"
	r["PromoterHolding"] = "30"
	r["Chg in Prom 3Yr"] = "-2"
	r["Sales Var 3Yrs %"] = "2"
	r["Profit Var 3Yrs %"] = "1"
	r["Qtr Sales Var %"] = "0"
	r["Qtr Profit Var %"] = "-5"
	r["200 DMA"] = "600"
	r["RSI"] = "80"
	return r
}

func TestCleanHeader(t *testing.T) {
	assert.Equal(t, "ROCE", CleanHeader("ROCE %"))
	assert.Equal(t, "Mar Cap RsCr", CleanHeader("Mar Cap Rs.Cr."))
	assert.Equal(t, "Qtr Profit Var", CleanHeader("Qtr  Profit Var %"))
}

func TestCanonicalizeHeaders(t *testing.T) {
	headers := []string{
		"Name", "CMP Rs.", "ROCE %", "DebtEq",
		"Qtr Profit Var %", "Sales Var 3Yrs %", "200 DMA", "Unrelated",
	}

	rename := CanonicalizeHeaders(headers)

	assert.Equal(t, "Name", rename["Name"])
	assert.Equal(t, "CMP", rename["CMP Rs."])
	assert.Equal(t, "ROCE", rename["ROCE %"])
	assert.Equal(t, "DebtToEquity", rename["DebtEq"])
	assert.Equal(t, "QtrProfitGrowth", rename["Qtr Profit Var %"])
	assert.Equal(t, "SalesGrowth3Y", rename["Sales Var 3Yrs %"])
	assert.Equal(t, "DMA_200", rename["200 DMA"])
	assert.Equal(t, "Unrelated", rename["Unrelated"])
}

func TestQualityAndROIScores(t *testing.T) {
	e := NewEngine(testConfig()).(*engine)

	scored, _ := e.preprocess([]map[string]string{strongRow("Acme Ltd")})
	require.Len(t, scored, 1)

	row := scored[0]
	assert.Equal(t, 11, qualityScore(row))
	// quality 11 + double earnings trigger + quarterly sales
	assert.Equal(t, 14, roiScore(row))

	weak, _ := e.preprocess([]map[string]string{weakRow("Weak Ltd")})
	assert.Equal(t, 0, qualityScore(weak[0]))
	assert.Equal(t, 0, roiScore(weak[0]))
}

func TestMissingColumnDefaults(t *testing.T) {
	e := NewEngine(testConfig()).(*engine)

	// Only a name: RSI defaults to the neutral 50 (one point) and the
	// promoter change check passes at zero.
	scored, present := e.preprocess([]map[string]string{{"Name": "Bare Ltd"}})
	require.Len(t, scored, 1)

	assert.Equal(t, 2, qualityScore(scored[0]))
	assert.Contains(t, missingCritical(present), "ROCE")
	assert.Contains(t, missingCritical(present), "QtrProfitGrowth")
}

func TestWinProbabilityNeedsMinimumSample(t *testing.T) {
	rows := []map[string]string{}
	for i := 0; i < 10; i++ {
		rows = append(rows, strongRow(fmt.Sprintf("Stock%02d", i)))
	}

	res, err := NewEngine(testConfig()).Run(rows, 100000)
	require.NoError(t, err)

	for _, c := range res.Candidates {
		assert.Equal(t, 0.0, c.WinProbability)
	}
}

func TestWinProbabilitySeparatesClasses(t *testing.T) {
	rows := []map[string]string{}
	for i := 0; i < 15; i++ {
		rows = append(rows, strongRow(fmt.Sprintf("Strong%02d", i)))
	}
	for i := 0; i < 15; i++ {
		rows = append(rows, weakRow(fmt.Sprintf("Weak%02d", i)))
	}

	res, err := NewEngine(testConfig()).Run(rows, 100000)
	require.NoError(t, err)
	require.NotEmpty(t, res.Candidates)

	// candidates are the strong rows; the classifier should be confident
	for _, c := range res.Candidates {
		assert.Greater(t, c.WinProbability, 0.7)
	}
}

func TestRunTopThreeAllocation(t *testing.T) {
	rows := []map[string]string{}
	for i := 0; i < 25; i++ {
		rows = append(rows, strongRow(fmt.Sprintf("Stock%02d", i)))
	}

	res, err := NewEngine(testConfig()).Run(rows, 200000)
	require.NoError(t, err)
	require.Len(t, res.Recommendations, 3)

	assert.Equal(t, 1, res.Recommendations[0].Rank)
	assert.Equal(t, 80000.0, res.Recommendations[0].Allocation)
	assert.Equal(t, 70000.0, res.Recommendations[1].Allocation)
	assert.Equal(t, 50000.0, res.Recommendations[2].Allocation)

	// ROI 14 shifts the band by (14-9)*3 = 15
	assert.Equal(t, "27-33%", res.Recommendations[0].ExpectedReturn)
	assert.Contains(t, res.Recommendations[0].Reason, "Earnings Breakout")
	assert.Contains(t, res.Recommendations[0].Reason, "Momentum")
}

func TestRunFallbackCandidates(t *testing.T) {
	rows := []map[string]string{}
	for i := 0; i < 12; i++ {
		rows = append(rows, weakRow(fmt.Sprintf("Weak%02d", i)))
	}

	res, err := NewEngine(testConfig()).Run(rows, 100000)
	require.NoError(t, err)

	// nothing clears the strict ROI cut; fall back to the top ten
	assert.Len(t, res.Candidates, 10)
	assert.Equal(t, "Good Fundamental Score", res.Candidates[0].Reason)
	assert.Equal(t, "-15--9%", res.Candidates[0].ExpectedReturn)
}

func TestRunEmptyTable(t *testing.T) {
	_, err := NewEngine(testConfig()).Run(nil, 100000)
	assert.Error(t, err)
}

func TestRunUsesDefaultAmount(t *testing.T) {
	rows := []map[string]string{}
	for i := 0; i < 5; i++ {
		rows = append(rows, strongRow(fmt.Sprintf("Stock%02d", i)))
	}

	res, err := NewEngine(testConfig()).Run(rows, 0)
	require.NoError(t, err)
	require.NotEmpty(t, res.Recommendations)
	assert.Equal(t, 40000.0, res.Recommendations[0].Allocation)
}

func TestParseNumeric(t *testing.T) {
	assert.Equal(t, 1234.5, parseNumeric("1,234.5"))
	assert.Equal(t, 12.0, parseNumeric("12%"))
	assert.Equal(t, 0.0, parseNumeric("n/a"))
	assert.Equal(t, -3.2, parseNumeric(" -3.2 "))
}
