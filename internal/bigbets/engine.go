package bigbets

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"equityscan/config"
)

// featureColumns feeds the win-probability classifier. Only the subset
// present in the input table is used.
var featureColumns = []string{
	"ROCE", "ROE", "OPM", "FreeCashFlow",
	"DebtToEquity", "InterestCoverage",
	"PromoterHolding", "PromoterHoldingChange3Y",
	"SalesGrowth3Y", "ProfitGrowth3Y",
	"QtrSalesGrowth", "QtrProfitGrowth",
	"DMA_200", "RSI",
}

var allocationWeights = []float64{0.40, 0.35, 0.25}

// ScoredRow is one input row after canonicalization and scoring.
type ScoredRow struct {
	Ticker         string
	Name           string
	CMP            float64
	Fields         map[string]float64
	QualityScore   int
	ROIScore       int
	WinProbability float64
	Reason         string
	ExpectedReturn string

	present map[string]bool
}

// get returns the row's value for a canonical column, or the fallback when
// the column never appeared in the table. A present-but-blank cell is 0,
// which is a different thing from an absent column.
func (r *ScoredRow) get(key string, fallback float64) float64 {
	if r.present[key] {
		return r.Fields[key]
	}
	return fallback
}

// Recommendation is one of the final top-3 picks.
type Recommendation struct {
	Rank           int     `json:"rank"`
	Ticker         string  `json:"ticker"`
	Name           string  `json:"name"`
	CMP            float64 `json:"cmp"`
	Allocation     float64 `json:"allocation"`
	ExpectedReturn string  `json:"expected_return"`
	Reason         string  `json:"reason"`
	ROIScore       int     `json:"roi_score"`
	QualityScore   int     `json:"quality_score"`
	WinProbability float64 `json:"win_probability"`
}

// Result carries the picks plus everything a caller needs to explain them.
type Result struct {
	Recommendations []Recommendation `json:"recommendations"`
	Candidates      []*ScoredRow     `json:"candidates"`
	MissingColumns  []string         `json:"missing_columns,omitempty"`
}

type Engine interface {
	Run(rows []map[string]string, amount float64) (*Result, error)
}

type engine struct {
	cfg config.BigBets
}

func NewEngine(cfg config.BigBets) Engine {
	return &engine{cfg: cfg}
}

func (e *engine) Run(rows []map[string]string, amount float64) (*Result, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("bigbets: empty input table")
	}
	if amount <= 0 {
		amount = e.cfg.DefaultAmount
	}

	scored, present := e.preprocess(rows)

	for _, row := range scored {
		row.QualityScore = qualityScore(row)
		row.ROIScore = roiScore(row)
	}

	e.assignWinProbability(scored, present)

	candidates := selectCandidates(scored)
	for _, row := range candidates {
		row.Reason = buildReason(row)
		row.ExpectedReturn = expectedReturn(row.ROIScore)
	}

	recs := make([]Recommendation, 0, len(allocationWeights))
	for i, row := range candidates {
		if i >= len(allocationWeights) {
			break
		}
		recs = append(recs, Recommendation{
			Rank:           i + 1,
			Ticker:         row.Ticker,
			Name:           row.Name,
			CMP:            row.CMP,
			Allocation:     amount * allocationWeights[i],
			ExpectedReturn: row.ExpectedReturn,
			Reason:         row.Reason,
			ROIScore:       row.ROIScore,
			QualityScore:   row.QualityScore,
			WinProbability: row.WinProbability,
		})
	}

	return &Result{
		Recommendations: recs,
		Candidates:      candidates,
		MissingColumns:  missingCritical(present),
	}, nil
}

// preprocess canonicalizes headers and parses numeric cells. Unparseable
// cells in a present column coerce to 0.
func (e *engine) preprocess(rows []map[string]string) ([]*ScoredRow, map[string]bool) {
	headers := make([]string, 0, len(rows[0]))
	for h := range rows[0] {
		headers = append(headers, h)
	}
	sort.Strings(headers)
	rename := CanonicalizeHeaders(headers)

	present := make(map[string]bool)
	for _, target := range rename {
		present[target] = true
	}

	scored := make([]*ScoredRow, 0, len(rows))
	for _, raw := range rows {
		row := &ScoredRow{
			Fields:  make(map[string]float64),
			present: present,
		}
		for h, cell := range raw {
			target, ok := rename[h]
			if !ok {
				target = CleanHeader(h)
			}
			switch target {
			case "Name":
				row.Name = strings.TrimSpace(cell)
			case "Ticker":
				row.Ticker = strings.TrimSpace(cell)
			default:
				row.Fields[target] = parseNumeric(cell)
			}
		}
		if row.Ticker == "" {
			row.Ticker = row.Name
		}
		row.CMP = row.get("CMP", 0)
		scored = append(scored, row)
	}
	return scored, present
}

func parseNumeric(cell string) float64 {
	cell = strings.TrimSpace(strings.ReplaceAll(cell, ",", ""))
	cell = strings.TrimSuffix(cell, "%")
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0
	}
	return v
}

// qualityScore tallies eleven binary business-quality checks.
func qualityScore(r *ScoredRow) int {
	score := 0
	if r.get("ROCE", 0) > 15 {
		score++
	}
	if r.get("ROE", 0) > 15 {
		score++
	}
	if r.get("OPM", 0) > 12 {
		score++
	}
	if r.get("FreeCashFlow", 0) > 0 {
		score++
	}
	if r.get("DebtToEquity", 1) < 0.5 || r.get("InterestCoverage", 0) > 5 {
		score++
	}
	if r.get("PromoterHolding", 0) > 50 {
		score++
	}
	if r.get("PromoterHoldingChange3Y", 0) >= 0 {
		score++
	}
	if r.get("SalesGrowth3Y", 0) > 10 {
		score++
	}
	if r.get("ProfitGrowth3Y", 0) > 12 {
		score++
	}
	if r.get("CMP", 0) > r.get("DMA_200", 0) {
		score++
	}
	if rsi := r.get("RSI", 50); rsi >= 45 && rsi <= 70 {
		score++
	}
	return score
}

// roiScore repeats the quality checks and layers growth triggers on top.
// The quarterly profit breakout counts double: it is the strongest
// re-rating signal over a 6 to 12 month horizon.
func roiScore(r *ScoredRow) int {
	score := qualityScore(r)
	if r.get("QtrProfitGrowth", 0) > 15 {
		score += 2
	}
	if r.get("QtrSalesGrowth", 0) > 10 {
		score++
	}
	return score
}

// assignWinProbability trains the classifier on whatever feature columns the
// table carries, labeling ROI score >= 9 as a win. Too little data is not an
// error: every row just gets probability 0.
func (e *engine) assignWinProbability(rows []*ScoredRow, present map[string]bool) {
	var cols []string
	for _, c := range featureColumns {
		if present[c] {
			cols = append(cols, c)
		}
	}

	var positives int
	for _, row := range rows {
		if row.ROIScore >= 9 {
			positives++
		}
	}

	if len(rows) < e.cfg.MinTrainRows || positives < e.cfg.MinPositiveLabels || len(cols) == 0 {
		for _, row := range rows {
			row.WinProbability = 0.0
		}
		return
	}

	features := make([][]float64, len(rows))
	labels := make([]float64, len(rows))
	for i, row := range rows {
		vec := make([]float64, len(cols))
		for j, c := range cols {
			vec[j] = row.Fields[c]
		}
		features[i] = vec
		if row.ROIScore >= 9 {
			labels[i] = 1
		}
	}

	model := fitLogistic(features, labels)
	if model == nil {
		for _, row := range rows {
			row.WinProbability = 0.5
		}
		return
	}

	for i, row := range rows {
		row.WinProbability = model.prob(features[i])
	}
}

// selectCandidates keeps rows with ROI score >= 9, falling back to the top
// ten when the strict cut leaves nothing. Ordered by ROI score then win
// probability, both descending.
func selectCandidates(rows []*ScoredRow) []*ScoredRow {
	var candidates []*ScoredRow
	for _, row := range rows {
		if row.ROIScore >= 9 {
			candidates = append(candidates, row)
		}
	}

	if len(candidates) == 0 {
		candidates = make([]*ScoredRow, len(rows))
		copy(candidates, rows)
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].ROIScore > candidates[j].ROIScore
		})
		if len(candidates) > 10 {
			candidates = candidates[:10]
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].ROIScore != candidates[j].ROIScore {
			return candidates[i].ROIScore > candidates[j].ROIScore
		}
		return candidates[i].WinProbability > candidates[j].WinProbability
	})
	return candidates
}

func buildReason(r *ScoredRow) string {
	var reasons []string
	if r.get("QtrProfitGrowth", 0) > 15 {
		reasons = append(reasons, "Earnings Breakout")
	}
	if r.WinProbability > 0.7 {
		reasons = append(reasons, "High ML Conviction")
	}
	if r.get("CMP", 0) > r.get("DMA_200", 0) {
		reasons = append(reasons, "Momentum")
	}
	if len(reasons) == 0 {
		return "Good Fundamental Score"
	}
	return strings.Join(reasons, " + ")
}

func expectedReturn(roiScore int) string {
	low := 12 + (roiScore-9)*3
	high := 18 + (roiScore-9)*3
	return fmt.Sprintf("%d-%d%%", low, high)
}
