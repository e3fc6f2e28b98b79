package scan

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"equityscan/internal/dto"
	"equityscan/pkg/export"
)

var analysisHeaders = []string{
	"Ticker", "Name", "Sector", "Close",
	"Final_Score", "Tech_Score", "Fund_Score", "Sent_Score", "Pre_Score", "Forecast_Score",
	"Intrinsic_Value", "Margin_Safety",
	"PE_Ratio", "ROE", "Debt_to_Equity", "PEG_Ratio", "Market_Cap", "Div_Yield",
	"Reason",
}

var recommendationHeaders = append(append([]string{}, analysisHeaders...), "Allocation", "Qty")

func analysisRow(s *dto.ScoredStock) map[string]interface{} {
	return map[string]interface{}{
		"Ticker":          s.Ticker,
		"Name":            s.Name,
		"Sector":          s.Sector,
		"Close":           math.Round(s.Close*100) / 100,
		"Final_Score":     s.FinalScore,
		"Tech_Score":      s.TechScore,
		"Fund_Score":      s.FundScore,
		"Sent_Score":      s.SentScore,
		"Pre_Score":       s.PreScore,
		"Forecast_Score":  s.ForecastScore,
		"Intrinsic_Value": s.IntrinsicValue,
		"Margin_Safety":   s.MarginOfSafety,
		"PE_Ratio":        s.Fundamentals.FloatDefault(dto.KeyTrailingPE, 0),
		"ROE":             s.Fundamentals.FloatDefault(dto.KeyReturnOnEquity, 0),
		"Debt_to_Equity":  s.Fundamentals.FloatDefault(dto.KeyDebtToEquity, 0),
		"PEG_Ratio":       s.Fundamentals.FloatDefault(dto.KeyPegRatio, 0),
		"Market_Cap":      s.Fundamentals.FloatDefault(dto.KeyMarketCap, 0),
		"Div_Yield":       s.Fundamentals.FloatDefault(dto.KeyDividendYield, 0),
		"Reason":          s.Reason,
	}
}

func recommendationRow(r *dto.Recommendation) map[string]interface{} {
	row := analysisRow(&r.ScoredStock)
	row["Allocation"] = r.Allocation
	row["Qty"] = r.Quantity
	return row
}

// writeAnalysisArtifacts persists the day's full result set as CSV, both at
// the stable path external dashboards poll and as a dated snapshot.
func writeAnalysisArtifacts(dataDir, runDate string, results []*dto.ScoredStock) error {
	rows := make([]map[string]interface{}, 0, len(results))
	for _, s := range results {
		rows = append(rows, analysisRow(s))
	}

	if err := export.WriteCSV(filepath.Join(dataDir, "full_analysis.csv"), analysisHeaders, rows); err != nil {
		return fmt.Errorf("failed to write analysis csv: %w", err)
	}

	snapshotDir := filepath.Join(dataDir, "daily_snapshots")
	if err := os.MkdirAll(snapshotDir, 0o755); err != nil {
		return err
	}
	return export.WriteCSV(filepath.Join(snapshotDir, fmt.Sprintf("analysis_%s.csv", runDate)), analysisHeaders, rows)
}

// writeRecommendationArtifacts persists the final picks as CSV plus a styled
// spreadsheet snapshot.
func writeRecommendationArtifacts(dataDir, runDate string, recs []*dto.Recommendation) error {
	rows := make([]map[string]interface{}, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, recommendationRow(r))
	}

	if err := export.WriteCSV(filepath.Join(dataDir, "recommendations.csv"), recommendationHeaders, rows); err != nil {
		return fmt.Errorf("failed to write recommendations csv: %w", err)
	}

	snapshotDir := filepath.Join(dataDir, "daily_snapshots")
	if err := os.MkdirAll(snapshotDir, 0o755); err != nil {
		return err
	}
	return export.WriteXLSX(
		filepath.Join(snapshotDir, fmt.Sprintf("recommendations_%s.xlsx", runDate)),
		"Recommendations", recommendationHeaders, rows)
}
