package scan

import (
	"encoding/json"

	"gorm.io/datatypes"

	"equityscan/internal/dto"
	"equityscan/internal/model"
)

func toModel(runDate string, s *dto.ScoredStock) model.ScanResult {
	var funds datatypes.JSON
	if len(s.Fundamentals) > 0 {
		if raw, err := json.Marshal(s.Fundamentals); err == nil {
			funds = raw
		}
	}

	return model.ScanResult{
		RunDate:        runDate,
		Ticker:         s.Ticker,
		Name:           s.Name,
		Sector:         s.Sector,
		Close:          s.Close,
		TechScore:      s.TechScore,
		FundScore:      s.FundScore,
		SentScore:      s.SentScore,
		ForecastScore:  s.ForecastScore,
		PreScore:       s.PreScore,
		FinalScore:     s.FinalScore,
		IntrinsicValue: s.IntrinsicValue,
		MarginOfSafety: s.MarginOfSafety,
		Reason:         s.Reason,
		Fundamentals:   funds,
	}
}

// FromModel restores a persisted row into its scoring form.
func FromModel(m model.ScanResult) *dto.ScoredStock {
	s := &dto.ScoredStock{
		Ticker:         m.Ticker,
		Name:           m.Name,
		Sector:         m.Sector,
		Close:          m.Close,
		TechScore:      m.TechScore,
		FundScore:      m.FundScore,
		SentScore:      m.SentScore,
		ForecastScore:  m.ForecastScore,
		PreScore:       m.PreScore,
		FinalScore:     m.FinalScore,
		IntrinsicValue: m.IntrinsicValue,
		MarginOfSafety: m.MarginOfSafety,
		Reason:         m.Reason,
	}

	if len(m.Fundamentals) > 0 {
		var funds dto.FundamentalsSnapshot
		if err := json.Unmarshal(m.Fundamentals, &funds); err == nil {
			s.Fundamentals = funds
		}
	}
	return s
}
