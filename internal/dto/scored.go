package dto

// ScanMode selects how much work the orchestrator does per entity.
type ScanMode string

const (
	// ScanModeFetchOnly downloads and lightweight-scores without forecasting.
	ScanModeFetchOnly ScanMode = "fetch_only"
	// ScanModeAnalyzeOnly reruns forecasting and allocation over results
	// already persisted for the run date, fetching nothing.
	ScanModeAnalyzeOnly ScanMode = "analyze_only"
	// ScanModeFull adds forecasting on top candidates plus allocation.
	ScanModeFull ScanMode = "full"
)

// PortfolioAction classifies one entity's day-over-day transition.
type PortfolioAction string

const (
	ActionNewEntry PortfolioAction = "NEW_ENTRY"
	ActionHold     PortfolioAction = "HOLD"
	ActionDropout  PortfolioAction = "DROPOUT"
)

// ScoredStock is one entity's full scoring record for a scan cycle. It is
// created once per scan; forecast and final score are attached during the
// top-candidate refinement pass and the record is immutable afterwards.
type ScoredStock struct {
	Ticker string  `json:"ticker"`
	Name   string  `json:"name"`
	Sector string  `json:"sector,omitempty"`
	Close  float64 `json:"close"`

	TechScore     float64 `json:"tech_score"`
	FundScore     float64 `json:"fund_score"`
	SentScore     float64 `json:"sent_score"`
	ForecastScore float64 `json:"forecast_score"`
	PreScore      float64 `json:"pre_score"`
	FinalScore    float64 `json:"final_score"`

	IntrinsicValue float64 `json:"intrinsic_value"`
	MarginOfSafety float64 `json:"margin_of_safety"`
	Reason         string  `json:"reason"`

	// Fundamentals carried through for reporting, not re-interpreted.
	Fundamentals FundamentalsSnapshot `json:"fundamentals,omitempty"`
}

// Recommendation is a scored stock plus its slice of the monthly budget.
// It is always derived from a ScoredStock, never stored on its own.
type Recommendation struct {
	ScoredStock
	Allocation float64 `json:"allocation"`
	Quantity   int     `json:"quantity"`
}

// PortfolioChange is one appended ledger row.
type PortfolioChange struct {
	Date   string          `json:"date"`
	Ticker string          `json:"ticker"`
	Name   string          `json:"name"`
	Action PortfolioAction `json:"action"`
	Rank   int             `json:"rank"`
	Price  float64         `json:"price"`
	Score  float64         `json:"score"`
}
