package dto

// YahooChartResponse mirrors the chart API payload.
type YahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// YahooQuoteSummaryResponse mirrors the quoteSummary API payload. Raw/fmt
// wrappers collapse to the raw numeric value.
type YahooQuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price                *YahooModule `json:"price"`
			SummaryDetail        *YahooModule `json:"summaryDetail"`
			DefaultKeyStatistics *YahooModule `json:"defaultKeyStatistics"`
			FinancialData        *YahooModule `json:"financialData"`
			SummaryProfile       *YahooModule `json:"summaryProfile"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"quoteSummary"`
}

// YahooModule is a loose bag of fields; each numeric field arrives either as
// a bare number or as {raw, fmt}.
type YahooModule map[string]interface{}

// Raw extracts the numeric value for a field, unwrapping {raw, fmt} objects.
func (m YahooModule) Raw(key string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	v, ok := m[key]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case map[string]interface{}:
		if raw, rok := t["raw"]; rok {
			if f, fok := raw.(float64); fok {
				return f, true
			}
		}
	}
	return 0, false
}

func (m YahooModule) Str(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	if v, ok := m[key]; ok {
		if s, sok := v.(string); sok && s != "" {
			return s, true
		}
	}
	return "", false
}
