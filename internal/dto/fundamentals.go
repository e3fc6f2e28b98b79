package dto

// FundamentalsSnapshot is a sparse key-value view of one entity's financial
// metrics. Upstream omits fields freely; absence means unknown, never zero,
// so every read goes through a lookup-with-default accessor.
type FundamentalsSnapshot map[string]interface{}

// Well-known fundamentals keys, following the upstream provider's naming.
const (
	KeyTrailingPE        = "trailingPE"
	KeyTrailingEps       = "trailingEps"
	KeyBookValue         = "bookValue"
	KeyCurrentPrice      = "currentPrice"
	KeyPreviousClose     = "previousClose"
	KeyPegRatio          = "pegRatio"
	KeyReturnOnEquity    = "returnOnEquity"
	KeyReturnOnAssets    = "returnOnAssets"
	KeyOperatingCashflow = "operatingCashflow"
	KeyRevenuePerShare   = "revenuePerShare"
	KeyCurrentRatio      = "currentRatio"
	KeyDebtToEquity      = "debtToEquity"
	KeyMarketCap         = "marketCap"
	KeyDividendYield     = "dividendYield"
	KeySector            = "sector"
	KeyLongName          = "longName"
)

// Float returns the value for key when present and numeric.
func (f FundamentalsSnapshot) Float(key string) (float64, bool) {
	if f == nil {
		return 0, false
	}
	v, ok := f[key]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}

// FloatDefault returns the value for key, or def when absent.
func (f FundamentalsSnapshot) FloatDefault(key string, def float64) float64 {
	if v, ok := f.Float(key); ok {
		return v
	}
	return def
}

func (f FundamentalsSnapshot) String(key string) string {
	if f == nil {
		return ""
	}
	if v, ok := f[key]; ok {
		if s, sok := v.(string); sok {
			return s
		}
	}
	return ""
}

// CurrentPrice prefers the live price and falls back to the previous close.
func (f FundamentalsSnapshot) CurrentPrice() float64 {
	if v, ok := f.Float(KeyCurrentPrice); ok {
		return v
	}
	return f.FloatDefault(KeyPreviousClose, 0)
}

func (f FundamentalsSnapshot) IsEmpty() bool {
	return len(f) == 0
}
