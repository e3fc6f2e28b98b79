package bigbets

import (
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// CleanHeader normalizes one raw column header: non-breaking spaces become
// plain spaces, runs of whitespace collapse, and the punctuation that
// spreadsheet exports sprinkle into headers is stripped.
func CleanHeader(c string) string {
	c = strings.ReplaceAll(c, " ", " ")
	c = whitespaceRe.ReplaceAllString(c, " ")
	c = strings.ReplaceAll(c, "%", "")
	c = strings.ReplaceAll(c, ".", "")
	c = strings.ReplaceAll(c, "/", "")
	return strings.TrimSpace(c)
}

// smartMap pairs each canonical column with the keywords that identify it in
// the wild. Order matters twice over: earlier targets claim columns first,
// and the generic Sales entry sits last so it cannot swallow the growth
// variants.
var smartMap = []struct {
	target   string
	keywords []string
}{
	{"SNo", []string{"sno", "srno", "serial"}},
	{"Name", []string{"name", "company", "stock"}},
	{"CMP", []string{"cmp", "currentprice", "price", "ltp", "close"}},
	{"PE", []string{"pe", "priceearnings"}},
	{"MarketCap", []string{"marcap", "marketcap", "mcap"}},
	{"ROCE", []string{"roce", "returnoncapital"}},
	{"ROE", []string{"roe", "returnonequity"}},
	{"DebtToEquity", []string{"debteq", "debtoequity", "debttoequity", "gearing"}},
	{"SalesGrowth3Y", []string{"salesvar3yr", "salesgrowth3yr", "salescagr3yr", "sales var 3"}},
	{"ProfitGrowth3Y", []string{"profitvar3yr", "profitgrowth3yr", "profitcagr3yr", "profit var 3"}},
	{"QtrSalesGrowth", []string{"qtrsales", "quartersales", "qtr sales", "quarter sales"}},
	{"QtrProfitGrowth", []string{"qtrprofit", "quarterprofit", "qtr profit", "quarter profit"}},
	{"OPM", []string{"opm", "operatingmargin"}},
	{"InterestCoverage", []string{"intcoverage", "interestcoverage"}},
	{"PromoterHolding", []string{"promhold", "promoterhold"}},
	{"PromoterHoldingChange3Y", []string{"chginprom", "promchange", "chg in prom"}},
	{"FreeCashFlow", []string{"freecash", "fcf"}},
	{"DMA_200", []string{"200dma", "dma200", "200 dma"}},
	{"RSI", []string{"rsi"}},
	{"Sales", []string{"sales", "revenue"}},
}

// CanonicalizeHeaders maps cleaned headers onto the canonical schema. Each
// keyword is tried as an exact lowercase match first, then as a substring;
// the first hit wins and a header already carrying its canonical name is
// left alone.
func CanonicalizeHeaders(headers []string) map[string]string {
	cleaned := make([]string, len(headers))
	exists := make(map[string]bool, len(headers))
	lower := make(map[string]string, len(headers))
	for i, h := range headers {
		cleaned[i] = CleanHeader(h)
		exists[cleaned[i]] = true
		lower[strings.ToLower(cleaned[i])] = cleaned[i]
	}

	rename := make(map[string]string)
	claimed := make(map[string]bool)

	for _, entry := range smartMap {
		if exists[entry.target] {
			continue
		}

		found := false
		for _, k := range entry.keywords {
			if col, ok := lower[k]; ok && !claimed[col] {
				rename[col] = entry.target
				claimed[col] = true
				found = true
				break
			}
			for _, col := range cleaned {
				if claimed[col] || rename[col] != "" {
					continue
				}
				if strings.Contains(strings.ToLower(col), k) {
					rename[col] = entry.target
					claimed[col] = true
					found = true
					break
				}
			}
			if found {
				break
			}
		}
	}

	out := make(map[string]string, len(headers))
	for i, h := range headers {
		if target, ok := rename[cleaned[i]]; ok {
			out[h] = target
		} else {
			out[h] = cleaned[i]
		}
	}
	return out
}

// criticalColumns must survive canonicalization for the scores to mean
// anything; their absence is reported, not fatal.
var criticalColumns = []string{
	"ROCE", "ROE", "OPM", "FreeCashFlow",
	"SalesGrowth3Y", "ProfitGrowth3Y",
	"QtrSalesGrowth", "QtrProfitGrowth",
}

func missingCritical(present map[string]bool) []string {
	var missing []string
	for _, c := range criticalColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	return missing
}
