package fundamentals

import (
	"strconv"
	"strings"
)

// Concept identifies a canonical financial metric independent of the vendor
// field name it was reported under.
type Concept string

const (
	OperatingCashFlow    Concept = "operating_cash_flow"
	CapitalExpenditure   Concept = "capital_expenditure"
	NetIncome            Concept = "net_income"
	TotalRevenue         Concept = "total_revenue"
	OperatingIncome      Concept = "operating_income"
	TotalDebt            Concept = "total_debt"
	InterestExpense      Concept = "interest_expense"
	WorkingCapitalChange Concept = "working_capital_change"
	SharesOutstanding    Concept = "shares_outstanding"
	CurrentPrice         Concept = "current_price"
	Beta                 Concept = "beta"
	MarketCap            Concept = "market_cap"
)

// conceptAliases maps each concept to its known vendor field names in
// priority order. Alpha Vantage camelCase names come first, Yahoo-style
// title-case names second. Adding a new vendor is a one-place change here.
var conceptAliases = map[Concept][]string{
	OperatingCashFlow: {
		"operatingCashflow",
		"Operating Cash Flow",
		"Total Cash From Operating Activities",
		"Cash Flow From Operating Activities",
		"Net Operating Cash Flow",
	},
	CapitalExpenditure: {
		"capitalExpenditures",
		"Capital Expenditure",
		"Capital Expenditures",
		"Purchase Of Property And Equipment",
		"Purchase Of Plant And Equipment",
	},
	NetIncome: {
		"netIncome",
		"Net Income",
		"Net Income Common Stockholders",
	},
	TotalRevenue: {
		"totalRevenue",
		"Total Revenue",
	},
	OperatingIncome: {
		"operatingIncome",
		"Operating Income",
	},
	TotalDebt: {
		"shortLongTermDebtTotal",
		"Total Debt",
		"longTermDebt",
		"Long Term Debt",
		"Short Long Term Debt",
		"Current Debt",
	},
	InterestExpense: {
		"interestExpense",
		"Interest Expense",
		"Interest Expense Non Operating",
		"Interest Expense Net",
	},
	WorkingCapitalChange: {
		"changeInWorkingCapital",
		"Change In Working Capital",
		"Changes In Working Capital",
	},
	SharesOutstanding: {
		"SharesOutstanding",
		"sharesOutstanding",
	},
	CurrentPrice: {
		"currentPrice",
		"regularMarketPrice",
		"52WeekHigh",
	},
	Beta: {
		"Beta",
		"beta",
	},
	MarketCap: {
		"MarketCapitalization",
		"marketCap",
	},
}

// loadBearing marks concepts whose absence must surface as missing rather
// than collapse to a soft default. A valuation without shares outstanding or
// a market price is meaningless.
var loadBearing = map[Concept]bool{
	SharesOutstanding: true,
	CurrentPrice:      true,
}

// Statement is one financial statement as reported by a vendor: raw field
// name mapped to the raw value string.
type Statement map[string]string

// Resolve locates a concept inside a statement. It returns the value of the
// first known alias present, and false when no alias matches. Malformed
// numerics ("None", "-", free text) collapse to 0 for optional concepts and
// to missing for load-bearing ones. Resolve never panics on garbage input.
func Resolve(stmt Statement, concept Concept) (float64, bool) {
	for _, name := range conceptAliases[concept] {
		raw, ok := stmt[name]
		if !ok {
			continue
		}
		v, err := coerceNumeric(raw)
		if err != nil {
			if loadBearing[concept] {
				return 0, false
			}
			return 0, true
		}
		return v, true
	}
	return 0, false
}

// ResolveOrZero is Resolve with the missing case also collapsed to 0, for
// concepts where absence simply means "not reported this period".
func ResolveOrZero(stmt Statement, concept Concept) float64 {
	v, _ := Resolve(stmt, concept)
	return v
}

func coerceNumeric(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", "none", "null", "n/a", "-", "--":
		return 0, strconv.ErrSyntax
	}
	// Vendors occasionally format large numbers with thousands separators.
	s = strings.ReplaceAll(s, ",", "")
	return strconv.ParseFloat(s, 64)
}
