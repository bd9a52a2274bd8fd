package fundamentals

import (
	"errors"
	"fmt"
	"math"
)

// ErrDataInsufficient signals that fewer historical periods than required
// were available, or that a derived series came out empty. It is fatal to
// the valuation; retrying belongs to the fetch layer, not here.
var ErrDataInsufficient = errors.New("insufficient financial data")

// maxHistoryPeriods bounds how far back the normalizer looks. Older data is
// excluded on purpose: valuation is forward-looking and stale periods add
// noise, not signal.
const maxHistoryPeriods = 5

// fcfWeights favors recent performance while damping single-year noise.
// Truncated to the series length, most-recent-first.
var fcfWeights = []float64{1.0, 0.8, 0.6, 0.4, 0.2}

// RawStatementPeriod holds one reporting period's statements exactly as the
// vendor returned them. Immutable once fetched.
type RawStatementPeriod struct {
	FiscalDateEnding string    `json:"fiscal_date_ending"`
	CashFlow         Statement `json:"cash_flow"`
	Income           Statement `json:"income"`
	Balance          Statement `json:"balance"`
}

// MarketSnapshot carries the point-in-time market data that accompanies the
// historical statements.
type MarketSnapshot struct {
	CurrentPrice      float64 `json:"current_price"`
	SharesOutstanding float64 `json:"shares_outstanding"`
	Beta              float64 `json:"beta"`
	MarketCap         float64 `json:"market_cap"`
}

// NormalizedFinancials is the engine's input record: a clean FCF time series
// plus the latest-period scalars the quality and discount-rate estimators
// need. Every field is derived; nothing here is mutated after Normalize
// returns.
type NormalizedFinancials struct {
	// FCFHistory is ordered most recent first.
	FCFHistory []float64
	// RevenueGrowthHistory holds period-over-period ratios for adjacent
	// pairs; pairs with a non-positive prior revenue are skipped, so the
	// length may be shorter than len(FCFHistory)-1.
	RevenueGrowthHistory []float64
	AverageFCF           float64

	NetIncome            float64
	TotalDebt            float64
	InterestExpense      float64
	WorkingCapitalChange float64

	// BalanceSheetAvailable records whether the latest period carried any
	// balance-sheet data at all. The WACC estimator falls back to its
	// default when it did not.
	BalanceSheetAvailable bool

	CurrentPrice      float64
	SharesOutstanding float64
	Beta              float64
	MarketCap         float64
}

// Normalize turns raw vendor statements into a NormalizedFinancials record.
// At most the 5 most recent periods are used. Period FCF is
// OperatingCashFlow - |CapitalExpenditure|; capex sign varies by vendor, so
// it is normalized to an outflow here.
func Normalize(periods []RawStatementPeriod, snapshot MarketSnapshot) (*NormalizedFinancials, error) {
	if len(periods) == 0 {
		return nil, fmt.Errorf("%w: no historical periods", ErrDataInsufficient)
	}
	if len(periods) > maxHistoryPeriods {
		periods = periods[:maxHistoryPeriods]
	}

	var fcfHistory []float64
	var revenues []float64
	revenueKnown := make([]bool, 0, len(periods))

	for _, p := range periods {
		ocf, ocfOK := Resolve(p.CashFlow, OperatingCashFlow)
		if ocfOK {
			capex := ResolveOrZero(p.CashFlow, CapitalExpenditure)
			fcfHistory = append(fcfHistory, ocf-math.Abs(capex))
		}

		rev, revOK := Resolve(p.Income, TotalRevenue)
		revenues = append(revenues, rev)
		revenueKnown = append(revenueKnown, revOK)
	}

	if len(fcfHistory) == 0 {
		return nil, fmt.Errorf("%w: no usable cash-flow periods", ErrDataInsufficient)
	}

	// Periods arrive most-recent-first, so the prior year is at i+1.
	var growth []float64
	for i := 0; i+1 < len(revenues); i++ {
		if !revenueKnown[i] || !revenueKnown[i+1] {
			continue
		}
		prev := revenues[i+1]
		if prev <= 0 {
			// Skipped, not zeroed: a non-positive base makes the ratio
			// meaningless.
			continue
		}
		growth = append(growth, (revenues[i]-prev)/prev)
	}

	latest := periods[0]
	nf := &NormalizedFinancials{
		FCFHistory:            fcfHistory,
		RevenueGrowthHistory:  growth,
		AverageFCF:            weightedAverage(fcfHistory),
		NetIncome:             ResolveOrZero(latest.Income, NetIncome),
		TotalDebt:             ResolveOrZero(latest.Balance, TotalDebt),
		InterestExpense:       math.Abs(ResolveOrZero(latest.Income, InterestExpense)),
		WorkingCapitalChange:  ResolveOrZero(latest.CashFlow, WorkingCapitalChange),
		BalanceSheetAvailable: len(latest.Balance) > 0,
		CurrentPrice:          snapshot.CurrentPrice,
		SharesOutstanding:     snapshot.SharesOutstanding,
		Beta:                  snapshot.Beta,
		MarketCap:             snapshot.MarketCap,
	}
	return nf, nil
}

// weightedAverage applies the recency weights, normalized by the weight sum.
// For [100, 80, 60]: (100*1.0 + 80*0.8 + 60*0.6) / 2.4 = 85.0.
func weightedAverage(series []float64) float64 {
	weights := fcfWeights[:len(series)]
	var sum, weightSum float64
	for i, v := range series {
		sum += v * weights[i]
		weightSum += weights[i]
	}
	return sum / weightSum
}
