package valuation

import (
	"fmt"
	"math"

	"stockval/pkg/core/fundamentals"
)

// ComputeValuation runs the full pipeline: normalize -> quality -> cost of
// capital -> projection -> dynamic multiple, merged into one immutable
// Result.
//
// It is pure and synchronous: no I/O, no hidden state, safe to call
// concurrently for different tickers, and deterministic for identical
// inputs. Any failure in normalization or projection aborts the whole
// computation; there is no partial Result.
func ComputeValuation(periods []fundamentals.RawStatementPeriod, snapshot fundamentals.MarketSnapshot, params Parameters) (*Result, error) {
	// Parameter shape is checked before any computation.
	if err := params.Validate(); err != nil {
		return nil, err
	}

	nf, err := fundamentals.Normalize(periods, snapshot)
	if err != nil {
		return nil, err
	}

	// Viability checks fail fast, before any discounting work.
	if nf.SharesOutstanding <= 0 {
		return nil, fmt.Errorf("%w: shares outstanding %.0f", ErrNonPositiveValuation, nf.SharesOutstanding)
	}
	if nf.AverageFCF <= 0 {
		return nil, fmt.Errorf("%w: weighted average FCF %.2f", ErrNonPositiveValuation, nf.AverageFCF)
	}

	growthRate := params.GrowthRate
	if growthRate == DeriveGrowth {
		growthRate = deriveGrowthRate(nf.RevenueGrowthHistory)
	}

	quality := ScoreQuality(nf)
	wacc := EstimateWACC(nf)

	proj, err := Project(nf.AverageFCF, growthRate, params)
	if err != nil {
		return nil, err
	}

	enterpriseValue := proj.PVFlows + proj.PVTerminal
	perShare := enterpriseValue / nf.SharesOutstanding
	if perShare <= 0 {
		return nil, fmt.Errorf("%w: per-share value %.2f", ErrNonPositiveValuation, perShare)
	}

	multiple := SelectMultiple(growthRate*100, &quality, wacc)

	return &Result{
		BaseFCF:         nf.AverageFCF,
		GrowthRate:      growthRate,
		DiscountRate:    params.DiscountRate,
		ProjectedFCF:    proj.Flows,
		TerminalValue:   proj.TerminalValue,
		PVCashFlows:     proj.PVFlows,
		PVTerminal:      proj.PVTerminal,
		EnterpriseValue: enterpriseValue,
		PerShareValue:   perShare,
		DynamicMultiple: multiple,
		Quality:         quality,
		WACC:            wacc,
		Financials:      nf,
	}, nil
}

// deriveGrowthRate averages the historical revenue growth and clamps it to a
// defensible projection range. With no growth history at all it falls back
// to a conservative base rate.
func deriveGrowthRate(history []float64) float64 {
	if len(history) == 0 {
		return defaultDerivedGrowth
	}
	var sum float64
	for _, g := range history {
		sum += g
	}
	avg := sum / float64(len(history))
	return math.Max(math.Min(avg, maxDerivedGrowth), minDerivedGrowth)
}
