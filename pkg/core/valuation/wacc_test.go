package valuation

import (
	"math"
	"testing"

	"stockval/pkg/core/fundamentals"
)

func TestEstimateWACC(t *testing.T) {
	// Ke = 0.0425 + 1.2*0.06 = 0.1145
	// Kd = 20/500 = 0.04; after tax: 0.04*0.79 = 0.0316
	// We = 1500/2000 = 0.75, Wd = 0.25
	// WACC = 0.1145*0.75 + 0.0316*0.25 = 0.085875 + 0.0079 = 0.093775 -> 9.3775%
	nf := &fundamentals.NormalizedFinancials{
		BalanceSheetAvailable: true,
		Beta:                  1.2,
		TotalDebt:             500,
		InterestExpense:       20,
		MarketCap:             1500,
	}
	got := EstimateWACC(nf)
	if math.Abs(got-9.3775) > 1e-9 {
		t.Errorf("expected 9.3775, got %f", got)
	}
}

func TestWACCBetaDefault(t *testing.T) {
	// Missing beta defaults to 1.0; all-equity firm:
	// WACC = (0.0425 + 0.06) * 100 = 10.25%
	nf := &fundamentals.NormalizedFinancials{
		BalanceSheetAvailable: true,
		MarketCap:             1000,
	}
	got := EstimateWACC(nf)
	if math.Abs(got-10.25) > 1e-9 {
		t.Errorf("expected 10.25, got %f", got)
	}
}

func TestWACCAllEquityAssumptionWhenUnreported(t *testing.T) {
	// Market cap and debt both zero: equity weight defaults to 1, so the
	// result equals the cost of equity.
	nf := &fundamentals.NormalizedFinancials{BalanceSheetAvailable: true, Beta: 1.0}
	got := EstimateWACC(nf)
	if math.Abs(got-10.25) > 1e-9 {
		t.Errorf("expected cost of equity 10.25, got %f", got)
	}
}

func TestWACCFallbackWithoutBalanceSheet(t *testing.T) {
	nf := &fundamentals.NormalizedFinancials{BalanceSheetAvailable: false, Beta: 2.0}
	if got := EstimateWACC(nf); got != DefaultWACC {
		t.Errorf("expected the %.1f%% fallback, got %f", DefaultWACC, got)
	}
}
