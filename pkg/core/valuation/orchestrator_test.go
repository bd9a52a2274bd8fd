package valuation

import (
	"errors"
	"reflect"
	"testing"

	"stockval/pkg/core/fundamentals"
)

func healthyPeriods() []fundamentals.RawStatementPeriod {
	mk := func(ocf, capex, revenue, income string) fundamentals.RawStatementPeriod {
		return fundamentals.RawStatementPeriod{
			CashFlow: fundamentals.Statement{
				"operatingCashflow":   ocf,
				"capitalExpenditures": capex,
			},
			Income: fundamentals.Statement{
				"totalRevenue": revenue,
				"netIncome":    income,
			},
			Balance: fundamentals.Statement{"Total Debt": "200"},
		}
	}
	return []fundamentals.RawStatementPeriod{
		mk("120", "20", "1100", "90"),
		mk("110", "20", "1000", "85"),
		mk("100", "20", "900", "80"),
	}
}

func healthySnapshot() fundamentals.MarketSnapshot {
	return fundamentals.MarketSnapshot{
		CurrentPrice:      40,
		SharesOutstanding: 100,
		Beta:              1.0,
		MarketCap:         4000,
	}
}

func defaultParams() Parameters {
	return Parameters{GrowthRate: 0.10, DiscountRate: 0.10, TerminalMethod: TerminalGordon, Years: 10, MarginOfSafety: 0.3}
}

func TestComputeValuationPositive(t *testing.T) {
	res, err := ComputeValuation(healthyPeriods(), healthySnapshot(), defaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PerShareValue <= 0 {
		t.Errorf("viable inputs must yield a positive per-share value, got %f", res.PerShareValue)
	}
	if len(res.ProjectedFCF) != 10 {
		t.Errorf("expected 10 projected flows, got %d", len(res.ProjectedFCF))
	}
	if res.EnterpriseValue != res.PVCashFlows+res.PVTerminal {
		t.Error("enterprise value must equal PV flows + PV terminal")
	}
	if res.WACC <= 0 {
		t.Errorf("expected a positive WACC, got %f", res.WACC)
	}
}

func TestComputeValuationIsDeterministic(t *testing.T) {
	// Pure function: two runs over identical inputs must agree bit for bit.
	a, err := ComputeValuation(healthyPeriods(), healthySnapshot(), defaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := ComputeValuation(healthyPeriods(), healthySnapshot(), defaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs must produce identical results")
	}
}

func TestValidationRunsBeforeComputation(t *testing.T) {
	p := defaultParams()
	p.GrowthRate = 2.0
	if _, err := ComputeValuation(healthyPeriods(), healthySnapshot(), p); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("expected ErrInvalidRate for growth > 1, got %v", err)
	}

	p = defaultParams()
	p.DiscountRate = 0
	if _, err := ComputeValuation(healthyPeriods(), healthySnapshot(), p); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("expected ErrInvalidRate for discount 0, got %v", err)
	}

	p = defaultParams()
	p.TerminalMethod = "pe_ratio"
	if _, err := ComputeValuation(healthyPeriods(), healthySnapshot(), p); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("expected ErrInvalidRate for unknown method, got %v", err)
	}
}

func TestMissingSharesFailsFast(t *testing.T) {
	snap := healthySnapshot()
	snap.SharesOutstanding = 0
	_, err := ComputeValuation(healthyPeriods(), snap, defaultParams())
	if !errors.Is(err, ErrNonPositiveValuation) {
		t.Errorf("expected ErrNonPositiveValuation, got %v", err)
	}
}

func TestNegativeFCFNotViable(t *testing.T) {
	periods := []fundamentals.RawStatementPeriod{{
		CashFlow: fundamentals.Statement{
			"operatingCashflow":   "-100",
			"capitalExpenditures": "20",
		},
		Income: fundamentals.Statement{"totalRevenue": "1000"},
	}}
	_, err := ComputeValuation(periods, healthySnapshot(), defaultParams())
	if !errors.Is(err, ErrNonPositiveValuation) {
		t.Errorf("expected ErrNonPositiveValuation for negative average FCF, got %v", err)
	}
}

func TestDerivedGrowthClamped(t *testing.T) {
	// Revenue 900 -> 1100 -> 2200: growth [1.0, 0.222] averages 0.611,
	// clamped to the 0.20 cap.
	mk := func(rev string) fundamentals.RawStatementPeriod {
		return fundamentals.RawStatementPeriod{
			CashFlow: fundamentals.Statement{"operatingCashflow": "100", "capitalExpenditures": "0"},
			Income:   fundamentals.Statement{"totalRevenue": rev},
		}
	}
	periods := []fundamentals.RawStatementPeriod{mk("2200"), mk("1100"), mk("900")}

	p := defaultParams()
	p.GrowthRate = DeriveGrowth
	res, err := ComputeValuation(periods, healthySnapshot(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.GrowthRate != 0.20 {
		t.Errorf("expected derived growth clamped to 0.20, got %f", res.GrowthRate)
	}
}

func TestDerivedGrowthFallbackWithoutHistory(t *testing.T) {
	periods := []fundamentals.RawStatementPeriod{{
		CashFlow: fundamentals.Statement{"operatingCashflow": "100", "capitalExpenditures": "0"},
	}}
	p := defaultParams()
	p.GrowthRate = DeriveGrowth
	res, err := ComputeValuation(periods, healthySnapshot(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.GrowthRate != 0.03 {
		t.Errorf("expected the 3%% fallback, got %f", res.GrowthRate)
	}
}

func TestDefaultsApplied(t *testing.T) {
	p := Parameters{GrowthRate: 0.10, DiscountRate: 0.10}
	res, err := ComputeValuation(healthyPeriods(), healthySnapshot(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.ProjectedFCF) != DefaultYears {
		t.Errorf("expected the default %d-year horizon, got %d", DefaultYears, len(res.ProjectedFCF))
	}
}
