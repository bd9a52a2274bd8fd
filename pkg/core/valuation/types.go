package valuation

import (
	"fmt"

	"stockval/pkg/core/fundamentals"
)

// TerminalMethod selects how value beyond the projection horizon is
// capitalized.
type TerminalMethod string

const (
	TerminalGordon       TerminalMethod = "gordon"
	TerminalExitMultiple TerminalMethod = "exit_multiple"
)

// Policy constants. These are fixed model policy, not configuration.
const (
	// RiskFreeRate approximates the 10-year Treasury yield.
	RiskFreeRate = 0.0425
	// MarketRiskPremium is the historical equity risk premium.
	MarketRiskPremium = 0.06
	// CorporateTaxRate shields the cost of debt.
	CorporateTaxRate = 0.21
	// TerminalGrowthCap bounds perpetual growth under the Gordon method and
	// floors the decayed projection growth.
	TerminalGrowthCap = 0.03
	// ExitFCFMultiple is the conservative EV/FCF multiple for the
	// exit-multiple terminal method.
	ExitFCFMultiple = 12.0
	// DefaultWACC (percent) is the soft fallback when statements are too
	// thin to estimate a cost of capital.
	DefaultWACC = 8.0
	// DefaultMultiple is the degraded dynamic-multiple value when quality
	// metrics are unavailable.
	DefaultMultiple = 10.0
	// DefaultYears is the projection horizon when the caller leaves it unset.
	DefaultYears = 10
)

// DeriveGrowth asks the orchestrator to derive the growth rate from revenue
// history instead of using a caller-supplied one.
const DeriveGrowth = -1.0

// Bounds applied to a growth rate derived from history.
const (
	minDerivedGrowth     = 0.02
	maxDerivedGrowth     = 0.20
	defaultDerivedGrowth = 0.03
)

// Parameters are the caller-supplied valuation knobs, validated before any
// computation starts.
type Parameters struct {
	// GrowthRate in [0,1], or DeriveGrowth to use historical revenue growth.
	GrowthRate float64 `json:"growth_rate"`
	// DiscountRate in (0,1].
	DiscountRate float64 `json:"discount_rate"`
	// TerminalMethod defaults to gordon.
	TerminalMethod TerminalMethod `json:"terminal_method"`
	// Years defaults to DefaultYears.
	Years int `json:"years"`
	// MarginOfSafety in [0,1]; consumed by the rating layer, carried here so
	// one record describes the whole request.
	MarginOfSafety float64 `json:"margin_of_safety"`
}

// Validate checks ranges and fills defaults. It mutates only zero-valued
// optional fields.
func (p *Parameters) Validate() error {
	if p.GrowthRate != DeriveGrowth && (p.GrowthRate < 0 || p.GrowthRate > 1) {
		return fmt.Errorf("%w: growth rate %.4f outside [0,1]", ErrInvalidRate, p.GrowthRate)
	}
	if p.DiscountRate <= 0 || p.DiscountRate > 1 {
		return fmt.Errorf("%w: discount rate %.4f outside (0,1]", ErrInvalidRate, p.DiscountRate)
	}
	if p.TerminalMethod == "" {
		p.TerminalMethod = TerminalGordon
	}
	if p.TerminalMethod != TerminalGordon && p.TerminalMethod != TerminalExitMultiple {
		return fmt.Errorf("%w: unknown terminal method %q", ErrInvalidRate, p.TerminalMethod)
	}
	if p.Years < 0 {
		return fmt.Errorf("%w: projection horizon %d", ErrInvalidRate, p.Years)
	}
	if p.Years == 0 {
		p.Years = DefaultYears
	}
	if p.MarginOfSafety < 0 || p.MarginOfSafety > 1 {
		return fmt.Errorf("%w: margin of safety %.4f outside [0,1]", ErrInvalidRate, p.MarginOfSafety)
	}
	return nil
}

// QualityMetrics are unitless FCF quality scores. DebtToFCF is +Inf when FCF
// is non-positive: "unbounded risk" is a normal sentinel here, not an error.
type QualityMetrics struct {
	FCFToIncome          float64 `json:"fcf_to_income"` // percent
	DebtToFCF            float64 `json:"debt_to_fcf"`   // ratio
	WorkingCapitalChange float64 `json:"working_capital_change"`
}

// Result is the immutable output of one valuation run. Identical inputs
// always produce an identical Result, so callers may cache or persist it
// freely.
type Result struct {
	BaseFCF      float64 `json:"base_fcf"`
	GrowthRate   float64 `json:"growth_rate"`
	DiscountRate float64 `json:"discount_rate"`

	ProjectedFCF    []float64 `json:"projected_cash_flows"`
	TerminalValue   float64   `json:"terminal_value"`
	PVCashFlows     float64   `json:"npv_cash_flows"`
	PVTerminal      float64   `json:"npv_terminal"`
	EnterpriseValue float64   `json:"total_value"`
	PerShareValue   float64   `json:"per_share_value"`

	DynamicMultiple float64        `json:"dynamic_multiple"`
	Quality         QualityMetrics `json:"quality"`
	WACC            float64        `json:"wacc"` // percent

	Financials *fundamentals.NormalizedFinancials `json:"financials"`
}
