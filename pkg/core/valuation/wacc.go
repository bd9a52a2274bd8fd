package valuation

import (
	"stockval/pkg/core/fundamentals"
)

// EstimateWACC computes the weighted average cost of capital, in percent.
//
// WACC is a best-effort estimate, not a hard dependency: when the balance
// sheet is entirely absent there is nothing to weight, and the fixed
// DefaultWACC is returned instead of an error.
func EstimateWACC(nf *fundamentals.NormalizedFinancials) float64 {
	if !nf.BalanceSheetAvailable {
		return DefaultWACC
	}

	// 1. Cost of Equity (CAPM)
	// Ke = Rf + Beta * ERP
	beta := nf.Beta
	if beta == 0 {
		beta = 1.0
	}
	costOfEquity := RiskFreeRate + beta*MarketRiskPremium

	// 2. Cost of Debt (After-tax)
	costOfDebt := 0.0
	if nf.TotalDebt > 0 {
		costOfDebt = nf.InterestExpense / nf.TotalDebt
	}
	afterTaxCostOfDebt := costOfDebt * (1 - CorporateTaxRate)

	// 3. Capital-structure weights from market values
	totalCapital := nf.MarketCap + nf.TotalDebt
	equityWeight := 1.0 // all-equity assumption when nothing is reported
	if totalCapital > 0 {
		equityWeight = nf.MarketCap / totalCapital
	}
	debtWeight := 1 - equityWeight

	// 4. Blend
	wacc := costOfEquity*equityWeight + afterTaxCostOfDebt*debtWeight
	return wacc * 100
}
