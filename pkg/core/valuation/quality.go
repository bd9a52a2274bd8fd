package valuation

import (
	"math"

	"stockval/pkg/core/fundamentals"
)

// ScoreQuality derives FCF quality metrics from the latest period.
//
// Zero net income yields 0 (flagged as low quality downstream, not a
// computation failure). Non-positive FCF yields +Inf debt coverage so the
// multiple selector's "> 5" comparison stays correct without special cases.
func ScoreQuality(nf *fundamentals.NormalizedFinancials) QualityMetrics {
	fcf := nf.FCFHistory[0]

	fcfToIncome := 0.0
	if nf.NetIncome != 0 {
		fcfToIncome = fcf / nf.NetIncome * 100
	}

	debtToFCF := math.Inf(1)
	if fcf > 0 {
		debtToFCF = nf.TotalDebt / fcf
	}

	return QualityMetrics{
		FCFToIncome:          fcfToIncome,
		DebtToFCF:            debtToFCF,
		WorkingCapitalChange: nf.WorkingCapitalChange,
	}
}
