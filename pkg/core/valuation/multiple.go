package valuation

// SelectMultiple derives a dynamic earnings multiple from growth (percent),
// FCF quality, and WACC (percent). It backs the sanity-check valuation that
// runs beside the DCF path, not through it.
//
// A nil quality record degrades to DefaultMultiple: the multiple is a
// supplementary metric and must never abort a valuation.
func SelectMultiple(growthPct float64, quality *QualityMetrics, waccPct float64) float64 {
	if quality == nil {
		return DefaultMultiple
	}

	var base float64
	switch {
	case growthPct > 15:
		base = 15
	case growthPct > 10:
		base = 12
	case growthPct > 5:
		base = 10
	default:
		base = 8
	}

	qualityScore := 1.0
	if quality.FCFToIncome > 90 {
		qualityScore += 0.2
	} else if quality.FCFToIncome < 70 {
		qualityScore -= 0.2
	}
	if quality.DebtToFCF < 3 {
		qualityScore += 0.2
	} else if quality.DebtToFCF > 5 {
		qualityScore -= 0.2
	}

	waccAdjustment := 1.0
	if waccPct < 8 {
		waccAdjustment = 1.1
	} else if waccPct > 12 {
		waccAdjustment = 0.9
	}

	return base * qualityScore * waccAdjustment
}
