package analysis

import (
	"math"

	"stockval/pkg/core/valuation"
)

// Rating labels used across the CLI and API surfaces.
const (
	RatingExcellent = "Excellent"
	RatingVeryGood  = "Very Good"
	RatingGood      = "Good"
	RatingModerate  = "Moderate"
	RatingLow       = "Low"

	QualityHigh    = "High Quality"
	QualityGood    = "Good Quality"
	QualityAverage = "Average Quality"
	QualityLow     = "Low Quality"

	StrongBuy  = "Strong Buy"
	Buy        = "Buy"
	Hold       = "Hold"
	Sell       = "Sell"
	StrongSell = "Strong Sell"
)

// Assessment is the qualitative layer on top of a valuation Result: the
// multiple-based fair value, the margin-of-safety buy threshold, and the
// human-facing ratings.
type Assessment struct {
	FCFPerShare    float64 `json:"fcf_per_share"`
	FairValue      float64 `json:"fair_value"`
	BuyBelow       float64 `json:"buy_below"`
	UpsidePercent  float64 `json:"upside_percent"`
	GrowthRating   string  `json:"growth_rating"`
	QualityRating  string  `json:"quality_rating"`
	Recommendation string  `json:"recommendation"`
}

// Assess derives the multiple-path fair value and ratings from a completed
// valuation. The fair value here is the sanity-check branch (FCF per share x
// dynamic multiple), independent of the DCF discounting path; the caller can
// compare it against Result.PerShareValue.
func Assess(res *valuation.Result, marginOfSafety float64) Assessment {
	nf := res.Financials
	fcfPerShare := nf.FCFHistory[0] / nf.SharesOutstanding
	fairValue := fcfPerShare * res.DynamicMultiple

	upside := 0.0
	if nf.CurrentPrice > 0 {
		upside = (fairValue/nf.CurrentPrice - 1) * 100
	}

	return Assessment{
		FCFPerShare:    fcfPerShare,
		FairValue:      fairValue,
		BuyBelow:       fairValue * (1 - marginOfSafety),
		UpsidePercent:  upside,
		GrowthRating:   GrowthRating(res.GrowthRate * 100),
		QualityRating:  QualityRating(res.Quality),
		Recommendation: Recommendation(upside),
	}
}

// GrowthRating buckets a growth rate given in percent.
func GrowthRating(growthPct float64) string {
	switch {
	case growthPct > 20:
		return RatingExcellent
	case growthPct > 15:
		return RatingVeryGood
	case growthPct > 10:
		return RatingGood
	case growthPct > 5:
		return RatingModerate
	default:
		return RatingLow
	}
}

// QualityRating folds the three quality metrics into one label.
func QualityRating(q valuation.QualityMetrics) string {
	score := 0

	if q.FCFToIncome > 90 {
		score += 2
	} else if q.FCFToIncome > 80 {
		score++
	} else if q.FCFToIncome < 70 {
		score--
	}

	if q.DebtToFCF < 3 {
		score += 2
	} else if q.DebtToFCF < 5 {
		score++
	} else {
		score--
	}

	if math.Abs(q.WorkingCapitalChange) < 0.1*q.FCFToIncome {
		score++
	}

	switch {
	case score >= 4:
		return QualityHigh
	case score >= 2:
		return QualityGood
	case score >= 0:
		return QualityAverage
	default:
		return QualityLow
	}
}

// Recommendation buckets upside (percent) against the current price.
func Recommendation(upsidePct float64) string {
	switch {
	case upsidePct > 20:
		return StrongBuy
	case upsidePct > 5:
		return Buy
	case upsidePct > -5:
		return Hold
	case upsidePct > -20:
		return Sell
	default:
		return StrongSell
	}
}

// CAGR computes the compound annual growth rate, in percent, over a series
// ordered most recent first. A non-positive starting value yields 0.
func CAGR(values []float64, years int) float64 {
	if len(values) < 2 || years < 1 {
		return 0
	}
	start := values[len(values)-1]
	end := values[0]
	if start <= 0 {
		return 0
	}
	return (math.Pow(end/start, 1/float64(years)) - 1) * 100
}
