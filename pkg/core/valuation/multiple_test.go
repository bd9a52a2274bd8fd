package valuation

import (
	"math"
	"testing"
)

func TestMultipleGrowthBrackets(t *testing.T) {
	// Neutral quality (fcf/income 80, debt/fcf 4) and neutral WACC (10)
	// leave base unadjusted.
	neutral := &QualityMetrics{FCFToIncome: 80, DebtToFCF: 4}
	cases := []struct {
		growthPct float64
		want      float64
	}{
		{20, 15}, {12, 12}, {8, 10}, {3, 8},
	}
	for _, c := range cases {
		got := SelectMultiple(c.growthPct, neutral, 10)
		if got != c.want {
			t.Errorf("growth %.0f%%: expected %f, got %f", c.growthPct, c.want, got)
		}
	}
}

func TestMultipleQualityAdjustment(t *testing.T) {
	// High quality: fcf/income > 90 (+0.2) and debt/fcf < 3 (+0.2):
	// 12 * 1.4 = 16.8
	q := &QualityMetrics{FCFToIncome: 95, DebtToFCF: 1}
	got := SelectMultiple(12, q, 10)
	if math.Abs(got-16.8) > 1e-9 {
		t.Errorf("expected 16.8, got %f", got)
	}

	// Low quality: fcf/income < 70 (-0.2) and debt/fcf > 5 (-0.2):
	// 12 * 0.6 = 7.2
	q = &QualityMetrics{FCFToIncome: 50, DebtToFCF: 8}
	got = SelectMultiple(12, q, 10)
	if math.Abs(got-7.2) > 1e-9 {
		t.Errorf("expected 7.2, got %f", got)
	}
}

func TestMultipleUnboundedDebtRatio(t *testing.T) {
	// The +Inf sentinel must land in the "> 5" branch without special
	// casing: 12 * (1.0 + 0.2 - 0.2) = 12
	q := &QualityMetrics{FCFToIncome: 95, DebtToFCF: math.Inf(1)}
	got := SelectMultiple(12, q, 10)
	if math.Abs(got-12) > 1e-9 {
		t.Errorf("expected 12, got %f", got)
	}
}

func TestMultipleWACCAdjustment(t *testing.T) {
	neutral := &QualityMetrics{FCFToIncome: 80, DebtToFCF: 4}
	// Cheap capital: 10 * 1.1 = 11
	if got := SelectMultiple(8, neutral, 7); math.Abs(got-11) > 1e-9 {
		t.Errorf("expected 11, got %f", got)
	}
	// Expensive capital: 10 * 0.9 = 9
	if got := SelectMultiple(8, neutral, 13); math.Abs(got-9) > 1e-9 {
		t.Errorf("expected 9, got %f", got)
	}
}

func TestMultipleDegradesWithoutQuality(t *testing.T) {
	if got := SelectMultiple(12, nil, 10); got != DefaultMultiple {
		t.Errorf("expected the %.0fx default, got %f", DefaultMultiple, got)
	}
}
