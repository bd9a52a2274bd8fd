package valuation

import (
	"errors"
	"math"
	"testing"
)

func TestGrowthSchedule(t *testing.T) {
	// With growth 0.10:
	//   years 1-5: 0.10 flat
	//   year 6:  0.10 * (1 - 1/10) = 0.09
	//   year 10: 0.10 * (1 - 5/10) = 0.05
	//   year 15: 0.10 * (1 - 10/10) = 0.00 -> floored at 0.03
	cases := []struct {
		year int
		want float64
	}{
		{1, 0.10}, {5, 0.10}, {6, 0.09}, {10, 0.05}, {15, 0.03},
	}
	for _, c := range cases {
		got := GrowthForYear(0.10, c.year)
		if math.Abs(got-c.want) > 1e-12 {
			t.Errorf("year %d: expected %f, got %f", c.year, c.want, got)
		}
	}
}

func TestProjectedFlowsCompoundPerYearRate(t *testing.T) {
	// Year 6 uses its own decayed rate for the whole compounding:
	// base * (1 + 0.09)^6, not 5 years at 0.10 plus one at 0.09.
	proj, err := Project(100, 0.10, Parameters{DiscountRate: 0.10, TerminalMethod: TerminalExitMultiple, Years: 6})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 100 * math.Pow(1.09, 6)
	if math.Abs(proj.Flows[5]-want) > 1e-9 {
		t.Errorf("expected %f, got %f", want, proj.Flows[5])
	}
}

func TestExitMultipleTerminalValue(t *testing.T) {
	// Terminal value is always 12x the final projected flow. Note the decay
	// floor applies from year 6 even at zero growth: GrowthForYear(0, 6) =
	// max(0, 0.03) = 0.03, so the final flow compounds at 3%.
	proj, err := Project(1_000_000, 0, Parameters{DiscountRate: 0.10, TerminalMethod: TerminalExitMultiple, Years: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := proj.Flows[len(proj.Flows)-1] * 12
	if math.Abs(proj.TerminalValue-want) > 1e-6 {
		t.Errorf("expected terminal %f, got %f", want, proj.TerminalValue)
	}
}

func TestExitMultipleExactness(t *testing.T) {
	// One-year horizon with zero growth: final flow is exactly the base.
	proj, err := Project(1_000_000, 0, Parameters{DiscountRate: 0.10, TerminalMethod: TerminalExitMultiple, Years: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proj.TerminalValue != 12_000_000 {
		t.Errorf("expected exactly 12000000, got %f", proj.TerminalValue)
	}
}

func TestGordonRequiresDiscountAbovePerpetualGrowth(t *testing.T) {
	// growth 0.10 -> perpetual growth min(0.05, 0.03) = 0.03.
	// discount == perpetual growth must fail; epsilon above must succeed.
	_, err := Project(100, 0.10, Parameters{DiscountRate: 0.03, TerminalMethod: TerminalGordon, Years: 10})
	if !errors.Is(err, ErrInvalidRate) {
		t.Errorf("expected ErrInvalidRate at the boundary, got %v", err)
	}

	_, err = Project(100, 0.10, Parameters{DiscountRate: 0.03 + 1e-9, TerminalMethod: TerminalGordon, Years: 10})
	if err != nil {
		t.Errorf("epsilon above the boundary must succeed, got %v", err)
	}
}

func TestGordonTerminalValue(t *testing.T) {
	// base 100, growth 0.04 -> perpetual g = 0.02, discount 0.10.
	// Final-year flow compounds per schedule; TV = final*(1.02)/(0.08).
	proj, err := Project(100, 0.04, Parameters{DiscountRate: 0.10, TerminalMethod: TerminalGordon, Years: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	final := proj.Flows[9]
	want := final * 1.02 / 0.08
	if math.Abs(proj.TerminalValue-want) > 1e-9 {
		t.Errorf("expected %f, got %f", want, proj.TerminalValue)
	}
}

func TestPresentValueRejectsImpossibleRate(t *testing.T) {
	if _, err := presentValue(100, -1, 1); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("rate <= -1 must be ErrInvalidRate, got %v", err)
	}
}

func TestPresentValueDiscounting(t *testing.T) {
	// 110 one year out at 10%: 110 / 1.1 = 100.
	pv, err := presentValue(110, 0.10, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(pv-100) > 1e-9 {
		t.Errorf("expected 100, got %f", pv)
	}
}
