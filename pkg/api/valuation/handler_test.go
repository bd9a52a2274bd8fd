package valuation

import (
	"errors"
	"testing"

	"stockval/pkg/core/valuation"
)

func TestParseDefaults(t *testing.T) {
	req := Request{Ticker: "aapl"}

	ticker, params, err := req.parse()
	if err != nil {
		t.Fatalf("parse() error = %v", err)
	}
	if ticker != "AAPL" {
		t.Errorf("ticker = %q, want AAPL", ticker)
	}
	if params.GrowthRate != valuation.DeriveGrowth {
		t.Errorf("growth = %v, want derive sentinel", params.GrowthRate)
	}
	if params.DiscountRate != 0.10 {
		t.Errorf("discount = %v, want 0.10", params.DiscountRate)
	}
	if params.TerminalMethod != valuation.TerminalGordon {
		t.Errorf("terminal = %q, want gordon", params.TerminalMethod)
	}
	if params.MarginOfSafety != 0.3 {
		t.Errorf("margin = %v, want 0.3", params.MarginOfSafety)
	}
	if params.Years != valuation.DefaultYears {
		t.Errorf("years = %d, want %d", params.Years, valuation.DefaultYears)
	}
}

func TestParseExplicitValues(t *testing.T) {
	growth := 0.08
	margin := 0.2
	req := Request{
		Ticker:         "MSFT",
		GrowthRate:     &growth,
		DiscountRate:   0.12,
		TerminalMethod: "multiple",
		Years:          5,
		MarginOfSafety: &margin,
	}

	_, params, err := req.parse()
	if err != nil {
		t.Fatalf("parse() error = %v", err)
	}
	if params.GrowthRate != 0.08 || params.DiscountRate != 0.12 {
		t.Errorf("rates = %v/%v, want 0.08/0.12", params.GrowthRate, params.DiscountRate)
	}
	// "multiple" is accepted as an alias for the exit-multiple method.
	if params.TerminalMethod != valuation.TerminalExitMultiple {
		t.Errorf("terminal = %q, want exit_multiple", params.TerminalMethod)
	}
	if params.MarginOfSafety != 0.2 || params.Years != 5 {
		t.Errorf("margin/years = %v/%d, want 0.2/5", params.MarginOfSafety, params.Years)
	}
}

func TestParseRejectsBadTickers(t *testing.T) {
	for _, ticker := range []string{"", "WAYTOOLONGTK", "BAD TICK", "AA$PL"} {
		req := Request{Ticker: ticker}
		if _, _, err := req.parse(); !errors.Is(err, valuation.ErrInvalidRate) {
			t.Errorf("parse(%q) error = %v, want ErrInvalidRate", ticker, err)
		}
	}
}

func TestParseAllowsDottedTickers(t *testing.T) {
	req := Request{Ticker: "PETR4.SA"}
	ticker, _, err := req.parse()
	if err != nil {
		t.Fatalf("parse() error = %v", err)
	}
	if ticker != "PETR4.SA" {
		t.Errorf("ticker = %q, want PETR4.SA", ticker)
	}
}

func TestParseRejectsBadRates(t *testing.T) {
	growth := 1.5
	req := Request{Ticker: "AAPL", GrowthRate: &growth}
	if _, _, err := req.parse(); !errors.Is(err, valuation.ErrInvalidRate) {
		t.Errorf("growth 1.5: error = %v, want ErrInvalidRate", err)
	}

	req = Request{Ticker: "AAPL", DiscountRate: -0.1}
	if _, _, err := req.parse(); !errors.Is(err, valuation.ErrInvalidRate) {
		t.Errorf("discount -0.1: error = %v, want ErrInvalidRate", err)
	}

	req = Request{Ticker: "AAPL", TerminalMethod: "perpetuity"}
	if _, _, err := req.parse(); !errors.Is(err, valuation.ErrInvalidRate) {
		t.Errorf("bad terminal method: error = %v, want ErrInvalidRate", err)
	}
}
