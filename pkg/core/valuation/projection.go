package valuation

import (
	"fmt"
	"math"
)

// Projection holds the projected FCF series and its discounted values.
type Projection struct {
	Flows         []float64
	TerminalValue float64
	PVFlows       float64
	PVTerminal    float64
}

// GrowthForYear returns the growth rate applied in projection year y
// (1-based). Years 1-5 use the resolved rate unmodified; later years decay
// it linearly toward the terminal floor over 10 years, modeling fading
// competitive advantage.
func GrowthForYear(growthRate float64, year int) float64 {
	if year <= 5 {
		return growthRate
	}
	decayed := growthRate * (1 - float64(year-5)/10)
	return math.Max(decayed, TerminalGrowthCap)
}

// Project compounds baseFCF over the horizon using each year's own
// schedule-selected rate, capitalizes a terminal value, and discounts
// everything to present value.
func Project(baseFCF, growthRate float64, params Parameters) (*Projection, error) {
	flows := make([]float64, 0, params.Years)
	for year := 1; year <= params.Years; year++ {
		g := GrowthForYear(growthRate, year)
		flows = append(flows, baseFCF*math.Pow(1+g, float64(year)))
	}

	finalFCF := flows[len(flows)-1]
	var terminal float64
	switch params.TerminalMethod {
	case TerminalGordon:
		perpetualGrowth := math.Min(growthRate/2, TerminalGrowthCap)
		if params.DiscountRate <= perpetualGrowth {
			return nil, fmt.Errorf("%w: discount rate %.4f must exceed perpetual growth %.4f",
				ErrInvalidRate, params.DiscountRate, perpetualGrowth)
		}
		terminal = finalFCF * (1 + perpetualGrowth) / (params.DiscountRate - perpetualGrowth)
	case TerminalExitMultiple:
		terminal = finalFCF * ExitFCFMultiple
	default:
		return nil, fmt.Errorf("%w: unknown terminal method %q", ErrInvalidRate, params.TerminalMethod)
	}

	var pvFlows float64
	for year, cf := range flows {
		pv, err := presentValue(cf, params.DiscountRate, year+1)
		if err != nil {
			return nil, err
		}
		pvFlows += pv
	}
	pvTerminal, err := presentValue(terminal, params.DiscountRate, params.Years)
	if err != nil {
		return nil, err
	}

	return &Projection{
		Flows:         flows,
		TerminalValue: terminal,
		PVFlows:       pvFlows,
		PVTerminal:    pvTerminal,
	}, nil
}

// presentValue discounts a future amount at the given year. A rate <= -1
// would flip the sign of the denominator and produce nonsense, so it is
// rejected outright.
func presentValue(amount, rate float64, year int) (float64, error) {
	if rate <= -1 {
		return 0, fmt.Errorf("%w: discount rate %.4f <= -1", ErrInvalidRate, rate)
	}
	return amount / math.Pow(1+rate, float64(year)), nil
}
