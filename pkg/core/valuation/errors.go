package valuation

import "errors"

// ErrInvalidRate signals economically inconsistent caller parameters: a
// discount rate at or below the perpetual growth rate, or a discount rate
// <= -1. Surfaced immediately, never defaulted.
var ErrInvalidRate = errors.New("invalid rate")

// ErrNonPositiveValuation signals that the subject is not viable for this
// model: average FCF <= 0, shares outstanding <= 0, or a final per-share
// value <= 0. It must never be coerced to zero or silently dropped.
var ErrNonPositiveValuation = errors.New("non-positive valuation")
