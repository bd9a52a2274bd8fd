// Package ingest fetches company fundamentals from external data vendors
// and shapes them into the raw statement form the normalizer consumes.
package ingest

import (
	"errors"
	"time"

	"stockval/pkg/core/fundamentals"
)

// ErrRateLimited signals that the data vendor refused the request because
// the API quota is exhausted. Callers should surface this as a retry-later
// condition, not a data problem.
var ErrRateLimited = errors.New("data provider rate limit exceeded")

// FundamentalsBundle is everything one fetch produces for a ticker: the
// historical statements, the market snapshot, and company metadata.
type FundamentalsBundle struct {
	Ticker   string `json:"ticker"`
	Name     string `json:"name"`
	Sector   string `json:"sector"`
	Industry string `json:"industry"`

	Periods  []fundamentals.RawStatementPeriod `json:"periods"`
	Snapshot fundamentals.MarketSnapshot       `json:"snapshot"`

	FetchedAt time.Time `json:"fetched_at"`
}
