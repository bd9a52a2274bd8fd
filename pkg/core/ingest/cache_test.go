package ingest

import (
	"testing"
	"time"

	"stockval/pkg/core/fundamentals"
)

func testBundle(ticker string, fetchedAt time.Time) *FundamentalsBundle {
	return &FundamentalsBundle{
		Ticker: ticker,
		Name:   "Test Corp",
		Periods: []fundamentals.RawStatementPeriod{
			{
				FiscalDateEnding: "2023-12-31",
				CashFlow:         fundamentals.Statement{"operatingCashflow": "100"},
			},
		},
		Snapshot:  fundamentals.MarketSnapshot{CurrentPrice: 50, SharesOutstanding: 1000},
		FetchedAt: fetchedAt,
	}
}

func TestCacheRoundTrip(t *testing.T) {
	c := NewStatementCache(t.TempDir(), 24*time.Hour)

	c.Put(testBundle("AAPL", time.Now()))

	got, ok := c.Get("aapl")
	if !ok {
		t.Fatal("Get() miss after Put()")
	}
	if got.Name != "Test Corp" || got.Snapshot.CurrentPrice != 50 {
		t.Errorf("cached bundle mangled: %+v", got)
	}
	if len(got.Periods) != 1 || got.Periods[0].CashFlow["operatingCashflow"] != "100" {
		t.Errorf("cached statements mangled: %+v", got.Periods)
	}
}

func TestCacheFileSurvivesNewInstance(t *testing.T) {
	dir := t.TempDir()

	NewStatementCache(dir, 24*time.Hour).Put(testBundle("MSFT", time.Now()))

	// Fresh instance has an empty memory layer and must fall back to disk.
	fresh := NewStatementCache(dir, 24*time.Hour)
	if _, ok := fresh.Get("MSFT"); !ok {
		t.Fatal("file-backed entry not found by new cache instance")
	}
}

func TestCacheExpiry(t *testing.T) {
	dir := t.TempDir()

	// An entry fetched 25 hours ago is past the 24h window.
	NewStatementCache(dir, 24*time.Hour).Put(testBundle("OLD", time.Now().Add(-25*time.Hour)))

	fresh := NewStatementCache(dir, 24*time.Hour)
	if _, ok := fresh.Get("OLD"); ok {
		t.Fatal("expired entry served from file cache")
	}
}

func TestCacheMiss(t *testing.T) {
	c := NewStatementCache(t.TempDir(), 24*time.Hour)
	if _, ok := c.Get("NOPE"); ok {
		t.Fatal("Get() hit for ticker never stored")
	}
}
