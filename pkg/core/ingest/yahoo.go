package ingest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"stockval/logger"
	"stockval/pkg/core/fundamentals"
)

// YahooClient scrapes the Yahoo Finance quote page for the market snapshot.
// It exists because the Alpha Vantage overview carries no live price; the
// statements themselves always come from Alpha Vantage.
type YahooClient struct {
	httpClient *http.Client
	log        *logrus.Entry
}

func NewYahooClient() *YahooClient {
	return &YahooClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        logger.WithFields(logger.Fields{"component": "yahoo"}),
	}
}

// Snapshot fetches price, market cap, beta, and shares outstanding for a
// ticker. Shares are derived from cap/price when not listed directly.
func (c *YahooClient) Snapshot(ctx context.Context, ticker string) (*fundamentals.MarketSnapshot, error) {
	quoteURL := fmt.Sprintf("https://finance.yahoo.com/quote/%s", ticker)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, quoteURL, nil)
	if err != nil {
		return nil, err
	}
	setBrowserHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo quote request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo returned status %d for %s", resp.StatusCode, ticker)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing yahoo quote page: %w", err)
	}

	snap := &fundamentals.MarketSnapshot{}

	// Live quote values are carried by fin-streamer elements.
	priceSel := fmt.Sprintf(`fin-streamer[data-symbol=%q][data-field="regularMarketPrice"]`, strings.ToUpper(ticker))
	doc.Find(priceSel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := s.AttrOr("data-value", s.Text())
		if v, err := parseAbbreviatedNumber(raw); err == nil && v > 0 {
			snap.CurrentPrice = v
			return false
		}
		return true
	})

	doc.Find(`fin-streamer[data-field="marketCap"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, err := parseAbbreviatedNumber(s.Text()); err == nil && v > 0 {
			snap.MarketCap = v
			return false
		}
		return true
	})

	// Summary-table statistics keyed by row label.
	doc.Find("table tr, li").Each(func(_ int, row *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(row.Find("td, span").First().Text()))
		value := strings.TrimSpace(row.Find("td, span").Last().Text())
		switch {
		case strings.HasPrefix(label, "beta"):
			if v, err := parseAbbreviatedNumber(value); err == nil && snap.Beta == 0 {
				snap.Beta = v
			}
		case strings.HasPrefix(label, "market cap"):
			if v, err := parseAbbreviatedNumber(value); err == nil && snap.MarketCap == 0 {
				snap.MarketCap = v
			}
		case strings.Contains(label, "shares outstanding"):
			if v, err := parseAbbreviatedNumber(value); err == nil && snap.SharesOutstanding == 0 {
				snap.SharesOutstanding = v
			}
		}
	})

	if snap.SharesOutstanding == 0 && snap.CurrentPrice > 0 && snap.MarketCap > 0 {
		snap.SharesOutstanding = snap.MarketCap / snap.CurrentPrice
	}

	if snap.CurrentPrice == 0 && snap.MarketCap == 0 {
		return nil, fmt.Errorf("no usable market data on yahoo quote page for %s", ticker)
	}

	c.log.WithFields(logger.Fields{
		"ticker": ticker,
		"price":  snap.CurrentPrice,
	}).Debug("scraped yahoo snapshot")
	return snap, nil
}

// parseAbbreviatedNumber handles the display formats Yahoo uses: plain
// numbers with thousands separators and K/M/B/T suffixed magnitudes.
func parseAbbreviatedNumber(raw string) (float64, error) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if s == "" || s == "N/A" || s == "--" {
		return 0, fmt.Errorf("no value")
	}

	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "T"):
		multiplier, s = 1e12, strings.TrimSuffix(s, "T")
	case strings.HasSuffix(s, "B"):
		multiplier, s = 1e9, strings.TrimSuffix(s, "B")
	case strings.HasSuffix(s, "M"):
		multiplier, s = 1e6, strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "K"):
		multiplier, s = 1e3, strings.TrimSuffix(s, "K")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return v * multiplier, nil
}

// setBrowserHeaders makes the request look like a regular browser visit.
// Yahoo serves a consent interstitial to clients without them.
func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}
