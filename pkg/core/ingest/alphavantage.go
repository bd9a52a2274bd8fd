package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"stockval/logger"
	"stockval/pkg/core/fundamentals"
)

const maxFetchRetries = 3

// avFunctions are the Alpha Vantage endpoints one full fetch needs.
var avFunctions = []string{"CASH_FLOW", "INCOME_STATEMENT", "BALANCE_SHEET", "OVERVIEW"}

// AlphaVantageClient fetches annual statements and the company overview from
// the Alpha Vantage REST API.
type AlphaVantageClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	// Client-side pacing. Alpha Vantage throttles aggressively and answers
	// over-quota requests with a 200 plus a "Note" body.
	limiter *rate.Limiter
	log     *logrus.Entry
}

func NewAlphaVantageClient(baseURL, apiKey string) *AlphaVantageClient {
	return &AlphaVantageClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(300*time.Millisecond), 1),
		log:        logger.WithFields(logger.Fields{"component": "alphavantage"}),
	}
}

// Fetch pulls cash flow, income statement, balance sheet, and overview for a
// ticker in parallel, retrying the whole batch on timeout.
func (c *AlphaVantageClient) Fetch(ctx context.Context, ticker string) (*FundamentalsBundle, error) {
	var lastErr error
	for attempt := 1; attempt <= maxFetchRetries; attempt++ {
		bodies, err := c.fetchAll(ctx, ticker)
		if err == nil {
			return c.assemble(ticker, bodies)
		}
		if errors.Is(err, ErrRateLimited) || !isTimeout(err) {
			return nil, err
		}
		lastErr = err
		if attempt < maxFetchRetries {
			c.log.WithFields(logger.Fields{"ticker": ticker, "attempt": attempt}).
				Warn("timeout fetching statements, retrying")
			time.Sleep(time.Second)
		}
	}
	return nil, fmt.Errorf("fetch for %s failed after %d attempts: %w", ticker, maxFetchRetries, lastErr)
}

func (c *AlphaVantageClient) fetchAll(ctx context.Context, ticker string) (map[string][]byte, error) {
	bodies := make(map[string][]byte, len(avFunctions))
	var mu sync.Mutex
	var firstErr error
	var wg sync.WaitGroup

	for _, function := range avFunctions {
		wg.Add(1)
		go func(function string) {
			defer wg.Done()
			body, err := c.query(ctx, function, ticker)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			bodies[function] = body
		}(function)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return bodies, nil
}

func (c *AlphaVantageClient) query(ctx context.Context, function, ticker string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", c.baseURL, err)
	}
	q := u.Query()
	q.Set("function", function)
	q.Set("symbol", ticker)
	q.Set("apikey", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", function, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s request returned status %d", function, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s response read failed: %w", function, err)
	}

	// Quota and symbol errors come back as 200 with a message body.
	var probe struct {
		Note         string `json:"Note"`
		Information  string `json:"Information"`
		ErrorMessage string `json:"Error Message"`
	}
	if err := json.Unmarshal(body, &probe); err == nil {
		if probe.ErrorMessage != "" {
			return nil, fmt.Errorf("%s: %s", function, probe.ErrorMessage)
		}
		if probe.Note != "" || probe.Information != "" {
			return nil, fmt.Errorf("%w: %s", ErrRateLimited, function)
		}
	}
	return body, nil
}

// annualStatements mirrors the statement endpoints' response shape. Every
// value arrives as a string, including "None" for unreported fields.
type annualStatements struct {
	Symbol        string                   `json:"symbol"`
	AnnualReports []fundamentals.Statement `json:"annualReports"`
}

func (c *AlphaVantageClient) assemble(ticker string, bodies map[string][]byte) (*FundamentalsBundle, error) {
	var cashFlow, income, balance annualStatements
	if err := json.Unmarshal(bodies["CASH_FLOW"], &cashFlow); err != nil {
		return nil, fmt.Errorf("decoding cash flow for %s: %w", ticker, err)
	}
	if err := json.Unmarshal(bodies["INCOME_STATEMENT"], &income); err != nil {
		return nil, fmt.Errorf("decoding income statement for %s: %w", ticker, err)
	}
	if err := json.Unmarshal(bodies["BALANCE_SHEET"], &balance); err != nil {
		return nil, fmt.Errorf("decoding balance sheet for %s: %w", ticker, err)
	}

	overview := fundamentals.Statement{}
	if err := json.Unmarshal(bodies["OVERVIEW"], &overview); err != nil {
		return nil, fmt.Errorf("decoding overview for %s: %w", ticker, err)
	}

	if len(cashFlow.AnnualReports) == 0 {
		return nil, fmt.Errorf("%w: no annual cash-flow reports for %s", fundamentals.ErrDataInsufficient, ticker)
	}

	snapshot := fundamentals.MarketSnapshot{
		CurrentPrice:      fundamentals.ResolveOrZero(overview, fundamentals.CurrentPrice),
		SharesOutstanding: fundamentals.ResolveOrZero(overview, fundamentals.SharesOutstanding),
		Beta:              fundamentals.ResolveOrZero(overview, fundamentals.Beta),
		MarketCap:         fundamentals.ResolveOrZero(overview, fundamentals.MarketCap),
	}

	return &FundamentalsBundle{
		Ticker:    ticker,
		Name:      overview["Name"],
		Sector:    overview["Sector"],
		Industry:  overview["Industry"],
		Periods:   zipPeriods(cashFlow.AnnualReports, income.AnnualReports, balance.AnnualReports),
		Snapshot:  snapshot,
		FetchedAt: time.Now(),
	}, nil
}

// zipPeriods aligns the three statements by fiscal date. The cash-flow
// series drives the period list since FCF is the one series the engine
// cannot do without; income or balance data missing for a date just leaves
// that statement empty.
func zipPeriods(cashFlows, incomes, balances []fundamentals.Statement) []fundamentals.RawStatementPeriod {
	incomeByDate := indexByFiscalDate(incomes)
	balanceByDate := indexByFiscalDate(balances)

	periods := make([]fundamentals.RawStatementPeriod, 0, len(cashFlows))
	for _, cf := range cashFlows {
		date := cf["fiscalDateEnding"]
		periods = append(periods, fundamentals.RawStatementPeriod{
			FiscalDateEnding: date,
			CashFlow:         cf,
			Income:           incomeByDate[date],
			Balance:          balanceByDate[date],
		})
	}
	return periods
}

func indexByFiscalDate(reports []fundamentals.Statement) map[string]fundamentals.Statement {
	byDate := make(map[string]fundamentals.Statement, len(reports))
	for _, r := range reports {
		byDate[r["fiscalDateEnding"]] = r
	}
	return byDate
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
