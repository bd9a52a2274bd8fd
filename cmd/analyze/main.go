// Command analyze runs DCF valuations for one or more tickers from the
// terminal and prints a sectioned report for each.
//
// Usage:
//
//	analyze [flags] TICKER [TICKER...]
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"stockval/config"
	"stockval/logger"
	"stockval/pkg/core/analysis"
	"stockval/pkg/core/assistant"
	"stockval/pkg/core/ingest"
	"stockval/pkg/core/valuation"
)

type options struct {
	growth   float64
	discount float64
	years    int
	terminal string
	multiple float64
	margin   float64
	ai       bool
}

func main() {
	var opts options
	flag.Float64Var(&opts.growth, "growth", valuation.DeriveGrowth,
		"annual FCF growth rate (e.g. 0.08); omit to derive from revenue history")
	flag.Float64Var(&opts.discount, "discount", 0.10, "discount rate")
	flag.IntVar(&opts.years, "years", valuation.DefaultYears, "projection horizon in years")
	flag.StringVar(&opts.terminal, "terminal", "gordon", "terminal value method: gordon or multiple")
	flag.Float64Var(&opts.multiple, "multiple", 0, "override the dynamic FCF multiple (0 = computed)")
	flag.Float64Var(&opts.margin, "margin", 0.3, "margin of safety applied to the buy-below price")
	flag.BoolVar(&opts.ai, "ai", false, "generate an AI analyst commentary (requires GEMINI_API_KEY)")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: analyze [flags] TICKER [TICKER...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	godotenv.Load()
	log := logger.L()

	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	av := ingest.NewAlphaVantageClient(cfg.DataSource.AlphaVantageURL, cfg.DataSource.APIKey())
	yahoo := ingest.NewYahooClient()
	statementCache := ingest.NewStatementCache(cfg.DataSource.CacheDir, cfg.DataSource.CacheTTL())
	svc := ingest.NewService(cfg.DataSource.Provider, av, yahoo, statementCache)

	ctx := context.Background()

	var analyst *assistant.Analyst
	if opts.ai {
		analyst, err = assistant.NewAnalyst(ctx)
		if err != nil {
			log.WithField("error", err).Warn("AI commentary unavailable")
		} else {
			defer analyst.Close()
		}
	}

	failed := 0
	for _, ticker := range flag.Args() {
		if err := analyze(ctx, svc, analyst, strings.ToUpper(ticker), opts); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", strings.ToUpper(ticker), err)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func analyze(ctx context.Context, svc *ingest.Service, analyst *assistant.Analyst, ticker string, opts options) error {
	params := valuation.Parameters{
		GrowthRate:     opts.growth,
		DiscountRate:   opts.discount,
		Years:          opts.years,
		MarginOfSafety: opts.margin,
	}
	switch strings.ToLower(opts.terminal) {
	case "", "gordon":
		params.TerminalMethod = valuation.TerminalGordon
	case "multiple", "exit_multiple":
		params.TerminalMethod = valuation.TerminalExitMultiple
	default:
		return fmt.Errorf("unknown terminal method %q (want gordon or multiple)", opts.terminal)
	}
	if err := params.Validate(); err != nil {
		return err
	}

	bundle, err := svc.Fundamentals(ctx, ticker)
	if err != nil {
		return err
	}

	res, err := valuation.ComputeValuation(bundle.Periods, bundle.Snapshot, params)
	if err != nil {
		return err
	}
	if opts.multiple > 0 {
		res.DynamicMultiple = opts.multiple
	}

	printReport(ticker, bundle, res, analysis.Assess(res, opts.margin))

	if analyst != nil {
		commentary, err := analyst.Analyze(ctx, ticker, res)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: AI commentary failed: %v\n", ticker, err)
		} else {
			fmt.Println("AI Analyst Commentary")
			fmt.Println(strings.Repeat("-", 60))
			fmt.Println(commentary)
			fmt.Println()
		}
	}
	return nil
}

func printReport(ticker string, bundle *ingest.FundamentalsBundle, res *valuation.Result, a analysis.Assessment) {
	nf := res.Financials

	fmt.Println(strings.Repeat("=", 60))
	title := ticker
	if bundle.Name != "" {
		title = fmt.Sprintf("%s (%s)", bundle.Name, ticker)
	}
	fmt.Printf("  %s\n", title)
	if bundle.Sector != "" {
		fmt.Printf("  %s / %s\n", bundle.Sector, bundle.Industry)
	}
	fmt.Println(strings.Repeat("=", 60))

	fmt.Println("\nMarket Data")
	fmt.Printf("  Current Price        %s\n", money(nf.CurrentPrice))
	fmt.Printf("  Market Cap           %s\n", money(nf.CurrentPrice*nf.SharesOutstanding))
	fmt.Printf("  Shares Outstanding   %s\n", money(nf.SharesOutstanding))
	fmt.Printf("  Beta                 %.2f\n", nf.Beta)

	fmt.Println("\nCash Flow Analysis")
	if len(nf.FCFHistory) > 0 {
		fmt.Printf("  Latest FCF           %s\n", money(nf.FCFHistory[0]))
	}
	fmt.Printf("  Weighted Avg FCF     %s\n", money(nf.AverageFCF))
	fmt.Printf("  FCF CAGR             %.1f%%\n", analysis.CAGR(nf.FCFHistory, len(nf.FCFHistory)-1))

	fmt.Println("\nQuality Metrics")
	fmt.Printf("  FCF / Net Income     %.1f%%\n", res.Quality.FCFToIncome)
	if math.IsInf(res.Quality.DebtToFCF, 1) {
		fmt.Printf("  Debt / FCF           n/a (negative free cash flow)\n")
	} else {
		fmt.Printf("  Debt / FCF           %.2fx\n", res.Quality.DebtToFCF)
	}
	fmt.Printf("  WACC                 %.2f%%\n", res.WACC)

	fmt.Println("\nValuation")
	fmt.Printf("  Growth Rate          %.1f%%\n", res.GrowthRate*100)
	fmt.Printf("  Discount Rate        %.1f%%\n", res.DiscountRate*100)
	fmt.Printf("  PV of Cash Flows     %s\n", money(res.PVCashFlows))
	fmt.Printf("  PV of Terminal       %s\n", money(res.PVTerminal))
	fmt.Printf("  Enterprise Value     %s\n", money(res.EnterpriseValue))
	fmt.Printf("  Intrinsic Value      $%.2f / share\n", res.PerShareValue)
	fmt.Printf("  FCF Multiple         %.1fx\n", res.DynamicMultiple)
	fmt.Printf("  Fair Value           $%.2f / share\n", a.FairValue)
	fmt.Printf("  Buy Below            $%.2f / share\n", a.BuyBelow)
	fmt.Printf("  Upside               %+.1f%%\n", a.UpsidePercent)

	fmt.Println("\nRecommendation")
	fmt.Printf("  Growth               %s\n", a.GrowthRating)
	fmt.Printf("  Quality              %s\n", a.QualityRating)
	fmt.Printf("  Verdict              %s\n", a.Recommendation)
	fmt.Println()
}

// money renders a dollar amount with a B/M suffix for readability.
func money(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	default:
		return fmt.Sprintf("$%.2f", v)
	}
}
