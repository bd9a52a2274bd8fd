package assistant

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"stockval/pkg/core/utils"
	"stockval/pkg/core/valuation"
)

const analystSystemPrompt = `As an assistant personifying an expert in markets and the stock market, your task is to provide counsel regarding a stock after analyzing the information given to you. Draw on your understanding of macroeconomic indicators, fundamental analysis, risk management, and your ability to interpret financial statements and market data.

Provide comprehensive counsel that considers the current market conditions, offering a balanced and informed recommendation. Your response should be well-reasoned, insightful, and tailored to the specific stock in question, weighing both the potential benefits and risks of the investment. Answer in markdown.`

// Analyst writes the expert commentary for a completed valuation using a
// direct Gemini client.
type Analyst struct {
	client    *genai.Client
	modelName string
}

func NewAnalyst(ctx context.Context) (*Analyst, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %v", err)
	}

	return &Analyst{
		client:    client,
		modelName: "gemini-2.0-flash",
	}, nil
}

func (a *Analyst) Close() error {
	return a.client.Close()
}

// Analyze produces a narrative recommendation for a finished valuation.
func (a *Analyst) Analyze(ctx context.Context, ticker string, res *valuation.Result) (string, error) {
	summary := FormatSummary(ticker, res)

	model := a.client.GenerativeModel(a.modelName)
	model.SetTemperature(0.17)
	model.SetMaxOutputTokens(1500)

	fullPrompt := fmt.Sprintf("%s\n\nPlease analyze this stock data and provide your expert recommendation:\n\n%s",
		analystSystemPrompt, summary)

	resp, err := model.GenerateContent(ctx, genai.Text(fullPrompt))
	if err != nil {
		return "", fmt.Errorf("analyst generation failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("analyst returned an empty response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return utils.CleanMarkdown(sb.String()), nil
}

// FormatSummary renders the numeric result as the text block handed to the
// model. All dollar amounts except per-share figures are shown in billions.
func FormatSummary(ticker string, res *valuation.Result) string {
	nf := res.Financials

	var sb strings.Builder
	fmt.Fprintf(&sb, "Stock Analysis for %s:\n\n", ticker)

	fmt.Fprintf(&sb, "Market Data:\n")
	fmt.Fprintf(&sb, "- Current Price: $%.2f\n", nf.CurrentPrice)
	fmt.Fprintf(&sb, "- Market Cap: $%.2fB\n", nf.CurrentPrice*nf.SharesOutstanding/1e9)
	fmt.Fprintf(&sb, "- Shares Outstanding: %.0f\n\n", nf.SharesOutstanding)

	fmt.Fprintf(&sb, "Cash Flow Analysis:\n")
	if len(nf.FCFHistory) > 0 {
		fmt.Fprintf(&sb, "- Latest Free Cash Flow: $%.2fB\n", nf.FCFHistory[0]/1e9)
		fmt.Fprintf(&sb, "- FCF per Share: $%.2f\n", nf.FCFHistory[0]/nf.SharesOutstanding)
	}
	fmt.Fprintf(&sb, "- FCF Growth Rate: %.1f%%\n\n", res.GrowthRate*100)

	fmt.Fprintf(&sb, "Quality Metrics:\n")
	fmt.Fprintf(&sb, "- FCF/Net Income: %.1f%%\n", res.Quality.FCFToIncome)
	if math.IsInf(res.Quality.DebtToFCF, 1) {
		fmt.Fprintf(&sb, "- Debt/FCF: n/a (negative free cash flow)\n")
	} else {
		fmt.Fprintf(&sb, "- Debt/FCF: %.1fx\n", res.Quality.DebtToFCF)
	}
	fmt.Fprintf(&sb, "- Working Capital Change: $%.2fB\n\n", res.Quality.WorkingCapitalChange/1e9)

	fmt.Fprintf(&sb, "Valuation:\n")
	fmt.Fprintf(&sb, "- WACC: %.2f%%\n", res.WACC)
	fmt.Fprintf(&sb, "- Suggested Multiple: %.1fx\n", res.DynamicMultiple)
	fmt.Fprintf(&sb, "- Intrinsic Value per Share: $%.2f\n", res.PerShareValue)
	if nf.CurrentPrice > 0 {
		upside := (res.PerShareValue/nf.CurrentPrice - 1) * 100
		fmt.Fprintf(&sb, "- Upside Potential: %+.1f%%\n", upside)
	}

	fmt.Fprintf(&sb, "\nHistorical FCF:\n")
	for i, fcf := range nf.FCFHistory {
		fmt.Fprintf(&sb, "Year %d: $%.2fB\n", len(nf.FCFHistory)-i, fcf/1e9)
	}

	return sb.String()
}
