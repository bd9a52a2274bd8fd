// Package assistant holds the language-model helpers around the valuation
// engine: resolving free-text company names to tickers and writing the
// expert commentary for a finished valuation.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"stockval/pkg/core/llm"
	"stockval/pkg/core/utils"
)

const tickerSystemPrompt = `You are a stock market expert. Answer ONLY with the requested information in the specified JSON format.

For Brazilian companies:
- Use the .SA suffix
- Distinguish common (ON) and preferred (PN) share classes

For US companies:
- Use the NYSE/NASDAQ ticker with no suffix

Respond with a JSON object of exactly this shape:
{"ticker": "<primary ticker>", "market": "<BR or US>", "note": "<short explanation>"}`

// TickerInfo is the resolved identity of a company named in free text.
type TickerInfo struct {
	Ticker string `json:"ticker"`
	Market string `json:"market"`
	Note   string `json:"note"`
}

// TickerFinder resolves company names to ticker symbols via the configured
// language model.
type TickerFinder struct {
	manager *llm.Manager
}

func NewTickerFinder(manager *llm.Manager) *TickerFinder {
	return &TickerFinder{manager: manager}
}

// Find asks the model for the primary ticker of a company. The reply is
// decoded leniently since models sometimes wrap or malform the JSON.
func (f *TickerFinder) Find(ctx context.Context, companyName string) (*TickerInfo, error) {
	prompt := fmt.Sprintf("What is the ticker for: %s?", companyName)

	raw, err := f.manager.Execute(ctx, "ticker_lookup", prompt, tickerSystemPrompt, map[string]interface{}{
		llm.OptionJSONMode:  true,
		llm.OptionMaxTokens: 100,
	})
	if err != nil {
		return nil, fmt.Errorf("ticker lookup failed: %w", err)
	}

	var info TickerInfo
	if err := utils.ParseLLMOutput(raw, &info); err != nil {
		return nil, fmt.Errorf("could not parse ticker lookup response: %w", err)
	}
	info.Ticker = strings.ToUpper(strings.TrimSpace(info.Ticker))
	if info.Ticker == "" {
		return nil, fmt.Errorf("model returned no ticker for %q", companyName)
	}
	return &info, nil
}

// IsValidTicker reports whether the input already looks like a ticker, so
// callers can skip the model round trip. US tickers are 1-5 letters;
// Brazilian tickers are letters ending in a single class digit plus the
// .SA suffix (PETR4.SA, VALE3.SA).
func IsValidTicker(input string) bool {
	s := strings.ToUpper(strings.TrimSpace(input))
	if s == "" {
		return false
	}

	if strings.HasSuffix(s, ".SA") {
		base := strings.TrimSuffix(s, ".SA")
		if len(base) < 4 || len(base) > 6 {
			return false
		}
		if !unicode.IsDigit(rune(base[len(base)-1])) {
			return false
		}
		for _, c := range base[:len(base)-1] {
			if !unicode.IsLetter(c) {
				return false
			}
		}
		return true
	}

	if len(s) < 1 || len(s) > 5 {
		return false
	}
	for _, c := range s {
		if !unicode.IsLetter(c) {
			return false
		}
	}
	return true
}
