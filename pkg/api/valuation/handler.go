// Package valuation exposes the valuation engine over HTTP.
package valuation

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"stockval/logger"
	"stockval/pkg/api/middleware"
	"stockval/pkg/core/analysis"
	"stockval/pkg/core/assistant"
	"stockval/pkg/core/ingest"
	"stockval/pkg/core/store"
	"stockval/pkg/core/utils"
	"stockval/pkg/core/valuation"
)

type Handler struct {
	ingest  *ingest.Service
	store   *store.ValuationStore // nil when persistence is not configured
	analyst *assistant.Analyst    // nil when no LLM credentials are present
	log     *logrus.Entry
}

func NewHandler(svc *ingest.Service, vs *store.ValuationStore, analyst *assistant.Analyst) *Handler {
	return &Handler{
		ingest:  svc,
		store:   vs,
		analyst: analyst,
		log:     logger.WithFields(logger.Fields{"component": "api.valuation"}),
	}
}

// Request mirrors the public valuation endpoint contract. Optional knobs
// left out of the JSON fall back to their defaults; a missing growth rate
// means "derive it from revenue history".
type Request struct {
	Ticker           string   `json:"ticker"`
	GrowthRate       *float64 `json:"growth_rate"`
	DiscountRate     float64  `json:"discount_rate"`
	TerminalMethod   string   `json:"terminal_method"`
	Years            int      `json:"years"`
	MarginOfSafety   *float64 `json:"margin_of_safety"`
	IncludeNarrative bool     `json:"include_narrative"`
}

type Response struct {
	ID            string              `json:"id,omitempty"`
	Ticker        string              `json:"ticker"`
	Name          string              `json:"name,omitempty"`
	Sector        string              `json:"sector,omitempty"`
	Industry      string              `json:"industry,omitempty"`
	Result        *valuation.Result   `json:"result"`
	Assessment    analysis.Assessment `json:"assessment"`
	Narrative     string              `json:"narrative,omitempty"`
	NarrativeHTML string              `json:"narrative_html,omitempty"`
}

// parse validates the request and fills defaults: discount 10%, gordon
// terminal, 30% margin of safety.
func (req *Request) parse() (string, valuation.Parameters, error) {
	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if err := validateTicker(ticker); err != nil {
		return "", valuation.Parameters{}, err
	}

	params := valuation.Parameters{
		GrowthRate:     valuation.DeriveGrowth,
		DiscountRate:   req.DiscountRate,
		Years:          req.Years,
		MarginOfSafety: 0.3,
	}
	if req.GrowthRate != nil {
		params.GrowthRate = *req.GrowthRate
	}
	if params.DiscountRate == 0 {
		params.DiscountRate = 0.10
	}
	if req.MarginOfSafety != nil {
		params.MarginOfSafety = *req.MarginOfSafety
	}

	switch strings.ToLower(strings.TrimSpace(req.TerminalMethod)) {
	case "", "gordon":
		params.TerminalMethod = valuation.TerminalGordon
	case "exit_multiple", "multiple":
		params.TerminalMethod = valuation.TerminalExitMultiple
	default:
		return "", valuation.Parameters{}, fmt.Errorf("%w: unknown terminal method %q",
			valuation.ErrInvalidRate, req.TerminalMethod)
	}

	if err := params.Validate(); err != nil {
		return "", valuation.Parameters{}, err
	}
	return ticker, params, nil
}

func validateTicker(ticker string) error {
	if len(ticker) < 1 || len(ticker) > 10 {
		return fmt.Errorf("%w: ticker must be 1-10 characters", valuation.ErrInvalidRate)
	}
	for _, c := range ticker {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') && c != '.' {
			return fmt.Errorf("%w: ticker must contain only letters and numbers", valuation.ErrInvalidRate)
		}
	}
	return nil
}

// HandleValuation serves POST /api/valuation.
func (h *Handler) HandleValuation(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
		return
	}

	ticker, params, err := req.parse()
	if err != nil {
		middleware.WriteEngineError(w, r, err)
		return
	}

	bundle, err := h.ingest.Fundamentals(r.Context(), ticker)
	if err != nil {
		middleware.WriteEngineError(w, r, err)
		return
	}

	result, err := valuation.ComputeValuation(bundle.Periods, bundle.Snapshot, params)
	if err != nil {
		middleware.WriteEngineError(w, r, err)
		return
	}

	resp := Response{
		Ticker:     ticker,
		Name:       bundle.Name,
		Sector:     bundle.Sector,
		Industry:   bundle.Industry,
		Result:     result,
		Assessment: analysis.Assess(result, params.MarginOfSafety),
	}

	// Persistence is best-effort: a down database never blocks the answer.
	if h.store != nil {
		if id, err := h.store.SaveValuation(r.Context(), ticker, result); err != nil {
			h.log.WithFields(logger.Fields{"ticker": ticker, "error": err}).
				Warn("could not persist valuation")
		} else {
			resp.ID = id.String()
		}
	}

	if req.IncludeNarrative && h.analyst != nil {
		narrative, err := h.analyst.Analyze(r.Context(), ticker, result)
		if err != nil {
			h.log.WithFields(logger.Fields{"ticker": ticker, "error": err}).
				Warn("narrative generation failed")
		} else {
			resp.Narrative = narrative
			if html, err := utils.RenderHTML(narrative); err == nil {
				resp.NarrativeHTML = html
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleHistory serves GET /api/valuation/history?ticker=&limit=.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.store == nil {
		middleware.WriteError(w, r, http.StatusServiceUnavailable,
			fmt.Errorf("valuation history requires a configured database"))
		return
	}

	ticker := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("ticker")))
	if err := validateTicker(ticker); err != nil {
		middleware.WriteEngineError(w, r, err)
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			middleware.WriteError(w, r, http.StatusBadRequest,
				fmt.Errorf("limit must be an integer between 1 and 100"))
			return
		}
		limit = n
	}

	rows, err := h.store.Recent(r.Context(), ticker, limit)
	if err != nil {
		middleware.WriteEngineError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"ticker":     ticker,
		"valuations": rows,
	})
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}
