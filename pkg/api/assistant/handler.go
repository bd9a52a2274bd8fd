// Package assistant exposes the LLM ticker lookup over HTTP.
package assistant

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"stockval/logger"
	"stockval/pkg/api/middleware"
	"stockval/pkg/core/assistant"
)

// Handler provides the HTTP surface for company-name resolution.
type Handler struct {
	finder *assistant.TickerFinder
	log    *logrus.Entry
}

func NewHandler(finder *assistant.TickerFinder) *Handler {
	return &Handler{
		finder: finder,
		log:    logger.WithFields(logger.Fields{"component": "api.assistant"}),
	}
}

// TickerRequest carries a free-text company name, or something that may
// already be a ticker.
type TickerRequest struct {
	Query string `json:"query"`
}

// TickerResponse is the resolved ticker plus how it was resolved.
type TickerResponse struct {
	Ticker string `json:"ticker"`
	Market string `json:"market,omitempty"`
	Note   string `json:"note,omitempty"`
	// Source is "input" when the query already was a valid ticker and no
	// model call was made, "llm" otherwise.
	Source string `json:"source"`
}

// HandleTickerLookup serves POST /api/assistant/ticker.
func (h *Handler) HandleTickerLookup(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req TickerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		middleware.WriteError(w, r, http.StatusBadRequest, fmt.Errorf("query must not be empty"))
		return
	}

	// Skip the model round trip when the input already is a ticker.
	if assistant.IsValidTicker(query) {
		writeJSON(w, TickerResponse{
			Ticker: strings.ToUpper(query),
			Source: "input",
		})
		return
	}

	if h.finder == nil {
		middleware.WriteError(w, r, http.StatusServiceUnavailable,
			fmt.Errorf("ticker lookup requires a configured language model"))
		return
	}

	info, err := h.finder.Find(r.Context(), query)
	if err != nil {
		h.log.WithFields(logger.Fields{"query": query, "error": err}).Warn("ticker lookup failed")
		middleware.WriteError(w, r, http.StatusNotFound,
			fmt.Errorf("could not resolve %q to a ticker", query))
		return
	}

	writeJSON(w, TickerResponse{
		Ticker: info.Ticker,
		Market: info.Market,
		Note:   info.Note,
		Source: "llm",
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
