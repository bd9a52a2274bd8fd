package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"stockval/config"
	"stockval/logger"
	apiassistant "stockval/pkg/api/assistant"
	"stockval/pkg/api/middleware"
	apivaluation "stockval/pkg/api/valuation"
	"stockval/pkg/core/assistant"
	"stockval/pkg/core/ingest"
	"stockval/pkg/core/llm"
	"stockval/pkg/core/store"
)

func main() {
	godotenv.Load()
	log := logger.L()

	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	av := ingest.NewAlphaVantageClient(cfg.DataSource.AlphaVantageURL, cfg.DataSource.APIKey())
	yahoo := ingest.NewYahooClient()
	statementCache := ingest.NewStatementCache(cfg.DataSource.CacheDir, cfg.DataSource.CacheTTL())
	fetchService := ingest.NewService(cfg.DataSource.Provider, av, yahoo, statementCache)

	// Persistence is optional; without DATABASE_URL the service runs but the
	// history endpoint answers 503.
	var valuationStore *store.ValuationStore
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(ctx); err != nil {
			log.WithField("error", err).Warn("database unavailable, running without persistence")
		} else {
			valuationStore = store.NewValuationStore(store.GetPool())
			defer store.Close()
		}
	}

	// The LLM features degrade to unavailable without credentials.
	var analyst *assistant.Analyst
	var finder *assistant.TickerFinder
	if os.Getenv("GEMINI_API_KEY") != "" {
		finder = assistant.NewTickerFinder(llm.NewManager(cfg.LLM))
		a, err := assistant.NewAnalyst(ctx)
		if err != nil {
			log.WithField("error", err).Warn("analyst unavailable")
		} else {
			analyst = a
			defer a.Close()
		}
	}

	valuationHandler := apivaluation.NewHandler(fetchService, valuationStore, analyst)
	assistantHandler := apiassistant.NewHandler(finder)

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/api/valuation", valuationHandler.HandleValuation)
	mux.HandleFunc("/api/valuation/history", valuationHandler.HandleHistory)
	mux.HandleFunc("/api/assistant/ticker", assistantHandler.HandleTickerLookup)

	limiter := middleware.NewRateLimiter(cfg.Server.RequestsPerMinute)

	log.WithField("addr", cfg.Server.Addr).Info("API server starting")
	log.Info("  - GET  /ping")
	log.Info("  - POST /api/valuation")
	log.Info("  - GET  /api/valuation/history")
	log.Info("  - POST /api/assistant/ticker")

	if err := http.ListenAndServe(cfg.Server.Addr, limiter.Middleware(mux)); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
