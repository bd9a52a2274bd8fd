package ingest

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"stockval/logger"
)

// Service is the fetch front door: cache first, then Alpha Vantage for the
// statements, with a Yahoo scrape filling snapshot gaps when the provider
// setting allows it ("both" or "yahoo"; "alpha_vantage" disables the
// scrape).
type Service struct {
	provider string
	av       *AlphaVantageClient
	yahoo    *YahooClient
	cache    *StatementCache
	log      *logrus.Entry
}

func NewService(provider string, av *AlphaVantageClient, yahoo *YahooClient, cache *StatementCache) *Service {
	return &Service{
		provider: provider,
		av:       av,
		yahoo:    yahoo,
		cache:    cache,
		log:      logger.WithFields(logger.Fields{"component": "ingest"}),
	}
}

// Fundamentals returns the statement bundle for a ticker, fetching it from
// the vendors on a cache miss.
func (s *Service) Fundamentals(ctx context.Context, ticker string) (*FundamentalsBundle, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	if s.cache != nil {
		if bundle, ok := s.cache.Get(ticker); ok {
			s.log.WithFields(logger.Fields{"ticker": ticker}).Debug("serving cached fundamentals")
			return bundle, nil
		}
	}

	bundle, err := s.av.Fetch(ctx, ticker)
	if err != nil {
		return nil, err
	}

	if s.yahooEnabled() && (bundle.Snapshot.CurrentPrice <= 0 || bundle.Snapshot.SharesOutstanding <= 0) {
		snap, yerr := s.yahoo.Snapshot(ctx, ticker)
		if yerr != nil {
			s.log.WithFields(logger.Fields{"ticker": ticker, "error": yerr}).
				Warn("yahoo snapshot fallback failed")
		} else {
			if bundle.Snapshot.CurrentPrice <= 0 {
				bundle.Snapshot.CurrentPrice = snap.CurrentPrice
			}
			if bundle.Snapshot.SharesOutstanding <= 0 {
				bundle.Snapshot.SharesOutstanding = snap.SharesOutstanding
			}
			if bundle.Snapshot.MarketCap <= 0 {
				bundle.Snapshot.MarketCap = snap.MarketCap
			}
			if bundle.Snapshot.Beta == 0 {
				bundle.Snapshot.Beta = snap.Beta
			}
		}
	}

	if s.cache != nil {
		s.cache.Put(bundle)
	}
	return bundle, nil
}

func (s *Service) yahooEnabled() bool {
	return s.yahoo != nil && s.provider != "alpha_vantage"
}
