package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"stockval/logger"
)

// SavedValuation is one persisted valuation row. Result is the full engine
// output kept as opaque JSON; the store does not interpret it.
type SavedValuation struct {
	ID        uuid.UUID       `json:"id"`
	Ticker    string          `json:"ticker"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}

// ValuationStore reads and writes the valuations table.
type ValuationStore struct {
	pool *pgxpool.Pool
	log  *logrus.Entry
}

func NewValuationStore(pool *pgxpool.Pool) *ValuationStore {
	return &ValuationStore{
		pool: pool,
		log:  logger.WithFields(logger.Fields{"component": "store"}),
	}
}

// SaveValuation stores a result and returns the new row id.
func (s *ValuationStore) SaveValuation(ctx context.Context, ticker string, result interface{}) (uuid.UUID, error) {
	id := uuid.New()

	payload, err := json.Marshal(result)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode valuation result: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO valuations (id, ticker, result) VALUES ($1, $2, $3)`,
		id, ticker, payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save valuation for %s: %w", ticker, err)
	}

	s.log.WithFields(logger.Fields{"ticker": ticker, "id": id}).Debug("saved valuation")
	return id, nil
}

// Recent returns the newest valuations for a ticker, most recent first.
func (s *ValuationStore) Recent(ctx context.Context, ticker string, limit int) ([]SavedValuation, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, ticker, result, created_at
		   FROM valuations
		  WHERE ticker = $1
		  ORDER BY created_at DESC
		  LIMIT $2`,
		ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query valuations for %s: %w", ticker, err)
	}
	defer rows.Close()

	var out []SavedValuation
	for rows.Next() {
		var v SavedValuation
		if err := rows.Scan(&v.ID, &v.Ticker, &v.Result, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan valuation row: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// PurgeOlderThan deletes valuations older than the given number of days and
// returns how many rows went away.
func (s *ValuationStore) PurgeOlderThan(ctx context.Context, days int) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM valuations WHERE created_at < now() - ($1 * INTERVAL '1 day')`,
		days)
	if err != nil {
		return 0, fmt.Errorf("failed to purge old valuations: %w", err)
	}

	deleted := tag.RowsAffected()
	if deleted > 0 {
		s.log.WithFields(logger.Fields{"deleted": deleted, "days": days}).Info("purged old valuations")
	}
	return deleted, nil
}
