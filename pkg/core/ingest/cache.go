package ingest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"stockval/logger"
)

// StatementCache keeps fetched fundamentals fresh for the TTL window, in
// memory for the running process and as JSON files so restarts don't burn
// API quota. File errors are logged and treated as misses.
type StatementCache struct {
	mem *gocache.Cache
	dir string
	ttl time.Duration
	log *logrus.Entry
}

func NewStatementCache(dir string, ttl time.Duration) *StatementCache {
	return &StatementCache{
		mem: gocache.New(ttl, 2*ttl),
		dir: dir,
		ttl: ttl,
		log: logger.WithFields(logger.Fields{"component": "statement_cache"}),
	}
}

// Get returns the cached bundle for a ticker if it is still within the TTL.
func (c *StatementCache) Get(ticker string) (*FundamentalsBundle, bool) {
	key := cacheKey(ticker)

	if v, ok := c.mem.Get(key); ok {
		return v.(*FundamentalsBundle), true
	}

	data, err := os.ReadFile(c.filePath(key))
	if err != nil {
		return nil, false
	}

	var bundle FundamentalsBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		c.log.WithFields(logger.Fields{"ticker": ticker, "error": err}).
			Warn("discarding unreadable cache file")
		return nil, false
	}
	if time.Since(bundle.FetchedAt) > c.ttl {
		return nil, false
	}

	c.mem.Set(key, &bundle, gocache.DefaultExpiration)
	return &bundle, true
}

// Put stores a bundle in memory and on disk.
func (c *StatementCache) Put(bundle *FundamentalsBundle) {
	key := cacheKey(bundle.Ticker)
	c.mem.Set(key, bundle, gocache.DefaultExpiration)

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		c.log.WithFields(logger.Fields{"dir": c.dir, "error": err}).
			Warn("could not create cache directory")
		return
	}
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		c.log.WithFields(logger.Fields{"ticker": bundle.Ticker, "error": err}).
			Warn("could not encode cache entry")
		return
	}
	if err := os.WriteFile(c.filePath(key), data, 0644); err != nil {
		c.log.WithFields(logger.Fields{"ticker": bundle.Ticker, "error": err}).
			Warn("could not write cache file")
	}
}

func (c *StatementCache) filePath(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func cacheKey(ticker string) string {
	return strings.ToLower(strings.TrimSpace(ticker))
}
