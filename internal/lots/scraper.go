package lots

import (
	"context"
	"time"

	"funpay/lotworker/services/cache"
)

// Scraper runs the full fetch/extract/sort pipeline for lot nodes. Each
// call builds a fresh page handle, so every scrape sees the current page.
type Scraper struct {
	BaseURL   string
	MaxLots   int    // unset (zero) falls back to DefaultMaxLots
	SortOrder string // empty keeps document order
	Cache     cache.CacheService
	BlockTime time.Duration
}

// Scrape fetches the listing page for the given node and returns its
// filtered lot records, sorted when a sort order is configured. A fetch
// failure is returned to the caller; extraction quirks degrade to an
// empty result.
func (s *Scraper) Scrape(ctx context.Context, nodeID int64) ([]LotRecord, error) {
	l := NewWithConfig(nodeID, Config{
		BaseURL:   s.BaseURL,
		Cache:     s.Cache,
		BlockTime: s.BlockTime,
	})

	if _, err := l.FetchDocument(ctx); err != nil {
		return nil, err
	}

	maxLots := s.MaxLots
	if maxLots == 0 {
		maxLots = DefaultMaxLots
	}

	records := l.ExtractLots(maxLots)
	if s.SortOrder == "" {
		return records, nil
	}
	return SortRecords(records, s.SortOrder)
}
