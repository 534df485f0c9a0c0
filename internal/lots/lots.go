package lots

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"funpay/lotworker/helpers"
	"funpay/lotworker/logger"
	apperr "funpay/lotworker/pkg/errors"
	"funpay/lotworker/services/cache"
)

// DefaultBaseURL is the marketplace host the lot pages live on
const DefaultBaseURL = "https://funpay.com"

// Lots is a handle on a single lot listing page. The raw document is
// fetched at most once per handle; there is no refresh.
type Lots struct {
	ID  string
	URL string

	cacheSvc  cache.CacheService
	cacheKey  string
	blockTime time.Duration
	log       *logger.Logger

	doc []byte
}

// Config carries optional dependencies for a Lots handle
type Config struct {
	// BaseURL overrides DefaultBaseURL, mainly for tests
	BaseURL string
	// Cache enables the rate-limit guard when set
	Cache cache.CacheService
	// BlockTime is how long fetches are suppressed after the server
	// rate limits us
	BlockTime time.Duration
}

// New creates a handle on the listing page for the given numeric node id
func New(id int64) *Lots {
	return NewWithConfig(id, Config{})
}

// NewWithConfig creates a handle with explicit dependencies
func NewWithConfig(id int64, cfg Config) *Lots {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	idStr := strconv.FormatInt(id, 10)

	return &Lots{
		ID:        idStr,
		URL:       fmt.Sprintf("%s/en/lots/%s/", strings.TrimRight(base, "/"), idStr),
		cacheSvc:  cfg.Cache,
		cacheKey:  "funpay_lots_" + idStr + "_rate_limited",
		blockTime: cfg.BlockTime,
		log:       logger.ForScraper(idStr),
	}
}

// FetchDocument retrieves the raw HTML of the listing page. The first
// successful fetch is memoized; later calls return the stored document
// without touching the network.
func (l *Lots) FetchDocument(ctx context.Context) ([]byte, error) {
	if l.doc != nil {
		return l.doc, nil
	}

	// Rate-limit guard: a live block key means the server told us off recently
	if l.cacheSvc != nil {
		if _, err := l.cacheSvc.Get(l.cacheKey); err == nil {
			return nil, apperr.NewRateLimit(l.ID, l.blockTime)
		}
	}

	body, err := helpers.FetchHTML(ctx, l.URL)
	if err != nil {
		var statusErr *helpers.StatusError
		if errors.As(err, &statusErr) {
			if statusErr.IsRateLimit() && l.cacheSvc != nil {
				l.cacheSvc.Set(l.cacheKey, []byte(statusErr.RetryAfter), l.blockTime)
			}
			return nil, apperr.NewFetch(l.ID, statusErr.StatusCode, err)
		}
		return nil, apperr.NewFetch(l.ID, 0, err)
	}

	l.doc = body
	return l.doc, nil
}

// ExtractLots scans the fetched document and returns up to maxCount lot
// records in document order. Offers from (RU) servers and pinned offers
// are dropped. Extraction never fails: parse problems are logged and
// degrade to an empty result, as does a missing showcase container.
//
// The first maxCount candidate nodes are taken before filtering, so the
// result can be shorter than maxCount even when qualifying offers exist
// further down the page.
func (l *Lots) ExtractLots(maxCount int) []LotRecord {
	records := []LotRecord{}

	if l.doc == nil {
		l.log.Warn().Msg("No document fetched, nothing to extract")
		return records
	}
	if maxCount <= 0 {
		return records
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(l.doc))
	if err != nil {
		l.log.Error().Err(err).Msg("Error parsing lots page")
		return records
	}

	showcase := doc.Find(selShowcase).First()
	if showcase.Length() == 0 {
		// Not an error: the page simply has no listings
		return records
	}

	showcase.Find(selLotItem).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= maxCount {
			return false
		}

		region := fieldText(s, selRegion)
		if strings.Contains(region, regionExclude) {
			return true
		}
		if s.Find(selPinnedIco).Length() > 0 {
			return true
		}

		href, ok := s.Attr("href")
		if !ok {
			href = Unknown
		}

		records = append(records, LotRecord{
			Href:        href,
			Description: fieldText(s, selDesc),
			Price:       fieldText(s, selPrice),
			Region:      region,
		})
		return true
	})

	return records
}

// SortLots extracts with the default limit and returns the records
// sorted by numeric price
func (l *Lots) SortLots(order string) ([]LotRecord, error) {
	return SortRecords(l.ExtractLots(DefaultMaxLots), order)
}

// SortRecords returns a copy of records ordered by the numeric price
// token, ascending for "lowest" and descending for "highest". Any other
// order token is a validation error. A record whose price does not start
// with a parseable number aborts the whole call.
func SortRecords(records []LotRecord, order string) ([]LotRecord, error) {
	switch order {
	case SortLowest, SortHighest:
	default:
		return nil, apperr.NewValidation(
			fmt.Sprintf("invalid sort order %q; only 'lowest' and 'highest' are accepted", order),
			order,
		)
	}

	type pricedLot struct {
		price float64
		rec   LotRecord
	}

	priced := make([]pricedLot, 0, len(records))
	for _, rec := range records {
		price, err := parsePrice(rec.Price)
		if err != nil {
			return nil, apperr.NewParsing("", fmt.Sprintf("cannot sort lot with price %q", rec.Price), err)
		}
		priced = append(priced, pricedLot{price: price, rec: rec})
	}

	sort.SliceStable(priced, func(i, j int) bool {
		if order == SortHighest {
			return priced[i].price > priced[j].price
		}
		return priced[i].price < priced[j].price
	})

	sorted := make([]LotRecord, len(priced))
	for i, p := range priced {
		sorted[i] = p.rec
	}
	return sorted, nil
}

// parsePrice parses the numeric token before the first space of a price
// field, e.g. "10.50 $" -> 10.50
func parsePrice(price string) (float64, error) {
	token, err := helpers.GetSplitPart(price, " ", 0)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(token, 64)
}

// fieldText returns the cleaned text of the first element matching the
// selector, or the Unknown placeholder when the element is absent
func fieldText(s *goquery.Selection, selector string) string {
	sel := s.Find(selector).First()
	if sel.Length() == 0 {
		return Unknown
	}
	return helpers.CleanText(sel.Text())
}
