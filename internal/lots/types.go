package lots

// LotRecord represents one extracted marketplace offer
type LotRecord struct {
	Href        string `json:"href"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Region      string `json:"region"`
}

// Unknown is the placeholder for fields absent from the source markup
const Unknown = "Unknown"

// Sort order tokens accepted by SortRecords and SortLots
const (
	SortLowest  = "lowest"
	SortHighest = "highest"
)

// DefaultMaxLots is the extraction limit used when the caller does not
// supply one
const DefaultMaxLots = 20

// CSS class selectors for the listing page
const (
	selShowcase  = "div.showcase-table"
	selLotItem   = "a.tc-item"
	selDesc      = "div.tc-desc-text"
	selPrice     = "div.tc-price"
	selRegion    = "div.tc-server.hidden-xs"
	selPinnedIco = "div.sc-offer-icons"
)

// regionExclude marks offers from servers that are filtered out
const regionExclude = "(RU)"
