// Package domain holds the value types shared by the fetch layer, the watchlist
// and the persisted application state.
package domain

// Quote is a normalized price quote for one symbol.
// It is replaced wholesale on every refetch.
type Quote struct {
	Symbol        string  `json:"symbol" msgpack:"symbol"`
	Name          string  `json:"name" msgpack:"name"`
	CurrentPrice  float64 `json:"current_price" msgpack:"current_price"`
	PriceChange   float64 `json:"price_change" msgpack:"price_change"`
	PercentChange float64 `json:"percent_change" msgpack:"percent_change"`
}

// IsPositive reports whether the price moved up or stayed flat.
func (q Quote) IsPositive() bool {
	return q.PriceChange >= 0
}

// NewsItem is one article in a symbol's feed.
// ID is positional ("<symbol>_<n>") and only unique within one fetch batch.
type NewsItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	PublishedAt string `json:"published_at"` // relative time, e.g. "2 hours ago"
	Publisher   string `json:"publisher"`
	Symbol      string `json:"symbol"`
}
