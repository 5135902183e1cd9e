package testing

import (
	"fmt"

	"github.com/aristath/tickertock/internal/domain"
	"github.com/aristath/tickertock/internal/modules/state"
)

// NewQuoteFixtures returns quotes for a few well-known symbols, keyed by symbol
func NewQuoteFixtures() map[string]domain.Quote {
	return map[string]domain.Quote{
		"NVDA": {Symbol: "NVDA", Name: "NVIDIA Corporation", CurrentPrice: 120.50, PriceChange: 2.25, PercentChange: 1.903},
		"AAPL": {Symbol: "AAPL", Name: "Apple Inc.", CurrentPrice: 189.30, PriceChange: -1.10, PercentChange: -0.5777},
		"TSLA": {Symbol: "TSLA", Name: "Tesla Inc.", CurrentPrice: 242.00, PriceChange: 0, PercentChange: 0},
	}
}

// NewNewsFixtures returns n articles for symbol with positional ids
func NewNewsFixtures(symbol string, n int) []domain.NewsItem {
	items := make([]domain.NewsItem, n)
	for i := range items {
		items[i] = domain.NewsItem{
			ID:          fmt.Sprintf("%s_%d", symbol, i+1),
			Title:       fmt.Sprintf("%s headline %d", symbol, i+1),
			Summary:     "Shares moved on the report.",
			PublishedAt: "2 hours ago",
			Publisher:   "Newswire",
			Symbol:      symbol,
		}
	}
	return items
}

// NewStateFixture returns a state watching symbols with quotes and three
// articles each. The first symbol is the favorite.
func NewStateFixture(symbols ...string) *state.AppState {
	s := state.NewAppState()
	quotes := NewQuoteFixtures()
	for _, symbol := range symbols {
		s.Watchlist = append(s.Watchlist, symbol)
		if q, ok := quotes[symbol]; ok {
			s.Quotes[symbol] = q
		} else {
			s.Quotes[symbol] = domain.Quote{Symbol: symbol, Name: symbol, CurrentPrice: 10}
		}
		s.News[symbol] = NewNewsFixtures(symbol, 3)
	}
	if len(symbols) > 0 {
		s.FavoriteSymbol = symbols[0]
	}
	return s
}
