package watchlist

import (
	"sync"

	"github.com/aristath/tickertock/internal/domain"
)

// SymbolCache holds the last fetched quote and news per symbol for the lifetime of
// the process. Entries live until removed; there is no eviction.
type SymbolCache struct {
	mu     sync.RWMutex
	quotes map[string]domain.Quote
	news   map[string][]domain.NewsItem
}

// NewSymbolCache creates an empty cache.
func NewSymbolCache() *SymbolCache {
	return &SymbolCache{
		quotes: make(map[string]domain.Quote),
		news:   make(map[string][]domain.NewsItem),
	}
}

// Quote returns the cached quote for symbol.
func (c *SymbolCache) Quote(symbol string) (domain.Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.quotes[symbol]
	return q, ok
}

// PutQuote replaces the cached quote for symbol.
func (c *SymbolCache) PutQuote(symbol string, q domain.Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quotes[symbol] = q
}

// PutQuotes replaces several quotes under one lock, so readers never observe a
// half-applied batch.
func (c *SymbolCache) PutQuotes(quotes map[string]domain.Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for sym, q := range quotes {
		c.quotes[sym] = q
	}
}

// News returns a copy of the cached news for symbol.
func (c *SymbolCache) News(symbol string) ([]domain.NewsItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items, ok := c.news[symbol]
	if !ok {
		return nil, false
	}
	return append([]domain.NewsItem{}, items...), true
}

// PutNews replaces the cached news for symbol.
func (c *SymbolCache) PutNews(symbol string, items []domain.NewsItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.news[symbol] = append([]domain.NewsItem{}, items...)
}

// Remove drops both entries for symbol.
func (c *SymbolCache) Remove(symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.quotes, symbol)
	delete(c.news, symbol)
}

// Seed loads entries restored from a persisted snapshot.
func (c *SymbolCache) Seed(quotes map[string]domain.Quote, news map[string][]domain.NewsItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for sym, q := range quotes {
		c.quotes[sym] = q
	}
	for sym, items := range news {
		c.news[sym] = append([]domain.NewsItem{}, items...)
	}
}

// Len returns the number of symbols with a cached quote.
func (c *SymbolCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.quotes)
}
