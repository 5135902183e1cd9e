// Package watchlist sequences upstream fetches per symbol and owns the mutable
// watchlist state that is persisted between runs.
package watchlist

import (
	"context"

	"github.com/aristath/tickertock/internal/domain"
	"github.com/rs/zerolog"
)

// QuoteFetcher fetches a normalized quote.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, symbol string) (domain.Quote, error)
}

// NewsFetcher fetches a symbol's news feed.
type NewsFetcher interface {
	FetchNews(ctx context.Context, symbol string) ([]domain.NewsItem, error)
}

// Orchestrator sequences dependent fetches and writes successful results into
// the SymbolCache. It does not enforce watchlist rules.
type Orchestrator struct {
	quotes QuoteFetcher
	news   NewsFetcher
	cache  *SymbolCache
	log    zerolog.Logger
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(quotes QuoteFetcher, news NewsFetcher, cache *SymbolCache, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		quotes: quotes,
		news:   news,
		cache:  cache,
		log:    log.With().Str("component", "fetch_orchestrator").Logger(),
	}
}

// AddSymbol fetches news and then the quote for symbol. A symbol without news is
// rejected before its quote is requested. The cache is written only when both succeed.
func (o *Orchestrator) AddSymbol(ctx context.Context, symbol string) (domain.Quote, []domain.NewsItem, error) {
	news, err := o.news.FetchNews(ctx, symbol)
	if err != nil {
		return domain.Quote{}, nil, err
	}
	if len(news) == 0 {
		return domain.Quote{}, nil, ErrNoNewsAvailable{Symbol: symbol}
	}

	quote, err := o.quotes.FetchQuote(ctx, symbol)
	if err != nil {
		return domain.Quote{}, nil, err
	}

	o.cache.PutNews(symbol, news)
	o.cache.PutQuote(symbol, quote)

	o.log.Info().
		Str("symbol", symbol).
		Int("articles", len(news)).
		Float64("price", quote.CurrentPrice).
		Msg("Fetched symbol")

	return quote, news, nil
}

// RefreshPrices refetches quotes in order and stops at the first failure. Either
// every quote is returned and cached, or none is.
func (o *Orchestrator) RefreshPrices(ctx context.Context, symbols []string) ([]domain.Quote, error) {
	quotes := make([]domain.Quote, 0, len(symbols))
	for _, symbol := range symbols {
		q, err := o.quotes.FetchQuote(ctx, symbol)
		if err != nil {
			o.log.Warn().Err(err).Str("symbol", symbol).Msg("Price refresh aborted")
			return nil, err
		}
		quotes = append(quotes, q)
	}

	bySymbol := make(map[string]domain.Quote, len(symbols))
	for i, symbol := range symbols {
		bySymbol[symbol] = quotes[i]
	}
	o.cache.PutQuotes(bySymbol)

	o.log.Debug().Int("symbols", len(quotes)).Msg("Refreshed prices")
	return quotes, nil
}
