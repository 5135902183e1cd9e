package watchlist

import (
	"context"
	"testing"

	"github.com/aristath/tickertock/internal/clients/alphavantage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestOrchestrator() (*Orchestrator, *mockQuoteFetcher, *mockNewsFetcher, *SymbolCache) {
	quotes := new(mockQuoteFetcher)
	news := new(mockNewsFetcher)
	cache := NewSymbolCache()
	return NewOrchestrator(quotes, news, cache, zerolog.Nop()), quotes, news, cache
}

func TestAddSymbol_Success(t *testing.T) {
	o, quotes, news, cache := newTestOrchestrator()
	news.On("FetchNews", mock.Anything, "AAPL").Return(newsFor("AAPL", 3), nil)
	quotes.On("FetchQuote", mock.Anything, "AAPL").Return(quoteFor("AAPL", 180), nil)

	q, items, err := o.AddSymbol(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 180.0, q.CurrentPrice)
	assert.Len(t, items, 3)

	cached, ok := cache.Quote("AAPL")
	require.True(t, ok)
	assert.Equal(t, q, cached)
	cachedNews, ok := cache.News("AAPL")
	require.True(t, ok)
	assert.Equal(t, items, cachedNews)
}

func TestAddSymbol_EmptyNewsSkipsQuote(t *testing.T) {
	o, quotes, news, cache := newTestOrchestrator()
	news.On("FetchNews", mock.Anything, "ZZZ").Return(newsFor("ZZZ", 0), nil)

	_, _, err := o.AddSymbol(context.Background(), "ZZZ")
	require.Error(t, err)

	var noNews ErrNoNewsAvailable
	require.ErrorAs(t, err, &noNews)
	assert.Equal(t, "ZZZ", noNews.Symbol)

	quotes.AssertNumberOfCalls(t, "FetchQuote", 0)
	_, ok := cache.Quote("ZZZ")
	assert.False(t, ok)
	_, ok = cache.News("ZZZ")
	assert.False(t, ok)
}

func TestAddSymbol_NewsErrorPropagatesVerbatim(t *testing.T) {
	o, quotes, news, _ := newTestOrchestrator()
	exhausted := alphavantage.ErrAllKeysExhausted{Attempts: 3}
	news.On("FetchNews", mock.Anything, "AAPL").Return(nil, exhausted)

	_, _, err := o.AddSymbol(context.Background(), "AAPL")
	assert.Equal(t, exhausted, err)
	quotes.AssertNumberOfCalls(t, "FetchQuote", 0)
}

func TestAddSymbol_QuoteErrorLeavesCacheUntouched(t *testing.T) {
	o, quotes, news, cache := newTestOrchestrator()
	news.On("FetchNews", mock.Anything, "AAPL").Return(newsFor("AAPL", 2), nil)
	quotes.On("FetchQuote", mock.Anything, "AAPL").Return(quoteFor("", 0), &alphavantage.TransportError{Status: 500})

	_, _, err := o.AddSymbol(context.Background(), "AAPL")
	var transportErr *alphavantage.TransportError
	require.ErrorAs(t, err, &transportErr)

	_, ok := cache.News("AAPL")
	assert.False(t, ok)
	_, ok = cache.Quote("AAPL")
	assert.False(t, ok)
}

func TestRefreshPrices_Success(t *testing.T) {
	o, quotes, _, cache := newTestOrchestrator()
	quotes.On("FetchQuote", mock.Anything, "AAPL").Return(quoteFor("AAPL", 1), nil)
	quotes.On("FetchQuote", mock.Anything, "NVDA").Return(quoteFor("NVDA", 2), nil)

	got, err := o.RefreshPrices(context.Background(), []string{"AAPL", "NVDA"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "AAPL", got[0].Symbol)
	assert.Equal(t, "NVDA", got[1].Symbol)

	q, _ := cache.Quote("NVDA")
	assert.Equal(t, 2.0, q.CurrentPrice)
}

func TestRefreshPrices_AllOrNothing(t *testing.T) {
	o, quotes, _, cache := newTestOrchestrator()
	cache.PutQuote("AAPL", quoteFor("AAPL", 1))
	cache.PutQuote("NVDA", quoteFor("NVDA", 2))
	cache.PutQuote("MSFT", quoteFor("MSFT", 3))

	quotes.On("FetchQuote", mock.Anything, "AAPL").Return(quoteFor("AAPL", 10), nil)
	quotes.On("FetchQuote", mock.Anything, "NVDA").Return(quoteFor("", 0), alphavantage.ErrAllKeysExhausted{Attempts: 2})

	got, err := o.RefreshPrices(context.Background(), []string{"AAPL", "NVDA", "MSFT"})
	require.Error(t, err)
	assert.Nil(t, got)

	// Aborted at the first failure: MSFT never requested
	quotes.AssertNotCalled(t, "FetchQuote", mock.Anything, "MSFT")

	// Cache unchanged, not even the symbol fetched before the failure
	q, _ := cache.Quote("AAPL")
	assert.Equal(t, 1.0, q.CurrentPrice)
	q, _ = cache.Quote("NVDA")
	assert.Equal(t, 2.0, q.CurrentPrice)
}

func TestRefreshPrices_Empty(t *testing.T) {
	o, quotes, _, _ := newTestOrchestrator()

	got, err := o.RefreshPrices(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	quotes.AssertNumberOfCalls(t, "FetchQuote", 0)
}
