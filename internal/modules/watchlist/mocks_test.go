package watchlist

import (
	"context"
	"fmt"
	"sync"

	"github.com/aristath/tickertock/internal/domain"
	"github.com/aristath/tickertock/internal/modules/state"
	"github.com/stretchr/testify/mock"
)

type mockQuoteFetcher struct {
	mock.Mock
}

func (m *mockQuoteFetcher) FetchQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(domain.Quote), args.Error(1)
}

type mockNewsFetcher struct {
	mock.Mock
}

func (m *mockNewsFetcher) FetchNews(ctx context.Context, symbol string) ([]domain.NewsItem, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.NewsItem), args.Error(1)
}

type mockDigest struct {
	mock.Mock
}

func (m *mockDigest) GenerateDigest(ctx context.Context, quote domain.Quote, articles []domain.NewsItem) (string, error) {
	args := m.Called(ctx, quote, articles)
	return args.String(0), args.Error(1)
}

// memoryStore records every saved snapshot.
type memoryStore struct {
	mu     sync.Mutex
	saved  []*state.AppState
	loaded *state.AppState
}

func (s *memoryStore) Save(snapshot *state.AppState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, snapshot)
}

func (s *memoryStore) Load() (*state.AppState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded == nil {
		return nil, false
	}
	return s.loaded, true
}

func (s *memoryStore) saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

func (s *memoryStore) last() *state.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.saved) == 0 {
		return nil
	}
	return s.saved[len(s.saved)-1]
}

func quoteFor(symbol string, price float64) domain.Quote {
	return domain.Quote{Symbol: symbol, Name: symbol, CurrentPrice: price}
}

func newsFor(symbol string, n int) []domain.NewsItem {
	items := make([]domain.NewsItem, n)
	for i := range items {
		items[i] = domain.NewsItem{
			ID:     fmt.Sprintf("%s_%d", symbol, i+1),
			Title:  "Article",
			Symbol: symbol,
		}
	}
	return items
}
