package state

import (
	"testing"

	"github.com/aristath/tickertock/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populated() *AppState {
	s := NewAppState()
	s.Watchlist = []string{"AAPL", "NVDA"}
	s.Quotes["AAPL"] = domain.Quote{Symbol: "AAPL", Name: "Apple Inc.", CurrentPrice: 180}
	s.Quotes["NVDA"] = domain.Quote{Symbol: "NVDA", CurrentPrice: 120}
	s.News["AAPL"] = []domain.NewsItem{
		{ID: "AAPL_1", Title: "One", Symbol: "AAPL"},
		{ID: "AAPL_2", Title: "Two", Symbol: "AAPL"},
		{ID: "AAPL_3", Title: "Three", Symbol: "AAPL"},
	}
	s.KeptArticles["AAPL"] = map[string]bool{"AAPL_1": true, "AAPL_3": true}
	s.ArticleCursor["AAPL"] = 2
	s.EndOfFeed["AAPL"] = false
	s.Summaries["AAPL"] = "digest"
	s.FavoriteSymbol = "AAPL"
	return s
}

func TestNewAppState_AllocatesMaps(t *testing.T) {
	s := NewAppState()

	assert.NotNil(t, s.Watchlist)
	assert.NotNil(t, s.Quotes)
	assert.NotNil(t, s.News)
	assert.NotNil(t, s.KeptArticles)
	assert.NotNil(t, s.ArticleCursor)
	assert.NotNil(t, s.EndOfFeed)
	assert.NotNil(t, s.Summaries)
	assert.Empty(t, s.FavoriteSymbol)
}

func TestClone_IsDeep(t *testing.T) {
	original := populated()
	c := original.Clone()
	require.Equal(t, original, c)

	c.Watchlist[0] = "MSFT"
	c.News["AAPL"][0].Title = "changed"
	c.KeptArticles["AAPL"]["AAPL_2"] = true
	c.ArticleCursor["AAPL"] = 0
	c.Summaries["AAPL"] = "other"

	assert.Equal(t, "AAPL", original.Watchlist[0])
	assert.Equal(t, "One", original.News["AAPL"][0].Title)
	assert.False(t, original.KeptArticles["AAPL"]["AAPL_2"])
	assert.Equal(t, 2, original.ArticleCursor["AAPL"])
	assert.Equal(t, "digest", original.Summaries["AAPL"])
}

func TestForget_PrunesEverySymbolEntry(t *testing.T) {
	s := populated()
	s.Forget("AAPL")

	assert.Equal(t, []string{"NVDA"}, s.Watchlist)
	assert.NotContains(t, s.Quotes, "AAPL")
	assert.NotContains(t, s.News, "AAPL")
	assert.NotContains(t, s.KeptArticles, "AAPL")
	assert.NotContains(t, s.ArticleCursor, "AAPL")
	assert.NotContains(t, s.EndOfFeed, "AAPL")
	assert.NotContains(t, s.Summaries, "AAPL")
	assert.Empty(t, s.FavoriteSymbol)

	assert.Contains(t, s.Quotes, "NVDA")
}

func TestForget_KeepsUnrelatedFavorite(t *testing.T) {
	s := populated()
	s.Forget("NVDA")

	assert.Equal(t, "AAPL", s.FavoriteSymbol)
	assert.True(t, s.IsWatched("AAPL"))
	assert.False(t, s.IsWatched("NVDA"))
}

func TestKeptNews_PreservesFeedOrder(t *testing.T) {
	s := populated()

	kept := s.KeptNews("AAPL")
	require.Len(t, kept, 2)
	assert.Equal(t, "AAPL_1", kept[0].ID)
	assert.Equal(t, "AAPL_3", kept[1].ID)

	assert.Empty(t, s.KeptNews("NVDA"))
}
