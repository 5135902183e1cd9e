// Package state persists the application state snapshot.
package state

import "github.com/aristath/tickertock/internal/domain"

// SnapshotKey is the single key the snapshot is stored under.
const SnapshotKey = "app_state"

// AppState is everything the user would expect to find again after a restart.
// Referential integrity between the watchlist and the per-symbol maps is the
// caller's responsibility. Build it with NewAppState; a loaded snapshot always has
// every map allocated.
type AppState struct {
	Watchlist      []string                     `json:"watchlist_stocks"`
	Quotes         map[string]domain.Quote      `json:"stock_data_map"`
	News           map[string][]domain.NewsItem `json:"news_data_map"`
	KeptArticles   map[string]map[string]bool   `json:"swiped_articles"`
	ArticleCursor  map[string]int               `json:"article_index_per_stock"`
	EndOfFeed      map[string]bool              `json:"end_message_shown_for_stocks"`
	Summaries      map[string]string            `json:"ai_summaries"`
	FavoriteSymbol string                       `json:"favorited_stock,omitempty"`
}

// NewAppState returns an empty state with every map allocated.
func NewAppState() *AppState {
	s := &AppState{}
	s.ensureMaps()
	return s
}

// ensureMaps allocates nil maps, for instance after decoding an older snapshot.
func (s *AppState) ensureMaps() {
	if s.Watchlist == nil {
		s.Watchlist = []string{}
	}
	if s.Quotes == nil {
		s.Quotes = make(map[string]domain.Quote)
	}
	if s.News == nil {
		s.News = make(map[string][]domain.NewsItem)
	}
	if s.KeptArticles == nil {
		s.KeptArticles = make(map[string]map[string]bool)
	}
	if s.ArticleCursor == nil {
		s.ArticleCursor = make(map[string]int)
	}
	if s.EndOfFeed == nil {
		s.EndOfFeed = make(map[string]bool)
	}
	if s.Summaries == nil {
		s.Summaries = make(map[string]string)
	}
}

// Clone returns a deep copy that shares nothing with s.
func (s *AppState) Clone() *AppState {
	c := &AppState{
		Watchlist:      append([]string{}, s.Watchlist...),
		Quotes:         make(map[string]domain.Quote, len(s.Quotes)),
		News:           make(map[string][]domain.NewsItem, len(s.News)),
		KeptArticles:   make(map[string]map[string]bool, len(s.KeptArticles)),
		ArticleCursor:  make(map[string]int, len(s.ArticleCursor)),
		EndOfFeed:      make(map[string]bool, len(s.EndOfFeed)),
		Summaries:      make(map[string]string, len(s.Summaries)),
		FavoriteSymbol: s.FavoriteSymbol,
	}
	for k, v := range s.Quotes {
		c.Quotes[k] = v
	}
	for k, v := range s.News {
		c.News[k] = append([]domain.NewsItem{}, v...)
	}
	for k, ids := range s.KeptArticles {
		set := make(map[string]bool, len(ids))
		for id, kept := range ids {
			set[id] = kept
		}
		c.KeptArticles[k] = set
	}
	for k, v := range s.ArticleCursor {
		c.ArticleCursor[k] = v
	}
	for k, v := range s.EndOfFeed {
		c.EndOfFeed[k] = v
	}
	for k, v := range s.Summaries {
		c.Summaries[k] = v
	}
	return c
}

// IsWatched reports whether symbol is on the watchlist.
func (s *AppState) IsWatched(symbol string) bool {
	for _, w := range s.Watchlist {
		if w == symbol {
			return true
		}
	}
	return false
}

// Forget removes symbol from the watchlist and drops every per-symbol entry.
// A favorite pointing at symbol is cleared.
func (s *AppState) Forget(symbol string) {
	kept := s.Watchlist[:0]
	for _, w := range s.Watchlist {
		if w != symbol {
			kept = append(kept, w)
		}
	}
	s.Watchlist = kept

	delete(s.Quotes, symbol)
	delete(s.News, symbol)
	delete(s.KeptArticles, symbol)
	delete(s.ArticleCursor, symbol)
	delete(s.EndOfFeed, symbol)
	delete(s.Summaries, symbol)

	if s.FavoriteSymbol == symbol {
		s.FavoriteSymbol = ""
	}
}

// KeptNews returns the articles of symbol whose ids were kept, in feed order.
func (s *AppState) KeptNews(symbol string) []domain.NewsItem {
	ids := s.KeptArticles[symbol]
	var out []domain.NewsItem
	for _, item := range s.News[symbol] {
		if ids[item.ID] {
			out = append(out, item)
		}
	}
	return out
}
