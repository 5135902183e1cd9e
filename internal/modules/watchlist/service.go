package watchlist

import (
	"context"
	"strings"
	"sync"

	"github.com/aristath/tickertock/internal/domain"
	"github.com/aristath/tickertock/internal/modules/state"
	"github.com/rs/zerolog"
)

// DefaultMaxSize is the watchlist bound when none is configured.
const DefaultMaxSize = 3

// StateStore persists the AppState snapshot.
type StateStore interface {
	Save(s *state.AppState)
	Load() (*state.AppState, bool)
}

// DigestGenerator turns kept articles into a digest.
type DigestGenerator interface {
	GenerateDigest(ctx context.Context, quote domain.Quote, articles []domain.NewsItem) (string, error)
}

// SwipeDirection is the user's decision on the current article.
type SwipeDirection string

const (
	SwipeKeep SwipeDirection = "right"
	SwipeSkip SwipeDirection = "left"
)

// Feed is the per-symbol reading position.
type Feed struct {
	Symbol    string            `json:"symbol"`
	Articles  []domain.NewsItem `json:"articles"`
	Cursor    int               `json:"cursor"`
	EndOfFeed bool              `json:"end_of_feed"`
	Kept      []string          `json:"kept"`
	Current   *domain.NewsItem  `json:"current,omitempty"`
}

// Service owns the watchlist state. Every mutation is persisted before it returns.
// The lock is released across upstream calls, so fetches for different symbols
// may overlap.
type Service struct {
	orchestrator *Orchestrator
	cache        *SymbolCache
	store        StateStore
	digest       DigestGenerator
	maxSize      int
	log          zerolog.Logger

	mu    sync.Mutex
	state *state.AppState
	// reserved slots for adds whose fetch is in flight
	pending map[string]bool
	// bumped on every add and remove, so a refresh can tell a symbol was replaced
	generation map[string]uint64
}

// NewService creates a service with an empty state. Call Restore to load the
// persisted snapshot.
func NewService(
	orchestrator *Orchestrator,
	cache *SymbolCache,
	store StateStore,
	digest DigestGenerator,
	maxSize int,
	log zerolog.Logger,
) *Service {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Service{
		orchestrator: orchestrator,
		cache:        cache,
		store:        store,
		digest:       digest,
		maxSize:      maxSize,
		log:          log.With().Str("service", "watchlist").Logger(),
		state:        state.NewAppState(),
		pending:      make(map[string]bool),
		generation:   make(map[string]uint64),
	}
}

// Restore replaces the in-memory state with the persisted snapshot and seeds the
// cache from it. A missing or unreadable snapshot leaves an empty state.
// It reports whether a snapshot was found.
func (s *Service) Restore() bool {
	loaded, ok := s.store.Load()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !ok {
		s.state = state.NewAppState()
		s.log.Info().Msg("No saved state, starting empty")
		return false
	}

	s.state = loaded
	s.cache.Seed(loaded.Quotes, loaded.News)

	s.log.Info().
		Strs("watchlist", loaded.Watchlist).
		Str("favorite", loaded.FavoriteSymbol).
		Msg("Restored saved state")
	return true
}

// Snapshot returns a deep copy of the current state.
func (s *Service) Snapshot() *state.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// MaxSize returns the watchlist bound.
func (s *Service) MaxSize() int {
	return s.maxSize
}

func NormalizeSymbol(symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", ErrInvalidSymbol
	}
	return symbol, nil
}

// Add fetches news and quote for symbol and appends it to the watchlist.
// Duplicates and a full watchlist are rejected before anything is fetched.
func (s *Service) Add(ctx context.Context, symbol string) (domain.Quote, []domain.NewsItem, error) {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return domain.Quote{}, nil, err
	}

	s.mu.Lock()
	if s.state.IsWatched(symbol) || s.pending[symbol] {
		s.mu.Unlock()
		return domain.Quote{}, nil, ErrAlreadyWatched{Symbol: symbol}
	}
	if len(s.state.Watchlist)+len(s.pending) >= s.maxSize {
		s.mu.Unlock()
		return domain.Quote{}, nil, ErrWatchlistFull{Max: s.maxSize}
	}
	s.pending[symbol] = true
	s.mu.Unlock()

	quote, news, err := s.orchestrator.AddSymbol(ctx, symbol)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, symbol)

	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to add symbol")
		return domain.Quote{}, nil, err
	}

	s.state.Watchlist = append(s.state.Watchlist, symbol)
	s.state.Quotes[symbol] = quote
	s.state.News[symbol] = news
	s.state.ArticleCursor[symbol] = 0
	delete(s.state.EndOfFeed, symbol)
	s.generation[symbol]++
	// The orchestrator already cached these, but a refresh finishing in between may
	// have overwritten or removed them
	s.cache.PutNews(symbol, news)
	s.cache.PutQuote(symbol, quote)
	s.save()

	s.log.Info().Str("symbol", symbol).Int("watchlist_size", len(s.state.Watchlist)).Msg("Symbol added")
	return quote, news, nil
}

// Remove drops symbol and everything recorded for it.
func (s *Service) Remove(symbol string) error {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.IsWatched(symbol) {
		return ErrNotWatched{Symbol: symbol}
	}

	s.state.Forget(symbol)
	s.cache.Remove(symbol)
	s.generation[symbol]++
	s.save()

	s.log.Info().Str("symbol", symbol).Msg("Symbol removed")
	return nil
}

// Refresh refetches prices for the whole watchlist. On failure nothing changes.
// A symbol removed or re-added while the refresh runs keeps its newer state.
func (s *Service) Refresh(ctx context.Context) ([]domain.Quote, error) {
	s.mu.Lock()
	symbols := append([]string{}, s.state.Watchlist...)
	generations := make([]uint64, len(symbols))
	for i, symbol := range symbols {
		generations[i] = s.generation[symbol]
	}
	s.mu.Unlock()

	if len(symbols) == 0 {
		return []domain.Quote{}, nil
	}

	quotes, err := s.orchestrator.RefreshPrices(ctx, symbols)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, symbol := range symbols {
		if s.generation[symbol] == generations[i] {
			s.state.Quotes[symbol] = quotes[i]
			continue
		}
		// Removed, or removed and re-added, while the refresh was in flight.
		// The fetched quote is older than what the state holds, so undo its cache write.
		if q, ok := s.state.Quotes[symbol]; ok && s.state.IsWatched(symbol) {
			s.cache.PutQuote(symbol, q)
		} else {
			s.cache.Remove(symbol)
		}
	}
	s.save()

	return quotes, nil
}

// Feed returns the reading position for symbol.
func (s *Service) Feed(symbol string) (Feed, error) {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return Feed{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.IsWatched(symbol) {
		return Feed{}, ErrNotWatched{Symbol: symbol}
	}
	return s.feed(symbol), nil
}

func (s *Service) feed(symbol string) Feed {
	articles := append([]domain.NewsItem{}, s.state.News[symbol]...)
	cursor := s.state.ArticleCursor[symbol]
	end := s.state.EndOfFeed[symbol]

	kept := make([]string, 0, len(s.state.KeptArticles[symbol]))
	for _, item := range articles {
		if s.state.KeptArticles[symbol][item.ID] {
			kept = append(kept, item.ID)
		}
	}

	f := Feed{
		Symbol:    symbol,
		Articles:  articles,
		Cursor:    cursor,
		EndOfFeed: end,
		Kept:      kept,
	}
	if !end && cursor >= 0 && cursor < len(articles) {
		current := articles[cursor]
		f.Current = &current
	}
	return f
}

// Swipe records the decision on the current article of symbol. Keeping marks the
// article for the digest; both directions advance the cursor, and swiping the last
// article ends the feed instead. Swiping an empty or finished feed changes nothing.
func (s *Service) Swipe(symbol string, direction SwipeDirection) (Feed, error) {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return Feed{}, err
	}
	if direction != SwipeKeep && direction != SwipeSkip {
		return Feed{}, ErrInvalidDirection{Direction: string(direction)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.IsWatched(symbol) {
		return Feed{}, ErrNotWatched{Symbol: symbol}
	}

	articles := s.state.News[symbol]
	cursor := s.state.ArticleCursor[symbol]
	if len(articles) == 0 || s.state.EndOfFeed[symbol] || cursor >= len(articles) {
		return s.feed(symbol), nil
	}

	if direction == SwipeKeep {
		ids := s.state.KeptArticles[symbol]
		if ids == nil {
			ids = make(map[string]bool)
			s.state.KeptArticles[symbol] = ids
		}
		ids[articles[cursor].ID] = true
	}

	if cursor == len(articles)-1 {
		s.state.EndOfFeed[symbol] = true
	} else {
		s.state.ArticleCursor[symbol] = cursor + 1
	}
	s.save()

	return s.feed(symbol), nil
}

// SetFavorite marks symbol as the widget's favorite.
func (s *Service) SetFavorite(symbol string) error {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.IsWatched(symbol) {
		return ErrNotWatched{Symbol: symbol}
	}
	s.state.FavoriteSymbol = symbol
	s.save()
	return nil
}

// ClearFavorite removes the favorite, if any.
func (s *Service) ClearFavorite() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.FavoriteSymbol = ""
	s.save()
}

// GenerateSummary asks the digest generator for a digest of the kept articles of
// symbol and stores the result, replacing any previous digest.
func (s *Service) GenerateSummary(ctx context.Context, symbol string) (string, error) {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	if !s.state.IsWatched(symbol) {
		s.mu.Unlock()
		return "", ErrNotWatched{Symbol: symbol}
	}
	kept := s.state.KeptNews(symbol)
	quote, ok := s.cache.Quote(symbol)
	if !ok {
		quote = s.state.Quotes[symbol]
	}
	s.mu.Unlock()

	if len(kept) == 0 {
		return "", ErrNoKeptArticles{Symbol: symbol}
	}

	text, err := s.digest.GenerateDigest(ctx, quote, kept)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to generate summary")
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.IsWatched(symbol) {
		s.state.Summaries[symbol] = text
		s.save()
	}
	return text, nil
}

// Summary returns the stored digest for symbol.
func (s *Service) Summary(symbol string) (string, error) {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.IsWatched(symbol) {
		return "", ErrNotWatched{Symbol: symbol}
	}
	text, ok := s.state.Summaries[symbol]
	if !ok {
		return "", ErrNoSummary{Symbol: symbol}
	}
	return text, nil
}

// save must be called with s.mu held.
func (s *Service) save() {
	s.store.Save(s.state.Clone())
}
