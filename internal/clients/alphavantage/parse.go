package alphavantage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/tickertock/internal/domain"
)

// MaxNewsItems caps how many feed entries are kept per fetch.
const MaxNewsItems = 20

// rateLimitMarker captures the fields AlphaVantage returns instead of data when a key
// is throttled. Either one being present means the request was not served.
type rateLimitMarker struct {
	Information *string `json:"Information"`
	Note        *string `json:"Note"`
}

func (m rateLimitMarker) limited() bool {
	return m.Information != nil || m.Note != nil
}

type globalQuoteResponse struct {
	rateLimitMarker
	GlobalQuote map[string]string `json:"Global Quote"`
}

type newsSentimentResponse struct {
	rateLimitMarker
	Feed []newsFeedItem `json:"feed"`
}

type newsFeedItem struct {
	Title         *string `json:"title"`
	TimePublished *string `json:"time_published"`
	Summary       *string `json:"summary"`
	Source        *string `json:"source"`
	URL           *string `json:"url"`
}

// isRateLimited reports whether body carries a throttling marker.
func isRateLimited(body []byte) (bool, error) {
	var marker rateLimitMarker
	if err := json.Unmarshal(body, &marker); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}
	return marker.limited(), nil
}

// parseGlobalQuote maps a GLOBAL_QUOTE body to a Quote.
// Individual numeric fields never fail the parse; an absent or empty payload does.
func parseGlobalQuote(body []byte, requested string) (domain.Quote, error) {
	var resp globalQuoteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.Quote{}, fmt.Errorf("failed to decode quote response: %w", err)
	}
	if len(resp.GlobalQuote) == 0 {
		return domain.Quote{}, ErrNoDataForSymbol{Symbol: requested}
	}

	q := resp.GlobalQuote
	symbol := q["01. symbol"]
	if symbol == "" {
		symbol = requested
	}

	return domain.Quote{
		Symbol:        symbol,
		Name:          StockName(symbol),
		CurrentPrice:  parseFloat64(q["05. price"]),
		PriceChange:   parseFloat64(q["09. change"]),
		PercentChange: parseFloat64(q["10. change percent"]),
	}, nil
}

// parseNewsFeed maps a NEWS_SENTIMENT body to at most MaxNewsItems items, keeping
// upstream order. An empty feed is a valid, empty result.
func parseNewsFeed(body []byte, symbol string, now time.Time) ([]domain.NewsItem, error) {
	var resp newsSentimentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode news response: %w", err)
	}

	feed := resp.Feed
	if len(feed) > MaxNewsItems {
		feed = feed[:MaxNewsItems]
	}

	items := make([]domain.NewsItem, 0, len(feed))
	for i, entry := range feed {
		position := i + 1
		items = append(items, domain.NewsItem{
			ID:          fmt.Sprintf("%s_%d", symbol, position),
			Title:       valueOr(entry.Title, fmt.Sprintf("Article %d", position)),
			Summary:     valueOr(entry.Summary, "No summary available"),
			PublishedAt: FormatTimeAgo(valueOr(entry.TimePublished, ""), now),
			Publisher:   valueOr(entry.Source, "Unknown Publisher"),
			Symbol:      symbol,
		})
	}
	return items, nil
}

// parseFloat64 parses AlphaVantage free-text numbers, tolerating a trailing "%".
// Anything unparseable yields 0.
func parseFloat64(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" || s == "None" || s == "null" || s == "-" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func valueOr(s *string, fallback string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return fallback
	}
	return *s
}
