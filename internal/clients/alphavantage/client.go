// Package alphavantage fetches quotes and news from the AlphaVantage API,
// rotating across a pool of rate-limited API keys.
package alphavantage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/aristath/tickertock/internal/domain"
	"github.com/rs/zerolog"
)

const defaultBaseURL = "https://www.alphavantage.co"

// ClientInterface is the fetch surface the watchlist depends on.
type ClientInterface interface {
	FetchQuote(ctx context.Context, symbol string) (domain.Quote, error)
	FetchNews(ctx context.Context, symbol string) ([]domain.NewsItem, error)
}

// Client talks to AlphaVantage. Each logical request may be retried once per key in
// the pool when the upstream signals rate limiting.
type Client struct {
	baseURL    string
	keys       *KeyRotator
	httpClient *http.Client
	log        zerolog.Logger
	now        func() time.Time
}

// NewClient creates a client. An empty baseURL uses the public endpoint and a nil
// httpClient gets a 30 second timeout.
func NewClient(baseURL string, keys *KeyRotator, httpClient *http.Client, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		keys:       keys,
		httpClient: httpClient,
		log:        log.With().Str("client", "alphavantage").Logger(),
		now:        time.Now,
	}
}

// FetchQuote returns the current GLOBAL_QUOTE for symbol.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", symbol)

	body, err := c.query(ctx, params)
	if err != nil {
		return domain.Quote{}, err
	}

	quote, err := parseGlobalQuote(body, symbol)
	if err != nil {
		return domain.Quote{}, err
	}

	c.log.Debug().
		Str("symbol", quote.Symbol).
		Float64("price", quote.CurrentPrice).
		Msg("Fetched quote")

	return quote, nil
}

// FetchNews returns up to MaxNewsItems NEWS_SENTIMENT articles for symbol.
// An empty feed is returned as an empty slice with a nil error.
func (c *Client) FetchNews(ctx context.Context, symbol string) ([]domain.NewsItem, error) {
	params := url.Values{}
	params.Set("function", "NEWS_SENTIMENT")
	params.Set("tickers", symbol)

	body, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}

	items, err := parseNewsFeed(body, symbol, c.now())
	if err != nil {
		return nil, err
	}

	c.log.Debug().
		Str("symbol", symbol).
		Int("articles", len(items)).
		Msg("Fetched news")

	return items, nil
}

// query runs one logical request. Each attempt consumes exactly one key; a
// rate-limited answer moves on to the next key until the pool is exhausted.
// Transport failures are returned immediately.
func (c *Client) query(ctx context.Context, params url.Values) ([]byte, error) {
	attempts := c.keys.Size()

	for attempt := 0; attempt < attempts; attempt++ {
		key := c.keys.Next()

		body, err := c.get(ctx, params, key)
		if err != nil {
			return nil, err
		}

		limited, err := isRateLimited(body)
		if err != nil {
			return nil, err
		}
		if !limited {
			return body, nil
		}

		c.log.Warn().
			Str("function", params.Get("function")).
			Str("key", maskKey(key)).
			Int("attempt", attempt+1).
			Int("pool_size", attempts).
			Msg("API key rate limited, rotating")
	}

	return nil, ErrAllKeysExhausted{Attempts: attempts}
}

func (c *Client) get(ctx context.Context, params url.Values, key string) ([]byte, error) {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("apikey", key)

	reqURL := fmt.Sprintf("%s/query?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to create request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to read response: %w", err)}
	}
	return body, nil
}
