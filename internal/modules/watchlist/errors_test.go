package watchlist

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aristath/tickertock/internal/clients/alphavantage"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		op   Operation
		want Message
	}{
		{
			name: "rate limited on add",
			err:  alphavantage.ErrAllKeysExhausted{Attempts: 3},
			op:   OpAdd,
			want: Message{Kind: KindRateLimited, Text: "API key limit reached. Please try again later."},
		},
		{
			name: "rate limited on refresh, wrapped",
			err:  fmt.Errorf("refresh: %w", alphavantage.ErrAllKeysExhausted{Attempts: 1}),
			op:   OpRefresh,
			want: Message{Kind: KindRateLimited, Text: "API key limit reached. Please try again later."},
		},
		{
			name: "no news",
			err:  ErrNoNewsAvailable{Symbol: "ZZZ"},
			op:   OpAdd,
			want: Message{Kind: KindNotFound, Text: "No news available for ZZZ"},
		},
		{
			name: "full",
			err:  ErrWatchlistFull{Max: 3},
			op:   OpAdd,
			want: Message{Kind: KindConflict, Text: "Maximum 3 stocks allowed in watchlist"},
		},
		{
			name: "duplicate",
			err:  ErrAlreadyWatched{Symbol: "AAPL"},
			op:   OpAdd,
			want: Message{Kind: KindConflict, Text: "AAPL is already in the watchlist"},
		},
		{
			name: "generic add",
			err:  &alphavantage.TransportError{Status: 500},
			op:   OpAdd,
			want: Message{Kind: KindUpstream, Text: "Failed to add stock: API error: 500"},
		},
		{
			name: "generic refresh",
			err:  errors.New("boom"),
			op:   OpRefresh,
			want: Message{Kind: KindUpstream, Text: "Failed to refresh: boom"},
		},
		{
			name: "no kept articles",
			err:  ErrNoKeptArticles{Symbol: "AAPL"},
			op:   OpSummary,
			want: Message{Kind: KindInvalid, Text: "no articles kept for AAPL"},
		},
		{
			name: "invalid symbol",
			err:  ErrInvalidSymbol,
			op:   OpAdd,
			want: Message{Kind: KindInvalid, Text: "symbol is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err, tt.op))
		})
	}
}
