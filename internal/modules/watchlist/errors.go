package watchlist

import (
	"errors"
	"fmt"

	"github.com/aristath/tickertock/internal/clients/alphavantage"
)

// ErrNoNewsAvailable is returned when a symbol has no articles, which blocks adding it.
type ErrNoNewsAvailable struct {
	Symbol string
}

func (e ErrNoNewsAvailable) Error() string {
	return fmt.Sprintf("No news available for %s", e.Symbol)
}

// ErrWatchlistFull is returned when adding past the configured bound.
type ErrWatchlistFull struct {
	Max int
}

func (e ErrWatchlistFull) Error() string {
	return fmt.Sprintf("Maximum %d stocks allowed in watchlist", e.Max)
}

// ErrAlreadyWatched is returned when adding a symbol twice.
type ErrAlreadyWatched struct {
	Symbol string
}

func (e ErrAlreadyWatched) Error() string {
	return fmt.Sprintf("%s is already in the watchlist", e.Symbol)
}

// ErrNotWatched is returned for operations on a symbol that is not in the watchlist.
type ErrNotWatched struct {
	Symbol string
}

func (e ErrNotWatched) Error() string {
	return fmt.Sprintf("%s is not in the watchlist", e.Symbol)
}

// ErrNoKeptArticles is returned when a digest is requested before any article was kept.
type ErrNoKeptArticles struct {
	Symbol string
}

func (e ErrNoKeptArticles) Error() string {
	return fmt.Sprintf("no articles kept for %s", e.Symbol)
}

// ErrInvalidSymbol is returned for an empty symbol.
var ErrInvalidSymbol = errors.New("symbol is required")

// Operation names the user action an error came from.
type Operation string

const (
	OpAdd     Operation = "add"
	OpRefresh Operation = "refresh"
	OpSummary Operation = "summary"
	OpOther   Operation = "other"
)

// Kind groups errors by how the user should react.
type Kind string

const (
	KindRateLimited Kind = "rate_limited"
	KindNotFound    Kind = "not_found"
	KindConflict    Kind = "conflict"
	KindInvalid     Kind = "invalid"
	KindUpstream    Kind = "upstream"
)

// Message is a user-facing rendition of an error.
type Message struct {
	Kind Kind   `json:"kind"`
	Text string `json:"message"`
}

// Classify maps err to the message shown to the user for op.
func Classify(err error, op Operation) Message {
	var (
		exhausted  alphavantage.ErrAllKeysExhausted
		noNews     ErrNoNewsAvailable
		full       ErrWatchlistFull
		duplicate  ErrAlreadyWatched
		notWatched ErrNotWatched
		noKept     ErrNoKeptArticles
		direction  ErrInvalidDirection
		noSummary  ErrNoSummary
	)

	switch {
	case errors.As(err, &exhausted):
		return Message{Kind: KindRateLimited, Text: "API key limit reached. Please try again later."}
	case errors.As(err, &noNews):
		return Message{Kind: KindNotFound, Text: noNews.Error()}
	case errors.As(err, &notWatched):
		return Message{Kind: KindNotFound, Text: notWatched.Error()}
	case errors.As(err, &full):
		return Message{Kind: KindConflict, Text: full.Error()}
	case errors.As(err, &duplicate):
		return Message{Kind: KindConflict, Text: duplicate.Error()}
	case errors.As(err, &noSummary):
		return Message{Kind: KindNotFound, Text: noSummary.Error()}
	case errors.As(err, &noKept):
		return Message{Kind: KindInvalid, Text: noKept.Error()}
	case errors.As(err, &direction):
		return Message{Kind: KindInvalid, Text: direction.Error()}
	case errors.Is(err, ErrInvalidSymbol):
		return Message{Kind: KindInvalid, Text: err.Error()}
	}

	switch op {
	case OpAdd:
		return Message{Kind: KindUpstream, Text: "Failed to add stock: " + err.Error()}
	case OpRefresh:
		return Message{Kind: KindUpstream, Text: "Failed to refresh: " + err.Error()}
	case OpSummary:
		return Message{Kind: KindUpstream, Text: "Failed to generate summary: " + err.Error()}
	default:
		return Message{Kind: KindUpstream, Text: err.Error()}
	}
}

// ErrInvalidDirection is returned for a swipe direction other than left or right.
type ErrInvalidDirection struct {
	Direction string
}

func (e ErrInvalidDirection) Error() string {
	return fmt.Sprintf("invalid swipe direction %q", e.Direction)
}

// ErrNoSummary is returned when no digest was generated yet for a symbol.
type ErrNoSummary struct {
	Symbol string
}

func (e ErrNoSummary) Error() string {
	return fmt.Sprintf("no summary generated for %s", e.Symbol)
}
