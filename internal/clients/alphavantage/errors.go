package alphavantage

import "fmt"

// ErrAllKeysExhausted is returned when every key in the pool hit the rate limit
// within one logical request.
type ErrAllKeysExhausted struct {
	Attempts int
}

func (e ErrAllKeysExhausted) Error() string {
	return fmt.Sprintf("all API keys have reached their rate limit (%d attempts)", e.Attempts)
}

// ErrNoDataForSymbol is returned when a quote response carries no quote payload.
type ErrNoDataForSymbol struct {
	Symbol string
}

func (e ErrNoDataForSymbol) Error() string {
	return fmt.Sprintf("no data returned for %s", e.Symbol)
}

// TransportError wraps a failed HTTP exchange: either the request never completed
// (Status is 0) or the upstream answered with a non-2xx status.
type TransportError struct {
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("API error: %d", e.Status)
	}
	return fmt.Sprintf("API request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
