// Package widget renders the home-screen widget from the persisted snapshot.
package widget

import (
	"fmt"

	"github.com/aristath/tickertock/internal/modules/state"
)

// Placeholder is shown when there is no favorite or no quote for it.
const Placeholder = "Tap to favorite a stock"

const (
	colorPositive = "#4CAF50"
	colorNegative = "#F44336"
)

// View is the widget content, already formatted for display.
type View struct {
	Available  bool   `json:"available" msgpack:"available"`
	Symbol     string `json:"symbol,omitempty" msgpack:"symbol,omitempty"`
	Price      string `json:"price,omitempty" msgpack:"price,omitempty"`
	Change     string `json:"change,omitempty" msgpack:"change,omitempty"`
	Percentage string `json:"percentage,omitempty" msgpack:"percentage,omitempty"`
	Positive   bool   `json:"positive" msgpack:"positive"`
	Color      string `json:"color,omitempty" msgpack:"color,omitempty"`
	Message    string `json:"message,omitempty" msgpack:"message,omitempty"`
}

// Build renders the favorite's quote from snap. A nil snapshot renders the placeholder.
func Build(snap *state.AppState) View {
	if snap == nil || snap.FavoriteSymbol == "" {
		return View{Message: Placeholder}
	}

	q, ok := snap.Quotes[snap.FavoriteSymbol]
	if !ok {
		return View{Message: Placeholder}
	}

	positive := q.IsPositive()
	sign, color := "", colorNegative
	if positive {
		sign, color = "+", colorPositive
	}

	return View{
		Available:  true,
		Symbol:     q.Symbol,
		Price:      fmt.Sprintf("$%.2f", q.CurrentPrice),
		Change:     fmt.Sprintf("%s$%.2f", sign, q.PriceChange),
		Percentage: fmt.Sprintf("(%s%.2f%%)", sign, q.PercentChange),
		Positive:   positive,
		Color:      color,
	}
}
