package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuote_IsPositive(t *testing.T) {
	tests := []struct {
		name     string
		change   float64
		expected bool
	}{
		{"gain", 1.25, true},
		{"flat", 0, true},
		{"loss", -0.01, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Quote{PriceChange: tt.change}.IsPositive())
		})
	}
}
