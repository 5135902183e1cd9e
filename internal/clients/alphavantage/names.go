package alphavantage

// stockNames resolves display names for the symbols offered in the search screen.
var stockNames = map[string]string{
	"NVDA":  "NVIDIA Corporation",
	"TSM":   "Taiwan Semiconductor",
	"QQQ":   "Invesco QQQ Trust",
	"AAPL":  "Apple Inc.",
	"MSFT":  "Microsoft Corporation",
	"GOOGL": "Alphabet Inc.",
	"AMZN":  "Amazon.com Inc.",
	"META":  "Meta Platforms Inc.",
	"TSLA":  "Tesla Inc.",
	"NFLX":  "Netflix Inc.",
	"CRM":   "Salesforce Inc.",
	"INTC":  "Intel Corporation",
	"AMD":   "Advanced Micro Devices",
}

// StockName returns the display name for symbol, or the symbol itself when unknown.
func StockName(symbol string) string {
	if name, ok := stockNames[symbol]; ok {
		return name
	}
	return symbol
}
