package groq

import (
	"fmt"
	"strings"

	"github.com/aristath/tickertock/internal/domain"
)

const systemPrompt = `You are a financial news analyst. Analyze the provided news articles and create a summary with the following EXACT structure:

**Executive Summary**
[Write 2-3 paragraphs summarizing the key themes and developments from all articles]

**Key Points**
• [First key point]
• [Second key point]
• [Third key point]
• [Fourth key point]
• [Fifth key point]

**Sentiment Analysis**
Overall Market Sentiment: [Bullish/Bearish/Neutral]
[Write 1-2 sentences explaining the reasoning for this sentiment based on the articles]

Be concise, factual, and maintain this exact format for consistency across all summaries.`

func buildUserPrompt(quote domain.Quote, articles []domain.NewsItem) string {
	blocks := make([]string, 0, len(articles))
	for _, a := range articles {
		blocks = append(blocks, fmt.Sprintf("Title: %s\nPublisher: %s\nPublished: %s\nSummary: %s",
			a.Title, a.Publisher, a.PublishedAt, a.Summary))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Stock: %s (%s)\n", quote.Symbol, quote.Name)
	fmt.Fprintf(&b, "Current Price: $%g\n", quote.CurrentPrice)
	fmt.Fprintf(&b, "Price Change: %s$%g (%s%g%%)\n\n",
		sign(quote.PriceChange), quote.PriceChange, sign(quote.PercentChange), quote.PercentChange)
	fmt.Fprintf(&b, "Here are %d news articles about this stock:\n\n", len(articles))
	b.WriteString(strings.Join(blocks, "\n\n"))
	fmt.Fprintf(&b, "\n\nPlease provide a comprehensive analysis of these articles for %s.", quote.Symbol)
	return b.String()
}

func sign(v float64) string {
	if v >= 0 {
		return "+"
	}
	return ""
}
