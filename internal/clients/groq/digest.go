package groq

import "strings"

// Digest is a model answer split into its labelled sections.
type Digest struct {
	ExecutiveSummary string   `json:"executive_summary"`
	KeyPoints        []string `json:"key_points"`
	Sentiment        string   `json:"sentiment"`
	SentimentReason  string   `json:"sentiment_reason"`
}

const (
	headingSummary   = "**Executive Summary**"
	headingKeyPoints = "**Key Points**"
	headingSentiment = "**Sentiment Analysis**"
	sentimentPrefix  = "Overall Market Sentiment:"
)

// ParseDigest splits text on the section headings the system prompt asks for.
// Text that carries no headings at all is returned as the executive summary.
func ParseDigest(text string) Digest {
	sections := map[string][]string{}
	current := headingSummary
	sawHeading := false

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch trimmed {
		case headingSummary, headingKeyPoints, headingSentiment:
			current = trimmed
			sawHeading = true
			continue
		}
		sections[current] = append(sections[current], trimmed)
	}

	if !sawHeading {
		return Digest{ExecutiveSummary: strings.TrimSpace(text)}
	}

	d := Digest{
		ExecutiveSummary: joinParagraphs(sections[headingSummary]),
	}

	for _, line := range sections[headingKeyPoints] {
		point := strings.TrimSpace(strings.TrimLeft(line, "•-* "))
		if point != "" {
			d.KeyPoints = append(d.KeyPoints, point)
		}
	}

	var reason []string
	for _, line := range sections[headingSentiment] {
		if strings.HasPrefix(line, sentimentPrefix) {
			d.Sentiment = strings.TrimSpace(strings.TrimPrefix(line, sentimentPrefix))
			continue
		}
		reason = append(reason, line)
	}
	d.SentimentReason = joinParagraphs(reason)

	return d
}

// joinParagraphs rejoins lines, keeping blank-line paragraph breaks.
func joinParagraphs(lines []string) string {
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
