package alphavantage

import (
	"fmt"
	"time"
)

// publishedLayout is the time_published format used by NEWS_SENTIMENT, always UTC.
const publishedLayout = "20060102T150405"

// FormatTimeAgo renders an upstream timestamp relative to now ("3 hours ago").
// Unparseable timestamps are returned unchanged.
func FormatTimeAgo(timestamp string, now time.Time) string {
	if timestamp == "" {
		return "Unknown time"
	}

	published, err := time.ParseInLocation(publishedLayout, timestamp, time.UTC)
	if err != nil {
		return timestamp
	}

	elapsed := now.Sub(published)
	switch {
	case elapsed >= 24*time.Hour:
		return agoString(int(elapsed/(24*time.Hour)), "day")
	case elapsed >= time.Hour:
		return agoString(int(elapsed/time.Hour), "hour")
	case elapsed >= time.Minute:
		return agoString(int(elapsed/time.Minute), "minute")
	default:
		return "Just now"
	}
}

func agoString(n int, unit string) string {
	if n > 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s ago", n, unit)
}
