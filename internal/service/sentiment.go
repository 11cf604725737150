package service

import (
	"strings"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
)

var sentimentKeywords = []struct {
	word      string
	sentiment domain.Sentiment
}{
	{"bullish", domain.SentimentBullish},
	{"positive", domain.SentimentBullish},
	{"bearish", domain.SentimentBearish},
	{"negative", domain.SentimentBearish},
}

// DetectSentiment scans text for sentiment keywords. The keyword appearing
// first in the text wins, even if contradicted later; no keyword is Neutral.
func DetectSentiment(text string) domain.Sentiment {
	lower := strings.ToLower(text)
	best := -1
	result := domain.SentimentNeutral
	for _, kw := range sentimentKeywords {
		idx := strings.Index(lower, kw.word)
		if idx < 0 {
			continue
		}
		if best < 0 || idx < best {
			best = idx
			result = kw.sentiment
		}
	}
	return result
}

func parseSentiment(raw domain.Sentiment) domain.Sentiment {
	switch {
	case strings.EqualFold(string(raw), string(domain.SentimentBullish)):
		return domain.SentimentBullish
	case strings.EqualFold(string(raw), string(domain.SentimentBearish)):
		return domain.SentimentBearish
	default:
		return domain.SentimentNeutral
	}
}
