package normalize

import (
	"strings"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
)

// PlaceholderURL is what the model emits when it has no real link.
const PlaceholderURL = "#"

// FilterCitations drops sources with a missing or placeholder URL and
// collapses duplicate URLs, keeping the first occurrence.
func FilterCitations(in []domain.SourceCitation) []domain.SourceCitation {
	out := make([]domain.SourceCitation, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, src := range in {
		url := strings.TrimSpace(src.URL)
		if url == "" || url == PlaceholderURL {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		title := strings.TrimSpace(src.Title)
		if title == "" {
			title = url
		}
		out = append(out, domain.SourceCitation{Title: title, URL: url})
	}
	return out
}
