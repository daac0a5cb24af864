package scraper

import (
	"context"
	"regexp"

	"videocrawl/internal/client"

	"go.uber.org/zap"
)

var watchLinkRE = regexp.MustCompile(`/watch\?v=([a-zA-Z0-9_-]{11})`)

// Searcher returns up to max video identifiers for a query.
type Searcher interface {
	Search(ctx context.Context, query string, max int) ([]string, error)
}

// PageSearcher scrapes identifiers out of the results page markup.
type PageSearcher struct {
	Client  client.HTTPClient
	BaseURL string
	Log     *zap.Logger
}

// NewPageSearcher creates a searcher against the public site
func NewPageSearcher(c client.HTTPClient, log *zap.Logger) *PageSearcher {
	return &PageSearcher{Client: c, BaseURL: SiteURL, Log: log}
}

// Search fetches the results page for query. On any transport failure it
// returns an empty list together with an error wrapping ErrTransport.
func (s *PageSearcher) Search(ctx context.Context, query string, max int) ([]string, error) {
	u := searchURL(s.BaseURL, query)
	body, err := client.Get(ctx, s.Client, u)
	if err != nil {
		return []string{}, transportError("search", err)
	}

	ids := ParseSearchResults(body, max)
	if s.Log != nil {
		s.Log.Debug("Search page parsed",
			zap.String("query", query),
			zap.Int("bytes", len(body)),
			zap.Int("ids", len(ids)))
	}
	return ids, nil
}

// ParseSearchResults returns the distinct identifiers linked from body in order
// of first appearance, truncated to max.
func ParseSearchResults(body []byte, max int) []string {
	ids := []string{}
	if max <= 0 {
		return ids
	}

	seen := make(map[string]bool)
	for _, m := range watchLinkRE.FindAllSubmatch(body, -1) {
		id := string(m[1])
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
		if len(ids) == max {
			break
		}
	}
	return ids
}

// DedupeIDs drops empty and repeated ids, keeps order and truncates to max.
func DedupeIDs(in []string, max int) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, id := range in {
		if len(out) >= max {
			break
		}
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
