// Package scraper reads video identifiers and metadata out of the site's
// public HTML pages.
package scraper

import (
	"errors"
	"fmt"
	"net/url"
)

const (
	// SiteURL is the canonical origin used in records and for relative links
	SiteURL = "https://www.youtube.com"

	searchPath = "/results?search_query="
	watchPath  = "/watch?v="
)

var (
	// ErrTransport marks network failures and non-2xx responses
	ErrTransport = errors.New("transport error")
	// ErrNotFound marks markup that was expected but absent
	ErrNotFound = errors.New("not found in page")
)

// WatchURL is the canonical page URL for a video id.
func WatchURL(videoID string) string {
	return SiteURL + watchPath + videoID
}

func searchURL(base, query string) string {
	return base + searchPath + url.QueryEscape(query)
}

func transportError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrTransport, err)
}
