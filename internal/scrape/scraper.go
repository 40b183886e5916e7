// Package scrape fetches company pages from their public sources and turns
// them into plaintext ready for AUM extraction.
package scrape

import "context"

// Result holds one scraped page.
type Result struct {
	URL        string
	Title      string
	Content    string
	StatusCode int
	Source     string // scraper that produced it, e.g. "jina", "local_http"
}

// Scraper fetches a single URL and returns its content.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Result, error)
	Name() string
}
