package scrape

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/Giovana-Manuquian/aum-scraper-2-versao/pkg/jina"
)

// JinaScraper fetches pages through the Jina AI Reader, which renders
// JavaScript-heavy sites and returns clean markdown. Used first because
// social profiles rarely survive a plain HTTP fetch.
type JinaScraper struct {
	client jina.Client
}

// NewJinaScraper wraps a Jina client as a Scraper.
func NewJinaScraper(client jina.Client) *JinaScraper {
	return &JinaScraper{client: client}
}

func (j *JinaScraper) Name() string { return "jina" }

func (j *JinaScraper) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	resp, err := j.client.Read(ctx, targetURL)
	if err != nil {
		return nil, eris.Wrap(err, "jina: read")
	}
	if resp.Data.Content == "" {
		return nil, eris.Errorf("jina: empty content for %s", targetURL)
	}

	return &Result{
		URL:        targetURL,
		Title:      resp.Data.Title,
		Content:    resp.Data.Content,
		StatusCode: resp.Code,
		Source:     "jina",
	}, nil
}
