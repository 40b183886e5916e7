package scrape

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

const maxBodyBytes = 512 * 1024

// LocalScraper fetches HTML via net/http and extracts plaintext with
// goquery. Free, no API calls. The chain falls through to it when Jina is
// unavailable or unconfigured.
type LocalScraper struct {
	client *http.Client
}

// NewLocalScraper creates a LocalScraper with sensible defaults.
func NewLocalScraper() *LocalScraper {
	return &LocalScraper{
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

func (l *LocalScraper) Name() string { return "local_http" }

// Scrape fetches a URL, detects blocks and reduces the HTML to plaintext
// paragraphs.
func (l *LocalScraper) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: create request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; AumScraperBot/1.0)")
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en;q=0.5")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "local_http: read body")
	}

	if blocked, blockType := DetectBlock(resp, body); blocked {
		return nil, &BlockedError{Scraper: l.Name(), Type: blockType}
	}

	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("local_http: status %d", resp.StatusCode)
	}

	title, text, err := extractText(body)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: parse html")
	}
	if len(text) < 100 {
		return nil, eris.New("local_http: empty page")
	}

	return &Result{
		URL:        targetURL,
		Title:      title,
		Content:    text,
		StatusCode: resp.StatusCode,
		Source:     "local_http",
	}, nil
}

// blockTags are the elements whose text becomes one paragraph each, keeping
// the blank-line structure the chunk selector splits on.
var blockTags = "p, h1, h2, h3, h4, li, td, blockquote"

// extractText parses the HTML and returns the title plus the page text as
// blank-line separated paragraphs.
func extractText(body []byte) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}

	doc.Find("script, style, nav, footer, noscript, iframe").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())

	var paras []string
	doc.Find(blockTags).Each(func(_ int, s *goquery.Selection) {
		t := collapseSpace(s.Text())
		if t != "" {
			paras = append(paras, t)
		}
	})

	// Pages built entirely from divs yield no block elements; fall back to
	// the whole body text.
	if len(paras) == 0 {
		if t := collapseSpace(doc.Find("body").Text()); t != "" {
			paras = append(paras, t)
		}
	}

	return title, strings.Join(paras, "\n\n"), nil
}

var spaceRe = regexp.MustCompile(`\s+`)

func collapseSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
