package scrape

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubScraper returns a canned result or error and counts calls.
type stubScraper struct {
	name   string
	result *Result
	err    error
	calls  int
}

func (s *stubScraper) Name() string { return s.name }

func (s *stubScraper) Scrape(_ context.Context, url string) (*Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	r := *s.result
	r.URL = url
	return &r, nil
}

func TestChainFirstScraperWins(t *testing.T) {
	first := &stubScraper{name: "first", result: &Result{Content: "conteúdo", Source: "first"}}
	second := &stubScraper{name: "second", result: &Result{Content: "outro", Source: "second"}}
	c := NewChain(100, first, second)

	res, err := c.Scrape(context.Background(), "https://example.com.br")
	require.NoError(t, err)
	assert.Equal(t, "first", res.Source)
	assert.Equal(t, 1, first.calls)
	assert.Zero(t, second.calls)
}

func TestChainFallsThroughOnFailure(t *testing.T) {
	first := &stubScraper{name: "first", err: eris.New("blocked (captcha)")}
	second := &stubScraper{name: "second", result: &Result{Content: "conteúdo", Source: "second"}}
	c := NewChain(100, first, second)

	res, err := c.Scrape(context.Background(), "https://example.com.br")
	require.NoError(t, err)
	assert.Equal(t, "second", res.Source)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestChainAllFail(t *testing.T) {
	first := &stubScraper{name: "first", err: eris.New("down")}
	second := &stubScraper{name: "second", err: eris.New("also down")}
	c := NewChain(100, first, second)

	_, err := c.Scrape(context.Background(), "https://example.com.br")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all scrapers failed")
}

// A block detected early in the chain must stay visible even when the
// fallback fails for an unrelated reason afterwards.
func TestChainKeepsBlockWhenFallbackFailsPlainly(t *testing.T) {
	first := &stubScraper{name: "first", err: &BlockedError{Scraper: "local_http", Type: BlockCaptcha}}
	second := &stubScraper{name: "second", err: eris.New("connection refused")}
	c := NewChain(100, first, second)

	_, err := c.Scrape(context.Background(), "https://example.com.br")
	require.Error(t, err)

	var be *BlockedError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, BlockCaptcha, be.Type)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestChainNoScrapers(t *testing.T) {
	c := NewChain(100)
	_, err := c.Scrape(context.Background(), "https://example.com.br")
	assert.Error(t, err)
}

func TestChainSeparateLimitersPerHost(t *testing.T) {
	c := NewChain(1)
	a := c.limiterFor("https://a.example.com.br/sobre")
	b := c.limiterFor("https://b.example.com.br/sobre")
	again := c.limiterFor("https://a.example.com.br/contato")

	assert.NotSame(t, a, b)
	assert.Same(t, a, again)
}

func TestChainCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	slow := &stubScraper{name: "slow", result: &Result{Content: "x"}}
	c := NewChain(100, slow)
	_, err := c.Scrape(ctx, "https://example.com.br")
	assert.Error(t, err)
}
