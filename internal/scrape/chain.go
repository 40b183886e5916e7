package scrape

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Chain tries scrapers in priority order, returning the first success. A
// per-host rate limiter keeps concurrent fetches polite.
type Chain struct {
	scrapers []Scraper

	perHost rate.Limit
	burst   int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewChain creates a Chain. Scrapers are tried in order; requestsPerSecond
// caps the fetch rate against any single host across all scrapers.
func NewChain(requestsPerSecond float64, scrapers ...Scraper) *Chain {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &Chain{
		scrapers: scrapers,
		perHost:  rate.Limit(requestsPerSecond),
		burst:    1,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (c *Chain) Name() string { return "chain" }

// Scrape waits for the host's rate limiter, then tries each scraper in
// order. Returns the first successful result. When all fail, the errors are
// joined so a BlockedError from any scraper stays visible to errors.As even
// if a later scraper failed plainly.
func (c *Chain) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	if len(c.scrapers) == 0 {
		return nil, eris.New("scrape: no scrapers configured")
	}

	if err := c.limiterFor(targetURL).Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "scrape: rate limit wait")
	}

	var errs []error
	for _, s := range c.scrapers {
		result, err := s.Scrape(ctx, targetURL)
		if err == nil && result != nil {
			return result, nil
		}
		if err != nil {
			zap.L().Debug("scraper failed, trying next",
				zap.String("scraper", s.Name()),
				zap.String("url", targetURL),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, eris.Wrap(errors.Join(errs...), "scrape: all scrapers failed")
}

func (c *Chain) limiterFor(targetURL string) *rate.Limiter {
	host := targetURL
	if u, err := url.Parse(targetURL); err == nil && u.Host != "" {
		host = strings.ToLower(u.Host)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.limiters[host]
	if !ok {
		l = rate.NewLimiter(c.perHost, c.burst)
		c.limiters[host] = l
	}
	return l
}
