package scrape

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/model"
)

// SourceResult pairs a company source with its scrape outcome. Err is set
// when every scraper failed for the URL; Blocked additionally marks anti-bot
// rejections so they can be logged apart from plain failures.
type SourceResult struct {
	Source  model.Source
	Result  *Result
	Err     error
	Blocked bool
}

// FetchAll scrapes every registered source of a company concurrently, at
// most maxConcurrent at a time. Results come back in the company's source
// order regardless of completion order. Failures are recorded, not fatal: a
// dead Instagram page must not sink the website scrape.
func FetchAll(ctx context.Context, scraper Scraper, company model.Company, maxConcurrent int) []SourceResult {
	sources := company.Sources()
	if len(sources) == 0 {
		return nil
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	results := make([]SourceResult, len(sources))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, src := range sources {
		g.Go(func() error {
			res, err := scraper.Scrape(gCtx, src.URL)

			sr := SourceResult{Source: src, Result: res, Err: err}
			if err != nil {
				sr.Blocked = isBlockError(err)
				zap.L().Warn("source scrape failed",
					zap.String("company", company.Name),
					zap.String("source_type", src.Type),
					zap.String("url", src.URL),
					zap.Bool("blocked", sr.Blocked),
					zap.Error(err),
				)
			}

			mu.Lock()
			results[i] = sr
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// CombineContent concatenates the successful results' text, separated by
// blank lines, in source order.
func CombineContent(results []SourceResult) string {
	var parts []string
	for _, r := range results {
		if r.Err == nil && r.Result != nil && r.Result.Content != "" {
			parts = append(parts, r.Result.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

func isBlockError(err error) bool {
	var be *BlockedError
	return errors.As(err, &be)
}
