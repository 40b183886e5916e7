// Package pipeline wires scraping, extraction and persistence into the
// per-company AUM flow.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/budget"
	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/extract"
	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/model"
	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/scrape"
	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/store"
)

// Result is the outcome of processing one company.
type Result struct {
	Company    model.Company       `json:"company"`
	Extraction model.AumExtraction `json:"extraction"`
	Snapshot   *model.AumSnapshot  `json:"snapshot,omitempty"`
	Sources    int                 `json:"sources_scraped"`
}

// Pipeline runs the scrape-extract-persist flow.
type Pipeline struct {
	st         store.Store
	scraper    scrape.Scraper
	extractor  *extract.Extractor
	tracker    *budget.Tracker
	maxSources int
}

// New assembles a Pipeline. All dependencies are required.
func New(st store.Store, scraper scrape.Scraper, extractor *extract.Extractor, tracker *budget.Tracker, maxConcurrentSources int) (*Pipeline, error) {
	if st == nil || scraper == nil || extractor == nil || tracker == nil {
		return nil, eris.New("pipeline: store, scraper, extractor and tracker are required")
	}
	if maxConcurrentSources <= 0 {
		maxConcurrentSources = 1
	}
	return &Pipeline{
		st:         st,
		scraper:    scraper,
		extractor:  extractor,
		tracker:    tracker,
		maxSources: maxConcurrentSources,
	}, nil
}

// Run scrapes every source of the company, extracts an AUM figure from the
// combined text and persists both the snapshot and the scrape audit trail.
func (p *Pipeline) Run(ctx context.Context, company model.Company) (*Result, error) {
	results := scrape.FetchAll(ctx, p.scraper, company, p.maxSources)
	p.logScrapes(ctx, company, results)

	content := scrape.CombineContent(results)
	extraction := p.extractor.ExtractAUM(ctx, company.Name, content)

	snap := extraction.Snapshot(company.ID, dominantSourceType(results))
	saved, err := p.st.SaveSnapshot(ctx, snap)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: save snapshot")
	}

	p.persistUsage(ctx)

	zap.L().Info("company processed",
		zap.String("company", company.Name),
		zap.String("method", string(extraction.Method)),
		zap.Float64("confidence", extraction.Confidence),
		zap.Bool("has_value", extraction.HasValue()),
		zap.Int("tokens_used", extraction.TokensUsed),
	)

	return &Result{
		Company:    company,
		Extraction: extraction,
		Snapshot:   saved,
		Sources:    countSuccesses(results),
	}, nil
}

// RunBatch processes companies concurrently, at most maxConcurrent at a
// time. A failing company is logged and skipped; the batch keeps going.
func (p *Pipeline) RunBatch(ctx context.Context, companies []model.Company, maxConcurrent int) []Result {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	var (
		mu  sync.Mutex
		out []Result
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for _, company := range companies {
		g.Go(func() error {
			res, err := p.Run(gCtx, company)
			if err != nil {
				zap.L().Error("company failed",
					zap.String("company", company.Name),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			out = append(out, *res)
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return out
}

func (p *Pipeline) logScrapes(ctx context.Context, company model.Company, results []scrape.SourceResult) {
	for _, r := range results {
		entry := model.ScrapeLog{
			CompanyID:  company.ID,
			URL:        r.Source.URL,
			SourceType: r.Source.Type,
			Status:     "success",
			Blocked:    r.Blocked,
		}
		if r.Err != nil {
			entry.Status = "failed"
			entry.ErrorMessage = r.Err.Error()
		} else if r.Result != nil {
			entry.ContentLength = len(r.Result.Content)
		}

		if err := p.st.LogScrape(ctx, entry); err != nil {
			zap.L().Warn("scrape log write failed",
				zap.String("url", r.Source.URL),
				zap.Error(err),
			)
		}
	}
}

// persistUsage mirrors the in-memory budget counters into the store so usage
// survives restarts and is visible to the API.
func (p *Pipeline) persistUsage(ctx context.Context) {
	stats := p.tracker.DailyStats()
	err := p.st.UpsertUsage(ctx, model.UsageDay{
		Date:        time.Now().UTC().Truncate(24 * time.Hour),
		TokensUsed:  stats.TokensUsed,
		TokensLimit: stats.TokensLimit,
		APICalls:    stats.CallsToday,
	})
	if err != nil {
		zap.L().Warn("usage persist failed", zap.Error(err))
	}
}

// dominantSourceType labels a snapshot with the source it came from: the
// single successful source's type, or "combined" when several contributed.
func dominantSourceType(results []scrape.SourceResult) string {
	var first string
	n := 0
	for _, r := range results {
		if r.Err == nil && r.Result != nil {
			if n == 0 {
				first = r.Source.Type
			}
			n++
		}
	}
	if n > 1 {
		return "combined"
	}
	return first
}

func countSuccesses(results []scrape.SourceResult) int {
	n := 0
	for _, r := range results {
		if r.Err == nil {
			n++
		}
	}
	return n
}
