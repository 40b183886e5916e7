package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/budget"
	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/extract"
	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/pipeline"
	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/scrape"
	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/store"
	anthropicpkg "github.com/Giovana-Manuquian/aum-scraper-2-versao/pkg/anthropic"
	"github.com/Giovana-Manuquian/aum-scraper-2-versao/pkg/jina"
)

// pipelineEnv holds the initialized store, budget tracker and pipeline used
// by the run/batch/serve commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
	Tracker  *budget.Tracker
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "aum.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initPipeline sets up the store, the scrape chain, the Claude client and
// the extractor, and assembles the Pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic API key is required (AUM_ANTHROPIC_KEY)")
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	// Scrape chain: Jina reader first when configured, local HTTP fallback.
	var scrapers []scrape.Scraper
	if cfg.Jina.Key != "" {
		jinaClient := jina.NewClient(cfg.Jina.Key, jina.WithBaseURL(cfg.Jina.BaseURL))
		scrapers = append(scrapers, scrape.NewJinaScraper(jinaClient))
	} else {
		zap.L().Warn("AUM_JINA_KEY not set, scraping with local HTTP only")
	}
	scrapers = append(scrapers, scrape.NewLocalScraper())
	chain := scrape.NewChain(cfg.Scrape.RequestsPerSecond, scrapers...)

	anthropicClient, err := anthropicpkg.NewClient(cfg.Anthropic.Key)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	strategy, err := extract.NewLLMStrategy(anthropicClient, cfg.Anthropic.Model)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	tracker := budget.New(cfg.Extraction.MaxTokensPerDay, cfg.Extraction.BudgetAlertThreshold)

	extractor, err := extract.New(strategy, tracker, extract.Config{
		MaxChunks:           cfg.Extraction.MaxChunks,
		MaxCharsPerChunk:    cfg.Extraction.MaxCharsPerChunk,
		MaxTokensPerRequest: cfg.Extraction.MaxTokensPerRequest,
		Timeout:             cfg.Extraction.Timeout(),
		HighConfidence:      cfg.Extraction.HighConfidenceThreshold,
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	p, err := pipeline.New(st, chain, extractor, tracker, cfg.Scrape.MaxConcurrentSources)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &pipelineEnv{
		Store:    st,
		Pipeline: p,
		Tracker:  tracker,
	}, nil
}
