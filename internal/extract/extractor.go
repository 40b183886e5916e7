package extract

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/budget"
	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/chunk"
	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/model"
	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/money"
)

// Config tunes the extraction pipeline.
type Config struct {
	MaxChunks           int
	MaxCharsPerChunk    int
	MaxTokensPerRequest int
	Timeout             time.Duration
	// HighConfidence stops the chunk loop early once a candidate reaches
	// this score.
	HighConfidence float64
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		MaxChunks:           5,
		MaxCharsPerChunk:    6000,
		MaxTokensPerRequest: 1500,
		Timeout:             30 * time.Second,
		HighConfidence:      0.8,
	}
}

// Extractor orchestrates chunk selection, the LLM strategy, the regex
// fallback and budget accounting for one company at a time.
type Extractor struct {
	strategy Strategy
	tracker  *budget.Tracker
	cfg      Config
}

// New builds an Extractor. Both the strategy and the tracker are required.
func New(strategy Strategy, tracker *budget.Tracker, cfg Config) (*Extractor, error) {
	if strategy == nil {
		return nil, eris.New("extract: strategy is required")
	}
	if tracker == nil {
		return nil, eris.New("extract: budget tracker is required")
	}
	if cfg.MaxChunks <= 0 || cfg.MaxCharsPerChunk <= 0 || cfg.MaxTokensPerRequest <= 0 {
		return nil, eris.New("extract: chunk and token limits must be positive")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Extractor{strategy: strategy, tracker: tracker, cfg: cfg}, nil
}

// ExtractAUM runs the full pipeline over raw scraped content. It never
// returns an error: failures degrade through the fallback strategy and, as a
// last resort, into a result whose Method records what happened. Method
// distinguishes "the provider was down" (error) from "the pages carry no
// figure" (none).
func (e *Extractor) ExtractAUM(ctx context.Context, companyName, rawContent string) model.AumExtraction {
	chunks := chunk.Select(rawContent, e.cfg.MaxChunks, e.cfg.MaxCharsPerChunk)
	if len(chunks) == 0 {
		zap.L().Debug("no usable paragraphs", zap.String("company", companyName))
		return model.EmptyExtraction()
	}

	var (
		best          model.AumExtraction
		haveBest      bool
		lastErr       error
		fallbackTried bool
	)

	consider := func(cand model.AumExtraction) bool {
		if !cand.HasValue() {
			return false
		}
		if !haveBest || cand.Confidence > best.Confidence {
			best = cand
			haveBest = true
		}
		return best.Confidence >= e.cfg.HighConfidence
	}

	for _, c := range chunks {
		prompt := e.fitPrompt(companyName, c.Text)

		if !e.tracker.CheckAndReserve(EstimateTokens(prompt)) {
			zap.L().Warn("token budget refused request",
				zap.String("company", companyName))
			if cand, ok := e.tryFallback(&fallbackTried, companyName, chunks); ok && consider(cand) {
				return best
			}
			continue
		}

		cand, err := e.askLLM(ctx, companyName, prompt)
		if err != nil {
			lastErr = err
			zap.L().Warn("llm extraction failed",
				zap.String("company", companyName),
				zap.Error(err))
			if cand, ok := e.tryFallback(&fallbackTried, companyName, chunks); ok && consider(cand) {
				return best
			}
			continue
		}

		if consider(cand) {
			return best
		}
	}

	if haveBest {
		return best
	}
	if lastErr != nil {
		return model.ErrorExtraction(eris.ToString(lastErr, false))
	}
	return model.EmptyExtraction()
}

// askLLM sends one chunk prompt and turns the answer into a candidate. Token
// usage commits even when the answer is a sentinel.
func (e *Extractor) askLLM(ctx context.Context, companyName, prompt string) (model.AumExtraction, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	answer, tokens, err := e.strategy.Extract(callCtx, prompt)
	if tokens > 0 {
		if warned := e.tracker.Commit(tokens); warned {
			stats := e.tracker.DailyStats()
			zap.L().Warn("daily token budget nearing limit",
				zap.Int("tokens_used", stats.TokensUsed),
				zap.Int("tokens_limit", stats.TokensLimit),
				zap.Float64("usage_pct", stats.UsagePercentage))
		}
	}
	if err != nil {
		return model.AumExtraction{}, err
	}

	answer = strings.TrimSpace(answer)
	v, confidence, ok := parseAnswer(answer)
	if !ok {
		return model.AumExtraction{
			Currency:   money.BRL,
			RawText:    model.NotAvailable,
			TokensUsed: tokens,
			Method:     model.MethodLLM,
		}, nil
	}

	amount := v.Amount
	return model.AumExtraction{
		Value:      &amount,
		Currency:   v.Currency,
		Unit:       v.Unit,
		RawText:    answer,
		Confidence: confidence,
		TokensUsed: tokens,
		Method:     model.MethodLLM,
	}, nil
}

// tryFallback runs the regex fallback once per extraction, over the
// concatenated selected chunks.
func (e *Extractor) tryFallback(tried *bool, companyName string, chunks []chunk.Chunk) (model.AumExtraction, bool) {
	if *tried {
		return model.AumExtraction{}, false
	}
	*tried = true

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	v, span, ok := fallbackExtract(strings.Join(texts, "\n\n"))
	if !ok {
		return model.AumExtraction{}, false
	}

	zap.L().Info("regex fallback extracted value",
		zap.String("company", companyName),
		zap.String("match", span))

	amount := v.Amount
	return model.AumExtraction{
		Value:      &amount,
		Currency:   v.Currency,
		Unit:       v.Unit,
		RawText:    span,
		Confidence: fallbackConfidence,
		Method:     model.MethodRegexFallback,
	}, true
}

// fitPrompt builds the chunk prompt, truncating the chunk on a word boundary
// when the rendered prompt would blow the per-request token limit.
func (e *Extractor) fitPrompt(companyName, chunkText string) string {
	prompt := buildPrompt(companyName, chunkText)
	budgetChars := e.cfg.MaxTokensPerRequest * 4
	if len(prompt) <= budgetChars {
		return prompt
	}

	overhead := len(prompt) - len(chunkText)
	keep := budgetChars - overhead
	if keep <= 0 {
		return buildPrompt(companyName, "")
	}
	if cut := strings.LastIndexByte(chunkText[:keep], ' '); cut > 0 {
		keep = cut
	}
	return buildPrompt(companyName, chunkText[:keep])
}
