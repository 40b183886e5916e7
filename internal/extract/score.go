package extract

import (
	"regexp"

	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/chunk"
	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/money"
)

const (
	confidenceBase     = 0.5
	wellFormedBonus    = 0.3
	keywordBonus       = 0.05
	hedgePenalty       = 0.15
	fallbackConfidence = 0.7
)

// wellFormed matches a currency symbol followed by a number and a unit word,
// the canonical answer shape ("R$ 2,3 bi").
var wellFormed = regexp.MustCompile(`(?i)(R\$|US\$|\$|€)\s*\d+(?:[.,]\d+)?\s*\p{L}+`)

// domainKeywords raise confidence when the answer carries extraction context
// alongside the figure. Matched as whole words against folded text.
var domainKeywords = compileWords(
	"patrimonio sob gestao",
	"aum",
	"assets under management",
	"fundo",
	"gestao",
	"investimento",
)

// hedgeKeywords lower confidence: the figure may be a target or estimate
// rather than a stated amount.
var hedgeKeywords = compileWords(
	"estimativa",
	"projecao",
	"meta",
	"esperado",
)

func compileWords(words ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		out[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
	}
	return out
}

// scoreConfidence rates how trustworthy an extracted answer is, in [0, 1].
// Zero when no value was parsed at all.
func scoreConfidence(rawText string, parsed bool) float64 {
	if !parsed {
		return 0
	}

	score := confidenceBase
	if wellFormed.MatchString(rawText) {
		score += wellFormedBonus
	}

	folded := chunk.Fold(rawText)
	for _, kw := range domainKeywords {
		if kw.MatchString(folded) {
			score += keywordBonus
		}
	}
	for _, kw := range hedgeKeywords {
		if kw.MatchString(folded) {
			score -= hedgePenalty
		}
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// parseAnswer runs the monetary parser over an answer line and attaches the
// confidence score.
func parseAnswer(rawText string) (money.Value, float64, bool) {
	v, ok := money.Parse(rawText)
	return v, scoreConfidence(rawText, ok), ok
}
