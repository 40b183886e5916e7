package extract

import (
	"regexp"
	"strings"

	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/chunk"
	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/money"
)

// fallbackPatterns locate AUM statements directly in page text when the LLM
// is unavailable. Ordered most specific first; the first match wins. They run
// over folded text, so accents are already stripped.
var fallbackPatterns = []*regexp.Regexp{
	// "290 milhoes sob custodia" / "2,3 bilhoes em gestao"
	regexp.MustCompile(`(?:r\$|us\$|\$|€)?\s*\d+(?:[.,]\d+)?\s*(?:bi|bilhao|bilhoes|mi|milhao|milhoes|mil)?\s*(?:sob|em)\s+(?:gestao|custodia)`),
	// "patrimonio sob gestao de R$ 2,3 bi"
	regexp.MustCompile(`patrimonio\s+sob\s+gestao\s+de\s+(?:r\$|us\$|\$|€)?\s*\d+(?:[.,]\d+)?\s*\p{L}*`),
	// "R$ 2,3 bi"
	regexp.MustCompile(`(?:r\$|us\$|\$|€)\s*\d+(?:[.,]\d+)?\s*\p{L}*`),
	// "2,3 bilhoes"
	regexp.MustCompile(`\d+(?:[.,]\d+)?\s*(?:bi|bilhao|bilhoes|mi|milhao|milhoes)`),
}

// fallbackExtract scans raw page text for an AUM statement without calling
// the LLM. The matched span goes through the same monetary parser as LLM
// answers, so units and currencies normalize identically. Confidence is a
// flat fallbackConfidence when a value is found.
func fallbackExtract(text string) (money.Value, string, bool) {
	folded := chunk.Fold(text)
	for _, p := range fallbackPatterns {
		span := p.FindString(folded)
		if span == "" {
			continue
		}
		v, ok := parseSpan(span)
		if !ok {
			continue
		}
		return v, span, true
	}
	return money.Value{}, "", false
}

// currencyCase restores the symbols folding lowercased, so parseSpan feeds
// the parser the same shape LLM answers have.
var currencyCase = strings.NewReplacer("us$", "US$", "r$", "R$")

func parseSpan(span string) (money.Value, bool) {
	return money.Parse(currencyCase.Replace(span))
}
