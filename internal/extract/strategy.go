// Package extract turns scraped page text into structured AUM figures. An
// LLM strategy is tried first; a regex fallback covers provider outages and
// budget refusals.
package extract

import "context"

// Strategy answers an extraction prompt. Implementations report the tokens
// they consumed even when they fail, so the budget stays accurate.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, prompt string) (answer string, tokensUsed int, err error)
}

// EstimateTokens approximates the token count of a prompt. Four characters
// per token is the usual rough figure for mixed Portuguese and English text.
func EstimateTokens(text string) int {
	return len(text) / 4
}
