package extract

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/Giovana-Manuquian/aum-scraper-2-versao/pkg/anthropic"
)

const (
	defaultModel = "claude-haiku-4-5-20251001"

	// Answers are a single short line; anything longer is the model
	// rambling.
	answerMaxTokens = 100

	// Low temperature keeps the answer format stable across runs.
	answerTemperature = 0.1
)

// LLMStrategy extracts AUM figures by asking an Anthropic model.
type LLMStrategy struct {
	client anthropic.Client
	model  string
}

// NewLLMStrategy wraps an Anthropic client as an extraction strategy. An
// empty model selects the default.
func NewLLMStrategy(client anthropic.Client, model string) (*LLMStrategy, error) {
	if client == nil {
		return nil, eris.New("extract: anthropic client is required")
	}
	if model == "" {
		model = defaultModel
	}
	return &LLMStrategy{client: client, model: model}, nil
}

func (s *LLMStrategy) Name() string { return "llm" }

// Extract sends the prompt and returns the model's one-line answer. Token
// usage comes from the API response, not the local estimate.
func (s *LLMStrategy) Extract(ctx context.Context, prompt string) (string, int, error) {
	temp := answerTemperature
	resp, err := s.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       s.model,
		MaxTokens:   answerMaxTokens,
		System:      systemPrompt,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", 0, eris.Wrap(err, "extract: llm call")
	}

	resp.Usage.LogUsage(s.model, "extract")
	return resp.Text(), resp.Usage.Total(), nil
}
