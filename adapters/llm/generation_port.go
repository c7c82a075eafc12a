package llm

import (
	"context"
)

// GenerationAdapter wraps the chat-completion client as a
// ports.GenerationPort for candidate text generation: a one-shot, no-usage
// decoding call at a caller-chosen temperature.
type GenerationAdapter struct {
	client               *OpenAIClient
	model                string
	maxTokens            int
	costPerMillionTokens float64
}

// NewGenerationAdapter builds a GenerationAdapter from an llm Config.
func NewGenerationAdapter(cfg Config, costPerMillionTokens float64) (*GenerationAdapter, error) {
	client, err := newLLMClient(Config{
		Model:   cfg.Model,
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &GenerationAdapter{
		client:               client,
		model:                cfg.Model,
		maxTokens:            maxTokens,
		costPerMillionTokens: costPerMillionTokens,
	}, nil
}

// Generate implements ports.GenerationPort.
func (a *GenerationAdapter) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	requestClient := &OpenAIClient{
		APIKey:      a.client.APIKey,
		BaseURL:     a.client.BaseURL,
		Timeout:     a.client.Timeout,
		Temperature: temperature,
	}
	return requestClient.ChatCompletion(ctx, a.model, prompt, a.maxTokens)
}

func (a *GenerationAdapter) CostPerMillionTokens() float64 { return a.costPerMillionTokens }
func (a *GenerationAdapter) RequiresNetwork() bool         { return true }
