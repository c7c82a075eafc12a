package llm

import "time"

// Config configures an OpenAI-compatible chat-completion client.
type Config struct {
	Model       string        // e.g., "gpt-4.1-mini"
	APIKey      string        // OpenAI API key
	BaseURL     string        // optional override (default: https://api.openai.com/v1)
	Temperature float64       // 0.0-1.0, lower = more deterministic
	MaxTokens   int           // max tokens in response
	Timeout     time.Duration // request timeout
}
