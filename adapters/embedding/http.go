package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"trmcore/domain/trm"
)

// HTTPConfig configures an HTTPAdapter against an embedding service
// exposing an OpenAI-compatible /embeddings endpoint.
type HTTPConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Dim     int
	Timeout time.Duration
}

// HTTPAdapter calls a remote embedding service over HTTP.
type HTTPAdapter struct {
	cfg    HTTPConfig
	client *http.Client
}

// NewHTTPAdapter builds an HTTPAdapter, defaulting the timeout and base URL.
func NewHTTPAdapter(cfg HTTPConfig) (*HTTPAdapter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: missing embedding API key", trm.ErrConfig)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &HTTPAdapter{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (a *HTTPAdapter) Dimension() int        { return a.cfg.Dim }
func (a *HTTPAdapter) RequiresNetwork() bool { return true }

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed posts text to the configured embedding endpoint and returns the
// unit-norm vector it reports.
func (a *HTTPAdapter) Embed(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty text", trm.ErrEmptyText)
	}

	body, err := json.Marshal(embeddingRequest{Model: a.cfg.Model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("marshaling embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", trm.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading embedding response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: rate limited", trm.ErrGenerationRetryable)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", trm.ErrProviderUnavailable, resp.StatusCode, string(payload))
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("parsing embedding response: %w", err)
	}
	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("%w: embedding response had no data", trm.ErrProviderUnavailable)
	}
	return parsed.Data[0].Embedding, nil
}
