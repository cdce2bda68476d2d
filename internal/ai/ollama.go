// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultOllamaURL   = "http://localhost:11434/api/generate"
	defaultOllamaModel = "llama3:8b"
)

// ollamaProvider implements the Provider interface using Ollama's
// non-streaming generate endpoint (POST /api/generate).
type ollamaProvider struct {
	config ProviderConfig
	client *http.Client
}

// newOllama creates a new Ollama provider. Local models are slow, so the
// default timeout is generous.
func newOllama(cfg ProviderConfig) *ollamaProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOllamaURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultOllamaModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 300 * time.Second
	}
	return &ollamaProvider{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (p *ollamaProvider) Name() string { return "ollama" }

// Generate posts a single prompt and returns the complete response text.
func (p *ollamaProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body := ollamaRequest{
		Model:   p.config.Model,
		Prompt:  userPrompt,
		System:  systemPrompt,
		Stream:  false,
		Options: ollamaOptions{Temperature: p.config.Temperature},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("ollama marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ollama read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result ollamaResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("ollama unmarshal: %w", err)
	}

	if strings.TrimSpace(result.Response) == "" {
		return "", fmt.Errorf("ollama: empty response")
	}

	return result.Response, nil
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	System  string        `json:"system,omitempty"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}
