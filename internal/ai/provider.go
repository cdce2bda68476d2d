// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ai provides a unified interface over the text generation backends
// used to draft articles: a local Ollama server and any OpenAI-compatible
// chat completions API. The Registry selects the active backend by name.
package ai

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"autopress/internal/config"
)

// Provider defines the interface that all generation backends implement.
type Provider interface {
	// Generate sends a prompt to the model and returns the generated text.
	// systemPrompt sets the model's behaviour; userPrompt is the request.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Name returns the provider identifier (e.g., "ollama", "openai").
	Name() string
}

// ProviderConfig holds the endpoint and settings for a single provider.
type ProviderConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	Timeout     time.Duration
}

// Registry manages available providers and selects the active one.
// All methods are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	active    string
}

// NewRegistry creates a registry with a provider for every usable config.
// Ollama needs no credentials; OpenAI is skipped without an API key.
func NewRegistry(active string, configs map[string]ProviderConfig) *Registry {
	r := &Registry{
		providers: make(map[string]Provider),
		active:    active,
	}

	for name, cfg := range configs {
		switch name {
		case "ollama":
			r.providers[name] = newOllama(cfg)
		case "openai":
			if cfg.APIKey == "" {
				continue
			}
			r.providers[name] = newOpenAI(cfg)
		}
	}

	return r
}

// FromConfig builds a registry from the content_provider section.
func FromConfig(cfg config.ContentProvider) *Registry {
	return NewRegistry(cfg.Provider, map[string]ProviderConfig{
		"ollama": {
			Model:       cfg.Ollama.Model,
			BaseURL:     cfg.Ollama.BaseURL,
			Temperature: cfg.Ollama.Temperature,
			Timeout:     cfg.Ollama.Timeout(),
		},
		"openai": {
			APIKey:      cfg.OpenAI.APIKey,
			Model:       cfg.OpenAI.Model,
			BaseURL:     cfg.OpenAI.BaseURL,
			Temperature: cfg.OpenAI.Temperature,
			Timeout:     cfg.OpenAI.Timeout(),
		},
	})
}

// Generate calls the active provider's Generate method.
func (r *Registry) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	p, err := r.Active()
	if err != nil {
		return "", err
	}
	return p.Generate(ctx, systemPrompt, userPrompt)
}

// Name reports the active provider, so a Registry can stand in for one.
func (r *Registry) Name() string {
	return r.ActiveName()
}

// Active returns the currently active provider.
func (r *Registry) Active() (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[r.active]
	if !ok {
		return nil, fmt.Errorf("ai: no provider configured for %q", r.active)
	}
	return p, nil
}

// SetActive switches the active provider. Returns an error if the named
// provider is not configured.
func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("ai: provider %q is not available (no API key?)", name)
	}
	r.active = name
	return nil
}

// ActiveName returns the name of the currently active provider.
func (r *Registry) ActiveName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.active
}

// Available returns the names of all configured providers, sorted.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasProvider checks whether a named provider is configured.
func (r *Registry) HasProvider(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.providers[name]
	return ok
}
