// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package content turns a product into a finished article page: it asks a
// generation backend for a draft, runs one self-correction pass, cleans the
// model output, fills the page template and appends the affiliate
// call-to-action.
package content

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"autopress/internal/ai"
	"autopress/internal/models"
)

// Article is a generated page ready to publish.
type Article struct {
	Title    string // from the first <h2>, or the product title
	Excerpt  string // text of the first paragraph
	Fragment string // the cleaned model output
	Page     string // the complete templated document
}

// Pipeline generates articles with a single provider and page template.
type Pipeline struct {
	provider     ai.Provider
	templatePath string
	now          func() time.Time
}

// NewPipeline creates a pipeline. The template is read on every call so it
// can be edited while the runner is up.
func NewPipeline(provider ai.Provider, templatePath string) *Pipeline {
	return &Pipeline{
		provider:     provider,
		templatePath: templatePath,
		now:          time.Now,
	}
}

// SetTemplatePath switches the page template used by later calls.
func (p *Pipeline) SetTemplatePath(path string) {
	p.templatePath = path
}

// Generate produces an article for p. Any error means the cycle should be
// skipped; nothing has been published at that point.
func (p *Pipeline) Generate(ctx context.Context, product models.Product) (*Article, error) {
	slog.Info("generating draft", "product", product.Title, "provider", p.provider.Name())

	raw, err := p.provider.Generate(ctx, "", DraftPrompt(product))
	if err != nil {
		return nil, fmt.Errorf("draft generation: %w", err)
	}
	draft, err := ExtractHTML(raw)
	if err != nil {
		return nil, fmt.Errorf("draft extraction: %w", err)
	}

	fragment := p.review(ctx, product, draft)

	tmpl, err := LoadTemplate(p.templatePath)
	if err != nil {
		return nil, err
	}

	title := Title(fragment)
	if title == "" {
		slog.Warn("no <h2> in generated content, using product title", "product", product.Title)
		title = product.Title
	}

	page := Fill(tmpl, title, fragment, p.now())
	page, err = InsertCTA(page, product)
	if err != nil {
		return nil, fmt.Errorf("inserting call-to-action: %w", err)
	}

	return &Article{
		Title:    title,
		Excerpt:  Excerpt(fragment),
		Fragment: fragment,
		Page:     page,
	}, nil
}

// review runs the single self-correction pass. Any failure keeps the draft.
func (p *Pipeline) review(ctx context.Context, product models.Product, draft string) string {
	slog.Info("sending draft for self-correction", "product", product.Title)

	raw, err := p.provider.Generate(ctx, "", ReviewPrompt(draft))
	if err != nil {
		slog.Warn("self-correction failed, keeping draft", "product", product.Title, "error", err)
		return draft
	}
	corrected, err := ExtractHTML(raw)
	if err != nil {
		slog.Warn("self-correction returned nothing usable, keeping draft", "product", product.Title, "error", err)
		return draft
	}
	return corrected
}
