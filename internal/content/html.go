// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"autopress/internal/models"
)

// FirstText returns the trimmed text of the first element matching selector
// in fragment, or "" when there is none.
func FirstText(fragment, selector string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Find(selector).First().Text()), " ")
}

// Title returns the text of the fragment's first <h2>.
func Title(fragment string) string {
	return FirstText(fragment, "h2")
}

// Excerpt returns the text of the fragment's first <p>.
func Excerpt(fragment string) string {
	return FirstText(fragment, "p")
}

// CTA builds the affiliate call-to-action paragraph for a product.
func CTA(p models.Product) string {
	title := p.Title
	if title == "" {
		title = "this amazing product"
	}
	return fmt.Sprintf(`<p><a href="%s" class="affiliate-button" target="_blank" rel="noopener noreferrer">Click Here to Learn More About %s!</a></p>`,
		html.EscapeString(p.Link), html.EscapeString(title))
}

// InsertCTA appends the call-to-action for p to the article container of
// page, falling back to <body>. A product without a link leaves the page
// untouched.
func InsertCTA(page string, p models.Product) (string, error) {
	if p.Link == "" {
		slog.Warn("product has no link, skipping call-to-action", "product", p.Title)
		return page, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parsing page: %w", err)
	}

	target := doc.Find("div.article-container").First()
	if target.Length() == 0 {
		slog.Warn("no article container in template, appending call-to-action to body")
		target = doc.Find("body").First()
	}
	if target.Length() == 0 {
		// html.Parse always synthesizes a body.
		return page + CTA(p), nil
	}

	target.AppendHtml(CTA(p))

	out, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("rendering page: %w", err)
	}
	return out, nil
}
