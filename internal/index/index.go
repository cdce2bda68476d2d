// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package index renders the site's home page: a listing of every published
// post, newest first, placed into the shared page template.
package index

import (
	"html"
	"strings"
	"time"

	"autopress/internal/content"
	"autopress/internal/history"
	"autopress/internal/models"
)

// DefaultTitle is the listing page title used when none is configured.
const DefaultTitle = "Product Spotlight - Home"

// Listing returns the post grid markup for records. Records without a
// file name are skipped.
func Listing(records []models.PostRecord) string {
	var b strings.Builder
	b.WriteString("<ul class=\"post-grid\">\n")
	for _, r := range history.NewestFirst(records) {
		if !r.HasFile() {
			continue
		}
		title := r.Title
		if title == "" {
			title = r.Filename
		}
		b.WriteString(`      <li class="post-card"><a href="`)
		b.WriteString(html.EscapeString(r.Filename))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(title))
		b.WriteString("</a></li>\n")
	}
	b.WriteString("    </ul>")
	return b.String()
}

// Render fills tmpl with the listing for records.
func Render(records []models.PostRecord, tmpl, title string, now time.Time) string {
	if title == "" {
		title = DefaultTitle
	}
	return content.Fill(tmpl, title, Listing(records), now)
}
