// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"fmt"

	"autopress/internal/models"
)

const draftPrompt = `You are an expert SEO copywriter. Write a blog post about the product below.

Product name: %s
Product description: %s

Rules:
1. Write an engaging, search-friendly article about the product.
2. Structure it with one main title in <h2>, subheadings in <h3> and body text in <p>.
3. Reply with the raw HTML fragment ONLY. No <html> or <body> tags, no Markdown code fences, no call-to-action link and no commentary before or after.

Example of the expected shape:
<h2>A Title Worth Clicking</h2>
<h3>Why It Matters</h3>
<p>A paragraph explaining the product's benefits and why the reader should care.</p>
<p>Another paragraph that keeps the story going.</p>

Now write the HTML for: %s`

const reviewPrompt = `You are a careful editor. Improve the HTML blog post draft below.

--- DRAFT ---
%s
--- END DRAFT ---

Rules:
1. Fix grammar, spelling and flow. Make the text more persuasive and engaging.
2. Keep the same structure: <h2> title, <h3> subheadings, <p> paragraphs.
3. Reply with the corrected raw HTML fragment ONLY. No <html> or <body> tags, no Markdown code fences, no call-to-action link and no remarks such as "Here is the corrected version".`

// DraftPrompt builds the first-pass request for product p.
func DraftPrompt(p models.Product) string {
	title := p.Title
	if title == "" {
		title = "the selected product"
	}
	return fmt.Sprintf(draftPrompt, title, p.Description, title)
}

// ReviewPrompt builds the self-correction request for a draft.
func ReviewPrompt(draft string) string {
	return fmt.Sprintf(reviewPrompt, draft)
}
