// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"errors"
	"strings"
	"testing"
)

func TestExtractHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "clean fragment",
			input: "<h2>Title</h2><p>Body</p>",
			want:  "<h2>Title</h2><p>Body</p>",
		},
		{
			name:  "html fence with commentary around it",
			input: "Sure! Here is your post:\n```html\n<h2>Title</h2>\n<p>Body</p>\n```\nLet me know if you need changes.",
			want:  "<h2>Title</h2>\n<p>Body</p>",
		},
		{
			name:  "bare fence",
			input: "Here you go:\n```\n<h2>Bare</h2>\n```",
			want:  "<h2>Bare</h2>",
		},
		{
			name:  "fence with trailing space after tag",
			input: "```html  \n<h2>Spaced</h2>```",
			want:  "<h2>Spaced</h2>",
		},
		{
			name:  "leading prose without fence",
			input: "Here is the code: <h2>Title</h2><p>Body</p>",
			want:  "<h2>Title</h2><p>Body</p>",
		},
		{
			name:  "surrounding whitespace",
			input: "\n\n  <h2>Title</h2>  \n",
			want:  "<h2>Title</h2>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractHTML(tt.input)
			if err != nil {
				t.Fatalf("ExtractHTML: unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractHTML() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractHTML_Empty(t *testing.T) {
	for _, input := range []string{"", "   \n\t", "```html\n```", "```\n   \n```"} {
		_, err := ExtractHTML(input)
		if !errors.Is(err, ErrEmptyContent) {
			t.Errorf("ExtractHTML(%q): got %v, want ErrEmptyContent", input, err)
		}
	}
}

func TestExtractHTML_MarkdownFallback(t *testing.T) {
	got, err := ExtractHTML("## Great Widget\n\nIt is **great**.")
	if err != nil {
		t.Fatalf("ExtractHTML: %v", err)
	}
	if !strings.Contains(got, "Great Widget</h2>") {
		t.Errorf("markdown heading not rendered: %q", got)
	}
	if !strings.Contains(got, "<strong>great</strong>") {
		t.Errorf("markdown emphasis not rendered: %q", got)
	}
}
