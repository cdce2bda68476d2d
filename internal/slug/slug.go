// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns article titles into safe, URL-friendly file names.
package slug

import (
	"strings"

	gosimple "github.com/gosimple/slug"
)

// MaxLength bounds the slug part of a generated file name.
const MaxLength = 50

// fallback is used when a title contains nothing sluggable.
const fallback = "post"

// Generate creates a URL-friendly slug from the given string, transliterating
// non-ASCII letters. The result is at most MaxLength characters long.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	result := gosimple.Make(s)
	if len(result) > MaxLength {
		result = result[:MaxLength]
	}
	return strings.Trim(result, "-")
}

// Filename returns the published file name for an article title.
func Filename(title string) string {
	s := Generate(title)
	if s == "" {
		s = fallback
	}
	return s + ".html"
}

// WithSuffix inserts suffix before the extension of a file name produced by
// Filename, for use when the plain name is already taken.
func WithSuffix(filename, suffix string) string {
	base := strings.TrimSuffix(filename, ".html")
	return base + "-" + suffix + ".html"
}
