// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Template placeholders, substituted verbatim.
const (
	PlaceholderTitle       = "{{ARTICLE_TITLE}}"
	PlaceholderContent     = "{{ARTICLE_CONTENT}}"
	PlaceholderCacheBuster = "{{CACHE_BUSTER}}"
)

// LoadTemplate reads the page template from path.
func LoadTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading template %s: %w", path, err)
	}
	return string(data), nil
}

// Fill substitutes title, body and a cache buster derived from now into tmpl.
func Fill(tmpl, title, body string, now time.Time) string {
	r := strings.NewReplacer(
		PlaceholderTitle, title,
		PlaceholderContent, body,
		PlaceholderCacheBuster, CacheBuster(now),
	)
	return r.Replace(tmpl)
}

// CacheBuster is the token appended to asset URLs so browsers refetch them
// after every publish.
func CacheBuster(now time.Time) string {
	return strconv.FormatInt(now.Unix(), 10)
}
