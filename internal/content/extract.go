// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"autopress/internal/markdown"
)

// ErrEmptyContent is returned when a model response holds nothing usable.
var ErrEmptyContent = errors.New("generated content is empty")

// fencedBlock matches the first ``` fenced block, with or without a language
// tag such as ```html.
var fencedBlock = regexp.MustCompile("(?s)```[A-Za-z]*[ \t]*\r?\n?(.*?)```")

// ExtractHTML recovers the HTML fragment from a model response that may
// carry commentary or Markdown fencing around it. A fenced block wins when
// present; otherwise everything before the first tag is dropped. A response
// with no tag at all is taken to be Markdown and rendered.
func ExtractHTML(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	if m := fencedBlock.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}

	switch idx := strings.Index(s, "<"); {
	case idx > 0:
		s = s[idx:]
	case idx < 0 && s != "":
		rendered, err := markdown.ToHTML(s)
		if err != nil {
			return "", fmt.Errorf("rendering markdown response: %w", err)
		}
		s = rendered
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyContent
	}
	return s, nil
}
