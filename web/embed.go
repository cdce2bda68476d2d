// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package web embeds the starter site: a page template, the core assets
// uploaded with every cycle, and a sample configuration.
package web

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

//go:embed starter
var starterFS embed.FS

// Starter is the starter site file tree.
var Starter, _ = fs.Sub(starterFS, "starter")

// WriteStarter copies the starter files into dir and returns the names it
// wrote. Existing files are kept unless overwrite is set.
func WriteStarter(dir string, overwrite bool) ([]string, error) {
	entries, err := fs.ReadDir(Starter, ".")
	if err != nil {
		return nil, fmt.Errorf("reading starter files: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	var written []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		dst := filepath.Join(dir, e.Name())
		if !overwrite {
			if _, err := os.Stat(dst); err == nil {
				slog.Info("starter file exists, keeping it", "file", dst)
				continue
			} else if !errors.Is(err, os.ErrNotExist) {
				return written, fmt.Errorf("checking %s: %w", dst, err)
			}
		}

		data, err := fs.ReadFile(Starter, e.Name())
		if err != nil {
			return written, fmt.Errorf("reading starter %s: %w", e.Name(), err)
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return written, fmt.Errorf("writing %s: %w", dst, err)
		}
		written = append(written, e.Name())
	}
	return written, nil
}
