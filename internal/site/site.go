// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package site ties the post history, the publish target and the listing
// page together. The Runner publishes new articles on a schedule, and the
// management operations list and delete what has been published. Every
// mutation reloads the history first and republishes the index afterwards.
package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"autopress/internal/config"
	"autopress/internal/content"
	"autopress/internal/history"
	"autopress/internal/index"
	"autopress/internal/publish"
)

// Site is a publish target together with the history describing it.
type Site struct {
	Target publish.Target
	Store  history.Store

	TemplatePath   string
	IndexFile      string
	IndexTitle     string
	ProtectedFiles []string
	StaleFiles     []string

	Now func() time.Time
}

// New creates a Site from the site and publish configuration.
func New(target publish.Target, store history.Store, cfg *config.Config) *Site {
	s := &Site{Target: target, Store: store, Now: time.Now}
	s.Apply(cfg)
	return s
}

// Apply copies the reloadable settings from cfg. Backends are left alone.
func (s *Site) Apply(cfg *config.Config) {
	s.TemplatePath = cfg.Site.TemplatePath
	s.IndexFile = cfg.Site.IndexFile
	s.IndexTitle = cfg.Site.IndexTitle
	s.ProtectedFiles = cfg.Publish.ProtectedFiles
	s.StaleFiles = cfg.Publish.StaleFiles
}

func (s *Site) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Site) indexFile() string {
	if s.IndexFile == "" {
		return "index.html"
	}
	return s.IndexFile
}

// PublishIndex renders the listing page from the stored history and writes
// it to the target. Stale files left over from older layouts are removed
// afterwards; failing to remove them is only logged.
func (s *Site) PublishIndex(ctx context.Context) error {
	records, err := s.Store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading history for index: %w", err)
	}
	tmpl, err := content.LoadTemplate(s.TemplatePath)
	if err != nil {
		return err
	}

	page := index.Render(records, tmpl, s.IndexTitle, s.now())
	if err := s.Target.Write(ctx, s.indexFile(), []byte(page)); err != nil {
		return fmt.Errorf("writing %s: %w", s.indexFile(), err)
	}
	slog.Info("index published", "target", s.Target.Name(), "file", s.indexFile(), "posts", len(records))

	for _, name := range s.StaleFiles {
		if err := publish.DeleteIfExists(ctx, s.Target, name); err != nil {
			slog.Warn("could not remove stale file", "file", name, "error", err)
		}
	}
	return nil
}

// UploadAssets copies the named files from dir to the target. Missing files
// are skipped with a warning; the first upload failure is returned.
func (s *Site) UploadAssets(ctx context.Context, dir string, names []string) error {
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("asset not found locally, skipping upload", "file", name, "dir", dir)
			continue
		}
		if err != nil {
			return fmt.Errorf("reading asset %s: %w", name, err)
		}
		if err := s.Target.Write(ctx, name, data); err != nil {
			return fmt.Errorf("uploading asset %s: %w", name, err)
		}
		slog.Debug("asset uploaded", "file", name)
	}
	return nil
}

func (s *Site) protected(name string) bool {
	if name == s.indexFile() {
		return true
	}
	for _, p := range s.ProtectedFiles {
		if p == name {
			return true
		}
	}
	return false
}
