// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package site

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"autopress/internal/config"
	"autopress/internal/history"
	"autopress/internal/models"
	"autopress/internal/publish"
)

// memTarget is an in-memory publish target. Names in failWrite and
// failDelete return errors.
type memTarget struct {
	mu         sync.Mutex
	files      map[string][]byte
	failWrite  map[string]bool
	failDelete map[string]bool
	deleted    []string
}

func newMemTarget(names ...string) *memTarget {
	m := &memTarget{
		files:      make(map[string][]byte),
		failWrite:  make(map[string]bool),
		failDelete: make(map[string]bool),
	}
	for _, n := range names {
		m.files[n] = []byte("existing " + n)
	}
	return m
}

func (m *memTarget) Name() string { return "mem" }

func (m *memTarget) Write(ctx context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite[name] {
		return fmt.Errorf("write %s: connection reset", name)
	}
	m.files[name] = append([]byte(nil), data...)
	return nil
}

func (m *memTarget) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete[name] {
		return fmt.Errorf("delete %s: permission denied", name)
	}
	if _, ok := m.files[name]; !ok {
		return fmt.Errorf("delete %s: %w", name, publish.ErrNotFound)
	}
	delete(m.files, name)
	m.deleted = append(m.deleted, name)
	return nil
}

func (m *memTarget) has(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[name]
	return ok
}

func (m *memTarget) content(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.files[name])
}

func (m *memTarget) names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for n := range m.files {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// listingTarget adds List to memTarget.
type listingTarget struct {
	*memTarget
	listErr error
}

func (l *listingTarget) List(ctx context.Context) ([]string, error) {
	if l.listErr != nil {
		return nil, l.listErr
	}
	return l.names(), nil
}

const testTemplate = `<html><head><title>{{ARTICLE_TITLE}}</title><link href="style.css?v={{CACHE_BUSTER}}"></head>
<body><div class="article-container">{{ARTICLE_CONTENT}}</div></body></html>`

func writeTemplate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.html")
	if err := os.WriteFile(path, []byte(testTemplate), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	return path
}

// testConfig returns defaults tuned for tests: one product, no throttling
// delay, no assets.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.ProductPortfolio = []models.Product{{Title: "Widget", Description: "A widget", Link: "https://shop.example/widget"}}
	cfg.Throttling.MinDelayMinutes = 0
	cfg.Throttling.MaxPostsPer24Hours = 10
	cfg.Site.TemplatePath = writeTemplate(t)
	cfg.Site.Assets = nil
	return &cfg
}

func newTestSite(t *testing.T, target publish.Target, records ...models.PostRecord) *Site {
	t.Helper()
	store := history.NewFileStore(filepath.Join(t.TempDir(), "post_history.log"))
	if len(records) > 0 {
		if err := store.Save(context.Background(), records); err != nil {
			t.Fatalf("seed history: %v", err)
		}
	}
	s := New(target, store, testConfig(t))
	s.Now = func() time.Time { return time.Unix(1760000000, 0) }
	return s
}

func loadHistory(t *testing.T, s *Site) []models.PostRecord {
	t.Helper()
	records, err := s.Store.Load(context.Background())
	if err != nil {
		t.Fatalf("load history: %v", err)
	}
	return records
}

func TestPublishIndex(t *testing.T) {
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	target := newMemTarget("index2.html")
	s := newTestSite(t, target,
		models.PostRecord{Timestamp: base, Filename: "older.html", Title: "Older"},
		models.PostRecord{Timestamp: base.Add(time.Hour), Filename: "newer.html", Title: "Newer & Better"},
	)

	if err := s.PublishIndex(context.Background()); err != nil {
		t.Fatalf("PublishIndex: %v", err)
	}

	page := target.content("index.html")
	if !strings.Contains(page, "<title>Product Spotlight - Home</title>") {
		t.Errorf("index title missing:\n%s", page)
	}
	if !strings.Contains(page, "style.css?v=1760000000") {
		t.Errorf("cache buster missing:\n%s", page)
	}
	if !strings.Contains(page, "Newer &amp; Better") {
		t.Errorf("title not escaped:\n%s", page)
	}
	if strings.Index(page, "newer.html") > strings.Index(page, "older.html") {
		t.Errorf("posts not newest first:\n%s", page)
	}
	if target.has("index2.html") {
		t.Error("stale index2.html should have been removed")
	}
}

func TestPublishIndex_StaleFailureIgnored(t *testing.T) {
	target := newMemTarget("index2.html")
	target.failDelete["index2.html"] = true
	s := newTestSite(t, target)

	if err := s.PublishIndex(context.Background()); err != nil {
		t.Fatalf("PublishIndex: %v", err)
	}
	if !target.has("index.html") {
		t.Error("index.html not written")
	}
}

func TestPublishIndex_MissingTemplate(t *testing.T) {
	target := newMemTarget()
	s := newTestSite(t, target)
	s.TemplatePath = filepath.Join(t.TempDir(), "missing.html")

	if err := s.PublishIndex(context.Background()); err == nil {
		t.Fatal("expected error for missing template")
	}
	if target.has("index.html") {
		t.Error("index.html must not be written without a template")
	}
}

func TestPublishIndex_WriteFailure(t *testing.T) {
	target := newMemTarget()
	target.failWrite["index.html"] = true
	s := newTestSite(t, target)

	if err := s.PublishIndex(context.Background()); err == nil {
		t.Fatal("expected error when the index cannot be written")
	}
}

func TestUploadAssets(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "style.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	target := newMemTarget()
	s := newTestSite(t, target)

	if err := s.UploadAssets(context.Background(), dir, []string{"style.css", "disclosure.html"}); err != nil {
		t.Fatalf("UploadAssets: %v", err)
	}
	if target.content("style.css") != "body{}" {
		t.Errorf("style.css: got %q", target.content("style.css"))
	}
	if target.has("disclosure.html") {
		t.Error("missing local asset should be skipped, not uploaded")
	}
}

func TestUploadAssets_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "style.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	target := newMemTarget()
	target.failWrite["style.css"] = true
	s := newTestSite(t, target)

	err := s.UploadAssets(context.Background(), dir, []string{"style.css"})
	if err == nil {
		t.Fatal("expected upload error")
	}
	if errors.Is(err, os.ErrNotExist) {
		t.Errorf("unexpected not-exist error: %v", err)
	}
}

func TestApply(t *testing.T) {
	s := newTestSite(t, newMemTarget())
	cfg := testConfig(t)
	cfg.Site.IndexFile = "home.html"
	cfg.Site.IndexTitle = "Deals"
	cfg.Publish.ProtectedFiles = []string{"robots.txt"}

	s.Apply(cfg)

	if s.indexFile() != "home.html" || s.IndexTitle != "Deals" {
		t.Errorf("Apply: index %q title %q", s.indexFile(), s.IndexTitle)
	}
	if !s.protected("robots.txt") || !s.protected("home.html") {
		t.Error("configured protected files and the index must be protected")
	}
	if s.protected("index.html") {
		t.Error("index.html is no longer the index and was not configured as protected")
	}
}
