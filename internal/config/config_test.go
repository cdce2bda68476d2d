// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"autopress/internal/models"
)

var secretEnvVars = []string{
	"AUTOPRESS_FTP_PASSWORD",
	"AUTOPRESS_S3_ACCESS_KEY", "AUTOPRESS_S3_SECRET_KEY",
	"AUTOPRESS_OPENAI_API_KEY",
	"AUTOPRESS_REDDIT_CLIENT_SECRET", "AUTOPRESS_REDDIT_PASSWORD",
	"AUTOPRESS_TELEGRAM_TOKEN",
	"AUTOPRESS_VALKEY_PASSWORD",
	"AUTOPRESS_POSTGRES_DSN",
}

// clearEnv sets every variable Load reads to empty, which envOrDefault
// treats the same as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range secretEnvVars {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config fixture: %v", err)
	}
	return path
}

const minimalJSON = `{
  "product_portfolio": [
    {"title": "Widget", "description": "A fine widget", "link": "https://example.com/widget"}
  ],
  "site_url": "https://blog.example.com"
}`

// TestLoad_Defaults verifies that a minimal document is completed with the
// documented defaults.
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(writeConfig(t, "config.json", minimalJSON))
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	check := func(field, got, want string) {
		t.Helper()
		if got != want {
			t.Errorf("%s = %q, want %q", field, got, want)
		}
	}

	check("Provider", cfg.ContentProvider.Provider, "ollama")
	check("Ollama.BaseURL", cfg.ContentProvider.Ollama.BaseURL, "http://localhost:11434/api/generate")
	check("Ollama.Model", cfg.ContentProvider.Ollama.Model, "llama3:8b")
	check("PostHistoryFile", cfg.Throttling.PostHistoryFile, "post_history.log")
	check("HistoryBackend", cfg.Throttling.HistoryBackend, "file")
	check("Publish.Backend", cfg.Publish.Backend, "local")
	check("Publish.Local.Dir", cfg.Publish.Local.Dir, "public")
	check("Publish.FTP.RemoteDir", cfg.Publish.FTP.RemoteDir, "/htdocs/")
	check("Site.TemplatePath", cfg.Site.TemplatePath, "template.html")
	check("Site.IndexTitle", cfg.Site.IndexTitle, "Product Spotlight - Home")
	check("Valkey.Port", cfg.Valkey.Port, "6379")
	check("LogLevel", cfg.LogLevel, "info")

	if cfg.ContentProvider.Ollama.Temperature != 0.7 {
		t.Errorf("Ollama.Temperature = %v, want 0.7", cfg.ContentProvider.Ollama.Temperature)
	}
	if got := cfg.ContentProvider.Ollama.Timeout(); got != 300*time.Second {
		t.Errorf("Ollama.Timeout() = %v, want 5m0s", got)
	}
	if got := cfg.Throttling.MinDelay(); got != 240*time.Minute {
		t.Errorf("MinDelay() = %v, want 4h0m0s", got)
	}
	if cfg.Throttling.MaxPostsPer24Hours != 4 {
		t.Errorf("MaxPostsPer24Hours = %d, want 4", cfg.Throttling.MaxPostsPer24Hours)
	}
	if got := cfg.Throttling.CheckInterval(); got != 10*time.Minute {
		t.Errorf("CheckInterval() = %v, want 10m0s", got)
	}
	if got := cfg.Throttling.ErrorCooldown(); got != time.Hour {
		t.Errorf("ErrorCooldown() = %v, want 1h0m0s", got)
	}
	if cfg.Rotation.MaxPostsPerProduct != 2 {
		t.Errorf("MaxPostsPerProduct = %d, want 2", cfg.Rotation.MaxPostsPerProduct)
	}
	if got := strings.Join(cfg.Publish.ProtectedFiles, ","); got != "index.html,disclosure.html,style.css" {
		t.Errorf("ProtectedFiles = %q", got)
	}
	if len(cfg.ProductPortfolio) != 1 || cfg.ProductPortfolio[0].Link != "https://example.com/widget" {
		t.Errorf("ProductPortfolio = %+v", cfg.ProductPortfolio)
	}
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)

	doc := `
product_portfolio:
  - title: Gadget
    description: Does things
    link: https://example.com/gadget
throttling:
  min_delay_between_posts_minutes: 0
  max_posts_per_24_hours: 10
rotation:
  max_posts_per_product: 3
publish:
  backend: s3
  s3:
    endpoint: https://s3.example.com
    bucket: blog
    prefix: posts/
log_level: debug
`
	cfg, err := Load(writeConfig(t, "config.yaml", doc))
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Throttling.MinDelayMinutes != 0 {
		t.Errorf("MinDelayMinutes = %d, want 0", cfg.Throttling.MinDelayMinutes)
	}
	if cfg.Throttling.MaxPostsPer24Hours != 10 {
		t.Errorf("MaxPostsPer24Hours = %d, want 10", cfg.Throttling.MaxPostsPer24Hours)
	}
	// Unset keys in a partially specified section keep their defaults.
	if cfg.Throttling.CheckIntervalMinutes != 10 {
		t.Errorf("CheckIntervalMinutes = %d, want 10", cfg.Throttling.CheckIntervalMinutes)
	}
	if cfg.Rotation.MaxPostsPerProduct != 3 {
		t.Errorf("MaxPostsPerProduct = %d, want 3", cfg.Rotation.MaxPostsPerProduct)
	}
	if cfg.Publish.Backend != "s3" || cfg.Publish.S3.Bucket != "blog" || cfg.Publish.S3.Prefix != "posts/" {
		t.Errorf("Publish = %+v", cfg.Publish)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v, want DEBUG", cfg.SlogLevel())
	}
}

// TestLoad_LegacyFTP verifies that the top-level ftp block of older files
// selects the ftp backend.
func TestLoad_LegacyFTP(t *testing.T) {
	clearEnv(t)

	doc := `{
  "product_portfolio": [],
  "ftp": {"host": "ftp.example.com", "user": "u", "pass": "p"}
}`
	cfg, err := Load(writeConfig(t, "config.json", doc))
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Publish.Backend != "ftp" {
		t.Errorf("Backend = %q, want %q", cfg.Publish.Backend, "ftp")
	}
	if cfg.Publish.FTP.Host != "ftp.example.com" || cfg.Publish.FTP.User != "u" || cfg.Publish.FTP.Pass != "p" {
		t.Errorf("FTP = %+v", cfg.Publish.FTP)
	}
	if cfg.Publish.FTP.RemoteDir != "/htdocs/" {
		t.Errorf("RemoteDir = %q, want %q", cfg.Publish.FTP.RemoteDir, "/htdocs/")
	}
}

// TestLoad_EnvOverrides verifies that secrets in the environment win over
// values in the file.
func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)

	doc := `{
  "content_provider": {"provider": "openai"},
  "publish": {"backend": "ftp", "ftp": {"host": "h", "user": "u", "pass": "from-file"}},
  "social_posting": {
    "reddit": {"password": "file-pass", "client_secret": "file-secret"},
    "telegram": {"token": "file-token"}
  }
}`
	overrides := map[string]string{
		"AUTOPRESS_FTP_PASSWORD":         "env-ftp",
		"AUTOPRESS_OPENAI_API_KEY":       "sk-env",
		"AUTOPRESS_REDDIT_PASSWORD":      "env-reddit",
		"AUTOPRESS_REDDIT_CLIENT_SECRET": "env-secret",
		"AUTOPRESS_TELEGRAM_TOKEN":       "env-token",
		"AUTOPRESS_S3_SECRET_KEY":        "env-s3",
		"AUTOPRESS_POSTGRES_DSN":         "postgres://env",
	}
	for key, val := range overrides {
		t.Setenv(key, val)
	}

	cfg, err := Load(writeConfig(t, "config.json", doc))
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	check := func(field, got, want string) {
		t.Helper()
		if got != want {
			t.Errorf("%s = %q, want %q", field, got, want)
		}
	}
	check("FTP.Pass", cfg.Publish.FTP.Pass, "env-ftp")
	check("OpenAI.APIKey", cfg.ContentProvider.OpenAI.APIKey, "sk-env")
	check("Reddit.Password", cfg.SocialPosting.Reddit.Password, "env-reddit")
	check("Reddit.ClientSecret", cfg.SocialPosting.Reddit.ClientSecret, "env-secret")
	check("Telegram.Token", cfg.SocialPosting.Telegram.Token, "env-token")
	check("S3.SecretKey", cfg.Publish.S3.SecretKey, "env-s3")
	check("Postgres.DSN", cfg.Postgres.DSN, "postgres://env")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want wrapped os.ErrNotExist", err)
	}
}

func TestLoad_Malformed(t *testing.T) {
	_, err := Load(writeConfig(t, "config.json", `{"product_portfolio": [`))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "parsing config file") {
		t.Errorf("error = %q, want parsing prefix", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.ContentProvider.Provider = "gpt-local" },
			wantErr: "unsupported content provider",
		},
		{
			name:    "openai without key",
			mutate:  func(c *Config) { c.ContentProvider.Provider = "openai" },
			wantErr: "api_key is required",
		},
		{
			name:    "zero daily cap",
			mutate:  func(c *Config) { c.Throttling.MaxPostsPer24Hours = 0 },
			wantErr: "max_posts_per_24_hours",
		},
		{
			name:    "zero rotation cap",
			mutate:  func(c *Config) { c.Rotation.MaxPostsPerProduct = 0 },
			wantErr: "max_posts_per_product",
		},
		{
			name:    "product without link",
			mutate:  func(c *Config) { c.ProductPortfolio = append(c.ProductPortfolio, models.Product{Title: "No link"}) },
			wantErr: "has no link",
		},
		{
			name:    "ftp without host",
			mutate:  func(c *Config) { c.Publish.Backend = "ftp" },
			wantErr: "publish.ftp.host",
		},
		{
			name:    "s3 without bucket",
			mutate:  func(c *Config) { c.Publish.Backend = "s3"; c.Publish.S3.Endpoint = "https://s3" },
			wantErr: "publish.s3.endpoint",
		},
		{
			name:    "postgres without dsn",
			mutate:  func(c *Config) { c.Throttling.HistoryBackend = "postgres" },
			wantErr: "postgres.dsn",
		},
		{
			name: "reddit bad kind",
			mutate: func(c *Config) {
				c.SocialPosting.Reddit = Reddit{Enabled: true, ClientID: "id", Username: "u", Subreddit: "s", Kind: "image"}
			},
			wantErr: "kind must be link or self",
		},
		{
			name:    "telegram without chat",
			mutate:  func(c *Config) { c.SocialPosting.Telegram = Telegram{Enabled: true, Token: "t"} },
			wantErr: "chat_id",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: "log_level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Publish.Backend = "local"
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSiteURLConfigured(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"", false},
		{"https://YOUR_SITE_URL.com", false},
		{"https://blog.example.com", true},
	}
	for _, tt := range tests {
		cfg := Config{SiteURL: tt.url}
		if got := cfg.SiteURLConfigured(); got != tt.want {
			t.Errorf("SiteURLConfigured(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestPostURL(t *testing.T) {
	cfg := Config{SiteURL: "https://blog.example.com/"}
	if got, want := cfg.PostURL("post.html"), "https://blog.example.com/post.html"; got != want {
		t.Errorf("PostURL() = %q, want %q", got, want)
	}
}
