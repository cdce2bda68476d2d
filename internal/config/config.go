// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config loads the publisher's configuration document. The file may
// be JSON or YAML; secrets can be supplied through environment variables
// instead of being written into the file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"autopress/internal/models"
)

// ErrNoProducts is returned when the product portfolio is empty.
var ErrNoProducts = errors.New("product portfolio is empty")

// Config holds all application configuration values.
type Config struct {
	ProductPortfolio []models.Product `yaml:"product_portfolio"`
	ContentProvider  ContentProvider  `yaml:"content_provider"`
	Throttling       Throttling       `yaml:"throttling"`
	Rotation         Rotation         `yaml:"rotation"`
	Publish          Publish          `yaml:"publish"`
	SiteURL          string           `yaml:"site_url"`
	Site             Site             `yaml:"site"`
	SocialPosting    SocialPosting    `yaml:"social_posting"`
	Status           Status           `yaml:"status"`
	Valkey           Valkey           `yaml:"valkey"`
	Postgres         Postgres         `yaml:"postgres"`
	LogLevel         string           `yaml:"log_level"`

	// LegacyFTP is the top-level "ftp" block of older configuration files.
	LegacyFTP *FTP `yaml:"ftp"`
}

// ContentProvider selects and configures the text generation backend.
type ContentProvider struct {
	Provider string         `yaml:"provider"` // "ollama" or "openai"
	Ollama   ProviderConfig `yaml:"ollama_settings"`
	OpenAI   ProviderConfig `yaml:"openai_settings"`
}

// ProviderConfig holds the settings for a single generation backend.
type ProviderConfig struct {
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	APIKey         string  `yaml:"api_key"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// Throttling bounds how often the runner publishes.
type Throttling struct {
	PostHistoryFile      string `yaml:"post_history_file"`
	HistoryBackend       string `yaml:"history_backend"` // "file" or "postgres"
	MinDelayMinutes      int    `yaml:"min_delay_between_posts_minutes"`
	MaxPostsPer24Hours   int    `yaml:"max_posts_per_24_hours"`
	CheckIntervalMinutes int    `yaml:"check_interval_minutes"`
	ErrorCooldownMinutes int    `yaml:"error_cooldown_minutes"`
}

// MinDelay returns the minimum gap between two posts.
func (t Throttling) MinDelay() time.Duration {
	return time.Duration(t.MinDelayMinutes) * time.Minute
}

// CheckInterval returns the loop tick interval.
func (t Throttling) CheckInterval() time.Duration {
	return time.Duration(t.CheckIntervalMinutes) * time.Minute
}

// ErrorCooldown returns the pause after an unexpected loop failure.
func (t Throttling) ErrorCooldown() time.Duration {
	return time.Duration(t.ErrorCooldownMinutes) * time.Minute
}

// Rotation caps the number of live posts per product.
type Rotation struct {
	MaxPostsPerProduct int `yaml:"max_posts_per_product"`
}

// Publish selects the publish target and the files it treats specially.
type Publish struct {
	Backend        string   `yaml:"backend"` // "local", "ftp" or "s3"
	Local          Local    `yaml:"local"`
	FTP            FTP      `yaml:"ftp"`
	S3             S3       `yaml:"s3"`
	ProtectedFiles []string `yaml:"protected_files"`
	StaleFiles     []string `yaml:"stale_files"`
}

// Local configures the filesystem publish target.
type Local struct {
	Dir string `yaml:"dir"`
}

// FTP configures the remote file transfer publish target.
type FTP struct {
	Host           string `yaml:"host"`
	User           string `yaml:"user"`
	Pass           string `yaml:"pass"`
	RemoteDir      string `yaml:"remote_dir"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// S3 configures the object storage publish target.
type S3 struct {
	Endpoint   string `yaml:"endpoint"`
	Region     string `yaml:"region"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Bucket     string `yaml:"bucket"`
	Prefix     string `yaml:"prefix"`
	PublicRead bool   `yaml:"public_read"`
}

// Site holds the page template and the static files published alongside
// the articles.
type Site struct {
	TemplatePath string   `yaml:"template_path"`
	IndexFile    string   `yaml:"index_file"`
	IndexTitle   string   `yaml:"index_title"`
	AssetDir     string   `yaml:"asset_dir"`
	Assets       []string `yaml:"assets"`
}

// SocialPosting configures the optional announcement channels.
type SocialPosting struct {
	Reddit   Reddit   `yaml:"reddit"`
	Telegram Telegram `yaml:"telegram"`
}

// Reddit holds script-app credentials for submitting to a subreddit.
type Reddit struct {
	Enabled      bool   `yaml:"enabled"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	Subreddit    string `yaml:"subreddit"`
	UserAgent    string `yaml:"user_agent"`
	Kind         string `yaml:"kind"` // "link" or "self"
}

// Telegram holds the bot token and target chat.
type Telegram struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	ChatID  string `yaml:"chat_id"` // numeric id or @channelname
}

// Status configures the read-only status HTTP server. Empty Addr disables it.
type Status struct {
	Addr         string `yaml:"addr"`
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"` // bcrypt
}

// Valkey configures the optional run lock. Empty Host disables it.
type Valkey struct {
	Host           string `yaml:"host"`
	Port           string `yaml:"port"`
	Password       string `yaml:"password"`
	LockTTLMinutes int    `yaml:"lock_ttl_minutes"`
}

// LockTTL returns how long a cycle lock may be held before it expires.
func (v Valkey) LockTTL() time.Duration {
	return time.Duration(v.LockTTLMinutes) * time.Minute
}

// Postgres configures the Postgres history backend.
type Postgres struct {
	DSN string `yaml:"dsn"`
}

// Defaults returns a Config with every optional value set.
func Defaults() Config {
	return Config{
		ContentProvider: ContentProvider{
			Provider: "ollama",
			Ollama: ProviderConfig{
				BaseURL:        "http://localhost:11434/api/generate",
				Model:          "llama3:8b",
				Temperature:    0.7,
				TimeoutSeconds: 300,
			},
			OpenAI: ProviderConfig{
				BaseURL:        "https://api.openai.com/v1",
				Model:          "gpt-4o-mini",
				Temperature:    0.7,
				TimeoutSeconds: 120,
			},
		},
		Throttling: Throttling{
			PostHistoryFile:      "post_history.log",
			HistoryBackend:       "file",
			MinDelayMinutes:      240,
			MaxPostsPer24Hours:   4,
			CheckIntervalMinutes: 10,
			ErrorCooldownMinutes: 60,
		},
		Rotation: Rotation{MaxPostsPerProduct: 2},
		Publish: Publish{
			Local:          Local{Dir: "public"},
			FTP:            FTP{RemoteDir: "/htdocs/", TimeoutSeconds: 30},
			S3:             S3{Region: "us-east-1"},
			ProtectedFiles: []string{"index.html", "disclosure.html", "style.css"},
			StaleFiles:     []string{"index2.html"},
		},
		Site: Site{
			TemplatePath: "template.html",
			IndexFile:    "index.html",
			IndexTitle:   "Product Spotlight - Home",
			AssetDir:     ".",
			Assets:       []string{"style.css", "disclosure.html"},
		},
		SocialPosting: SocialPosting{
			Reddit: Reddit{UserAgent: "autopress/1.0", Kind: "link"},
		},
		Valkey:   Valkey{Port: "6379", LockTTLMinutes: 30},
		LogLevel: "info",
	}
}

// Load reads the configuration document at path, applies defaults for
// missing values and environment overrides for secrets, and validates it.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	// JSON is a subset of YAML, so one decoder covers both formats.
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg.applyLegacy()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Debug("configuration loaded", "path", path, "products", len(cfg.ProductPortfolio))
	return &cfg, nil
}

// applyLegacy maps the top-level "ftp" block used by older files onto the
// publish section and infers the backend when none is set.
func (c *Config) applyLegacy() {
	if c.LegacyFTP != nil && c.Publish.FTP.Host == "" {
		legacy := *c.LegacyFTP
		if legacy.RemoteDir == "" {
			legacy.RemoteDir = c.Publish.FTP.RemoteDir
		}
		if legacy.TimeoutSeconds == 0 {
			legacy.TimeoutSeconds = c.Publish.FTP.TimeoutSeconds
		}
		c.Publish.FTP = legacy
	}
	if c.Publish.Backend == "" {
		if c.Publish.FTP.Host != "" {
			c.Publish.Backend = "ftp"
		} else {
			c.Publish.Backend = "local"
		}
	}
}

// applyEnv lets secrets come from the environment instead of the file.
func (c *Config) applyEnv() {
	c.Publish.FTP.Pass = envOrDefault("AUTOPRESS_FTP_PASSWORD", c.Publish.FTP.Pass)
	c.Publish.S3.AccessKey = envOrDefault("AUTOPRESS_S3_ACCESS_KEY", c.Publish.S3.AccessKey)
	c.Publish.S3.SecretKey = envOrDefault("AUTOPRESS_S3_SECRET_KEY", c.Publish.S3.SecretKey)
	c.ContentProvider.OpenAI.APIKey = envOrDefault("AUTOPRESS_OPENAI_API_KEY", c.ContentProvider.OpenAI.APIKey)
	c.SocialPosting.Reddit.ClientSecret = envOrDefault("AUTOPRESS_REDDIT_CLIENT_SECRET", c.SocialPosting.Reddit.ClientSecret)
	c.SocialPosting.Reddit.Password = envOrDefault("AUTOPRESS_REDDIT_PASSWORD", c.SocialPosting.Reddit.Password)
	c.SocialPosting.Telegram.Token = envOrDefault("AUTOPRESS_TELEGRAM_TOKEN", c.SocialPosting.Telegram.Token)
	c.Valkey.Password = envOrDefault("AUTOPRESS_VALKEY_PASSWORD", c.Valkey.Password)
	c.Postgres.DSN = envOrDefault("AUTOPRESS_POSTGRES_DSN", c.Postgres.DSN)
}

// Validate checks that required values are present and consistent.
func (c *Config) Validate() error {
	var errs []error

	switch c.ContentProvider.Provider {
	case "ollama":
	case "openai":
		if c.ContentProvider.OpenAI.APIKey == "" {
			errs = append(errs, errors.New("content_provider.openai_settings.api_key is required for the openai provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported content provider %q", c.ContentProvider.Provider))
	}

	for i, p := range c.ProductPortfolio {
		if strings.TrimSpace(p.Link) == "" {
			errs = append(errs, fmt.Errorf("product_portfolio[%d] (%q) has no link", i, p.Title))
		}
	}

	t := c.Throttling
	if t.MinDelayMinutes < 0 {
		errs = append(errs, errors.New("throttling.min_delay_between_posts_minutes must be non-negative"))
	}
	if t.MaxPostsPer24Hours < 1 {
		errs = append(errs, errors.New("throttling.max_posts_per_24_hours must be at least 1"))
	}
	if t.CheckIntervalMinutes < 1 {
		errs = append(errs, errors.New("throttling.check_interval_minutes must be at least 1"))
	}
	if t.ErrorCooldownMinutes < 0 {
		errs = append(errs, errors.New("throttling.error_cooldown_minutes must be non-negative"))
	}
	switch t.HistoryBackend {
	case "file":
		if t.PostHistoryFile == "" {
			errs = append(errs, errors.New("throttling.post_history_file is required"))
		}
	case "postgres":
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("postgres.dsn is required for the postgres history backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported history backend %q", t.HistoryBackend))
	}

	if c.Rotation.MaxPostsPerProduct < 1 {
		errs = append(errs, errors.New("rotation.max_posts_per_product must be at least 1"))
	}

	switch c.Publish.Backend {
	case "local":
		if c.Publish.Local.Dir == "" {
			errs = append(errs, errors.New("publish.local.dir is required"))
		}
	case "ftp":
		if c.Publish.FTP.Host == "" || c.Publish.FTP.User == "" {
			errs = append(errs, errors.New("publish.ftp.host and publish.ftp.user are required"))
		}
	case "s3":
		if c.Publish.S3.Endpoint == "" || c.Publish.S3.Bucket == "" {
			errs = append(errs, errors.New("publish.s3.endpoint and publish.s3.bucket are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported publish backend %q", c.Publish.Backend))
	}

	if c.Site.IndexFile == "" {
		errs = append(errs, errors.New("site.index_file is required"))
	}

	if c.SocialPosting.Reddit.Enabled {
		r := c.SocialPosting.Reddit
		if r.ClientID == "" || r.Username == "" || r.Subreddit == "" {
			errs = append(errs, errors.New("social_posting.reddit needs client_id, username and subreddit when enabled"))
		}
		if r.Kind != "link" && r.Kind != "self" {
			errs = append(errs, fmt.Errorf("social_posting.reddit.kind must be link or self, got %q", r.Kind))
		}
	}
	if c.SocialPosting.Telegram.Enabled {
		if c.SocialPosting.Telegram.Token == "" || c.SocialPosting.Telegram.ChatID == "" {
			errs = append(errs, errors.New("social_posting.telegram needs token and chat_id when enabled"))
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unsupported log_level %q", c.LogLevel))
	}

	return errors.Join(errs...)
}

// SiteURLConfigured reports whether site_url holds a real address rather
// than being empty or left at the sample placeholder.
func (c *Config) SiteURLConfigured() bool {
	return c.SiteURL != "" && !strings.Contains(c.SiteURL, "YOUR_SITE_URL")
}

// PostURL returns the public URL of a published file.
func (c *Config) PostURL(filename string) string {
	return strings.TrimRight(c.SiteURL, "/") + "/" + filename
}

// SlogLevel maps LogLevel onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
