// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"autopress/internal/cache"
	"autopress/internal/config"
	"autopress/internal/content"
	"autopress/internal/history"
	"autopress/internal/models"
	"autopress/internal/publish"
	"autopress/internal/rotation"
	"autopress/internal/slug"
	"autopress/internal/social"
	"autopress/internal/throttle"
)

// ErrCycleSkipped wraps failures that end a cycle before anything was
// recorded. They are expected from time to time and do not trigger the
// error cooldown.
var ErrCycleSkipped = errors.New("cycle skipped")

// ConfigRetryDelay is how long the loop waits after a failed config reload.
const ConfigRetryDelay = 60 * time.Second

// Generator produces an article for a product.
type Generator interface {
	Generate(ctx context.Context, product models.Product) (*content.Article, error)
}

// Locker guards a cycle against concurrent runs. Acquire returns
// cache.ErrLocked when another process holds the lock.
type Locker interface {
	Acquire(ctx context.Context) (func(context.Context) error, error)
}

// Runner executes publishing cycles.
type Runner struct {
	site      *Site
	generator Generator
	cfg       *config.Config

	// Notifier and Lock are optional.
	Notifier social.Notifier
	Lock     Locker

	now  func() time.Time
	pick func(n int) int
}

// NewRunner creates a runner publishing to site with articles from gen.
func NewRunner(site *Site, gen Generator, cfg *config.Config) *Runner {
	return &Runner{
		site:      site,
		generator: gen,
		cfg:       cfg,
		now:       time.Now,
		pick:      rand.IntN,
	}
}

// Apply switches the runner to a freshly loaded configuration. The
// products, throttling, rotation and site settings take effect on the next
// cycle; backends chosen at startup are kept.
func (r *Runner) Apply(cfg *config.Config) {
	r.cfg = cfg
	r.site.Apply(cfg)
}

func skip(err error) error {
	return fmt.Errorf("%w: %w", ErrCycleSkipped, err)
}

// RunCycle publishes one article without consulting the throttle. It
// returns nil on success, an error wrapping ErrCycleSkipped when the cycle
// ended before anything was recorded, or any other error when a later step
// failed.
func (r *Runner) RunCycle(ctx context.Context) error {
	if r.Lock != nil {
		release, err := r.Lock.Acquire(ctx)
		if errors.Is(err, cache.ErrLocked) {
			return skip(err)
		}
		if err != nil {
			return fmt.Errorf("acquiring run lock: %w", err)
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				slog.Warn("failed to release run lock", "error", err)
			}
		}()
	}

	products := r.cfg.ProductPortfolio
	if len(products) == 0 {
		return skip(config.ErrNoProducts)
	}
	product := products[r.pick(len(products))]
	slog.Info("cycle started", "product", product.Title, "target", r.site.Target.Name())

	article, err := r.generator.Generate(ctx, product)
	if err != nil {
		return skip(fmt.Errorf("generating article for %q: %w", product.Title, err))
	}

	records, err := r.site.Store.Load(ctx)
	if err != nil {
		return skip(fmt.Errorf("loading history: %w", err))
	}
	filename := slug.Filename(article.Title)
	if history.Contains(records, filename) {
		filename = slug.WithSuffix(filename, uuid.NewString()[:8])
		slog.Info("file name already in use, added suffix", "file", filename)
	}

	if err := r.site.Target.Write(ctx, filename, []byte(article.Page)); err != nil {
		return skip(fmt.Errorf("publishing %s: %w", filename, err))
	}
	slog.Info("article published", "file", filename, "title", article.Title)

	rec := models.PostRecord{
		Timestamp:   r.now(),
		Filename:    filename,
		Title:       article.Title,
		ProductLink: product.Link,
	}
	records, err = history.Append(ctx, r.site.Store, rec)
	if err != nil {
		slog.Error("published file is not in the history", "file", filename)
		return fmt.Errorf("recording %s: %w", filename, err)
	}

	rotateErr := r.rotate(ctx, records)

	if err := r.site.PublishIndex(ctx); err != nil {
		slog.Error("index update failed", "error", err)
	}
	if rotateErr != nil {
		return rotateErr
	}
	if err := r.site.UploadAssets(ctx, r.cfg.Site.AssetDir, r.cfg.Site.Assets); err != nil {
		slog.Warn("asset upload failed", "error", err)
	}

	r.announce(ctx, article, filename)
	slog.Info("cycle complete", "file", filename)
	return nil
}

// rotate enforces the per-product cap on records and saves the result when
// anything was evicted.
func (r *Runner) rotate(ctx context.Context, records []models.PostRecord) error {
	kept := rotation.Rotate(records, r.cfg.Rotation.MaxPostsPerProduct, func(filename string) bool {
		if err := publish.DeleteIfExists(ctx, r.site.Target, filename); err != nil {
			slog.Warn("eviction failed", "file", filename, "error", err)
			return false
		}
		return true
	})
	if len(kept) == len(records) {
		return nil
	}
	if err := r.site.Store.Save(ctx, kept); err != nil {
		return fmt.Errorf("saving rotated history: %w", err)
	}
	slog.Info("history rotated", "evicted", len(records)-len(kept))
	return nil
}

func (r *Runner) announce(ctx context.Context, article *content.Article, filename string) {
	if r.Notifier == nil {
		return
	}
	if !r.cfg.SiteURLConfigured() {
		slog.Warn("site_url not configured, skipping social posting")
		return
	}
	a := social.Announcement{
		Title:   article.Title,
		URL:     r.cfg.PostURL(filename),
		Excerpt: article.Excerpt,
	}
	if err := r.Notifier.Notify(ctx, a); err != nil {
		slog.Warn("social posting failed", "error", err)
	}
}

// Tick runs one scheduler step: it checks the throttle, runs a cycle when
// allowed and returns how long to wait before the next step.
func (r *Runner) Tick(ctx context.Context) (wait time.Duration) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("panic in publishing cycle",
				"error", rec,
				"stack", string(debug.Stack()),
			)
			wait = r.cfg.Throttling.ErrorCooldown()
		}
	}()

	records, err := r.site.Store.Load(ctx)
	if err != nil {
		slog.Error("loading history failed", "error", err)
		return r.cfg.Throttling.ErrorCooldown()
	}

	d := throttle.ShouldPost(records, r.now(), r.cfg.Throttling.MinDelay(), r.cfg.Throttling.MaxPostsPer24Hours)
	if !d.Allowed {
		slog.Info("posting deferred", "reason", d.Reason, "next_at", d.NextAt)
		return r.cfg.Throttling.CheckInterval()
	}

	err = r.RunCycle(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrCycleSkipped), ctx.Err() != nil:
		slog.Info("cycle skipped", "reason", err)
	default:
		slog.Error("cycle failed", "error", err)
		return r.cfg.Throttling.ErrorCooldown()
	}
	return r.cfg.Throttling.CheckInterval()
}

// RunOnce runs a single cycle regardless of the throttle. A panic is
// returned as an error.
func (r *Runner) RunOnce(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("panic in publishing cycle", "error", rec, "stack", string(debug.Stack()))
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return r.RunCycle(ctx)
}

// Loop runs Tick until ctx is cancelled. Before every step it calls reload
// for a fresh configuration, when reload is set; a failed reload is logged
// and retried after ConfigRetryDelay.
func (r *Runner) Loop(ctx context.Context, reload func() (*config.Config, error)) {
	slog.Info("publishing loop started",
		"check_interval", r.cfg.Throttling.CheckInterval(),
		"min_delay", r.cfg.Throttling.MinDelay(),
		"max_per_24h", r.cfg.Throttling.MaxPostsPer24Hours,
	)
	for {
		wait := ConfigRetryDelay
		if reload != nil {
			cfg, err := reload()
			if err != nil {
				slog.Error("config reload failed", "error", err, "retry_in", wait)
			} else {
				r.Apply(cfg)
				wait = r.Tick(ctx)
			}
		} else {
			wait = r.Tick(ctx)
		}

		slog.Debug("waiting for next check", "duration", wait)
		select {
		case <-ctx.Done():
			slog.Info("publishing loop stopped")
			return
		case <-time.After(wait):
		}
	}
}
