// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the autopress publisher. It loads the
// configuration, wires the history, publish target, generation backend and
// optional services, then either publishes one post (-o) or runs the
// throttled publishing loop until interrupted.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"

	"autopress/internal/ai"
	"autopress/internal/cache"
	"autopress/internal/config"
	"autopress/internal/content"
	"autopress/internal/history"
	"autopress/internal/publish"
	"autopress/internal/router"
	"autopress/internal/site"
	"autopress/internal/social"
)

type options struct {
	Config   string `short:"c" long:"config" env:"AUTOPRESS_CONFIG" default:"config.json" description:"Path to the configuration file (JSON or YAML)"`
	Override bool   `short:"o" long:"override" description:"Publish one post immediately, ignoring throttling, then exit"`
	Provider string `long:"provider" choice:"ollama" choice:"openai" description:"Content provider to use instead of the configured one"`
}

func main() {
	os.Exit(run())
}

func run() int {
	var opts options
	if _, err := flags.NewParser(&opts, flags.Default).Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return 0
		}
		return 2
	}

	setupLogger(slog.LevelInfo)

	cfg, err := loadConfig(opts)
	if err != nil {
		slog.Error("failed to load configuration", "path", opts.Config, "error", err)
		return 1
	}
	setupLogger(cfg.SlogLevel())

	slog.Info("configuration loaded",
		"path", opts.Config,
		"products", len(cfg.ProductPortfolio),
		"publish", cfg.Publish.Backend,
		"provider", cfg.ContentProvider.Provider,
	)

	store, closeStore, err := history.Open(cfg)
	if err != nil {
		slog.Error("failed to open post history", "error", err)
		return 1
	}
	defer closeStore()

	target, err := publish.New(cfg.Publish)
	if err != nil {
		slog.Error("failed to initialize publish target", "error", err)
		return 1
	}

	registry, err := newRegistry(cfg.ContentProvider, opts.Provider)
	if err != nil {
		slog.Error("content provider is not available", "error", err, "available", registry.Available())
		return 1
	}
	slog.Info("ai providers initialized", "active", registry.ActiveName(), "available", registry.Available())

	pipeline := content.NewPipeline(registry, cfg.Site.TemplatePath)
	pub := site.New(target, store, cfg)
	runner := site.NewRunner(pub, pipeline, cfg)

	if n := social.FromConfig(cfg.SocialPosting); n != nil {
		runner.Notifier = n
	}

	if cfg.Valkey.Host != "" {
		client, err := cache.ConnectValkey(cfg.Valkey)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			return 1
		}
		defer client.Close()
		runner.Lock = cache.NewRunLock(client, cache.CycleLockKey, cfg.Valkey.LockTTL())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.Override {
		slog.Info("override mode: publishing one post now")
		if err := runner.RunOnce(ctx); err != nil {
			slog.Error("override run did not publish", "error", err)
			return 1
		}
		return 0
	}

	if cfg.Status.Addr != "" {
		srv := &http.Server{
			Addr:         cfg.Status.Addr,
			Handler:      router.New(store, cfg.Status),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			slog.Info("status server starting", "addr", cfg.Status.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("status server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("status server forced to shutdown", "error", err)
			}
		}()
	}

	runner.Loop(ctx, func() (*config.Config, error) {
		fresh, err := loadConfig(opts)
		if err != nil {
			return nil, err
		}
		pipeline.SetTemplatePath(fresh.Site.TemplatePath)
		return fresh, nil
	})

	slog.Info("publisher stopped")
	return 0
}

// newRegistry builds the generation backends and switches to override when
// one was given on the command line.
func newRegistry(cfg config.ContentProvider, override string) (*ai.Registry, error) {
	registry := ai.FromConfig(cfg)
	if override != "" {
		if err := registry.SetActive(override); err != nil {
			return registry, err
		}
	}
	if _, err := registry.Active(); err != nil {
		return registry, err
	}
	return registry, nil
}

func loadConfig(opts options) (*config.Config, error) {
	return config.Load(opts.Config)
}

func setupLogger(level slog.Level) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}
