// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the management CLI for a published autopress site. It
// lists the post history and deletes single posts or every post, keeping
// the publish target, the history and the index page consistent.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jessevdk/go-flags"

	"autopress/internal/config"
	"autopress/internal/history"
	"autopress/internal/publish"
	"autopress/internal/site"
	"autopress/web"
)

type options struct {
	Config      string `short:"c" long:"config" env:"AUTOPRESS_CONFIG" default:"config.json" description:"Path to the configuration file (JSON or YAML)"`
	List        bool   `short:"l" long:"list" description:"List all published posts"`
	Delete      string `short:"d" long:"delete" value-name:"FILE" description:"Delete one post by file name"`
	DeleteAll   bool   `long:"delete-all" description:"Delete every published post"`
	FromHistory bool   `long:"from-history" description:"With --delete-all, delete the files named in the history instead of the files found on the target"`
	Yes         bool   `short:"y" long:"yes" description:"Skip the confirmation prompt"`
	Init        string `long:"init" value-name:"DIR" optional:"yes" optional-value:"." description:"Write the starter template, assets and sample config into DIR"`
	Force       bool   `long:"force" description:"With --init, overwrite existing files"`
}

func (o options) actions() int {
	n := 0
	for _, set := range []bool{o.List, o.Delete != "", o.DeleteAll, o.Init != ""} {
		if set {
			n++
		}
	}
	return n
}

func main() {
	os.Exit(run())
}

func run() int {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return 0
		}
		return 2
	}
	if opts.actions() != 1 {
		fmt.Fprintln(os.Stderr, "choose exactly one of --list, --delete FILE, --delete-all or --init")
		parser.WriteHelp(os.Stderr)
		return 2
	}
	if opts.FromHistory && !opts.DeleteAll {
		fmt.Fprintln(os.Stderr, "--from-history only applies to --delete-all")
		return 2
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if opts.Init != "" {
		written, err := web.WriteStarter(opts.Init, opts.Force)
		if err != nil {
			slog.Error("init failed", "error", err)
			return 1
		}
		for _, name := range written {
			fmt.Printf("Wrote %s\n", filepath.Join(opts.Init, name))
		}
		return 0
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		slog.Error("failed to load configuration", "path", opts.Config, "error", err)
		return 1
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

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
	pub := site.New(target, store, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch {
	case opts.List:
		err = pub.List(ctx, os.Stdout)

	case opts.Delete != "":
		err = pub.DeletePost(ctx, opts.Delete)
		if err == nil {
			fmt.Printf("Deleted %s\n", opts.Delete)
		}

	case opts.DeleteAll:
		confirm := site.PromptYes(os.Stdin, os.Stdout)
		if opts.Yes {
			confirm = nil
		}
		var n int
		n, err = pub.DeleteAll(ctx, site.DeleteAllOptions{FromHistory: opts.FromHistory, Confirm: confirm})
		if errors.Is(err, site.ErrAborted) {
			fmt.Println("Aborted, nothing was deleted.")
			return 1
		}
		fmt.Printf("Deleted %d files\n", n)
	}

	if err != nil {
		slog.Error("operation failed", "error", err)
		return 1
	}
	return 0
}
