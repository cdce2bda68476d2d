// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package social announces freshly published posts on external channels.
// Announcements are best-effort: a failure is reported to the caller for
// logging and never undoes a publish.
package social

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"autopress/internal/config"
)

// Announcement describes a published post.
type Announcement struct {
	Title   string
	URL     string
	Excerpt string
}

// Notifier posts an announcement to one channel.
type Notifier interface {
	Notify(ctx context.Context, a Announcement) error
	Name() string
}

// Multi fans an announcement out to several notifiers.
type Multi []Notifier

func (m Multi) Name() string { return "multi" }

// Notify calls every notifier, continuing past failures, and returns the
// joined errors.
func (m Multi) Notify(ctx context.Context, a Announcement) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, a); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
			continue
		}
		slog.Info("announcement posted", "channel", n.Name(), "title", a.Title)
	}
	return errors.Join(errs...)
}

// FromConfig builds a notifier for every enabled channel. It returns nil when
// none is enabled.
func FromConfig(cfg config.SocialPosting) Notifier {
	var m Multi
	if cfg.Reddit.Enabled {
		m = append(m, NewReddit(cfg.Reddit))
	}
	if cfg.Telegram.Enabled {
		m = append(m, NewTelegram(cfg.Telegram))
	}
	if len(m) == 0 {
		return nil
	}
	return m
}
