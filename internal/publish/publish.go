// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package publish writes generated pages to the place the site is served
// from. Three backends are provided: a local directory, an FTP server and
// an S3-compatible bucket. All of them address files by their bare name.
package publish

import (
	"context"
	"errors"
	"fmt"

	"autopress/internal/config"
)

// ErrNotFound is returned by Delete when the named file does not exist on
// the target. Callers deleting a post treat it as success.
var ErrNotFound = errors.New("file not found on target")

// Target is a destination for published files.
type Target interface {
	// Write stores data under name, replacing any existing file.
	Write(ctx context.Context, name string, data []byte) error

	// Delete removes name. A missing file yields an error wrapping ErrNotFound.
	Delete(ctx context.Context, name string) error

	// Name identifies the backend in logs.
	Name() string
}

// Lister is implemented by targets that can enumerate the files they hold.
type Lister interface {
	List(ctx context.Context) ([]string, error)
}

// New builds the target selected by cfg.Backend.
func New(cfg config.Publish) (Target, error) {
	switch cfg.Backend {
	case "local":
		return NewLocal(cfg.Local.Dir)
	case "ftp":
		return NewFTP(cfg.FTP), nil
	case "s3":
		return NewS3(cfg.S3)
	default:
		return nil, fmt.Errorf("publish: unsupported backend %q", cfg.Backend)
	}
}

// DeleteIfExists deletes name and reports success when the file is already
// gone.
func DeleteIfExists(ctx context.Context, t Target, name string) error {
	err := t.Delete(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
