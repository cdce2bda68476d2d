// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Local publishes into a directory on the local filesystem, typically the
// document root of a web server on the same host.
type Local struct {
	dir string
}

// NewLocal creates the directory if it does not exist.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local mkdir %s: %w", dir, err)
	}
	return &Local{dir: dir}, nil
}

func (l *Local) Name() string { return "local" }

// Dir returns the directory files are written to.
func (l *Local) Dir() string { return l.dir }

// Write stores data via a temporary file and rename, so readers never see a
// partially written page.
func (l *Local) Write(ctx context.Context, name string, data []byte) error {
	path, err := l.path(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(l.dir, ".publish-*.tmp")
	if err != nil {
		return fmt.Errorf("local write %s: %w", name, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("local write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("local close %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("local chmod %s: %w", name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("local rename %s: %w", name, err)
	}
	return nil
}

func (l *Local) Delete(ctx context.Context, name string) error {
	path, err := l.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("local delete %s: %w", name, ErrNotFound)
		}
		return fmt.Errorf("local delete %s: %w", name, err)
	}
	return nil
}

// List returns the regular files in the directory, sorted by name. Hidden
// files (including in-flight temporaries) are skipped.
func (l *Local) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("local list %s: %w", l.dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// path rejects names that would escape the publish directory.
func (l *Local) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("local: invalid file name %q", name)
	}
	return filepath.Join(l.dir, name), nil
}
