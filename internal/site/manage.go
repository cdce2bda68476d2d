// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package site

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"autopress/internal/history"
	"autopress/internal/models"
	"autopress/internal/publish"
)

// ErrAborted is returned when the operator declines a confirmation.
var ErrAborted = errors.New("operation aborted")

// ConfirmFunc asks the operator to approve prompt.
type ConfirmFunc func(prompt string) bool

// PromptYes returns a ConfirmFunc that writes the prompt to out and accepts
// only a typed "yes" read from in.
func PromptYes(in io.Reader, out io.Writer) ConfirmFunc {
	reader := bufio.NewReader(in)
	return func(prompt string) bool {
		fmt.Fprintf(out, "%s Type 'yes' to confirm: ", prompt)
		answer, _ := reader.ReadString('\n')
		return strings.EqualFold(strings.TrimSpace(answer), "yes")
	}
}

// List writes a numbered summary of every post in the history, in storage
// order.
func (s *Site) List(ctx context.Context, w io.Writer) error {
	records, err := s.Store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "No posts found in history.")
		return nil
	}

	fmt.Fprintf(w, "Published posts (%d):\n\n", len(records))
	for i, r := range records {
		title, file := r.Title, r.Filename
		if title == "" {
			title = "(untitled)"
		}
		if file == "" {
			file = "(no file)"
		}
		fmt.Fprintf(w, "%d. Title: %s\n   File:  %s\n   Date:  %s\n\n",
			i+1, title, file, r.Timestamp.Format("2006-01-02 15:04"))
	}
	return nil
}

// DeletePost removes one post from the target, then from the history, and
// republishes the index. A file already missing on the target counts as
// deleted; any other delete failure leaves the history untouched.
func (s *Site) DeletePost(ctx context.Context, filename string) error {
	if filename == "" {
		return errors.New("no file name given")
	}
	if s.protected(filename) {
		return fmt.Errorf("%s is a protected site file", filename)
	}

	if err := publish.DeleteIfExists(ctx, s.Target, filename); err != nil {
		return fmt.Errorf("deleting %s from %s: %w", filename, s.Target.Name(), err)
	}
	slog.Info("file deleted", "file", filename, "target", s.Target.Name())

	records, err := s.Store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}
	kept, found := history.Remove(records, filename)
	if !found {
		slog.Warn("post not found in history", "file", filename)
	} else if err := s.Store.Save(ctx, kept); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}

	return s.PublishIndex(ctx)
}

// DeleteAllOptions controls DeleteAll.
type DeleteAllOptions struct {
	// FromHistory deletes the files named in the history instead of the
	// files listed on the target.
	FromHistory bool

	// Confirm is asked before anything is deleted. Nil approves.
	Confirm ConfirmFunc
}

// DeleteAll removes every published post and returns how many files were
// deleted.
//
// When the target can list its files and FromHistory is not set, the
// target's listing is authoritative: every file outside the protected set is
// deleted, the first failure stops the run, and the history is only cleared
// once all deletions succeeded. Otherwise the history drives the deletion:
// failures are logged and skipped, and only records whose files are gone
// are forgotten. The index is republished in both cases.
func (s *Site) DeleteAll(ctx context.Context, opts DeleteAllOptions) (int, error) {
	lister, ok := s.Target.(publish.Lister)
	if ok && !opts.FromHistory {
		return s.deleteListed(ctx, lister, opts.Confirm)
	}
	if !opts.FromHistory {
		slog.Info("target cannot list files, deleting from history", "target", s.Target.Name())
	}
	return s.deleteFromHistory(ctx, opts.Confirm)
}

func (s *Site) deleteListed(ctx context.Context, lister publish.Lister, confirm ConfirmFunc) (int, error) {
	files, err := lister.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing %s: %w", s.Target.Name(), err)
	}
	var doomed []string
	for _, f := range files {
		if !s.protected(f) {
			doomed = append(doomed, f)
		}
	}
	if len(doomed) == 0 {
		// Records left behind point at files that are already gone.
		slog.Info("no post files on target, clearing history", "target", s.Target.Name())
	} else {
		prompt := fmt.Sprintf("This will delete %d files from %s.", len(doomed), s.Target.Name())
		if confirm != nil && !confirm(prompt) {
			return 0, ErrAborted
		}
	}

	deleted := 0
	for _, f := range doomed {
		if err := publish.DeleteIfExists(ctx, s.Target, f); err != nil {
			return deleted, fmt.Errorf("deleting %s, history left unchanged: %w", f, err)
		}
		deleted++
		slog.Info("file deleted", "file", f)
	}

	if err := s.Store.Save(ctx, nil); err != nil {
		return deleted, fmt.Errorf("clearing history: %w", err)
	}
	return deleted, s.PublishIndex(ctx)
}

func (s *Site) deleteFromHistory(ctx context.Context, confirm ConfirmFunc) (int, error) {
	records, err := s.Store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading history: %w", err)
	}
	if len(records) == 0 {
		slog.Info("nothing to delete, history is empty")
		return 0, nil
	}

	prompt := fmt.Sprintf("This will delete all %d posts in the history from %s.", len(records), s.Target.Name())
	if confirm != nil && !confirm(prompt) {
		return 0, ErrAborted
	}

	var kept []models.PostRecord
	deleted, failed := 0, 0
	for _, r := range records {
		if !r.HasFile() {
			continue
		}
		if s.protected(r.Filename) {
			slog.Warn("history names a protected file, not deleting it", "file", r.Filename)
			continue
		}
		if err := publish.DeleteIfExists(ctx, s.Target, r.Filename); err != nil {
			slog.Error("delete failed", "file", r.Filename, "error", err)
			kept = append(kept, r)
			failed++
			continue
		}
		deleted++
		slog.Info("file deleted", "file", r.Filename)
	}

	if err := s.Store.Save(ctx, kept); err != nil {
		return deleted, fmt.Errorf("saving history: %w", err)
	}
	if err := s.PublishIndex(ctx); err != nil {
		return deleted, err
	}
	if failed > 0 {
		return deleted, fmt.Errorf("%d of %d deletions failed, their posts stay in the history", failed, failed+deleted)
	}
	return deleted, nil
}
