// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package history persists the log of published posts. The log is the
// source of truth for throttling, rotation, and the site index, so it is
// always reloaded from storage before use and rewritten wholesale on every
// mutation.
package history

import (
	"context"
	"sort"

	"autopress/internal/models"
)

// Store loads and saves the complete post history.
type Store interface {
	// Load returns every record currently persisted, in storage order.
	// A store that has never been written returns an empty slice.
	Load(ctx context.Context) ([]models.PostRecord, error)

	// Save replaces the persisted history with records.
	Save(ctx context.Context, records []models.PostRecord) error
}

// Append reloads the history, appends rec and saves the result. It returns
// the history as persisted.
func Append(ctx context.Context, s Store, rec models.PostRecord) ([]models.PostRecord, error) {
	records, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	records = append(records, rec)
	if err := s.Save(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// Remove returns records without any entry for filename, and whether one
// was found.
func Remove(records []models.PostRecord, filename string) ([]models.PostRecord, bool) {
	kept := make([]models.PostRecord, 0, len(records))
	found := false
	for _, r := range records {
		if r.Filename == filename {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	return kept, found
}

// Contains reports whether any record uses filename.
func Contains(records []models.PostRecord, filename string) bool {
	for _, r := range records {
		if r.Filename == filename {
			return true
		}
	}
	return false
}

// NewestFirst returns a copy of records sorted by timestamp, newest first.
func NewestFirst(records []models.PostRecord) []models.PostRecord {
	sorted := make([]models.PostRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	return sorted
}
