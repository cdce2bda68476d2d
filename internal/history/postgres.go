// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"autopress/internal/models"
)

// PostgresStore keeps the history in the post_history table. Save rewrites
// the whole table inside one transaction, mirroring the file store's
// overwrite-on-mutation behaviour.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store on an already migrated database.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Load returns all records in insertion order.
func (s *PostgresStore) Load(ctx context.Context) ([]models.PostRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT published_at, filename, title, product_link
		FROM post_history
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query post history: %w", err)
	}
	defer rows.Close()

	records := []models.PostRecord{}
	for rows.Next() {
		var r models.PostRecord
		if err := rows.Scan(&r.Timestamp, &r.Filename, &r.Title, &r.ProductLink); err != nil {
			return nil, fmt.Errorf("scan post history: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Save replaces every row with records.
func (s *PostgresStore) Save(ctx context.Context, records []models.PostRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin post history tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM post_history`); err != nil {
		return fmt.Errorf("clear post history: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO post_history (published_at, filename, title, product_link)
		VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return fmt.Errorf("prepare post history insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Timestamp, r.Filename, r.Title, r.ProductLink); err != nil {
			return fmt.Errorf("insert post history %q: %w", r.Filename, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit post history: %w", err)
	}

	slog.Debug("post history saved", "backend", "postgres", "records", len(records))
	return nil
}
