// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package history

import (
	"fmt"
	"log/slog"

	"autopress/internal/config"
	"autopress/internal/database"
)

// Open returns the store selected by throttling.history_backend. The
// returned function releases the database connection, if one was opened.
func Open(cfg *config.Config) (Store, func(), error) {
	switch cfg.Throttling.HistoryBackend {
	case "", "file":
		slog.Info("post history on file", "path", cfg.Throttling.PostHistoryFile)
		return NewFileStore(cfg.Throttling.PostHistoryFile), func() {}, nil

	case "postgres":
		db, err := database.Connect(cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, nil, err
		}
		slog.Info("post history on postgres")
		return NewPostgresStore(db), func() { db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("history: unsupported backend %q", cfg.Throttling.HistoryBackend)
	}
}
