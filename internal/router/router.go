// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up the read-only status server. It reports liveness
// and the published post history; it never mutates anything.
package router

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"autopress/internal/config"
	"autopress/internal/history"
	"autopress/internal/middleware"
	"autopress/internal/models"
)

// requestsPerMinute bounds each client on the status server.
const requestsPerMinute = 60

// New creates the status router reading from store.
func New(store history.Store, cfg config.Status) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.NoStore)
	r.Use(middleware.NewRateLimiter(requestsPerMinute, time.Minute).Middleware)

	// Health check, no auth.
	r.Get("/health", healthHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.BasicAuth(cfg.Username, cfg.PasswordHash))
		r.Get("/posts", postsHandler(store))
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type postsResponse struct {
	Count int                 `json:"count"`
	Posts []models.PostRecord `json:"posts"`
}

// postsHandler lists the history newest first. An optional ?limit=N caps
// the number of posts returned.
func postsHandler(store history.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
				return
			}
			limit = n
		}

		records, err := store.Load(r.Context())
		if err != nil {
			slog.Error("status server: loading history failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "history unavailable"})
			return
		}

		posts := history.NewestFirst(records)
		total := len(posts)
		if limit > 0 && limit < len(posts) {
			posts = posts[:limit]
		}
		writeJSON(w, http.StatusOK, postsResponse{Count: total, Posts: posts})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
