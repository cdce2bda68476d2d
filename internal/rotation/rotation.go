// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package rotation enforces the per-product post cap by evicting the oldest
// posts of any product that exceeds it.
package rotation

import (
	"log/slog"
	"sort"

	"autopress/internal/models"
)

// DefaultMaxPerProduct is the number of posts kept per product when the
// configuration does not say otherwise.
const DefaultMaxPerProduct = 2

// EvictFunc removes a published file from the publish target and reports
// whether it is gone. Only after it returns true is the record dropped.
type EvictFunc func(filename string) bool

// Rotate returns history with the oldest surplus posts of each product
// removed. Records are grouped by ProductLink; records without a link are
// never rotated. Within a product, candidates are evicted oldest first and
// the first failed eviction stops that product, leaving the failed record
// and all later candidates in place. Other products are unaffected.
func Rotate(history []models.PostRecord, maxPerProduct int, evict EvictFunc) []models.PostRecord {
	if maxPerProduct < 0 {
		maxPerProduct = 0
	}

	// Group record indexes by product, keeping first-appearance order so the
	// eviction sequence is deterministic.
	var order []string
	groups := make(map[string][]int)
	for i, r := range history {
		if r.ProductLink == "" {
			continue
		}
		if _, seen := groups[r.ProductLink]; !seen {
			order = append(order, r.ProductLink)
		}
		groups[r.ProductLink] = append(groups[r.ProductLink], i)
	}

	removed := make(map[int]bool)
	for _, link := range order {
		idx := groups[link]
		if len(idx) <= maxPerProduct {
			continue
		}

		sort.SliceStable(idx, func(a, b int) bool {
			return history[idx[a]].Timestamp.Before(history[idx[b]].Timestamp)
		})
		surplus := len(idx) - maxPerProduct

		slog.Info("rotation triggered",
			"product_link", link,
			"posts", len(idx),
			"max", maxPerProduct,
			"evicting", surplus,
		)

		for _, i := range idx[:surplus] {
			rec := history[i]
			if !evict(rec.Filename) {
				slog.Error("eviction failed; keeping post in history and stopping rotation for product",
					"product_link", link,
					"filename", rec.Filename,
				)
				break
			}
			removed[i] = true
			slog.Info("post evicted", "product_link", link, "filename", rec.Filename)
		}
	}

	kept := make([]models.PostRecord, 0, len(history)-len(removed))
	for i, r := range history {
		if !removed[i] {
			kept = append(kept, r)
		}
	}
	return kept
}
