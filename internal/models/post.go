// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// PostRecord is one published article as tracked by the post history.
// ProductLink is the join key back to the product portfolio; it is empty
// for legacy records that only carried a timestamp.
type PostRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	ProductLink string    `json:"product_link"`
}

// HasFile reports whether the record points at a file on the publish target.
func (r PostRecord) HasFile() bool {
	return r.Filename != ""
}

// Product is a single entry of the affiliate product portfolio.
type Product struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Link        string `yaml:"link" json:"link"`
}
