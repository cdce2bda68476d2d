// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package throttle decides whether a new post may be published now, based
// on the minimum delay since the last post and a rolling 24 hour cap.
package throttle

import (
	"fmt"
	"sort"
	"time"

	"autopress/internal/models"
)

// Window is the span covered by the rolling post cap.
const Window = 24 * time.Hour

// Decision is the outcome of a throttling check. A refusal is a deferral,
// not an error; NextAt is the earliest instant the same rule would allow a
// post, or zero when unknown.
type Decision struct {
	Allowed bool
	Reason  string
	NextAt  time.Time
}

// ShouldPost evaluates the throttling rules against a history snapshot.
// It has no side effects.
func ShouldPost(history []models.PostRecord, now time.Time, minDelay time.Duration, maxPer24h int) Decision {
	if len(history) == 0 {
		if maxPer24h <= 0 {
			return Decision{Reason: "posting disabled: max posts per 24h is zero"}
		}
		return Decision{Allowed: true}
	}

	last := history[0].Timestamp
	for _, r := range history[1:] {
		if r.Timestamp.After(last) {
			last = r.Timestamp
		}
	}
	if next := last.Add(minDelay); now.Before(next) {
		return Decision{
			Reason: fmt.Sprintf("min delay not elapsed: last post at %s", last.Format(time.RFC3339)),
			NextAt: next,
		}
	}

	cutoff := now.Add(-Window)
	var recent []time.Time
	for _, r := range history {
		if r.Timestamp.After(cutoff) {
			recent = append(recent, r.Timestamp)
		}
	}
	if len(recent) >= maxPer24h {
		d := Decision{Reason: fmt.Sprintf("max posts per 24h reached (%d/%d)", len(recent), maxPer24h)}
		if maxPer24h > 0 {
			sort.Slice(recent, func(i, j int) bool { return recent[i].Before(recent[j]) })
			d.NextAt = recent[len(recent)-maxPer24h].Add(Window)
		}
		return d
	}

	return Decision{Allowed: true}
}
