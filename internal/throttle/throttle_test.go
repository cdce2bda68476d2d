// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package throttle

import (
	"testing"
	"time"

	"autopress/internal/models"
)

func at(ts time.Time) models.PostRecord {
	return models.PostRecord{Timestamp: ts, Filename: ts.Format("150405") + ".html"}
}

func TestShouldPost_EmptyHistory(t *testing.T) {
	d := ShouldPost(nil, time.Now(), 4*time.Hour, 4)
	if !d.Allowed {
		t.Errorf("empty history: got refusal %q", d.Reason)
	}
}

func TestShouldPost_MinDelay(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	minDelay := 4 * time.Hour

	tests := []struct {
		name     string
		lastPost time.Time
		want     bool
	}{
		{name: "just posted", lastPost: now.Add(-time.Minute), want: false},
		{name: "one second short", lastPost: now.Add(-minDelay + time.Second), want: false},
		{name: "exactly at delay", lastPost: now.Add(-minDelay), want: true},
		{name: "well past delay", lastPost: now.Add(-10 * time.Hour), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ShouldPost([]models.PostRecord{at(tt.lastPost)}, now, minDelay, 10)
			if d.Allowed != tt.want {
				t.Errorf("Allowed = %v, want %v (reason %q)", d.Allowed, tt.want, d.Reason)
			}
			if !tt.want && !d.NextAt.Equal(tt.lastPost.Add(minDelay)) {
				t.Errorf("NextAt = %v, want %v", d.NextAt, tt.lastPost.Add(minDelay))
			}
		})
	}
}

func TestShouldPost_UsesNewestRecordRegardlessOfOrder(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	history := []models.PostRecord{
		at(now.Add(-30 * time.Minute)),
		at(now.Add(-20 * time.Hour)),
	}

	d := ShouldPost(history, now, time.Hour, 10)
	if d.Allowed {
		t.Error("expected refusal: newest post is 30 minutes old")
	}
}

func TestShouldPost_RollingCap(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	history := []models.PostRecord{
		at(now.Add(-30 * time.Hour)), // outside window
		at(now.Add(-23 * time.Hour)),
		at(now.Add(-12 * time.Hour)),
		at(now.Add(-6 * time.Hour)),
	}

	t.Run("under cap", func(t *testing.T) {
		d := ShouldPost(history, now, 0, 4)
		if !d.Allowed {
			t.Errorf("3 posts in window with cap 4: refused %q", d.Reason)
		}
	})

	t.Run("at cap", func(t *testing.T) {
		d := ShouldPost(history, now, 0, 3)
		if d.Allowed {
			t.Fatal("3 posts in window with cap 3: expected refusal")
		}
		want := now.Add(-23 * time.Hour).Add(Window)
		if !d.NextAt.Equal(want) {
			t.Errorf("NextAt = %v, want %v", d.NextAt, want)
		}
	})

	t.Run("cap applies even when min delay satisfied", func(t *testing.T) {
		d := ShouldPost(history, now, time.Minute, 2)
		if d.Allowed {
			t.Error("expected refusal from 24h cap")
		}
	})

	t.Run("record exactly 24h old is outside window", func(t *testing.T) {
		edge := []models.PostRecord{at(now.Add(-Window))}
		d := ShouldPost(edge, now, 0, 1)
		if !d.Allowed {
			t.Errorf("post exactly 24h old should not count: refused %q", d.Reason)
		}
	})
}

func TestShouldPost_ZeroCap(t *testing.T) {
	d := ShouldPost(nil, time.Now(), 0, 0)
	if d.Allowed {
		t.Error("cap of zero must refuse")
	}
}
