// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CycleLockKey is the key guarding the publish cycle.
const CycleLockKey = "autopress:cycle"

// ErrLocked is returned by Acquire when another holder owns the lock.
var ErrLocked = errors.New("lock is held by another process")

// releaseScript deletes the key only if it still holds our token, so an
// expired lease never removes a successor's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunLock is a single-key mutual exclusion lock with an expiry.
type RunLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRunLock creates a lock on key. A ttl of zero or less defaults to 30
// minutes.
func NewRunLock(client *redis.Client, key string, ttl time.Duration) *RunLock {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RunLock{client: client, key: key, ttl: ttl}
}

// Acquire takes the lock or returns ErrLocked. The returned function
// releases it; releasing after expiry is a no-op.
func (l *RunLock) Acquire(ctx context.Context) (func(context.Context) error, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("lock acquire %s: %w", l.key, err)
	}
	if !ok {
		return nil, ErrLocked
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil {
			return fmt.Errorf("lock release %s: %w", l.key, err)
		}
		return nil
	}
	return release, nil
}
