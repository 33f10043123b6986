package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLockHeld means another run currently owns the snapshot database.
var ErrLockHeld = fmt.Errorf("run lock already held")

// RunLock serializes runs against one snapshot database. Two concurrent runs
// could both observe a href missing from the closed snapshot and each emit a
// closure for it, so acquiring the lock is a precondition for any write.
type RunLock struct {
	rdb *redis.Client
	key string
}

// NewRunLock builds a lock scoped to the given database name.
func NewRunLock(rdb *redis.Client, dbName string) *RunLock {
	return &RunLock{rdb: rdb, key: "hh-parser:run-lock:" + dbName}
}

// Acquire takes the lock for at most ttl. Returns ErrLockHeld when another
// run owns it; the TTL bounds how long a crashed run can keep it.
func (l *RunLock) Acquire(ctx context.Context, ttl time.Duration) error {
	ok, err := l.rdb.SetNX(ctx, l.key, time.Now().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return ErrLockHeld
	}
	return nil
}

// Release drops the lock. Safe to call when the TTL already expired.
func (l *RunLock) Release(ctx context.Context) error {
	if err := l.rdb.Del(ctx, l.key).Err(); err != nil {
		return fmt.Errorf("release run lock: %w", err)
	}
	return nil
}
