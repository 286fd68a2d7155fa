// Package locking serializes work on a named resource across goroutines
// (LocalLocker) or processes (RedisLocker).
package locking

import (
	"context"
	"errors"
)

// ErrLockNotHeld is returned when releasing a lock whose lease has expired
// and been taken over by another holder.
var ErrLockNotHeld = errors.New("lock not held")

// Unlock releases a lock obtained from Locker.Lock.
type Unlock func(ctx context.Context) error

// Locker acquires exclusive locks keyed by resource name. Lock blocks until
// the lock is obtained or ctx is done.
type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}

// ProjectKey is the lock key for single-project mutations.
func ProjectKey(projectID string) string { return "project:" + projectID }

// LineageKey is the lock key for lineage-wide mutations (reopen, delete).
func LineageKey(lineageID string) string { return "lineage:" + lineageID }

// With runs fn while holding key.
func With(ctx context.Context, locker Locker, key string, fn func(ctx context.Context) error) error {
	unlock, err := locker.Lock(ctx, key)
	if err != nil {
		return err
	}
	fnErr := fn(ctx)
	// Release even when ctx is already cancelled.
	unlockErr := unlock(context.WithoutCancel(ctx))
	if fnErr != nil {
		return fnErr
	}
	return unlockErr
}
