// Package lock provides MySQL advisory locking for migration runs.
package lock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrLockTimeout is returned when lock acquisition times out because another
// instance is holding the lock.
var ErrLockTimeout = errors.New("lock acquisition timed out")

// Timeout values for lock acquisition, in seconds.
const (
	// TimeoutImmediate returns immediately if the lock cannot be acquired.
	TimeoutImmediate = 0

	// TimeoutShort fails fast when a duplicate run is detected.
	TimeoutShort = 1

	// TimeoutMedium provides a reasonable wait for transient conflicts.
	TimeoutMedium = 10

	// TimeoutInfinite waits until the lock is acquired. MySQL treats negative
	// timeouts as infinite.
	TimeoutInfinite = -1
)

// AdvisoryLock is a named MySQL lock taken with GET_LOCK(). The server
// releases it when the connection closes, so a crashed run never leaves the
// lock behind.
type AdvisoryLock struct {
	db       *sql.DB
	lockName string
	held     bool
}

// NewAdvisoryLock creates a lock handle with the given name. Nothing is
// acquired until AcquireLock is called.
func NewAdvisoryLock(db *sql.DB, lockName string) *AdvisoryLock {
	return &AdvisoryLock{
		db:       db,
		lockName: lockName,
	}
}

// AcquireLock attempts to acquire the lock, waiting up to timeoutSeconds.
// It returns true when the lock was obtained and false when the timeout
// passed with another instance still holding it.
//
// GET_LOCK() returns 1 on success, 0 on timeout and NULL on server error.
func (a *AdvisoryLock) AcquireLock(ctx context.Context, timeoutSeconds int) (bool, error) {
	if a.held {
		return true, nil
	}

	var result sql.NullInt64
	err := a.db.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", a.lockName, timeoutSeconds).Scan(&result)
	if err != nil {
		return false, fmt.Errorf("failed to execute GET_LOCK: %w", err)
	}

	if !result.Valid {
		return false, fmt.Errorf("GET_LOCK returned NULL for lock %q (possible database error)", a.lockName)
	}

	switch result.Int64 {
	case 1:
		a.held = true
		return true, nil
	case 0:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected GET_LOCK return value: %d", result.Int64)
	}
}

// ReleaseLock releases the lock. It returns true when the lock was released
// and false when this instance was not holding it.
//
// RELEASE_LOCK() returns 1 on success, 0 when the lock belongs to another
// connection and NULL when the named lock does not exist.
func (a *AdvisoryLock) ReleaseLock(ctx context.Context) (bool, error) {
	if !a.held {
		return false, nil
	}

	var result sql.NullInt64
	err := a.db.QueryRowContext(ctx, "SELECT RELEASE_LOCK(?)", a.lockName).Scan(&result)
	if err != nil {
		return false, fmt.Errorf("failed to execute RELEASE_LOCK: %w", err)
	}

	if !result.Valid {
		a.held = false
		return false, fmt.Errorf("RELEASE_LOCK returned NULL for lock %q (lock did not exist)", a.lockName)
	}

	switch result.Int64 {
	case 1:
		a.held = false
		return true, nil
	case 0:
		// Held by another connection; our state was stale
		a.held = false
		return false, nil
	default:
		return false, fmt.Errorf("unexpected RELEASE_LOCK return value: %d", result.Int64)
	}
}

// IsHeld returns true if this instance currently holds the lock.
func (a *AdvisoryLock) IsHeld() bool {
	return a.held
}

// LockName returns the name of the advisory lock.
func (a *AdvisoryLock) LockName() string {
	return a.lockName
}

// TryAcquire attempts to acquire the lock without waiting.
func (a *AdvisoryLock) TryAcquire(ctx context.Context) (bool, error) {
	return a.AcquireLock(ctx, TimeoutImmediate)
}

// AcquireOrFail acquires the lock with a short timeout and returns
// ErrLockTimeout when another instance holds it. Since the loader appends
// without dedupe, two concurrent runs of the same migration would double
// every row; callers use this to refuse the second run.
func (a *AdvisoryLock) AcquireOrFail(ctx context.Context) error {
	acquired, err := a.AcquireLock(ctx, TimeoutShort)
	if err != nil {
		return err
	}
	if !acquired {
		return fmt.Errorf("%w: lock %q is held by another instance", ErrLockTimeout, a.lockName)
	}
	return nil
}

// MigrationLockName builds the lock name for a source/target table pair.
// Names follow "gomigrator:migrate:{source}:{target}" with characters outside
// [a-zA-Z0-9_-] replaced, keeping the name valid for MySQL's 64-character
// lock namespace.
func MigrationLockName(sourceTable, targetTable string) string {
	sanitize := func(name string) string {
		return strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
				return r
			}
			return '_'
		}, name)
	}

	return fmt.Sprintf("gomigrator:migrate:%s:%s", sanitize(sourceTable), sanitize(targetTable))
}

// NewMigrationLock creates the advisory lock guarding one migration run.
// The lock is taken on the target server, where concurrent duplicate appends
// would do the damage.
func NewMigrationLock(db *sql.DB, sourceTable, targetTable string) *AdvisoryLock {
	return NewAdvisoryLock(db, MigrationLockName(sourceTable, targetTable))
}
