package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Drive lock operations

// AcquireDriveLock records pid as running an operation on drive. It
// reports false when another live process already holds the drive. A
// row left behind by a process that no longer exists is taken over.
func (s *Store) AcquireDriveLock(ctx context.Context, drive string, pid int32) (bool, error) {
	ok, err := s.insertDriveLock(ctx, drive, pid)
	if err != nil || ok {
		return ok, err
	}

	var holder int32
	err = s.db.QueryRowContext(ctx, `SELECT pid FROM drive_locks WHERE drive = ?`, drive).Scan(&holder)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Released in between.
	case err != nil:
		return false, wrap("failed to read drive lock", err)
	case s.pidAlive(holder):
		return false, nil
	default:
		// The pid condition keeps a concurrent taker's fresh row intact.
		if _, err := s.db.ExecContext(ctx, `DELETE FROM drive_locks WHERE drive = ? AND pid = ?`, drive, holder); err != nil {
			return false, wrap("failed to clear stale drive lock", err)
		}
	}
	return s.insertDriveLock(ctx, drive, pid)
}

func (s *Store) insertDriveLock(ctx context.Context, drive string, pid int32) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO drive_locks (drive, pid, acquired_at) VALUES (?, ?, ?) ON CONFLICT(drive) DO NOTHING`,
		drive, pid, time.Now().UTC().Format(tsLayout),
	)
	if err != nil {
		return false, wrap("failed to insert drive lock", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ReleaseDriveLock drops drive's lock if pid holds it.
func (s *Store) ReleaseDriveLock(ctx context.Context, drive string, pid int32) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM drive_locks WHERE drive = ? AND pid = ?`, drive, pid)
	return wrap("failed to release drive lock", err)
}

// DriveLocker holds drive locks in the store on behalf of one process.
type DriveLocker struct {
	store *Store
	pid   int32
}

// DriveLocker returns a locker for the calling process.
func (s *Store) DriveLocker() *DriveLocker {
	return &DriveLocker{store: s, pid: int32(os.Getpid())}
}

func (l *DriveLocker) TryAcquire(ctx context.Context, drive string) (bool, error) {
	return l.store.AcquireDriveLock(ctx, drive, l.pid)
}

func (l *DriveLocker) Release(ctx context.Context, drive string) error {
	return l.store.ReleaseDriveLock(ctx, drive, l.pid)
}

func processAlive(pid int32) bool {
	ok, err := process.PidExists(pid)
	if err != nil {
		// Unknown is treated as alive so a lock is never stolen by mistake.
		return true
	}
	return ok
}
