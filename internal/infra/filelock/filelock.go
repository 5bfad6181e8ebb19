// Package filelock guards store files with an advisory lock and replaces them atomically.
package filelock

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// Mode selects a shared or exclusive lock.
type Mode int

// Lock modes.
const (
	Shared    Mode = syscall.LOCK_SH
	Exclusive Mode = syscall.LOCK_EX
)

// LockPath returns the lock file used for path.
func LockPath(path string) string {
	return path + ".lock"
}

// With runs fn while holding a lock of the given mode on path's lock file.
func With(path string, mode Mode, fn func() error) error {
	lock, err := acquire(LockPath(path), mode)
	if err != nil {
		return err
	}
	defer release(lock)
	return fn()
}

// WriteAtomic writes content to a temp file next to path and renames it over path.
func WriteAtomic(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) // Clean up
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func acquire(lockPath string, mode Mode) (*os.File, error) {
	// Ensure lock file directory exists
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(lock.Fd()), int(mode)); err != nil {
		_ = lock.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	return lock, nil
}

func release(lock *os.File) {
	_ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)
	_ = lock.Close()
}
