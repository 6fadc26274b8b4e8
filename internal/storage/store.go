// Package storage defines the versioned key-value repository the registry
// is kept in, and the errors shared by its backends.
package storage

import (
	"context"
	"errors"
	"regexp"
)

var (
	// ErrNotFound is returned when a key has never been written.
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict is returned by Put when the stored version differs
	// from the one the caller read.
	ErrVersionConflict = errors.New("version conflict: value changed since it was read")

	// ErrInvalidInput is returned when a key is empty or malformed.
	ErrInvalidInput = errors.New("invalid input")
)

// Entry is a stored value together with its version. Versions start at 1
// and grow by one on every successful Put.
type Entry struct {
	Value   []byte
	Version int64
}

// Store is a key-value repository with optimistic concurrency control.
type Store interface {
	// Get returns the current entry for key or ErrNotFound.
	Get(ctx context.Context, key string) (Entry, error)

	// Put stores value if the current version equals expected (0 means the
	// key must not exist yet) and returns the new version. Any other state
	// yields ErrVersionConflict.
	Put(ctx context.Context, key string, value []byte, expected int64) (int64, error)

	// Keys lists the stored keys.
	Keys(ctx context.Context) ([]string, error)

	Close() error
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,128}$`)

// ValidKey reports whether key is usable by every backend, including the
// file backend where it becomes part of a file name.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key) && key != "." && key != ".."
}
