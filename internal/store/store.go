// Package store provides the persisted key-value resource the hook table is
// cached in.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned by GetItem for a key that was never written.
var ErrNotFound = errors.New("not found")

// Store is a process-wide key-value resource.
type Store interface {
	GetItem(ctx context.Context, key string) ([]byte, error)
	SetItem(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// Supported drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Open opens the store for driver at path. An empty path selects DefaultPath.
func Open(driver, path string) (Store, error) {
	if path == "" {
		p, err := DefaultPath(driver)
		if err != nil {
			return nil, err
		}
		path = p
	}
	switch driver {
	case DriverFile, "":
		return NewFile(path), nil
	case DriverSQLite:
		return NewSQLite(path, false)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// DefaultPath returns the default location of the store for driver, under
// the user's config directory.
func DefaultPath(driver string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	name := "resources.json"
	if driver == DriverSQLite {
		name = "resources.db"
	}
	return filepath.Join(dir, "hooklens", name), nil
}
