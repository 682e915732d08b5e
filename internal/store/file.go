package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// File is a Store backed by a single JSON document mapping keys to raw
// JSON values.
type File struct {
	mu   sync.RWMutex
	path string
}

// NewFile returns a File store at path. The file is created on first write.
func NewFile(path string) *File {
	return &File{path: path}
}

func (fs *File) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading resources: %w", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing resources: %w", err)
	}
	if m == nil {
		m = map[string]json.RawMessage{}
	}
	return m, nil
}

func (fs *File) save(m map[string]json.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(fs.path), 0o750); err != nil {
		return fmt.Errorf("creating resources dir: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding resources: %w", err)
	}
	if err := os.WriteFile(fs.path, data, 0o600); err != nil {
		return fmt.Errorf("writing resources: %w", err)
	}
	return nil
}

// GetItem returns the raw JSON value stored under key.
func (fs *File) GetItem(_ context.Context, key string) ([]byte, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	m, err := fs.load()
	if err != nil {
		return nil, err
	}
	v, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("resource %q: %w", key, ErrNotFound)
	}
	return v, nil
}

// SetItem stores value, which must be valid JSON, under key.
func (fs *File) SetItem(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("resource %q: value is not valid JSON", key)
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	m, err := fs.load()
	if err != nil {
		return err
	}
	m[key] = json.RawMessage(slices.Clone(value))
	return fs.save(m)
}

// Delete removes key.
func (fs *File) Delete(_ context.Context, key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	m, err := fs.load()
	if err != nil {
		return err
	}
	if _, ok := m[key]; !ok {
		return fmt.Errorf("resource %q: %w", key, ErrNotFound)
	}
	delete(m, key)
	return fs.save(m)
}

// Keys returns the stored keys in sorted order.
func (fs *File) Keys(_ context.Context) ([]string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	m, err := fs.load()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// Close is a no-op; every operation reads and writes the file directly.
func (fs *File) Close() error {
	return nil
}
