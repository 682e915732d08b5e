package binder

import (
	"fmt"
	"sync"
)

// Manifest is a Registrar over a fixed set of names known to exist in the
// runtime, typically the identifiers declared in the current host source.
// It records what was bound the way the plugin host keeps its hook and
// lookup tables, which makes it suitable for checking a cached hook table
// against a new build without running the host.
type Manifest struct {
	mu      sync.Mutex
	defined map[string]struct{}
	hooks   map[string]string
	lookups map[string]string
}

// NewManifest returns a Manifest that resolves exactly the given names.
func NewManifest(names ...string) *Manifest {
	m := &Manifest{
		defined: make(map[string]struct{}, len(names)),
		hooks:   make(map[string]string),
		lookups: make(map[string]string),
	}
	for _, n := range names {
		m.defined[n] = struct{}{}
	}
	return m
}

func (m *Manifest) resolve(obfuscated, logical string) error {
	if _, ok := m.defined[obfuscated]; !ok || obfuscated == "" {
		return fmt.Errorf("%q (%s): %w", obfuscated, logical, ErrNotDefined)
	}
	return nil
}

// RegisterClass records obfuscated as the class behind logical.
func (m *Manifest) RegisterClass(obfuscated, logical string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.resolve(obfuscated, logical); err != nil {
		return err
	}
	m.hooks[logical] = obfuscated
	return nil
}

// RegisterEnum records obfuscated as the enum behind logical.
func (m *Manifest) RegisterEnum(obfuscated, logical string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.resolve(obfuscated, logical); err != nil {
		return err
	}
	m.lookups[logical] = obfuscated
	return nil
}

// Hook returns the class bound to logical.
func (m *Manifest) Hook(logical string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.hooks[logical]
	return v, ok
}

// Lookup returns the enum bound to logical.
func (m *Manifest) Lookup(logical string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.lookups[logical]
	return v, ok
}
