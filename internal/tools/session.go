package tools

import (
	"context"
	"fmt"
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/twmb/murmur3"

	"github.com/tender-barbarian/hooklens/internal/hooktab"
	"github.com/tender-barbarian/hooklens/internal/indexer"
	"github.com/tender-barbarian/hooklens/internal/reflector"
	"github.com/tender-barbarian/hooklens/internal/symtab"
)

// Session is the state shared by the MCP tools: the reflector, the last
// reflection pass and a cache of indexed sources keyed by content hash.
type Session struct {
	mu       sync.Mutex
	refl     *reflector.Reflector
	idx      *indexer.Indexer
	catalogs *lru.Cache[uint64, *symtab.Catalog]
	pass     *reflector.Pass
}

// NewSession creates a Session that keeps up to cacheSize indexed sources.
func NewSession(refl *reflector.Reflector, cacheSize int) (*Session, error) {
	catalogs, err := lru.New[uint64, *symtab.Catalog](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating catalog cache: %w", err)
	}
	return &Session{refl: refl, idx: indexer.New(), catalogs: catalogs}, nil
}

// catalog returns the catalog of the source file at path, indexing it only
// when its content has not been seen before.
func (s *Session) catalog(ctx context.Context, path string) (*symtab.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	key := murmur3.Sum64(data)
	if cat, ok := s.catalogs.Get(key); ok {
		return cat, nil
	}
	cat, err := s.idx.Index(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("indexing %s: %w", path, err)
	}
	s.catalogs.Add(key, cat)
	return cat, nil
}

// reflect runs a reflection pass over the source at path and makes it the
// current pass.
func (s *Session) reflect(ctx context.Context, path string, force bool) (*reflector.Pass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.refl.Load(ctx, reflector.FileSource(path), force)
	if err != nil {
		return nil, err
	}
	s.pass = p
	return p, nil
}

// hooks returns the table of the current pass, falling back to the cache.
func (s *Session) hooks(ctx context.Context) *hooktab.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pass == nil {
		s.pass = s.refl.LoadFromStore(ctx)
	}
	return s.pass.Hooks
}
