// Package reflector runs reflection passes: it re-derives the hook table
// from host source (cold) or reads it back from the persisted cache (warm),
// and replays it into a runtime registrar.
package reflector

import (
	"context"
	"fmt"
	"os"

	"github.com/apex/log"

	"github.com/tender-barbarian/hooklens/internal/binder"
	"github.com/tender-barbarian/hooklens/internal/finder"
	"github.com/tender-barbarian/hooklens/internal/hooktab"
	"github.com/tender-barbarian/hooklens/internal/indexer"
	"github.com/tender-barbarian/hooklens/internal/signatures"
	"github.com/tender-barbarian/hooklens/internal/symtab"
)

// SourceLoader obtains the host source text.
type SourceLoader interface {
	LoadSource(ctx context.Context) ([]byte, error)
}

// SourceFunc adapts a function to SourceLoader.
type SourceFunc func(ctx context.Context) ([]byte, error)

// LoadSource calls f.
func (f SourceFunc) LoadSource(ctx context.Context) ([]byte, error) {
	return f(ctx)
}

// FileSource loads the host source from a file on disk.
func FileSource(path string) SourceLoader {
	return SourceFunc(func(context.Context) ([]byte, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading source: %w", err)
		}
		return data, nil
	})
}

// Pass holds the state of one reflection pass. Catalog is nil on a warm pass.
type Pass struct {
	Catalog *symtab.Catalog
	Hooks   *hooktab.Table
	Warm    bool

	log log.Interface
}

// ClassHook returns the obfuscated class name bound to logical.
func (p *Pass) ClassHook(logical string) (string, bool) {
	return p.Hooks.ClassHook(logical)
}

// EnumHook returns the obfuscated enum name bound to logical.
func (p *Pass) EnumHook(logical string) (string, bool) {
	return p.Hooks.EnumHook(logical)
}

// Bind replays the class hooks, then the enum hooks, into reg.
func (p *Pass) Bind(reg binder.Registrar) (classes, enums binder.Report) {
	classes = binder.BindClasses(p.Hooks.Classes, reg, p.log)
	enums = binder.BindEnums(p.Hooks.Enums, reg, p.log)
	return classes, enums
}

// Reflector runs reflection passes against one registry and one cache.
type Reflector struct {
	idx      *indexer.Indexer
	registry *signatures.Registry
	res      hooktab.Resources
	strict   bool
	log      log.Interface
}

// Option configures a Reflector.
type Option func(*Reflector)

// WithRegistry replaces the built-in signature registry.
func WithRegistry(reg *signatures.Registry) Option {
	return func(r *Reflector) { r.registry = reg }
}

// WithStrict treats signatures with more than one candidate as misses.
func WithStrict(strict bool) Option {
	return func(r *Reflector) { r.strict = strict }
}

// WithLogger sets the logger diagnostics are reported to.
func WithLogger(l log.Interface) Option {
	return func(r *Reflector) { r.log = l }
}

// WithIndexer sets the indexer used on cold passes.
func WithIndexer(idx *indexer.Indexer) Option {
	return func(r *Reflector) { r.idx = idx }
}

// New creates a Reflector caching hooks in res. A nil res disables the
// cache: every pass is cold and nothing is persisted.
func New(res hooktab.Resources, opts ...Option) *Reflector {
	r := &Reflector{
		res:      res,
		registry: signatures.Default(),
		log:      log.Log,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.idx == nil {
		r.idx = indexer.New()
	}
	return r
}

// Registry returns the signature registry passes are resolved against.
func (r *Reflector) Registry() *signatures.Registry {
	return r.registry
}

// LoadFromSource runs a cold pass over src: parse, extract, match, persist.
// A parse failure fails the pass. A persistence failure is only logged,
// since the cache can always be rebuilt from source.
func (r *Reflector) LoadFromSource(ctx context.Context, src []byte) (*Pass, error) {
	cat, err := r.idx.Index(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("indexing host source: %w", err)
	}
	r.log.WithFields(log.Fields{"classes": len(cat.Classes), "enums": len(cat.Enums)}).Debug("indexed host source")

	f := finder.New(cat, finder.WithStrict(r.strict), finder.WithLogger(r.log))
	p := &Pass{Catalog: cat, Hooks: f.Resolve(r.registry), log: r.log}

	if r.res != nil {
		if err := hooktab.Save(ctx, r.res, p.Hooks); err != nil {
			r.log.WithError(err).Error("unable to save hooks")
		}
	}
	return p, nil
}

// LoadFromStore runs a warm pass from the persisted cache.
func (r *Reflector) LoadFromStore(ctx context.Context) *Pass {
	t := hooktab.NewTable()
	if r.res != nil {
		t = hooktab.Load(ctx, r.res, r.log)
	}
	return &Pass{Hooks: t, Warm: true, log: r.log}
}

// HasSavedHooks reports whether a warm pass would find any hooks.
func (r *Reflector) HasSavedHooks(ctx context.Context) bool {
	return r.res != nil && hooktab.HasSaved(ctx, r.res, r.log)
}

// Load runs a warm pass when hooks are cached and force is false, and a
// cold pass over the loader's source otherwise. The loader is only called
// on the cold path.
func (r *Reflector) Load(ctx context.Context, src SourceLoader, force bool) (*Pass, error) {
	if !force && r.HasSavedHooks(ctx) {
		p := r.LoadFromStore(ctx)
		r.log.WithField("hooks", p.Hooks.Len()).Info("loaded hooks from cache")
		return p, nil
	}
	data, err := src.LoadSource(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading host source: %w", err)
	}
	return r.LoadFromSource(ctx, data)
}

// Missing returns the registry names that p has no hook for, classes then
// enums.
func (r *Reflector) Missing(p *Pass) []string {
	var out []string
	for _, c := range r.registry.Classes {
		if _, ok := p.Hooks.ClassHook(c.Name); !ok {
			out = append(out, c.Name)
		}
	}
	for _, e := range r.registry.Enums {
		if _, ok := p.Hooks.EnumHook(e.Name); !ok {
			out = append(out, e.Name)
		}
	}
	return out
}
