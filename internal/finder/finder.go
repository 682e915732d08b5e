package finder

import (
	"bytes"

	"github.com/apex/log"

	"github.com/tender-barbarian/hooklens/internal/hooktab"
	"github.com/tender-barbarian/hooklens/internal/signatures"
	"github.com/tender-barbarian/hooklens/internal/symtab"
)

// MatchesClass reports whether c satisfies every constraint of sig. src is
// the text the catalog was extracted from.
func MatchesClass(src []byte, c *symtab.ClassInfo, sig symtab.ClassSignature) bool {
	if len(sig.Fields) > 0 && !containsAll(c.FieldNames(), sig.Fields) {
		return false
	}
	if len(sig.Methods) > 0 && !containsAll(c.MethodNames(), sig.Methods) {
		return false
	}
	if sig.Contains != "" {
		if !bytes.Contains(symtab.Span(src, c.Start, c.End), []byte(sig.Contains)) {
			return false
		}
	}
	return true
}

// MatchesEnum reports whether e holds every included member and none of the
// excluded ones.
func MatchesEnum(e *symtab.EnumInfo, sig symtab.EnumSignature) bool {
	members := make(map[string]struct{}, len(e.Members))
	for _, m := range e.Members {
		members[m] = struct{}{}
	}
	if !containsAll(members, sig.Includes) {
		return false
	}
	for _, x := range sig.Excludes {
		if _, ok := members[x]; ok {
			return false
		}
	}
	return true
}

func containsAll(set map[string]struct{}, names []string) bool {
	for _, n := range names {
		if _, ok := set[n]; !ok {
			return false
		}
	}
	return true
}

// Finder matches signatures against the catalog of one source snapshot.
type Finder struct {
	cat    *symtab.Catalog
	strict bool
	log    log.Interface
}

// Option configures a Finder.
type Option func(*Finder)

// WithStrict makes Resolve treat a signature satisfied by more than one
// candidate as a miss instead of taking the first candidate.
func WithStrict(strict bool) Option {
	return func(f *Finder) { f.strict = strict }
}

// WithLogger sets the logger diagnostics are reported to.
func WithLogger(l log.Interface) Option {
	return func(f *Finder) { f.log = l }
}

// New creates a Finder over cat.
func New(cat *symtab.Catalog, opts ...Option) *Finder {
	f := &Finder{cat: cat, log: log.Log}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FindClass returns the first class, in source order, that satisfies sig.
func (f *Finder) FindClass(sig symtab.ClassSignature) (symtab.ClassInfo, bool) {
	for i := range f.cat.Classes {
		if MatchesClass(f.cat.Source, &f.cat.Classes[i], sig) {
			return f.cat.Classes[i], true
		}
	}
	return symtab.ClassInfo{}, false
}

// FindClasses returns every class that satisfies sig, in source order.
func (f *Finder) FindClasses(sig symtab.ClassSignature) []symtab.ClassInfo {
	var out []symtab.ClassInfo
	for i := range f.cat.Classes {
		if MatchesClass(f.cat.Source, &f.cat.Classes[i], sig) {
			out = append(out, f.cat.Classes[i])
		}
	}
	return out
}

// FindEnum returns the first enum, in source order, that satisfies sig.
func (f *Finder) FindEnum(sig symtab.EnumSignature) (symtab.EnumInfo, bool) {
	for i := range f.cat.Enums {
		if MatchesEnum(&f.cat.Enums[i], sig) {
			return f.cat.Enums[i], true
		}
	}
	return symtab.EnumInfo{}, false
}

// FindEnums returns every enum that satisfies sig, in source order.
func (f *Finder) FindEnums(sig symtab.EnumSignature) []symtab.EnumInfo {
	var out []symtab.EnumInfo
	for i := range f.cat.Enums {
		if MatchesEnum(&f.cat.Enums[i], sig) {
			out = append(out, f.cat.Enums[i])
		}
	}
	return out
}

// Resolve matches every registry entry, classes first then enums, in
// registry order, and returns the resulting hook table. A miss is logged
// and skipped; it never stops the remaining entries from resolving.
func (f *Finder) Resolve(reg *signatures.Registry) *hooktab.Table {
	t := hooktab.NewTable()
	for _, entry := range reg.Classes {
		names := make([]string, 0, 1)
		for _, c := range f.FindClasses(entry.ClassSignature) {
			names = append(names, c.Name)
		}
		if name, ok := f.pick(entry.Name, names); ok {
			t.Classes.Set(entry.Name, name)
		}
	}
	for _, entry := range reg.Enums {
		names := make([]string, 0, 1)
		for _, e := range f.FindEnums(entry.EnumSignature) {
			names = append(names, e.Name)
		}
		if name, ok := f.pick(entry.Name, names); ok {
			t.Enums.Set(entry.Name, name)
		}
	}
	return t
}

// pick chooses the candidate bound to logical and reports the outcome.
func (f *Finder) pick(logical string, candidates []string) (string, bool) {
	ctx := f.log.WithField("logical", logical)
	switch {
	case len(candidates) == 0:
		ctx.Error("unable to find signature match")
		return "", false
	case len(candidates) > 1 && f.strict:
		ctx.WithField("candidates", candidates).Error("signature matches more than one candidate")
		return "", false
	case len(candidates) > 1:
		ctx.WithField("candidates", candidates).Warn("signature matches more than one candidate, using the first")
	}
	ctx.WithField("obfuscated", candidates[0]).Info("matched signature")
	return candidates[0], true
}
