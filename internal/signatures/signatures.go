// Package signatures holds the registry of structural fingerprints used to
// re-identify host classes and enums across builds.
package signatures

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/tender-barbarian/hooklens/internal/symtab"
)

// ErrInvalid is returned when a registry fails validation.
var ErrInvalid = errors.New("invalid signature registry")

//go:embed registry.yaml
var defaultRegistry []byte

// Registry is two flat, ordered tables of signatures. Order matters: it is
// the order in which entries are resolved and inserted into the hook table.
type Registry struct {
	Classes []symtab.NamedClassSignature `json:"classes" yaml:"classes"`
	Enums   []symtab.NamedEnumSignature  `json:"enums" yaml:"enums"`
}

var loadDefault = sync.OnceValue(func() *Registry {
	reg, err := Parse(defaultRegistry)
	if err != nil {
		panic(fmt.Sprintf("embedded registry: %v", err))
	}
	return reg
})

// Default returns the built-in registry. The returned value is shared and
// must not be modified.
func Default() *Registry {
	return loadDefault()
}

// Parse decodes and validates a YAML registry.
func Parse(data []byte) (*Registry, error) {
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decoding registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Load reads a YAML registry from path.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading registry: %w", err)
	}
	return Parse(data)
}

// Validate rejects unnamed or duplicate entries, class signatures without
// any constraint (they would match every class) and enum signatures
// without required members.
func (r *Registry) Validate() error {
	var errs []error
	seen := make(map[string]struct{}, len(r.Classes))
	for i, c := range r.Classes {
		switch {
		case c.Name == "":
			errs = append(errs, fmt.Errorf("class entry %d has no name", i))
		case c.IsEmpty():
			errs = append(errs, fmt.Errorf("class %q has an empty signature", c.Name))
		}
		if _, dup := seen[c.Name]; dup && c.Name != "" {
			errs = append(errs, fmt.Errorf("class %q is defined twice", c.Name))
		}
		seen[c.Name] = struct{}{}
	}

	seen = make(map[string]struct{}, len(r.Enums))
	for i, e := range r.Enums {
		switch {
		case e.Name == "":
			errs = append(errs, fmt.Errorf("enum entry %d has no name", i))
		case len(e.Includes) == 0:
			errs = append(errs, fmt.Errorf("enum %q has no required members", e.Name))
		}
		if _, dup := seen[e.Name]; dup && e.Name != "" {
			errs = append(errs, fmt.Errorf("enum %q is defined twice", e.Name))
		}
		seen[e.Name] = struct{}{}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Class returns the class signature registered under name.
func (r *Registry) Class(name string) (symtab.ClassSignature, bool) {
	for _, c := range r.Classes {
		if c.Name == name {
			return c.ClassSignature, true
		}
	}
	return symtab.ClassSignature{}, false
}

// Enum returns the enum signature registered under name.
func (r *Registry) Enum(name string) (symtab.EnumSignature, bool) {
	for _, e := range r.Enums {
		if e.Name == name {
			return e.EnumSignature, true
		}
	}
	return symtab.EnumSignature{}, false
}

// Names returns every logical name of the registry, classes then enums.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.Classes)+len(r.Enums))
	for _, c := range r.Classes {
		names = append(names, c.Name)
	}
	for _, e := range r.Enums {
		names = append(names, e.Name)
	}
	return names
}
