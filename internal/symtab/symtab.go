package symtab

// MethodKind classifies a class method definition.
type MethodKind string

const (
	MethodKindConstructor MethodKind = "constructor"
	MethodKindMethod      MethodKind = "method"
	MethodKindGetter      MethodKind = "get"
	MethodKindSetter      MethodKind = "set"
)

// MethodInfo describes a single method of a class. Matching only looks at Name.
type MethodInfo struct {
	Name string     `json:"name"`
	Kind MethodKind `json:"kind"`
}

// ClassInfo describes a class declaration found in the host source.
// Start and End are byte offsets of the declaration, End exclusive.
type ClassInfo struct {
	Name            string       `json:"name"` // empty for anonymous classes
	StaticFields    []string     `json:"static_fields,omitempty"`
	InstanceFields  []string     `json:"instance_fields,omitempty"`
	StaticMethods   []MethodInfo `json:"static_methods,omitempty"`
	InstanceMethods []MethodInfo `json:"instance_methods,omitempty"`
	Start           int          `json:"start"`
	End             int          `json:"end"`
}

// FieldNames returns the union of static and instance field names.
func (c *ClassInfo) FieldNames() map[string]struct{} {
	set := make(map[string]struct{}, len(c.StaticFields)+len(c.InstanceFields))
	for _, f := range c.StaticFields {
		set[f] = struct{}{}
	}
	for _, f := range c.InstanceFields {
		set[f] = struct{}{}
	}
	return set
}

// MethodNames returns the union of static and instance method names.
func (c *ClassInfo) MethodNames() map[string]struct{} {
	set := make(map[string]struct{}, len(c.StaticMethods)+len(c.InstanceMethods))
	for _, m := range c.StaticMethods {
		set[m.Name] = struct{}{}
	}
	for _, m := range c.InstanceMethods {
		set[m.Name] = struct{}{}
	}
	return set
}

// EnumInfo describes a lazily initialised enum object, i.e. the minified
// shape `!function(e){...}(X||(X={}))`. Members holds each string literal
// of the initialiser body once, in order of first appearance.
type EnumInfo struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
	Start   int      `json:"start"`
	End     int      `json:"end"`
}

// Catalog is everything extracted from one source snapshot.
type Catalog struct {
	Source  []byte      `json:"-"`
	Classes []ClassInfo `json:"classes"`
	Enums   []EnumInfo  `json:"enums"`
}

// Span returns the catalog source text of [start, end).
func (c *Catalog) Span(start, end int) []byte {
	return Span(c.Source, start, end)
}

// Span returns src[start:end], clamped to the bounds of src.
func Span(src []byte, start, end int) []byte {
	start = max(start, 0)
	end = min(end, len(src))
	if start >= end {
		return nil
	}
	return src[start:end]
}

// Names returns the set of non-empty class and enum identifiers in the catalog.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Classes)+len(c.Enums))
	for _, cl := range c.Classes {
		if cl.Name != "" {
			names = append(names, cl.Name)
		}
	}
	for _, e := range c.Enums {
		names = append(names, e.Name)
	}
	return names
}

// ClassSignature is the structural fingerprint of a class. Unset parts are
// vacuously satisfied, so the zero value matches every class.
type ClassSignature struct {
	Fields   []string `json:"fields,omitempty" yaml:"fields,omitempty"`
	Methods  []string `json:"methods,omitempty" yaml:"methods,omitempty"`
	Contains string   `json:"contains,omitempty" yaml:"contains,omitempty"`
}

// IsEmpty reports whether the signature has no constraints.
func (s ClassSignature) IsEmpty() bool {
	return len(s.Fields) == 0 && len(s.Methods) == 0 && s.Contains == ""
}

// EnumSignature is the fingerprint of an enum: members that must all be
// present and, optionally, members that must all be absent.
type EnumSignature struct {
	Includes []string `json:"includes" yaml:"includes"`
	Excludes []string `json:"excludes,omitempty" yaml:"excludes,omitempty"`
}

// NamedClassSignature binds a logical name to a class signature.
type NamedClassSignature struct {
	Name           string `json:"name" yaml:"name"`
	ClassSignature `yaml:",inline"`
}

// NamedEnumSignature binds a logical name to an enum signature.
type NamedEnumSignature struct {
	Name          string `json:"name" yaml:"name"`
	EnumSignature `yaml:",inline"`
}
