package hooktab

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Entry is one serialized hook: [logicalName, obfuscatedName].
type Entry [2]string

// Logical returns the stable name of the hook.
func (e Entry) Logical() string { return e[0] }

// Obfuscated returns the as-built host identifier.
func (e Entry) Obfuscated() string { return e[1] }

// Map associates logical names with obfuscated names. Keys are unique and
// keep their first insertion position, so iteration and serialization are
// deterministic.
type Map struct {
	om *orderedmap.OrderedMap[string, string]
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{om: orderedmap.New[string, string]()}
}

// FromEntries builds a Map from serialized pairs. Later duplicates overwrite
// the value of earlier ones.
func FromEntries(entries []Entry) *Map {
	m := NewMap()
	for _, e := range entries {
		m.Set(e.Logical(), e.Obfuscated())
	}
	return m
}

// Set binds logical to obfuscated.
func (m *Map) Set(logical, obfuscated string) {
	m.om.Set(logical, obfuscated)
}

// Get returns the obfuscated name bound to logical.
func (m *Map) Get(logical string) (string, bool) {
	return m.om.Get(logical)
}

// Len returns the number of hooks.
func (m *Map) Len() int {
	return m.om.Len()
}

// Entries returns the hooks as ordered pairs.
func (m *Map) Entries() []Entry {
	entries := make([]Entry, 0, m.om.Len())
	for pair := m.om.Oldest(); pair != nil; pair = pair.Next() {
		entries = append(entries, Entry{pair.Key, pair.Value})
	}
	return entries
}

// MarshalJSON encodes the map as an array of [logical, obfuscated] pairs.
func (m *Map) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Entries())
}

// UnmarshalJSON decodes an array of [logical, obfuscated] pairs.
func (m *Map) UnmarshalJSON(data []byte) error {
	entries, err := decodeEntries(data)
	if err != nil {
		return err
	}
	*m = *FromEntries(entries)
	return nil
}

// decodeEntries parses a JSON array of string pairs. Pairs that do not have
// exactly two elements are skipped.
func decodeEntries(data []byte) ([]Entry, error) {
	var raw [][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding hook entries: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("decoding hook entries: not an array")
	}
	entries := make([]Entry, 0, len(raw))
	for _, pair := range raw {
		if len(pair) != 2 {
			continue
		}
		entries = append(entries, Entry{pair[0], pair[1]})
	}
	return entries, nil
}

// Table is the resolved hook table of one reflection pass.
type Table struct {
	Classes *Map `json:"classes"`
	Enums   *Map `json:"enums"`
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{Classes: NewMap(), Enums: NewMap()}
}

// ClassHook returns the obfuscated class name bound to logical.
func (t *Table) ClassHook(logical string) (string, bool) {
	return t.Classes.Get(logical)
}

// EnumHook returns the obfuscated enum name bound to logical.
func (t *Table) EnumHook(logical string) (string, bool) {
	return t.Enums.Get(logical)
}

// Len returns the combined number of class and enum hooks.
func (t *Table) Len() int {
	return t.Classes.Len() + t.Enums.Len()
}
