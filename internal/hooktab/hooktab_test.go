package hooktab

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMissing = errors.New("missing")

// memResources is an in-memory Resources.
type memResources struct {
	mu      sync.Mutex
	items   map[string][]byte
	failSet error
}

func newMemResources() *memResources {
	return &memResources{items: make(map[string][]byte)}
}

func (r *memResources) GetItem(_ context.Context, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.items[key]
	if !ok {
		return nil, errMissing
	}
	return v, nil
}

func (r *memResources) SetItem(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSet != nil {
		return r.failSet
	}
	r.items[key] = append([]byte(nil), value...)
	return nil
}

func TestMapPreservesInsertionOrder(t *testing.T) {
	m := NewMap()
	m.Set("b", "1")
	m.Set("a", "2")
	m.Set("b", "3")

	assert.Equal(t, []Entry{{"b", "3"}, {"a", "2"}}, m.Entries())
	assert.Equal(t, 2, m.Len())

	v, ok := m.Get("b")
	require.True(t, ok)
	assert.Equal(t, "3", v)
	_, ok = m.Get("c")
	assert.False(t, ok)
}

func TestMapJSON(t *testing.T) {
	m := FromEntries([]Entry{{"EntityManager", "abc123"}, {"GameLoop", "Gl"}})

	data, err := m.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[["EntityManager","abc123"],["GameLoop","Gl"]]`, string(data))

	empty, err := NewMap().MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}

func TestDecodeEntries(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    []Entry
		wantErr bool
	}{
		{"pairs", `[["A","a"],["B","b"]]`, []Entry{{"A", "a"}, {"B", "b"}}, false},
		{"empty array", `[]`, []Entry{}, false},
		{"short and long pairs skipped", `[["A"],["B","b"],["C","c","x"],[]]`, []Entry{{"B", "b"}}, false},
		{"null", `null`, nil, true},
		{"object", `{"A":"a"}`, nil, true},
		{"non-string element", `[["A",1]]`, nil, true},
		{"not json", `not json`, nil, true},
		{"empty input", ``, nil, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := decodeEntries([]byte(tc.data))
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	res := newMemResources()

	table := NewTable()
	table.Classes.Set("EntityManager", "abc123")
	table.Classes.Set("GameLoop", "Gl")
	table.Enums.Set("GameWorldActions", "X")
	require.NoError(t, Save(ctx, res, table))

	assert.JSONEq(t, `[["EntityManager","abc123"],["GameLoop","Gl"]]`, string(res.items[ClassHooksKey]))
	assert.JSONEq(t, `[["GameWorldActions","X"]]`, string(res.items[EnumHooksKey]))

	loaded := Load(ctx, res, nil)
	assert.Equal(t, table.Classes.Entries(), loaded.Classes.Entries())
	assert.Equal(t, table.Enums.Entries(), loaded.Enums.Entries())
}

func TestSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	res := newMemResources()

	first := NewTable()
	first.Classes.Set("EntityManager", "abc123")
	first.Classes.Set("GameLoop", "Gl")
	require.NoError(t, Save(ctx, res, first))

	second := NewTable()
	second.Classes.Set("EntityManager", "zz9")
	require.NoError(t, Save(ctx, res, second))

	loaded := Load(ctx, res, nil)
	assert.Equal(t, []Entry{{"EntityManager", "zz9"}}, loaded.Classes.Entries())
	assert.Zero(t, loaded.Enums.Len())
}

func TestSaveFailure(t *testing.T) {
	res := newMemResources()
	res.failSet = errors.New("quota exceeded")

	err := Save(context.Background(), res, NewTable())
	require.ErrorIs(t, err, res.failSet)
	assert.ErrorContains(t, err, ClassHooksKey)
}

func TestLoadToleratesMalformedData(t *testing.T) {
	tests := []struct {
		name    string
		items   map[string]string
		classes []Entry
		enums   []Entry
	}{
		{"nothing saved", nil, []Entry{}, []Entry{}},
		{
			name:    "only classes saved",
			items:   map[string]string{ClassHooksKey: `[["EntityManager","abc123"]]`},
			classes: []Entry{{"EntityManager", "abc123"}},
			enums:   []Entry{},
		},
		{
			name:    "malformed enums",
			items:   map[string]string{ClassHooksKey: `[["EntityManager","abc123"]]`, EnumHooksKey: `{"broken":`},
			classes: []Entry{{"EntityManager", "abc123"}},
			enums:   []Entry{},
		},
		{
			name:    "wrong shape",
			items:   map[string]string{ClassHooksKey: `"abc123"`, EnumHooksKey: `[["X"]]`},
			classes: []Entry{},
			enums:   []Entry{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := newMemResources()
			for k, v := range tc.items {
				res.items[k] = []byte(v)
			}
			loaded := Load(context.Background(), res, nil)
			require.NotNil(t, loaded)
			assert.Equal(t, tc.classes, loaded.Classes.Entries())
			assert.Equal(t, tc.enums, loaded.Enums.Entries())
		})
	}
}

func TestHasSaved(t *testing.T) {
	tests := []struct {
		name  string
		items map[string]string
		want  bool
	}{
		{"nothing saved", nil, false},
		{"empty tables", map[string]string{ClassHooksKey: `[]`, EnumHooksKey: `[]`}, false},
		{"malformed", map[string]string{ClassHooksKey: `oops`}, false},
		{"class hook", map[string]string{ClassHooksKey: `[["EntityManager","abc123"]]`}, true},
		{"enum hook only", map[string]string{ClassHooksKey: `[]`, EnumHooksKey: `[["GameWorldActions","X"]]`}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := newMemResources()
			for k, v := range tc.items {
				res.items[k] = []byte(v)
			}
			assert.Equal(t, tc.want, HasSaved(context.Background(), res, nil))
		})
	}
}

func TestTableLookups(t *testing.T) {
	table := NewTable()
	table.Classes.Set("EntityManager", "abc123")
	table.Enums.Set("GameWorldActions", "X")

	v, ok := table.ClassHook("EntityManager")
	require.True(t, ok)
	assert.Equal(t, "abc123", v)

	_, ok = table.ClassHook("GameWorldActions")
	assert.False(t, ok)

	v, ok = table.EnumHook("GameWorldActions")
	require.True(t, ok)
	assert.Equal(t, "X", v)
	assert.Equal(t, 2, table.Len())
}

func TestLoadReportsToLogger(t *testing.T) {
	res := newMemResources()
	res.items[ClassHooksKey] = []byte(`{"broken":`)
	h := memory.New()
	l := &log.Logger{Handler: h, Level: log.DebugLevel}

	loaded := Load(context.Background(), res, l)
	assert.Zero(t, loaded.Len())

	levels := make(map[string]log.Level)
	for _, e := range h.Entries {
		levels[e.Fields.Get("key").(string)] = e.Level
	}
	assert.Equal(t, log.WarnLevel, levels[ClassHooksKey])
	assert.Equal(t, log.DebugLevel, levels[EnumHooksKey])
}
