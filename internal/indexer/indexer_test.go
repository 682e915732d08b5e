package indexer

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tender-barbarian/hooklens/internal/symtab"
)

func index(t *testing.T, src string) *symtab.Catalog {
	t.Helper()
	cat, err := New().Index(context.Background(), []byte(src))
	require.NoError(t, err)
	return cat
}

func TestIndexFixture(t *testing.T) {
	src, err := os.ReadFile("../../tests/testdata/client.js")
	require.NoError(t, err)
	cat, err := New().Index(context.Background(), src)
	require.NoError(t, err)

	var classes []string
	for _, c := range cat.Classes {
		classes = append(classes, c.Name)
	}
	assert.Equal(t, []string{"abc123", "q7", "r9", "zz", ""}, classes)

	var enums []string
	for _, e := range cat.Enums {
		enums = append(enums, e.Name)
	}
	assert.Equal(t, []string{"X", "Y", "W", "Z"}, enums)

	for _, c := range cat.Classes {
		span := string(cat.Span(c.Start, c.End))
		assert.Contains(t, span, "class", "class %q span", c.Name)
		assert.Equal(t, "}", span[len(span)-1:], "class %q span", c.Name)
	}
}

func TestExtractClassMembers(t *testing.T) {
	src := `class A {
  static count = 0;
  name;
  #hidden = 1;
  "quoted key" = 2;
  [computed] = 3;
  static create() {}
  static get instance() { return null; }
  constructor() {}
  get size() { return 0; }
  set size(v) {}
  run() {}
  #tick() {}
}`
	cat := index(t, src)
	require.Len(t, cat.Classes, 1)
	c := cat.Classes[0]

	assert.Equal(t, "A", c.Name)
	assert.Equal(t, []string{"count"}, c.StaticFields)
	assert.Equal(t, []string{"name", "hidden", "quoted key"}, c.InstanceFields)
	assert.Equal(t, []symtab.MethodInfo{
		{Name: "create", Kind: symtab.MethodKindMethod},
		{Name: "instance", Kind: symtab.MethodKindGetter},
	}, c.StaticMethods)
	assert.Equal(t, []symtab.MethodInfo{
		{Name: "constructor", Kind: symtab.MethodKindConstructor},
		{Name: "size", Kind: symtab.MethodKindGetter},
		{Name: "size", Kind: symtab.MethodKindSetter},
		{Name: "run", Kind: symtab.MethodKindMethod},
		{Name: "tick", Kind: symtab.MethodKindMethod},
	}, c.InstanceMethods)
	assert.Equal(t, 0, c.Start)
	assert.Equal(t, len(src), c.End)
}

func TestExtractClasses(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		names []string
	}{
		{"empty source", "", nil},
		{"no classes", "var a = 1; function f() {}", nil},
		{"single declaration", "class A {}", []string{"A"}},
		{"document order", "class B {}\nclass A {}", []string{"B", "A"}},
		{"nested in function", "function f() { class Inner {} }\nclass Outer {}", []string{"Inner", "Outer"}},
		{"heritage clause", "class A {}\nclass B extends A {}", []string{"A", "B"}},
		{"anonymous default export", "export default class { run() {} }", []string{""}},
		{"named export", "export class A {}", []string{"A"}},
		{"class expression is not a declaration", "var A = class {};\nvar B = class Named {};", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cat := index(t, tc.src)
			var names []string
			for _, c := range cat.Classes {
				names = append(names, c.Name)
			}
			assert.Equal(t, tc.names, names)
		})
	}
}

func TestExtractEnums(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		enum    string
		members []string
	}{
		{
			name:    "negated function expression",
			src:     `var E; !function(e){ e.attack = "attack"; e.talk_to = "talk_to"; }(E || (E = {}));`,
			enum:    "E",
			members: []string{"attack", "talk_to"},
		},
		{
			name:    "parenthesized callee",
			src:     `var E; (function(e){ e[e.Idle = 0] = "Idle"; e[e.Moving = 1] = "Moving"; })(E || (E = {}));`,
			enum:    "E",
			members: []string{"Idle", "Moving"},
		},
		{
			name:    "arrow function callee",
			src:     `var E; ((e) => { e.A = "A"; })(E || (E = {}));`,
			enum:    "E",
			members: []string{"A"},
		},
		{
			name:    "duplicates kept once in first order",
			src:     `var E; !function(e){ e.b = "b"; e.a = "a"; e.b2 = "b"; }(E || (E = {}));`,
			enum:    "E",
			members: []string{"b", "a"},
		},
		{
			name:    "single quoted and escaped strings",
			src:     `var E; !function(e){ e.a = 'it\'s'; e.b = "\x41B\u{43}"; e.c = "tab\there"; }(E || (E = {}));`,
			enum:    "E",
			members: []string{"it's", "ABC", "tab\there"},
		},
		{
			name:    "object literal keys are skipped",
			src:     `var E; !function(e){ var m = {attack: "x", "quoted": "y"}; }(E || (E = {}));`,
			enum:    "E",
			members: []string{"x", "y"},
		},
		{
			name:    "computed keys are collected",
			src:     `var E; !function(e){ var m = {["k"]: "v"}; }(E || (E = {}));`,
			enum:    "E",
			members: []string{"k", "v"},
		},
		{
			name:    "surrogate pair escapes",
			src:     `var E; !function(e){ e.a = "\uD83D\uDE00"; e.b = "x\uD83Dy"; e.c = "\uDE00\uD83D"; }(E || (E = {}));`,
			enum:    "E",
			members: []string{"😀", "x\uFFFDy", "\uFFFD\uFFFD"},
		},
		{
			name:    "class member keys are skipped",
			src:     `var E; !function(e){ e.a = "a"; class K { "meth"() {} "field" = "v"; ["comp"]() {} } }(E || (E = {}));`,
			enum:    "E",
			members: []string{"a", "v", "comp"},
		},
		{
			name:    "object method keys are skipped",
			src:     `var E; !function(e){ var m = { "m"() { return "r"; } }; }(E || (E = {}));`,
			enum:    "E",
			members: []string{"r"},
		},
		{
			name: "mismatched identifiers",
			src:  `var E, F; !function(e){ e.a = "a"; }(E || (F = {}));`,
		},
		{
			name: "plain argument",
			src:  `var E; !function(e){ e.a = "a"; }(E);`,
		},
		{
			name: "logical and",
			src:  `var E; !function(e){ e.a = "a"; }(E && (E = {}));`,
		},
		{
			name: "callee is not a function",
			src:  `var E; f(E || (E = {}));`,
		},
		{
			name: "no string members",
			src:  `var E; !function(e){ e.a = 1; }(E || (E = {}));`,
		},
		{
			name: "two arguments",
			src:  `var E; !function(e){ e.a = "a"; }(E || (E = {}), 1);`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cat := index(t, tc.src)
			if tc.enum == "" {
				assert.Empty(t, cat.Enums)
				return
			}
			require.Len(t, cat.Enums, 1)
			assert.Equal(t, tc.enum, cat.Enums[0].Name)
			assert.Equal(t, tc.members, cat.Enums[0].Members)
		})
	}
}

func TestIndexSyntaxError(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unterminated class body", "class A {"},
		{"broken method", "class A { run( }"},
		{"stray token", "var = ;"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cat, err := New().Index(context.Background(), []byte(tc.src))
			require.ErrorIs(t, err, ErrSyntax)
			assert.Nil(t, cat)
		})
	}
}

func TestIndexIsRepeatable(t *testing.T) {
	src, err := os.ReadFile("../../tests/testdata/client.js")
	require.NoError(t, err)
	idx := New()

	first, err := idx.Index(context.Background(), src)
	require.NoError(t, err)
	second, err := idx.Index(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		seq  string
		want string
	}{
		{`\n`, "\n"},
		{`\'`, "'"},
		{`\"`, `"`},
		{`\\`, `\`},
		{`\x41`, "A"},
		{`\u00e9`, "é"},
		{`\u{1F600}`, "😀"},
		{`\uD83D`, "\uFFFD"},
		{`\0`, "\x00"},
		{"\\\n", ""},
		{`\q`, "q"},
	}

	for _, tc := range tests {
		t.Run(tc.seq, func(t *testing.T) {
			assert.Equal(t, tc.want, unescape(tc.seq))
		})
	}
}
