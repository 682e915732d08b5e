package indexer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/tender-barbarian/hooklens/internal/symtab"
)

// ErrSyntax is returned when the source text does not parse as JavaScript.
var ErrSyntax = errors.New("syntax error")

// Indexer turns host source text into a symtab.Catalog of classes and enums.
// An Indexer is safe for concurrent use; every Parse gets its own parser.
type Indexer struct {
	lang *sitter.Language
}

// New creates an Indexer for JavaScript sources.
func New() *Indexer {
	return &Indexer{lang: javascript.GetLanguage()}
}

// Tree is a parsed source snapshot. Call Close when done with it.
type Tree struct {
	src  []byte
	tree *sitter.Tree
}

// Root returns the root node of the syntax tree.
func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

// Source returns the text the tree was parsed from.
func (t *Tree) Source() []byte {
	return t.src
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	t.tree.Close()
}

// Parse parses src as a JavaScript module. A tree containing error or
// missing nodes is rejected with ErrSyntax.
func (idx *Indexer) Parse(ctx context.Context, src []byte) (*Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(idx.lang)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing source: %w", err)
	}
	root := tree.RootNode()
	if root.HasError() {
		offset := firstError(root)
		tree.Close()
		return nil, fmt.Errorf("%w at byte %d", ErrSyntax, offset)
	}
	return &Tree{src: src, tree: tree}, nil
}

// Index parses src and extracts both catalogs. Extraction runs to
// completion before the catalog is returned.
func (idx *Indexer) Index(ctx context.Context, src []byte) (*symtab.Catalog, error) {
	t, err := idx.Parse(ctx, src)
	if err != nil {
		return nil, err
	}
	defer t.Close()

	return &symtab.Catalog{
		Source:  src,
		Classes: ExtractClasses(t),
		Enums:   ExtractEnums(t),
	}, nil
}

// ExtractClasses returns every class declaration in document order.
func ExtractClasses(t *Tree) []symtab.ClassInfo {
	var classes []symtab.ClassInfo
	walk(t.Root(), func(n *sitter.Node) {
		switch n.Type() {
		case "class_declaration":
			classes = append(classes, classInfo(n, t.src))
		case "class":
			// `export default class {}` is the only anonymous class declaration;
			// other class expressions are not declarations.
			if p := n.Parent(); p != nil && p.Type() == "export_statement" {
				classes = append(classes, classInfo(n, t.src))
			}
		}
	})
	return classes
}

// ExtractEnums returns every lazily initialised enum object in document order.
func ExtractEnums(t *Tree) []symtab.EnumInfo {
	var enums []symtab.EnumInfo
	walk(t.Root(), func(n *sitter.Node) {
		switch n.Type() {
		case "call_expression":
			if e, ok := enumInfo(n, t.src); ok {
				enums = append(enums, e)
			}
		}
	})
	return enums
}

// walk visits n and its descendants in pre-order.
func walk(n *sitter.Node, visit func(*sitter.Node)) {
	if n == nil {
		return
	}
	visit(n)
	for i := range int(n.ChildCount()) {
		walk(n.Child(i), visit)
	}
}

// firstError returns the start offset of the first error or missing node.
func firstError(root *sitter.Node) int {
	offset := -1
	walk(root, func(n *sitter.Node) {
		if offset < 0 && (n.Type() == "ERROR" || n.IsMissing()) {
			offset = int(n.StartByte())
		}
	})
	if offset < 0 {
		offset = int(root.StartByte())
	}
	return offset
}

// classInfo partitions the members of a class node by kind and modifier.
func classInfo(n *sitter.Node, src []byte) symtab.ClassInfo {
	c := symtab.ClassInfo{
		Start: int(n.StartByte()),
		End:   int(n.EndByte()),
	}
	if name := n.ChildByFieldName("name"); name != nil {
		c.Name = name.Content(src)
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		return c
	}
	for i := range int(body.NamedChildCount()) {
		m := body.NamedChild(i)
		switch m.Type() {
		case "method_definition":
			name, ok := memberName(m.ChildByFieldName("name"), src)
			if !ok {
				continue
			}
			static, kind := methodModifiers(m)
			if name == "constructor" && kind == symtab.MethodKindMethod && !static {
				kind = symtab.MethodKindConstructor
			}
			info := symtab.MethodInfo{Name: name, Kind: kind}
			if static {
				c.StaticMethods = append(c.StaticMethods, info)
			} else {
				c.InstanceMethods = append(c.InstanceMethods, info)
			}
		case "field_definition":
			name, ok := memberName(m.ChildByFieldName("property"), src)
			if !ok {
				continue
			}
			static, _ := methodModifiers(m)
			if static {
				c.StaticFields = append(c.StaticFields, name)
			} else {
				c.InstanceFields = append(c.InstanceFields, name)
			}
		}
	}
	return c
}

// methodModifiers reads the anonymous keyword tokens of a class member.
func methodModifiers(m *sitter.Node) (static bool, kind symtab.MethodKind) {
	kind = symtab.MethodKindMethod
	for i := range int(m.ChildCount()) {
		switch m.Child(i).Type() {
		case "static":
			static = true
		case "static get":
			static = true
			kind = symtab.MethodKindGetter
		case "get":
			kind = symtab.MethodKindGetter
		case "set":
			kind = symtab.MethodKindSetter
		}
	}
	return static, kind
}

// memberName returns the static name of a class member key. Computed keys
// have no static name.
func memberName(key *sitter.Node, src []byte) (string, bool) {
	if key == nil {
		return "", false
	}
	switch key.Type() {
	case "property_identifier", "identifier", "number":
		return key.Content(src), true
	case "private_property_identifier":
		return strings.TrimPrefix(key.Content(src), "#"), true
	case "string":
		return stringValue(key, src), true
	default:
		return "", false
	}
}

// enumInfo matches the OR-assignment idiom
//
//	(function(e){ ... })(X || (X = {}))
//
// and collects the string literals of the callee body.
func enumInfo(call *sitter.Node, src []byte) (symtab.EnumInfo, bool) {
	args := call.ChildByFieldName("arguments")
	if args == nil || args.Type() != "arguments" {
		return symtab.EnumInfo{}, false
	}
	operands := namedOperands(args)
	if len(operands) != 1 {
		return symtab.EnumInfo{}, false
	}

	or := unwrapParens(operands[0])
	if or.Type() != "binary_expression" {
		return symtab.EnumInfo{}, false
	}
	if op := or.ChildByFieldName("operator"); op == nil || op.Type() != "||" {
		return symtab.EnumInfo{}, false
	}
	left := or.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" {
		return symtab.EnumInfo{}, false
	}
	assign := unwrapParens(or.ChildByFieldName("right"))
	if assign == nil || assign.Type() != "assignment_expression" {
		return symtab.EnumInfo{}, false
	}
	target := assign.ChildByFieldName("left")
	name := left.Content(src)
	if target == nil || target.Type() != "identifier" || target.Content(src) != name {
		return symtab.EnumInfo{}, false
	}

	callee := unwrapParens(call.ChildByFieldName("function"))
	if callee == nil {
		return symtab.EnumInfo{}, false
	}
	switch callee.Type() {
	case "function_expression", "function", "arrow_function":
	default:
		return symtab.EnumInfo{}, false
	}

	members := stringLiterals(callee.ChildByFieldName("body"), src)
	if len(members) == 0 {
		return symtab.EnumInfo{}, false
	}
	return symtab.EnumInfo{
		Name:    name,
		Members: members,
		Start:   int(call.StartByte()),
		End:     int(call.EndByte()),
	}, true
}

// namedOperands returns the named children of n, skipping comments.
func namedOperands(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := range int(n.NamedChildCount()) {
		c := n.NamedChild(i)
		if c.Type() == "comment" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// unwrapParens strips any number of enclosing parenthesized_expression nodes.
func unwrapParens(n *sitter.Node) *sitter.Node {
	for n != nil && n.Type() == "parenthesized_expression" {
		inner := namedOperands(n)
		if len(inner) != 1 {
			return n
		}
		n = inner[0]
	}
	return n
}

// stringLiterals collects the decoded value of every string literal under n,
// deduplicated in order of first appearance. Non-computed keys of object
// literals and class members are property names rather than values and are
// skipped.
func stringLiterals(n *sitter.Node, src []byte) []string {
	var (
		members []string
		seen    = make(map[string]struct{})
		visit   func(*sitter.Node)
	)
	visit = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "string":
			v := stringValue(n, src)
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				members = append(members, v)
			}
			return
		case "pair":
			if key := n.ChildByFieldName("key"); key != nil && key.Type() == "computed_property_name" {
				visit(key)
			}
			visit(n.ChildByFieldName("value"))
			return
		case "method_definition", "field_definition":
			key := n.ChildByFieldName("name")
			if n.Type() == "field_definition" {
				key = n.ChildByFieldName("property")
			}
			for i := range int(n.ChildCount()) {
				c := n.Child(i)
				if sameNode(c, key) && c.Type() != "computed_property_name" {
					continue
				}
				visit(c)
			}
			return
		}
		for i := range int(n.ChildCount()) {
			visit(n.Child(i))
		}
	}
	visit(n)
	return members
}

// sameNode reports whether a and b are the same node of one tree.
func sameNode(a, b *sitter.Node) bool {
	return a != nil && b != nil && a.Type() == b.Type() &&
		a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}

// stringValue decodes a string literal node. A \uXXXX high surrogate
// directly followed by a low surrogate escape is combined into one rune.
func stringValue(n *sitter.Node, src []byte) string {
	var sb strings.Builder
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		part := n.NamedChild(i)
		if part.Type() != "escape_sequence" {
			sb.WriteString(part.Content(src))
			continue
		}
		seq := part.Content(src)
		if hi, ok := surrogate(seq); ok && i+1 < count {
			if next := n.NamedChild(i + 1); next.Type() == "escape_sequence" {
				if lo, ok := surrogate(next.Content(src)); ok {
					if r := utf16.DecodeRune(hi, lo); r != utf8.RuneError {
						sb.WriteRune(r)
						i++
						continue
					}
				}
			}
		}
		sb.WriteString(unescape(seq))
	}
	return sb.String()
}

// surrogate returns the code unit of a \uXXXX escape in the UTF-16
// surrogate range.
func surrogate(seq string) (rune, bool) {
	if len(seq) != 6 || !strings.HasPrefix(seq, `\u`) {
		return 0, false
	}
	v, err := strconv.ParseUint(seq[2:], 16, 16)
	if err != nil || !utf16.IsSurrogate(rune(v)) {
		return 0, false
	}
	return rune(v), true
}

// unescape decodes a single JavaScript escape sequence.
func unescape(seq string) string {
	if _, ok := surrogate(seq); ok {
		// lone surrogate
		return string(utf8.RuneError)
	}
	switch {
	case strings.HasPrefix(seq, `\u{`) && strings.HasSuffix(seq, "}"):
		if r, err := strconv.ParseUint(seq[3:len(seq)-1], 16, 32); err == nil {
			return string(rune(r))
		}
		return seq
	case seq == `\0`:
		return "\x00"
	case strings.HasPrefix(seq, "\\\n"), strings.HasPrefix(seq, "\\\r"):
		return ""
	}
	if v, _, tail, err := strconv.UnquoteChar(seq, '\''); err == nil && tail == "" {
		return string(v)
	}
	if len(seq) > 1 {
		return seq[1:]
	}
	return seq
}
