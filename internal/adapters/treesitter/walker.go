package treesitter

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/corey/grammarbind/internal/domain/binding"
)

// Finding is a place where a parsed tree disagrees with the grammar's
// node-type metadata, or contains a parse error.
type Finding struct {
	Line    int
	Column  int
	Kind    string
	Message string
}

func (f Finding) String() string {
	return fmt.Sprintf("%d:%d %s: %s", f.Line, f.Column, f.Kind, f.Message)
}

// WalkResult holds the findings and per-kind node counts from a tree walk.
type WalkResult struct {
	Findings []Finding
	Kinds    map[string]int
}

// CheckTree walks the tree under root and checks every node against types.
// With no node-type metadata only parse errors are reported.
func CheckTree(root *tree_sitter.Node, types binding.NodeTypes) WalkResult {
	if root == nil {
		return WalkResult{Kinds: map[string]int{}}
	}
	return check(tsNode{root}, types)
}

// syntaxNode is the subset of a tree-sitter node the walk needs.
type syntaxNode interface {
	Kind() string
	IsNamed() bool
	IsError() bool
	IsMissing() bool
	ChildCount() int
	Child(i int) syntaxNode
	FieldNameForChild(i int) string
	Position() (line, column int)
}

type tsNode struct{ n *tree_sitter.Node }

func (t tsNode) Kind() string    { return t.n.Kind() }
func (t tsNode) IsNamed() bool   { return t.n.IsNamed() }
func (t tsNode) IsError() bool   { return t.n.IsError() }
func (t tsNode) IsMissing() bool { return t.n.IsMissing() }
func (t tsNode) ChildCount() int { return int(t.n.ChildCount()) }

func (t tsNode) Child(i int) syntaxNode {
	c := t.n.Child(uint(i))
	if c == nil {
		return nil
	}
	return tsNode{c}
}

func (t tsNode) FieldNameForChild(i int) string {
	return t.n.FieldNameForChild(uint32(i))
}

func (t tsNode) Position() (int, int) {
	p := t.n.StartPosition()
	return int(p.Row) + 1, int(p.Column) + 1
}

func check(root syntaxNode, types binding.NodeTypes) WalkResult {
	ctx := &walkContext{
		types:    types,
		declared: make(map[kindKey]binding.NodeType, len(types)),
	}
	for _, t := range types {
		ctx.declared[kindKey{t.Type, t.Named}] = t
	}
	result := WalkResult{Kinds: map[string]int{}}
	ctx.walk(root, &result)
	return result
}

type kindKey struct {
	kind  string
	named bool
}

type walkContext struct {
	types    binding.NodeTypes
	declared map[kindKey]binding.NodeType
}

func (ctx *walkContext) walk(n syntaxNode, result *WalkResult) {
	kind := n.Kind()
	result.Kinds[kind]++

	switch {
	case n.IsError():
		ctx.add(n, result, "syntax error")
	case n.IsMissing():
		ctx.add(n, result, "missing node inserted by error recovery")
	case len(ctx.types) > 0:
		ctx.checkDeclared(n, result)
	}

	for i := 0; i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		ctx.checkField(n, i, child, result)
		ctx.walk(child, result)
	}
}

// checkDeclared reports node kinds absent from node-types.json.
func (ctx *walkContext) checkDeclared(n syntaxNode, result *WalkResult) {
	if _, ok := ctx.declared[kindKey{n.Kind(), n.IsNamed()}]; ok {
		return
	}
	if n.IsNamed() {
		ctx.add(n, result, "named kind not declared in node types")
	} else {
		ctx.add(n, result, "anonymous kind not declared in node types")
	}
}

// checkField reports children attached under a field the parent's node type
// does not declare.
func (ctx *walkContext) checkField(parent syntaxNode, i int, child syntaxNode, result *WalkResult) {
	field := parent.FieldNameForChild(i)
	if field == "" || parent.IsError() {
		return
	}
	t, ok := ctx.declared[kindKey{parent.Kind(), parent.IsNamed()}]
	if !ok {
		return
	}
	if _, ok := t.Fields[field]; ok {
		return
	}
	ctx.add(child, result, fmt.Sprintf("field %q not declared on %s", field, parent.Kind()))
}

func (ctx *walkContext) add(n syntaxNode, result *WalkResult, msg string) {
	line, col := n.Position()
	result.Findings = append(result.Findings, Finding{
		Line:    line,
		Column:  col,
		Kind:    n.Kind(),
		Message: msg,
	})
}
