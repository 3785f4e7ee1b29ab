package ast

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// parseTree parses JavaScript source and returns the program root.
// The tree is closed when the test finishes.
func parseTree(t *testing.T, src string) *sitter.Node {
	t.Helper()

	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, []byte(src))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	t.Cleanup(tree.Close)

	return tree.RootNode()
}

// firstCall returns the outermost call expression in pre-order.
func firstCall(t *testing.T, root *sitter.Node) *sitter.Node {
	t.Helper()

	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == nil {
			continue
		}
		if node.Type() == jsNodeCallExpression {
			return node
		}
		for i := int(node.ChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, node.Child(i))
		}
	}

	t.Fatal("no call expression in source")
	return nil
}

// exprNode parses "(src);" and returns the expression node for src,
// so object literals are not mistaken for blocks.
func exprNode(t *testing.T, src string) *sitter.Node {
	t.Helper()

	root := parseTree(t, "("+src+");")
	stmt := root.NamedChild(0)
	if stmt == nil || stmt.NamedChildCount() == 0 {
		t.Fatalf("unexpected tree shape for %q", src)
	}
	paren := stmt.NamedChild(0)
	if paren.NamedChildCount() == 0 {
		t.Fatalf("unexpected tree shape for %q", src)
	}
	return paren.NamedChild(0)
}

// analyze runs a default analyzer over src, failing the test on error.
func analyze(t *testing.T, src string, opts ...AnalyzerOption) *Result {
	t.Helper()

	result, err := NewAnalyzer(opts...).Analyze(context.Background(), []byte(src), "spec.cy.js")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil {
		t.Fatal("expected result, got nil")
	}
	return result
}
