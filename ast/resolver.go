package ast

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// calleeSegment is one dotted-name segment of a resolved callee chain.
type calleeSegment struct {
	// Name is the identifier or property name contributing this segment.
	Name string

	// Invoked marks segments that were themselves called, distinguishing
	// cy.a().b from cy.a.b.
	Invoked bool

	// Node is the identifier/property_identifier node for this segment,
	// kept for span reporting (chained usages point at their own name).
	Node *sitter.Node
}

// calleePath is the linearized callee of a call expression.
//
// Produced only from callee subtrees built from identifiers, member
// access, and nested calls. Any other shape makes the callee
// unresolvable and the call is silently skipped by all detectors; that
// is normal, not an error.
type calleePath []calleeSegment

// String renders the dotted form with call markers, e.g. "cy.a().b" or
// "Cypress.Commands.add".
func (p calleePath) String() string {
	var b strings.Builder
	for i, seg := range p {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.Name)
		if seg.Invoked {
			b.WriteString("()")
		}
	}
	return b.String()
}

// last returns the final segment. Callers must check len(p) > 0 first.
func (p calleePath) last() calleeSegment {
	return p[len(p)-1]
}

// resolveCallee linearizes a call expression's callee into a calleePath.
//
// Returns ok=false for any callee shape it does not support (computed
// member access, new expressions, literal bases, ...). Resolution never
// panics and never reports an error: an unresolvable callee means "this
// call is not of interest".
func resolveCallee(call *sitter.Node, src []byte) (calleePath, bool) {
	if call == nil || call.Type() != jsNodeCallExpression {
		return nil, false
	}
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return nil, false
	}
	return unwindCallee(fn, src)
}

// unwindCallee recursively flattens an identifier / member_expression /
// call_expression chain into ordered segments.
func unwindCallee(node *sitter.Node, src []byte) (calleePath, bool) {
	if node == nil {
		return nil, false
	}

	switch node.Type() {
	case jsNodeIdentifier:
		name := string(src[node.StartByte():node.EndByte()])
		return calleePath{{Name: name, Node: node}}, true

	case jsNodeMemberExpression:
		prop := node.ChildByFieldName("property")
		obj := node.ChildByFieldName("object")
		if prop == nil || obj == nil || prop.Type() != jsNodePropertyIdentifier {
			// Computed access and private members cannot be linearized
			// unambiguously.
			return nil, false
		}
		base, ok := unwindCallee(obj, src)
		if !ok {
			return nil, false
		}
		name := string(src[prop.StartByte():prop.EndByte()])
		return append(base, calleeSegment{Name: name, Node: prop}), true

	case jsNodeCallExpression:
		fn := node.ChildByFieldName("function")
		base, ok := unwindCallee(fn, src)
		if !ok || len(base) == 0 {
			return nil, false
		}
		// The immediately preceding segment was itself invoked.
		base[len(base)-1].Invoked = true
		return base, true

	default:
		// Array/literal/new-expression bases and anything else abort
		// resolution for the entire call.
		return nil, false
	}
}
