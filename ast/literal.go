package ast

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// materialize attempts to convert a literal-shaped expression node into
// a plain Go value tree.
//
// Handled shapes: string, number, true/false/null, template literals
// whose substitutions are bare identifiers, objects, arrays. Objects and
// arrays are all-or-nothing: one unreadable key or unmaterializable
// value fails the whole composite, never yielding a partial result.
//
// This is a best-effort sidecar, not an evaluator. Declining on an
// unsupported shape is the contract, not a failure, so the second
// return is ok=false and nothing is ever raised.
func materialize(node *sitter.Node, src []byte) (any, bool) {
	if node == nil {
		return nil, false
	}

	switch node.Type() {
	case jsNodeString:
		return stringContent(node, src), true

	case jsNodeTemplateString:
		return renderTemplate(node, src, true)

	case jsNodeNumber:
		return parseNumber(string(src[node.StartByte():node.EndByte()]))

	case jsNodeTrue:
		return true, true

	case jsNodeFalse:
		return false, true

	case jsNodeNull:
		return nil, true

	case jsNodeObject:
		return materializeObject(node, src)

	case jsNodeArray:
		return materializeArray(node, src)

	default:
		return nil, false
	}
}

// stringContent returns a string node's content without quotes.
//
// A string literal parses into a sequence of string_fragment and
// escape_sequence children; the content is their in-order concatenation
// with each escape decoded, so `"log\"in"` yields `log"in` and never a
// truncated prefix.
func stringContent(node *sitter.Node, src []byte) string {
	var b strings.Builder
	seen := false

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case jsNodeStringFragment:
			seen = true
			b.Write(src[child.StartByte():child.EndByte()])
		case jsNodeEscapeSequence:
			seen = true
			b.WriteString(decodeEscape(string(src[child.StartByte():child.EndByte()])))
		}
	}
	if seen {
		return b.String()
	}

	// Empty strings have no fragment child; strip the quotes manually.
	text := string(src[node.StartByte():node.EndByte()])
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return text
}

// decodeEscape converts one JavaScript escape sequence (including the
// leading backslash) to the character it denotes. Identity escapes like
// \" \' \\ decode to their bare character; an unrecognized sequence
// decodes to its body unchanged rather than failing.
func decodeEscape(esc string) string {
	if len(esc) < 2 || esc[0] != '\\' {
		return esc
	}
	body := esc[1:]

	switch body[0] {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case 'b':
		return "\b"
	case 'f':
		return "\f"
	case 'v':
		return "\v"
	case '0':
		if len(body) == 1 {
			return "\x00"
		}
	case 'x':
		if n, err := strconv.ParseUint(body[1:], 16, 8); err == nil {
			return string(rune(n))
		}
	case 'u':
		hex := body[1:]
		if strings.HasPrefix(hex, "{") && strings.HasSuffix(hex, "}") {
			hex = hex[1 : len(hex)-1]
		}
		if n, err := strconv.ParseUint(hex, 16, 32); err == nil && n <= 0x10FFFF {
			return string(rune(n))
		}
	case '\n', '\r':
		// Line continuation contributes nothing.
		return ""
	}

	return body
}

// renderTemplate interleaves a template literal's raw text chunks with a
// ${name} placeholder for each interpolated identifier.
//
// With strict=true (materialization), a substitution holding anything
// other than a bare identifier fails the whole template. With
// strict=false (display-name inference), such substitutions render as
// ${?} so the result is always produced.
func renderTemplate(node *sitter.Node, src []byte, strict bool) (string, bool) {
	var b []byte
	// Raw chunks are taken from the source between substitutions rather
	// than from fragment nodes, which keeps this independent of grammar
	// versions that did not expose template fragments as named nodes.
	cursor := node.StartByte() + 1 // past the opening backtick
	end := node.EndByte() - 1      // before the closing backtick

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != jsNodeTemplateSubst {
			continue
		}
		b = append(b, src[cursor:child.StartByte()]...)
		cursor = child.EndByte()

		inner := namedExpression(child)
		if inner != nil && inner.Type() == jsNodeIdentifier {
			b = append(b, "${"...)
			b = append(b, src[inner.StartByte():inner.EndByte()]...)
			b = append(b, '}')
			continue
		}
		if strict {
			return "", false
		}
		b = append(b, "${?}"...)
	}

	if cursor < end {
		b = append(b, src[cursor:end]...)
	}
	return string(b), true
}

// namedExpression returns a node's single named child, the expression
// inside a template substitution or parentheses.
func namedExpression(node *sitter.Node) *sitter.Node {
	if node == nil || node.NamedChildCount() == 0 {
		return nil
	}
	return node.NamedChild(0)
}

// parseNumber converts a JavaScript numeric literal to float64. Hex,
// octal and binary forms are parsed via ParseInt; separators and bigint
// suffixes make the literal non-materializable.
func parseNumber(text string) (any, bool) {
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f, true
	}
	if n, err := strconv.ParseInt(text, 0, 64); err == nil {
		return float64(n), true
	}
	return nil, false
}

// materializeObject converts an object expression keyed by literal or
// bare-identifier property names. Shorthand properties, methods,
// spreads and computed keys fail the whole object.
func materializeObject(node *sitter.Node, src []byte) (any, bool) {
	out := make(map[string]any)

	for i := 0; i < int(node.NamedChildCount()); i++ {
		prop := node.NamedChild(i)
		if prop.Type() != jsNodePair {
			return nil, false
		}

		keyNode := prop.ChildByFieldName("key")
		valNode := prop.ChildByFieldName("value")
		if keyNode == nil || valNode == nil {
			return nil, false
		}

		key, ok := propertyKey(keyNode, src)
		if !ok {
			return nil, false
		}
		val, ok := materialize(valNode, src)
		if !ok {
			return nil, false
		}
		out[key] = val
	}

	return out, true
}

// propertyKey reads an object property key from a bare identifier,
// string, or number node. Computed keys are unreadable.
func propertyKey(node *sitter.Node, src []byte) (string, bool) {
	switch node.Type() {
	case jsNodePropertyIdentifier, jsNodeIdentifier, jsNodeNumber:
		return string(src[node.StartByte():node.EndByte()]), true
	case jsNodeString:
		return stringContent(node, src), true
	default:
		return "", false
	}
}

// materializeArray converts an array expression element-wise; a spread
// or unmaterializable element fails the whole array.
func materializeArray(node *sitter.Node, src []byte) (any, bool) {
	out := make([]any, 0, node.NamedChildCount())

	for i := 0; i < int(node.NamedChildCount()); i++ {
		elem := node.NamedChild(i)
		val, ok := materialize(elem, src)
		if !ok {
			return nil, false
		}
		out = append(out, val)
	}

	return out, true
}
