package ast

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// inferDisplayName derives a human-readable name from the first
// argument of a test or suite-scoping call.
//
//   - string literal     -> its content
//   - template literal   -> raw text with ${name} placeholders
//   - bare identifier    -> ${name} placeholder
//   - anything else      -> <UNPARSEABLE:node_kind>
//
// This is a total function: it always produces a name and never fails.
func inferDisplayName(node *sitter.Node, src []byte) string {
	if node == nil {
		return "<UNPARSEABLE:missing>"
	}

	switch node.Type() {
	case jsNodeString:
		return stringContent(node, src)

	case jsNodeTemplateString:
		name, _ := renderTemplate(node, src, false)
		return name

	case jsNodeIdentifier:
		return "${" + string(src[node.StartByte():node.EndByte()]) + "}"

	default:
		return fmt.Sprintf("<UNPARSEABLE:%s>", node.Type())
	}
}
