package ast

// JavaScript Tree-sitter Node Types
//
// This file documents the tree-sitter node types used by the Cypress
// extractor. The extractor uses direct node traversal rather than
// tree-sitter's query language for precise control over callee-chain
// resolution and ancestor tracking.
//
// Reference: https://github.com/tree-sitter/tree-sitter-javascript

// Node type constants for JavaScript AST traversal.
const (
	// Top-level nodes
	jsNodeProgram = "program"

	// Expression nodes
	jsNodeCallExpression   = "call_expression"
	jsNodeMemberExpression = "member_expression"
	jsNodeArguments        = "arguments"

	// Identifier nodes
	jsNodeIdentifier         = "identifier"
	jsNodePropertyIdentifier = "property_identifier"

	// Literal nodes
	jsNodeString         = "string"
	jsNodeStringFragment = "string_fragment"
	jsNodeEscapeSequence = "escape_sequence"
	jsNodeTemplateString = "template_string"
	jsNodeTemplateSubst  = "template_substitution"
	jsNodeNumber         = "number"
	jsNodeTrue           = "true"
	jsNodeFalse          = "false"
	jsNodeNull           = "null"

	// Object/array nodes
	jsNodeObject            = "object"
	jsNodeArray             = "array"
	jsNodePair              = "pair"
	jsNodeShorthandProperty = "shorthand_property_identifier"
	jsNodeMethodDefinition  = "method_definition"
	jsNodeSpreadElement     = "spread_element"
	jsNodeComputedPropName  = "computed_property_name"

	// Function-valued nodes
	jsNodeArrowFunction      = "arrow_function"
	jsNodeFunctionExpression = "function_expression"
	jsNodeFunction           = "function" // pre-0.20.3 grammar name for function_expression
	jsNodeGeneratorFunction  = "generator_function"

	// Statement nodes
	jsNodeStatementBlock      = "statement_block"
	jsNodeExpressionStatement = "expression_statement"

	// Error nodes
	jsNodeError = "ERROR"
)

// Cypress AST Structure Reference
//
// A typical Cypress spec file produces trees of this shape:
//
// program
// └── expression_statement
//     └── call_expression                      // describe("auth", () => { ... })
//         ├── identifier "describe"            // or member_expression describe.skip
//         └── arguments
//             ├── string                       // suite name
//             └── arrow_function
//                 └── statement_block
//                     ├── expression_statement
//                     │   └── call_expression  // beforeEach(() => { ... })
//                     └── expression_statement
//                         └── call_expression  // it("logs in", () => { ... })
//
// Chained command usage:
//
// call_expression                              // cy.get("#u").type(user)
// ├── member_expression
// │   ├── call_expression                      // cy.get("#u")
// │   │   ├── member_expression                // cy.get
// │   │   │   ├── identifier "cy"
// │   │   │   └── property_identifier "get"
// │   │   └── arguments
// │   └── property_identifier "type"
// └── arguments
//
// Command registration:
//
// call_expression                              // Cypress.Commands.add("login", fn)
// ├── member_expression
// │   ├── member_expression                    // Cypress.Commands
// │   │   ├── identifier "Cypress"
// │   │   └── property_identifier "Commands"
// │   └── property_identifier "add"
// └── arguments
//     ├── string                               // command name
//     └── arrow_function | function_expression

// isFunctionNode reports whether a node can serve as a function-valued
// argument (test body, hook body, command implementation).
//
// Both "function" and "function_expression" are accepted because the
// tree-sitter-javascript grammar renamed the node type in 0.20.3.
func isFunctionNode(typ string) bool {
	switch typ {
	case jsNodeArrowFunction, jsNodeFunctionExpression, jsNodeFunction, jsNodeGeneratorFunction:
		return true
	}
	return false
}
