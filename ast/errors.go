package ast

import (
	"errors"
	"fmt"
)

// Sentinel errors for analysis failure conditions.
//
// These can be checked with errors.Is() to determine the category of
// failure without inspecting error messages.
var (
	// ErrFileTooLarge indicates the content exceeds the configured
	// maximum file size.
	ErrFileTooLarge = errors.New("file too large")

	// ErrInvalidContent indicates the content is not valid UTF-8 and
	// cannot be analyzed.
	ErrInvalidContent = errors.New("invalid content")

	// ErrCommandNameNotLiteral indicates a Cypress.Commands.add call
	// whose name argument is not a string literal. Silently accepting it
	// would corrupt the Name field's contract, so analysis of the file
	// is aborted rather than skipping the record.
	ErrCommandNameNotLiteral = errors.New("command name argument must be a string literal")
)

// SyntaxError reports that the source text is not syntactically valid
// JavaScript. It is fatal for the file: the extractor is never run over
// a tree containing parse errors.
type SyntaxError struct {
	// FilePath is the path the content was attributed to.
	FilePath string

	// Line is 1-based, Column 1-based, of the first error node.
	Line   int
	Column int

	Message string
}

// Error formats as "file.js:10:5: unexpected token".
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line, e.Column, e.Message)
}

// InvariantError wraps ErrCommandNameNotLiteral with the offending
// call's source offset.
type InvariantError struct {
	FilePath string
	Offset   int
	Err      error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: offset %d: %v", e.FilePath, e.Offset, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *InvariantError) Unwrap() error {
	return e.Err
}
