// Package ast extracts the structural facts of Cypress test suites
// from tree-sitter-parsed JavaScript: command definitions and usages,
// test cases, suite scopes, hooks, and (optionally) scenario-factory
// calls, with byte-exact source spans and a non-fatal diagnostic
// channel.
package ast

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"log/slog"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"go.opentelemetry.io/otel/attribute"
)

// Analyzer extracts the structural facts of a Cypress test suite from
// JavaScript source: custom command definitions and usages (including
// chained invocations), test cases, suite scopes, hooks, and optionally
// scenario-factory calls.
//
// Description:
//
//	Analyzer parses source with tree-sitter and performs a single
//	ancestor-tracked traversal classifying every call expression. It has
//	no semantic or type information: classification is purely syntactic,
//	deliberately conservative, and treats anything it cannot linearize
//	as "not of interest" rather than an error.
//
// Thread Safety:
//
//	Analyzer is safe for concurrent use. Each Analyze call creates its
//	own tree-sitter parser instance and accumulators.
//
// Example:
//
//	analyzer := NewAnalyzer(WithScenarios(true))
//	result, err := analyzer.Analyze(ctx, content, "login.cy.js")
//	if err != nil {
//	    return fmt.Errorf("analyze: %w", err)
//	}
//	for _, test := range result.Tests {
//	    fmt.Println(test.Scope[len(test.Scope)-1].Name)
//	}
type Analyzer struct {
	options AnalyzerOptions
}

// AnalyzerOptions configures Analyzer behavior.
type AnalyzerOptions struct {
	// Added/Used/Tests/Hooks select which record categories to compute.
	// All are on by default.
	Added bool
	Used  bool
	Tests bool
	Hooks bool

	// InnerCalls populates the commandsUsed/otherCalls side channels on
	// command, test, hook, and scenario-function records.
	InnerCalls bool

	// Scenarios enables the scenario-factory extension pass.
	Scenarios bool

	// MaxFileSize is the maximum content size in bytes to analyze.
	// Larger content returns ErrFileTooLarge. Default: 10MB.
	MaxFileSize int
}

// DefaultAnalyzerOptions returns the default options.
func DefaultAnalyzerOptions() AnalyzerOptions {
	return AnalyzerOptions{
		Added:       true,
		Used:        true,
		Tests:       true,
		Hooks:       true,
		InnerCalls:  true,
		Scenarios:   false,
		MaxFileSize: 10 * 1024 * 1024, // 10MB
	}
}

// AnalyzerOption is a functional option for configuring Analyzer.
type AnalyzerOption func(*AnalyzerOptions)

// WithCategories selects which record categories to compute.
func WithCategories(added, used, tests, hooks bool) AnalyzerOption {
	return func(o *AnalyzerOptions) {
		o.Added = added
		o.Used = used
		o.Tests = tests
		o.Hooks = hooks
	}
}

// WithInnerCalls sets whether nested-call side channels are populated.
func WithInnerCalls(enabled bool) AnalyzerOption {
	return func(o *AnalyzerOptions) {
		o.InnerCalls = enabled
	}
}

// WithScenarios sets whether the scenario-factory extension runs.
func WithScenarios(enabled bool) AnalyzerOption {
	return func(o *AnalyzerOptions) {
		o.Scenarios = enabled
	}
}

// WithMaxFileSize sets the maximum content size for analysis.
func WithMaxFileSize(size int) AnalyzerOption {
	return func(o *AnalyzerOptions) {
		o.MaxFileSize = size
	}
}

// NewAnalyzer creates an Analyzer with the given options.
func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	options := DefaultAnalyzerOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Analyzer{options: options}
}

// Options returns a copy of the analyzer's effective options.
func (a *Analyzer) Options() AnalyzerOptions {
	return a.options
}

// Analyze extracts Cypress structural records from JavaScript source.
//
// Description:
//
//	Parses the content with tree-sitter, rejects syntactically invalid
//	source with *SyntaxError, then walks every call expression with the
//	live ancestor chain tracked explicitly. Non-fatal structural
//	findings accumulate in Result.Errors; they never abort analysis.
//
// Inputs:
//
//	ctx      - Context for cancellation. Checked before and after parsing.
//	content  - Raw JavaScript source bytes. Must be valid UTF-8.
//	filePath - Path the content is attributed to, for error reporting.
//
// Outputs:
//
//	*Result - Extracted records and diagnostics. Never nil on success.
//	error   - Non-nil for complete failures: invalid UTF-8, oversized
//	          content, syntax errors (*SyntaxError), or a command
//	          registration whose name argument is not a string literal
//	          (ErrCommandNameNotLiteral via *InvariantError).
//
// Thread Safety:
//
//	This method is safe for concurrent use.
func (a *Analyzer) Analyze(ctx context.Context, content []byte, filePath string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analyze canceled before start: %w", err)
	}

	if len(content) > a.options.MaxFileSize {
		return nil, ErrFileTooLarge
	}
	if !utf8.Valid(content) {
		return nil, ErrInvalidContent
	}

	ctx, span := startAnalyzeSpan(ctx, filePath)
	defer span.End()
	start := time.Now()

	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		recordAnalysis(ctx, filePath, time.Since(start), 0, err)
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analyze canceled after parse: %w", err)
	}

	root := tree.RootNode()
	if synErr := findSyntaxError(root, filePath, content); synErr != nil {
		recordAnalysis(ctx, filePath, time.Since(start), 0, synErr)
		return nil, synErr
	}

	result := &Result{
		FilePath: filePath,
		Errors:   []Diagnostic{},
	}
	if a.options.Hooks {
		result.Hooks = make(map[string][]Hook)
	}

	w := &walker{options: a.options, src: content, result: result}
	if err := w.walk(root, nil); err != nil {
		recordAnalysis(ctx, filePath, time.Since(start), 0, err)
		if inv, ok := err.(*InvariantError); ok {
			inv.FilePath = filePath
		}
		return nil, err
	}

	sortUsages(result.Used)

	if a.options.Scenarios {
		s := &scenarioWalker{options: a.options, src: content, result: result}
		s.walk(root, nil)
	}

	records := len(result.Added) + len(result.Used) + len(result.Tests) + len(result.Scenarios)
	for _, hooks := range result.Hooks {
		records += len(hooks)
	}
	span.SetAttributes(
		attribute.Int("records", records),
		attribute.Int("diagnostics", len(result.Errors)),
	)
	recordAnalysis(ctx, filePath, time.Since(start), records, nil)

	slog.Debug("file analyzed",
		slog.String("file", filePath),
		slog.Int("records", records),
		slog.Int("diagnostics", len(result.Errors)),
	)

	return result, nil
}

// findSyntaxError locates the first ERROR or missing node in the tree.
// The extractor is never run over a tree containing parse errors.
func findSyntaxError(root *sitter.Node, filePath string, src []byte) *SyntaxError {
	if root == nil || !root.HasError() {
		return nil
	}

	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == nil || !node.HasError() {
			continue
		}

		if node.Type() == jsNodeError || node.IsMissing() {
			msg := "unexpected token"
			if node.IsMissing() {
				msg = fmt.Sprintf("missing %s", node.Type())
			}
			return &SyntaxError{
				FilePath: filePath,
				Line:     int(node.StartPoint().Row) + 1,
				Column:   int(node.StartPoint().Column) + 1,
				Message:  msg,
			}
		}

		for i := int(node.ChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, node.Child(i))
		}
	}

	// HasError was set but no ERROR node was reachable; report the file
	// start rather than pretending the source is clean.
	return &SyntaxError{FilePath: filePath, Line: 1, Column: 1, Message: "syntax error"}
}

// ancestorCall is one enclosing call expression on the traversal stack,
// with its callee resolved once at push time.
type ancestorCall struct {
	node   *sitter.Node
	path   calleePath
	dotted string
}

// walker performs the ancestor-aware top-level extraction traversal.
type walker struct {
	options AnalyzerOptions
	src     []byte
	result  *Result
}

// walk visits every node, classifying call expressions against the live
// ancestor chain. The chain is an explicit stack passed through the
// recursion; only calls with a resolvable callee are pushed, since
// unresolvable ancestors can never contribute scope frames.
func (w *walker) walk(node *sitter.Node, ancestors []ancestorCall) error {
	if node == nil {
		return nil
	}

	next := ancestors
	if node.Type() == jsNodeCallExpression {
		if path, ok := resolveCallee(node, w.src); ok {
			if err := w.classify(node, path, ancestors); err != nil {
				return err
			}
			// Full-slice expression forces append to copy, so sibling
			// subtrees never share chain storage.
			next = append(ancestors[:len(ancestors):len(ancestors)], ancestorCall{
				node:   node,
				path:   path,
				dotted: path.String(),
			})
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		if err := w.walk(node.Child(i), next); err != nil {
			return err
		}
	}
	return nil
}

// classify routes one resolved call to the matching detector, in
// priority order. Calls matching nothing are ignored; that is the
// common case in real code, not an error.
func (w *walker) classify(call *sitter.Node, path calleePath, ancestors []ancestorCall) error {
	dotted := path.String()

	if dotted == CommandAddPath {
		if w.options.Added {
			return w.extractCommandDefinition(call)
		}
		return nil
	}

	if usage, ok := buildCommandUsage(call, path, w.src); ok {
		if w.options.Used {
			w.result.Used = append(w.result.Used, usage)
		}
		return nil
	}

	if isTestFamily(dotted) {
		if w.options.Tests {
			w.extractTestCase(call, path, dotted, ancestors)
		}
		return nil
	}

	if isHookKind(dotted) {
		if w.options.Hooks {
			w.extractHook(call, dotted, ancestors)
		}
		return nil
	}

	return nil
}

// extractCommandDefinition handles Cypress.Commands.add calls.
//
// The name must be a literal string; violating that is a hard invariant
// breach and aborts the file. The implementation function is always the
// final positional argument — an optional options object may sit in the
// middle, so no fixed index is assumed.
func (w *walker) extractCommandDefinition(call *sitter.Node) error {
	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return &InvariantError{Offset: int(call.StartByte()), Err: ErrCommandNameNotLiteral}
	}

	nameNode := args.NamedChild(0)
	if nameNode.Type() != jsNodeString {
		return &InvariantError{Offset: int(nameNode.StartByte()), Err: ErrCommandNameNotLiteral}
	}

	def := CommandDefinition{
		Name:  stringContent(nameNode, w.src),
		Start: int(call.StartByte()),
		End:   int(call.EndByte()),
	}

	if w.options.InnerCalls {
		last := args.NamedChild(int(args.NamedChildCount()) - 1)
		if last != nil && isFunctionNode(last.Type()) {
			inner := collectInnerCalls(last, w.src, true, true)
			def.CommandsUsed = inner.CommandsUsed
			def.OtherCalls = inner.OtherCalls
		}
	}

	w.result.Added = append(w.result.Added, def)
	return nil
}

// extractTestCase handles it-family calls. Arity and body-shape
// violations are diagnostics, not errors, and produce no record.
func (w *walker) extractTestCase(call *sitter.Node, path calleePath, dotted string, ancestors []ancestorCall) {
	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() < 2 {
		w.diag(fmt.Sprintf("%s call requires a name and a function body", dotted), int(call.StartByte()))
		return
	}

	body := args.NamedChild(1)
	if !isFunctionNode(body.Type()) {
		w.diag(fmt.Sprintf("%s call body must be a function, got %s", dotted, body.Type()), int(body.StartByte()))
		return
	}

	scope := scopeFrames(ancestors, w.src)
	scope = append(scope, frameForCall(call, path, dotted, w.src))

	test := TestCase{
		Scope:     scope,
		Start:     int(call.StartByte()),
		End:       int(call.EndByte()),
		FuncStart: int(body.StartByte()),
		FuncEnd:   int(body.EndByte()),
	}
	for _, frame := range scope {
		test.Skip = test.Skip || frame.Skip
		test.Only = test.Only || frame.Only
	}

	if w.options.InnerCalls {
		inner := collectInnerCalls(body, w.src, true, true)
		test.CommandsUsed = inner.CommandsUsed
		test.OtherCalls = inner.OtherCalls
	}

	w.result.Tests = append(w.result.Tests, test)
}

// extractHook handles the four fixed hook calls.
//
// Two silent guards keep identically-named unrelated functions out:
// the call must take exactly one function-valued argument, and it must
// not sit inside a test body. Neither case raises a diagnostic — this
// is likely an unrelated identifier reuse, not a mistake worth noise.
func (w *walker) extractHook(call *sitter.Node, kind string, ancestors []ancestorCall) {
	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() != 1 {
		return
	}
	body := args.NamedChild(0)
	if !isFunctionNode(body.Type()) {
		return
	}

	for _, anc := range ancestors {
		if isTestFamily(anc.dotted) {
			return
		}
	}

	hook := Hook{
		Scope:     scopeFrames(ancestors, w.src),
		Start:     int(call.StartByte()),
		End:       int(call.EndByte()),
		FuncStart: int(body.StartByte()),
		FuncEnd:   int(body.EndByte()),
	}

	if w.options.InnerCalls {
		inner := collectInnerCalls(body, w.src, true, true)
		hook.CommandsUsed = inner.CommandsUsed
		hook.OtherCalls = inner.OtherCalls
	}

	w.result.Hooks[kind] = append(w.result.Hooks[kind], hook)
}

// diag appends a non-fatal structural diagnostic.
func (w *walker) diag(message string, location int) {
	w.result.Errors = append(w.result.Errors, Diagnostic{
		Message:  message,
		Location: location,
		Severity: SeverityError,
	})
}

// isTestFamily reports whether a dotted name is the test call or one of
// its dotted variants. Call-marked chains (it().retries) never match
// because their rendering carries the () marker.
func isTestFamily(dotted string) bool {
	return dotted == TestCallName || strings.HasPrefix(dotted, TestCallName+".")
}

// isSuiteFamily reports whether a dotted name is the suite-scoping call
// or one of its dotted variants.
func isSuiteFamily(dotted string) bool {
	return dotted == SuiteCallName || strings.HasPrefix(dotted, SuiteCallName+".")
}

// scopeFrames filters an ancestor chain to test/suite-family calls and
// converts each into a ScopeFrame, outermost first.
func scopeFrames(ancestors []ancestorCall, src []byte) []ScopeFrame {
	frames := make([]ScopeFrame, 0, len(ancestors))
	for _, anc := range ancestors {
		if isTestFamily(anc.dotted) || isSuiteFamily(anc.dotted) {
			frames = append(frames, frameForCall(anc.node, anc.path, anc.dotted, src))
		}
	}
	return frames
}

// frameForCall builds the ScopeFrame for one test/suite call. The
// skip/only flags come purely from the call's own resolved name.
func frameForCall(call *sitter.Node, path calleePath, dotted string, src []byte) ScopeFrame {
	skip, only := false, false
	if len(path) > 1 {
		switch path.last().Name {
		case "skip":
			skip = true
		case "only":
			only = true
		}
	}

	kind := ScopeSuite
	if isTestFamily(dotted) {
		switch {
		case skip:
			kind = ScopeTestSkip
		case only:
			kind = ScopeTestOnly
		default:
			kind = ScopeTest
		}
	} else {
		switch {
		case skip:
			kind = ScopeSuiteSkip
		case only:
			kind = ScopeSuiteOnly
		}
	}

	name := "<UNPARSEABLE:missing>"
	if args := call.ChildByFieldName("arguments"); args != nil && args.NamedChildCount() > 0 {
		name = inferDisplayName(args.NamedChild(0), src)
	}

	return ScopeFrame{
		Name:  name,
		Kind:  kind,
		Start: int(call.StartByte()),
		End:   int(call.EndByte()),
		Skip:  skip,
		Only:  only,
	}
}
