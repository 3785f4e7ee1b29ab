package ast

// Record types emitted by the Cypress extractor.
//
// All Start/End fields are byte offsets into the exact source text that
// was parsed, 0 <= Start < End <= len(source), and source[Start:End] is
// the span of the described construct. This lets downstream tools slice,
// annotate, or rewrite the original file without re-parsing.
//
// Every record is produced fresh per Analyze call and is immutable once
// the call returns; there is no persistent store.

// Fixed vocabulary recognized by the extractor.
const (
	// CommandAddPath is the dotted callee that registers a custom command.
	CommandAddPath = "Cypress.Commands.add"

	// CommandPrefix is the dotted-name prefix of command invocations.
	CommandPrefix = "cy."

	// TestCallName and SuiteCallName are the test/suite call families.
	// Dotted variants (it.skip, describe.only, ...) belong to the family.
	TestCallName  = "it"
	SuiteCallName = "describe"

	// ScenarioPrefix is the scenario-factory call family prefix.
	ScenarioPrefix = "scenario"

	// ScenarioFnSuffix marks object properties holding scenario functions.
	ScenarioFnSuffix = "Fn"
)

// HookKinds is the fixed set of recognized suite-level hook calls.
var HookKinds = []string{"before", "beforeEach", "after", "afterEach"}

// isHookKind reports whether name is exactly one of the four hook calls.
func isHookKind(name string) bool {
	for _, k := range HookKinds {
		if name == k {
			return true
		}
	}
	return false
}

// ScopeKind classifies a ScopeFrame.
type ScopeKind string

// Scope frame kinds. A frame's skip/only variant is derived purely from
// the frame's own resolved callee name (it.skip, describe.only, ...).
const (
	ScopeTest      ScopeKind = "test"
	ScopeTestSkip  ScopeKind = "test-skip"
	ScopeTestOnly  ScopeKind = "test-only"
	ScopeSuite     ScopeKind = "suite"
	ScopeSuiteSkip ScopeKind = "suite-skip"
	ScopeSuiteOnly ScopeKind = "suite-only"
)

// Argument captures one call argument's node kind and source span.
type Argument struct {
	// Type is the tree-sitter node type of the argument expression.
	Type string `json:"type"`

	Start int `json:"start"`
	End   int `json:"end"`
}

// CommandDefinition is one recognized Cypress.Commands.add registration.
type CommandDefinition struct {
	// Name is the literal-string first argument. A non-literal name is a
	// hard invariant violation and aborts analysis of the file.
	Name string `json:"name"`

	Start int `json:"start"`
	End   int `json:"end"`

	// CommandsUsed and OtherCalls are collected from the implementation
	// function (the last positional argument) when inner-call collection
	// is enabled.
	CommandsUsed []CommandUsage `json:"commandsUsed,omitempty"`
	OtherCalls   []OtherCall    `json:"otherCalls,omitempty"`
}

// CommandUsage is one recognized cy.* command invocation.
type CommandUsage struct {
	// Name is the final command name in the invocation chain.
	Name string `json:"name"`

	// Start points at the trailing property identifier, so a chained
	// usage points at its own name rather than the chain's root. End
	// covers the whole call including its arguments.
	Start int `json:"start"`
	End   int `json:"end"`

	// Chain is the ordered list of intermediate command names invoked
	// earlier in the same fluent sequence. Empty for cy.name(...) calls.
	Chain []string `json:"chain"`

	Arguments []Argument `json:"arguments"`

	// LiteralArguments maps argument index to its materialized value for
	// the arguments that are fully literal. Sparse; never partial within
	// a single value.
	LiteralArguments map[int]any `json:"literalArguments,omitempty"`
}

// OtherCall is any resolvable non-command call found inside a command,
// test, hook, or scenario-function body.
type OtherCall struct {
	// Name is the full dotted callee rendering, e.g. "helpers.login" or
	// "fetch".
	Name string `json:"name"`

	// Start points at the final identifier of the callee chain;
	// RootStart points at the beginning of the whole expression.
	Start     int `json:"start"`
	RootStart int `json:"rootStart"`
	End       int `json:"end"`

	Arguments []Argument `json:"arguments"`
}

// ScopeFrame is one enclosing suite/test call of a matched construct.
type ScopeFrame struct {
	// Name is the display name inferred from the call's first argument.
	Name string    `json:"name"`
	Kind ScopeKind `json:"kind"`

	Start int `json:"start"`
	End   int `json:"end"`

	Skip bool `json:"skip,omitempty"`
	Only bool `json:"only,omitempty"`
}

// TestCase is one recognized it(...) call with a function-valued second
// argument.
type TestCase struct {
	// Scope is the enclosing suite/test frames, outermost first,
	// inclusive of the test's own frame as the last element.
	Scope []ScopeFrame `json:"scope"`

	Start int `json:"start"`
	End   int `json:"end"`

	// FuncStart/FuncEnd span the test body function argument.
	FuncStart int `json:"funcStart"`
	FuncEnd   int `json:"funcEnd"`

	CommandsUsed []CommandUsage `json:"commandsUsed,omitempty"`
	OtherCalls   []OtherCall    `json:"otherCalls,omitempty"`

	// Skip/Only are the logical OR across the entire scope chain,
	// including the test's own call.
	Skip bool `json:"skip,omitempty"`
	Only bool `json:"only,omitempty"`
}

// Hook is one recognized suite-level setup/teardown call. Hooks nested
// inside a test body are never recorded.
type Hook struct {
	// Scope is the enclosing suite frames, outermost first.
	Scope []ScopeFrame `json:"scope"`

	Start int `json:"start"`
	End   int `json:"end"`

	FuncStart int `json:"funcStart"`
	FuncEnd   int `json:"funcEnd"`

	CommandsUsed []CommandUsage `json:"commandsUsed,omitempty"`
	OtherCalls   []OtherCall    `json:"otherCalls,omitempty"`
}

// Scenario is one parsed scenario-factory call (extension only).
type Scenario struct {
	// Name is the full dotted callee, e.g. "scenario.crudScreen".
	Name string `json:"name"`

	Start int `json:"start"`
	End   int `json:"end"`

	// Scope is the ancestor chain restricted to suite-scoping calls.
	// Hooks and tests are never part of a scenario's enclosing scope.
	Scope []ScopeFrame `json:"scope"`

	Functions []ScenarioFunction `json:"functions"`
}

// ScenarioFunction is one Fn-suffixed function property of a scenario
// factory's object argument.
type ScenarioFunction struct {
	// Name is the property key, including the Fn suffix.
	Name string `json:"name"`

	Start int `json:"start"`
	End   int `json:"end"`

	FuncStart int `json:"funcStart"`
	FuncEnd   int `json:"funcEnd"`

	CommandsUsed []CommandUsage `json:"commandsUsed,omitempty"`
	OtherCalls   []OtherCall    `json:"otherCalls,omitempty"`
}

// Severity levels for diagnostics.
const (
	SeverityError = "error"
	SeverityInfo  = "info"
)

// Diagnostic is a non-fatal structural finding reported alongside the
// extracted records. Diagnostics never abort analysis; the engine keeps
// walking and simply does not emit a record for the offending call.
type Diagnostic struct {
	Message string `json:"message"`

	// Location is the byte offset of the offending construct.
	Location int `json:"location"`

	// Severity is "error" for structural violations and "info" for
	// advisory findings. Empty is treated as "error".
	Severity string `json:"severity,omitempty"`
}

// Result is the per-file analysis output. Category slices are nil when
// the corresponding option is disabled, empty when enabled but nothing
// matched. Errors is never nil.
type Result struct {
	// FilePath is the path the content was attributed to at Analyze time.
	FilePath string `json:"filePath"`

	Added     []CommandDefinition `json:"added,omitempty"`
	Used      []CommandUsage      `json:"used,omitempty"`
	Tests     []TestCase          `json:"tests,omitempty"`
	Hooks     map[string][]Hook   `json:"hooks,omitempty"`
	Scenarios []Scenario          `json:"scenarios,omitempty"`

	Errors []Diagnostic `json:"errors"`
}

// EmptyResult returns the result reported for files that are skipped
// before parsing (e.g. shebang scripts): no records, no diagnostics.
func EmptyResult(filePath string) *Result {
	return &Result{FilePath: filePath, Errors: []Diagnostic{}}
}
