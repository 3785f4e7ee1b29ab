package ast

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Scenario-factory extension.
//
// A second, independent traversal over the same tree, merged into the
// base result by the Analyze entry point. The extension depends only on
// the shared resolver and inner-call aggregator, never the reverse.
//
// Two checks run per file:
//
//   - Suite-body purity: the top-level statements of every literally
//     named suite block may only call tests, suites, hooks, or scenario
//     factories.
//   - Scenario parsing: scenario.*-prefixed calls must take a single
//     object argument whose Fn-suffixed properties are explicit
//     function-valued properties; each becomes a ScenarioFunction.

// scenarioWalker carries the extension pass state.
type scenarioWalker struct {
	options AnalyzerOptions
	src     []byte
	result  *Result
}

// walk tracks enclosing suite frames only: hooks and tests are not part
// of a scenario's enclosing scope.
func (s *scenarioWalker) walk(node *sitter.Node, suites []ScopeFrame) {
	if node == nil {
		return
	}

	next := suites
	if node.Type() == jsNodeCallExpression {
		if path, ok := resolveCallee(node, s.src); ok {
			dotted := path.String()
			switch {
			case isSuiteFamily(dotted):
				s.checkSuitePurity(node, dotted)
				next = append(suites[:len(suites):len(suites)],
					frameForCall(node, path, dotted, s.src))
			case isScenarioCall(dotted):
				s.parseScenario(node, dotted, suites)
			}
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		s.walk(node.Child(i), next)
	}
}

// isScenarioCall reports whether a dotted name belongs to the scenario
// factory family.
func isScenarioCall(dotted string) bool {
	return dotted == ScenarioPrefix || strings.HasPrefix(dotted, ScenarioPrefix+".")
}

// checkSuitePurity validates that a literally named suite block's body
// contains only test/suite/hook/factory calls at its top level.
//
// A suite whose name is not a literal is most likely itself produced by
// a factory, so it is exempted with an informational diagnostic rather
// than checked against rules that assume a hand-written block.
func (s *scenarioWalker) checkSuitePurity(call *sitter.Node, dotted string) {
	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() < 2 {
		return
	}

	nameNode := args.NamedChild(0)
	if nameNode.Type() != jsNodeString {
		s.result.Errors = append(s.result.Errors, Diagnostic{
			Message:  fmt.Sprintf("%s name is not a literal; assuming a factory-generated suite", dotted),
			Location: int(nameNode.StartByte()),
			Severity: SeverityInfo,
		})
		return
	}

	fn := args.NamedChild(1)
	if !isFunctionNode(fn.Type()) {
		return
	}
	body := fn.ChildByFieldName("body")
	if body == nil || body.Type() != jsNodeStatementBlock {
		return
	}

	suiteName := stringContent(nameNode, s.src)
	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		if stmt.Type() != jsNodeExpressionStatement || stmt.NamedChildCount() == 0 {
			continue
		}
		expr := stmt.NamedChild(0)
		if expr.Type() != jsNodeCallExpression {
			continue
		}

		found := calleeText(expr, s.src)
		if path, ok := resolveCallee(expr, s.src); ok {
			name := path.String()
			if isTestFamily(name) || isSuiteFamily(name) || isHookKind(name) || isScenarioCall(name) {
				continue
			}
			found = name
		}
		s.result.Errors = append(s.result.Errors, Diagnostic{
			Message: fmt.Sprintf("suite %q blocks must only contain test, hook, or scenario calls (found %q)",
				suiteName, found),
			Location: int(expr.StartByte()),
			Severity: SeverityError,
		})
	}
}

// calleeText returns the raw callee source for diagnostics about calls
// whose callee could not be resolved.
func calleeText(call *sitter.Node, src []byte) string {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return "<unknown>"
	}
	text := string(src[fn.StartByte():fn.EndByte()])
	if len(text) > 60 {
		text = text[:60] + "..."
	}
	return text
}

// parseScenario validates one scenario-factory call and extracts its
// function properties. All violations are diagnostics; a violating call
// produces no record at all.
func (s *scenarioWalker) parseScenario(call *sitter.Node, dotted string, suites []ScopeFrame) {
	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() != 1 || args.NamedChild(0).Type() != jsNodeObject {
		s.result.Errors = append(s.result.Errors, Diagnostic{
			Message:  fmt.Sprintf("%s must take exactly one object argument", dotted),
			Location: int(call.StartByte()),
			Severity: SeverityError,
		})
		return
	}

	scope := make([]ScopeFrame, len(suites))
	copy(scope, suites)

	scenario := Scenario{
		Name:      dotted,
		Start:     int(call.StartByte()),
		End:       int(call.EndByte()),
		Scope:     scope,
		Functions: []ScenarioFunction{},
	}

	object := args.NamedChild(0)
	for i := 0; i < int(object.NamedChildCount()); i++ {
		prop := object.NamedChild(i)
		switch prop.Type() {
		case jsNodePair:
			s.parseScenarioPair(prop, dotted, &scenario)

		case jsNodeMethodDefinition:
			s.parseScenarioMethod(prop, dotted, &scenario)

		case jsNodeShorthandProperty:
			name := string(s.src[prop.StartByte():prop.EndByte()])
			if strings.HasSuffix(name, ScenarioFnSuffix) {
				s.result.Errors = append(s.result.Errors, Diagnostic{
					Message:  fmt.Sprintf("%s property %q must not be shorthand", dotted, name),
					Location: int(prop.StartByte()),
					Severity: SeverityError,
				})
			}

		default:
			// Spreads and computed members carry no parsable convention.
		}
	}

	s.result.Scenarios = append(s.result.Scenarios, scenario)
}

// parseScenarioPair handles a key: value scenario property.
func (s *scenarioWalker) parseScenarioPair(pair *sitter.Node, dotted string, scenario *Scenario) {
	keyNode := pair.ChildByFieldName("key")
	valNode := pair.ChildByFieldName("value")
	if keyNode == nil || valNode == nil {
		return
	}
	key, ok := propertyKey(keyNode, s.src)
	if !ok {
		return
	}

	tagged := strings.HasSuffix(key, ScenarioFnSuffix)
	isFn := isFunctionNode(valNode.Type())

	switch {
	case tagged && isFn:
		fn := ScenarioFunction{
			Name:      key,
			Start:     int(pair.StartByte()),
			End:       int(pair.EndByte()),
			FuncStart: int(valNode.StartByte()),
			FuncEnd:   int(valNode.EndByte()),
		}
		if s.options.InnerCalls {
			inner := collectInnerCalls(valNode, s.src, true, true)
			fn.CommandsUsed = inner.CommandsUsed
			fn.OtherCalls = inner.OtherCalls
		}
		scenario.Functions = append(scenario.Functions, fn)

	case tagged:
		s.result.Errors = append(s.result.Errors, Diagnostic{
			Message:  fmt.Sprintf("%s property %q must be a function, got %s", dotted, key, valNode.Type()),
			Location: int(valNode.StartByte()),
			Severity: SeverityError,
		})

	case isFn:
		s.result.Errors = append(s.result.Errors, Diagnostic{
			Message:  fmt.Sprintf("%s function property %q must carry the %s suffix", dotted, key, ScenarioFnSuffix),
			Location: int(pair.StartByte()),
			Severity: SeverityError,
		})
	}
}

// parseScenarioMethod handles method-style properties (key() { ... }).
// They are function-valued and non-shorthand, so an Fn-suffixed method
// is a valid scenario function.
func (s *scenarioWalker) parseScenarioMethod(method *sitter.Node, dotted string, scenario *Scenario) {
	nameNode := method.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	key, ok := propertyKey(nameNode, s.src)
	if !ok {
		return
	}

	if !strings.HasSuffix(key, ScenarioFnSuffix) {
		s.result.Errors = append(s.result.Errors, Diagnostic{
			Message:  fmt.Sprintf("%s function property %q must carry the %s suffix", dotted, key, ScenarioFnSuffix),
			Location: int(method.StartByte()),
			Severity: SeverityError,
		})
		return
	}

	fn := ScenarioFunction{
		Name:      key,
		Start:     int(method.StartByte()),
		End:       int(method.EndByte()),
		FuncStart: int(method.StartByte()),
		FuncEnd:   int(method.EndByte()),
	}
	if s.options.InnerCalls {
		if body := method.ChildByFieldName("body"); body != nil {
			inner := collectInnerCalls(body, s.src, true, true)
			fn.CommandsUsed = inner.CommandsUsed
			fn.OtherCalls = inner.OtherCalls
		}
	}
	scenario.Functions = append(scenario.Functions, fn)
}
