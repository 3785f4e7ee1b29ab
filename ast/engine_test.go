package ast

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestAnalyze_EmptySource(t *testing.T) {
	result := analyze(t, "")

	if result.FilePath != "spec.cy.js" {
		t.Errorf("expected filePath 'spec.cy.js', got %q", result.FilePath)
	}
	if len(result.Errors) != 0 {
		t.Errorf("expected no diagnostics, got %v", result.Errors)
	}
	if len(result.Added)+len(result.Used)+len(result.Tests) != 0 {
		t.Error("expected no records for empty source")
	}
}

func TestAnalyze_CommandDefinition(t *testing.T) {
	src := `Cypress.Commands.add("login", (user) => {
  cy.visit("/login");
  cy.get("#u").type(user);
});`
	result := analyze(t, src)

	if len(result.Added) != 1 {
		t.Fatalf("expected 1 command definition, got %d", len(result.Added))
	}
	def := result.Added[0]
	if def.Name != "login" {
		t.Errorf("expected name 'login', got %q", def.Name)
	}
	if got := src[def.Start:def.End]; !strings.HasPrefix(got, "Cypress.Commands.add") || !strings.HasSuffix(got, ")") {
		t.Errorf("definition span is %q", got)
	}

	if len(def.CommandsUsed) != 3 {
		t.Fatalf("expected 3 nested usages, got %d: %+v", len(def.CommandsUsed), def.CommandsUsed)
	}

	visit, get, typ := def.CommandsUsed[0], def.CommandsUsed[1], def.CommandsUsed[2]

	if visit.Name != "visit" || len(visit.Chain) != 0 {
		t.Errorf("first usage = %q chain %v, want visit with empty chain", visit.Name, visit.Chain)
	}
	if get.Name != "get" || len(get.Chain) != 0 {
		t.Errorf("second usage = %q chain %v, want get with empty chain", get.Name, get.Chain)
	}
	if typ.Name != "type" || !reflect.DeepEqual(typ.Chain, []string{"get"}) {
		t.Errorf("third usage = %q chain %v, want type chained after get", typ.Name, typ.Chain)
	}

	if got := src[get.Start:get.End]; got != `get("#u")` {
		t.Errorf("get span = %q", got)
	}
	if got := src[typ.Start:typ.End]; got != "type(user)" {
		t.Errorf("type span = %q", got)
	}
}

func TestAnalyze_CommandNameWithEscapes(t *testing.T) {
	src := `Cypress.Commands.add("log\"in", () => {});
Cypress.Commands.add("tab\there", () => {});`
	result := analyze(t, src)

	if len(result.Added) != 2 {
		t.Fatalf("expected 2 command definitions, got %d", len(result.Added))
	}
	if result.Added[0].Name != `log"in` {
		t.Errorf("first name = %q, want %q", result.Added[0].Name, `log"in`)
	}
	if result.Added[1].Name != "tab\there" {
		t.Errorf("second name = %q, want %q", result.Added[1].Name, "tab\there")
	}
}

func TestAnalyze_ChainedUsages(t *testing.T) {
	src := `it("chains", () => { cy.a().b().c(); });`
	result := analyze(t, src)

	if len(result.Tests) != 1 {
		t.Fatalf("expected 1 test, got %d", len(result.Tests))
	}

	usages := result.Tests[0].CommandsUsed
	if len(usages) != 3 {
		t.Fatalf("expected 3 usages, got %d: %+v", len(usages), usages)
	}

	wantChains := map[string][]string{
		"a": {},
		"b": {"a"},
		"c": {"a", "b"},
	}
	for i, name := range []string{"a", "b", "c"} {
		usage := usages[i]
		if usage.Name != name {
			t.Errorf("usage %d = %q, want %q", i, usage.Name, name)
		}
		if !reflect.DeepEqual(usage.Chain, wantChains[name]) {
			t.Errorf("usage %q chain = %v, want %v", name, usage.Chain, wantChains[name])
		}
	}

	// The same three invocations surface in the file-level used list.
	if len(result.Used) != 3 {
		t.Errorf("expected 3 file-level usages, got %d", len(result.Used))
	}
}

func TestAnalyze_PropertyAccessIsNotUsage(t *testing.T) {
	src := `cy.state.reset();
cy.visit("/");`
	result := analyze(t, src)

	if len(result.Used) != 1 || result.Used[0].Name != "visit" {
		t.Fatalf("expected only visit, got %+v", result.Used)
	}
	if len(result.Errors) != 0 {
		t.Errorf("property-only access must not be diagnosed, got %v", result.Errors)
	}
}

func TestAnalyze_LiteralArguments(t *testing.T) {
	src := `cy.request({url: "/x", retries: 2}, selector);`
	result := analyze(t, src)

	if len(result.Used) != 1 {
		t.Fatalf("expected 1 usage, got %d", len(result.Used))
	}
	usage := result.Used[0]

	if len(usage.Arguments) != 2 {
		t.Fatalf("expected 2 arguments, got %d", len(usage.Arguments))
	}

	want := map[string]any{"url": "/x", "retries": float64(2)}
	if !reflect.DeepEqual(usage.LiteralArguments[0], want) {
		t.Errorf("literal argument 0 = %#v, want %#v", usage.LiteralArguments[0], want)
	}
	if _, present := usage.LiteralArguments[1]; present {
		t.Error("non-literal argument must not appear in literalArguments")
	}
}

func TestAnalyze_ScopeAndSkipOnly(t *testing.T) {
	src := `describe.skip("outer", () => {
  describe("inner", () => {
    it.only("does things", () => {});
  });
});`
	result := analyze(t, src)

	if len(result.Tests) != 1 {
		t.Fatalf("expected 1 test, got %d", len(result.Tests))
	}
	test := result.Tests[0]

	if len(test.Scope) != 3 {
		t.Fatalf("expected 3 scope frames, got %d", len(test.Scope))
	}

	wantFrames := []struct {
		name string
		kind ScopeKind
		skip bool
		only bool
	}{
		{"outer", ScopeSuiteSkip, true, false},
		{"inner", ScopeSuite, false, false},
		{"does things", ScopeTestOnly, false, true},
	}
	for i, want := range wantFrames {
		frame := test.Scope[i]
		if frame.Name != want.name || frame.Kind != want.kind || frame.Skip != want.skip || frame.Only != want.only {
			t.Errorf("frame %d = %+v, want %+v", i, frame, want)
		}
	}

	if !test.Skip {
		t.Error("skip must propagate from the outer suite")
	}
	if !test.Only {
		t.Error("only must propagate from the test's own call")
	}
}

func TestAnalyze_ScopeNameInference(t *testing.T) {
	src := "describe(`suite ${env}`, () => { it(title, () => {}); });"
	result := analyze(t, src)

	if len(result.Tests) != 1 {
		t.Fatalf("expected 1 test, got %d", len(result.Tests))
	}
	scope := result.Tests[0].Scope
	if scope[0].Name != "suite ${env}" {
		t.Errorf("suite name = %q", scope[0].Name)
	}
	if scope[1].Name != "${title}" {
		t.Errorf("test name = %q", scope[1].Name)
	}
}

func TestAnalyze_Hooks(t *testing.T) {
	src := `describe("s", () => {
  beforeEach(() => { cy.visit("/"); });
  it("t", () => {});
});`
	result := analyze(t, src)

	hooks := result.Hooks["beforeEach"]
	if len(hooks) != 1 {
		t.Fatalf("expected 1 beforeEach hook, got %+v", result.Hooks)
	}
	hook := hooks[0]

	if len(hook.Scope) != 1 || hook.Scope[0].Name != "s" {
		t.Errorf("hook scope = %+v", hook.Scope)
	}
	if len(hook.CommandsUsed) != 1 || hook.CommandsUsed[0].Name != "visit" {
		t.Errorf("hook commandsUsed = %+v", hook.CommandsUsed)
	}
	if got := src[hook.FuncStart:hook.FuncEnd]; !strings.HasPrefix(got, "() =>") {
		t.Errorf("hook func span = %q", got)
	}
}

func TestAnalyze_HookFalsePositivesAreSilent(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"non-function argument", `before(42);`},
		{"wrong arity", `before(() => {}, "extra");`},
		{"no arguments", `after();`},
		{"nested in test body", `it("t", () => { before(() => {}); });`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := analyze(t, tc.src)
			for kind, hooks := range result.Hooks {
				if len(hooks) > 0 {
					t.Errorf("unexpected %s hook: %+v", kind, hooks)
				}
			}
			if len(result.Errors) != 0 {
				t.Errorf("hook guards must stay silent, got %v", result.Errors)
			}
		})
	}
}

func TestAnalyze_TestDiagnostics(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"missing body", `it("lonely");`},
		{"non-function body", `it("bad", 42);`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := analyze(t, tc.src)
			if len(result.Tests) != 0 {
				t.Errorf("expected no test record, got %+v", result.Tests)
			}
			if len(result.Errors) != 1 {
				t.Fatalf("expected 1 diagnostic, got %v", result.Errors)
			}
			if result.Errors[0].Severity != SeverityError {
				t.Errorf("diagnostic severity = %q", result.Errors[0].Severity)
			}
		})
	}
}

func TestAnalyze_NonLiteralCommandNameIsFatal(t *testing.T) {
	src := `Cypress.Commands.add(dynamicName, () => {});`
	_, err := NewAnalyzer().Analyze(context.Background(), []byte(src), "commands.js")

	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrCommandNameNotLiteral) {
		t.Errorf("expected ErrCommandNameNotLiteral, got %v", err)
	}

	var inv *InvariantError
	if !errors.As(err, &inv) {
		t.Fatalf("expected *InvariantError, got %T", err)
	}
	if inv.FilePath != "commands.js" {
		t.Errorf("invariant error file = %q", inv.FilePath)
	}
}

func TestAnalyze_SyntaxErrorIsFatal(t *testing.T) {
	src := `describe("s", () => {`
	_, err := NewAnalyzer().Analyze(context.Background(), []byte(src), "broken.js")

	var synErr *SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("expected *SyntaxError, got %v", err)
	}
	if synErr.Line < 1 || synErr.Column < 1 {
		t.Errorf("positions must be 1-based, got %d:%d", synErr.Line, synErr.Column)
	}
	if !strings.Contains(synErr.Error(), "broken.js") {
		t.Errorf("error string = %q", synErr.Error())
	}
}

func TestAnalyze_CategoryToggles(t *testing.T) {
	src := `Cypress.Commands.add("x", () => {});
describe("s", () => {
  beforeEach(() => {});
  it("t", () => { cy.visit("/"); });
});`
	result := analyze(t, src, WithCategories(false, false, false, false))

	if result.Added != nil || result.Used != nil || result.Tests != nil || result.Hooks != nil {
		t.Errorf("disabled categories must stay nil, got %+v", result)
	}
}

func TestAnalyze_InnerCallsDisabled(t *testing.T) {
	src := `Cypress.Commands.add("x", () => { cy.visit("/"); });`
	result := analyze(t, src, WithInnerCalls(false))

	if len(result.Added) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(result.Added))
	}
	if result.Added[0].CommandsUsed != nil {
		t.Errorf("side channels must be nil when disabled, got %+v", result.Added[0].CommandsUsed)
	}
	// The file-level used list is a separate category and stays on.
	if len(result.Used) != 1 {
		t.Errorf("expected 1 file-level usage, got %d", len(result.Used))
	}
}

func TestAnalyze_OffsetInvariants(t *testing.T) {
	src := `Cypress.Commands.add("login", (u) => { cy.visit("/"); helper(u); });
describe("s", () => {
  before(() => { cy.clearCookies(); });
  it("t", () => { cy.get("#a").click(); });
});`
	result := analyze(t, src)

	check := func(what string, start, end int) {
		t.Helper()
		if start < 0 || end <= start || end > len(src) {
			t.Errorf("%s has invalid span [%d, %d)", what, start, end)
		}
	}

	for _, def := range result.Added {
		check("definition", def.Start, def.End)
		for _, other := range def.OtherCalls {
			check("otherCall", other.Start, other.End)
			check("otherCall root", other.RootStart, other.End)
		}
	}
	for _, usage := range result.Used {
		check("usage", usage.Start, usage.End)
		for _, arg := range usage.Arguments {
			check("argument", arg.Start, arg.End)
		}
	}
	for _, test := range result.Tests {
		check("test", test.Start, test.End)
		check("test func", test.FuncStart, test.FuncEnd)
		for _, frame := range test.Scope {
			check("frame", frame.Start, frame.End)
		}
	}
	for _, hooks := range result.Hooks {
		for _, hook := range hooks {
			check("hook", hook.Start, hook.End)
			check("hook func", hook.FuncStart, hook.FuncEnd)
		}
	}
}

func TestAnalyze_OtherCallOffsets(t *testing.T) {
	src := `Cypress.Commands.add("x", () => { utils.auth.login("admin"); });`
	result := analyze(t, src)

	if len(result.Added) != 1 || len(result.Added[0].OtherCalls) != 1 {
		t.Fatalf("expected 1 other call, got %+v", result.Added)
	}
	other := result.Added[0].OtherCalls[0]

	if other.Name != "utils.auth.login" {
		t.Errorf("other call name = %q", other.Name)
	}
	if got := src[other.Start:other.End]; got != `login("admin")` {
		t.Errorf("span from final identifier = %q", got)
	}
	if got := src[other.RootStart:other.End]; got != `utils.auth.login("admin")` {
		t.Errorf("span from root = %q", got)
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	src := `describe("s", () => {
  beforeEach(() => { cy.visit("/"); });
  it("t", () => { cy.get("#a").type("x"); });
});`

	first := analyze(t, src)
	second := analyze(t, src)

	if !reflect.DeepEqual(first, second) {
		t.Error("re-analyzing identical source must yield identical output")
	}
}
