package report

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QwilApp/scryo/ast"
	"github.com/QwilApp/scryo/runner"
)

func analyzeReport(t *testing.T, src string, opts ...ast.AnalyzerOption) *runner.Report {
	t.Helper()
	result, err := ast.NewAnalyzer(opts...).Analyze(context.Background(), []byte(src), "spec.cy.js")
	require.NoError(t, err)
	return &runner.Report{Files: []runner.FileResult{{Path: "spec.cy.js", Result: result}}}
}

func TestWriteJSON_Keys(t *testing.T) {
	rep := analyzeReport(t, `Cypress.Commands.add("login", () => { cy.visit("/"); helper(); });
describe("s", () => {
  beforeEach(() => {});
  it("t", () => { cy.login(); });
});`)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, rep, false))

	var decoded struct {
		Files []struct {
			Path   string          `json:"path"`
			Result json.RawMessage `json:"result"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Files, 1)
	assert.Equal(t, "spec.cy.js", decoded.Files[0].Path)

	var result map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(decoded.Files[0].Result, &result))
	for _, key := range []string{"filePath", "added", "used", "tests", "hooks", "errors"} {
		assert.Contains(t, result, key)
	}

	var added []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(result["added"], &added))
	require.Len(t, added, 1)
	for _, key := range []string{"name", "start", "end", "commandsUsed", "otherCalls"} {
		assert.Contains(t, added[0], key)
	}
}

func TestWriteJSON_Deterministic(t *testing.T) {
	src := `describe("s", () => {
  before(() => {});
  beforeEach(() => {});
  it("t", () => { cy.get("#a").click(); });
});`

	var first, second bytes.Buffer
	require.NoError(t, WriteJSON(&first, analyzeReport(t, src), true))
	require.NoError(t, WriteJSON(&second, analyzeReport(t, src), true))
	assert.Equal(t, first.String(), second.String())
}

func TestWriteJSON_PrettyVsCompact(t *testing.T) {
	rep := analyzeReport(t, `it("t", () => {});`)

	var compact, pretty bytes.Buffer
	require.NoError(t, WriteJSON(&compact, rep, false))
	require.NoError(t, WriteJSON(&pretty, rep, true))

	assert.Equal(t, 1, strings.Count(compact.String(), "\n"))
	assert.Greater(t, strings.Count(pretty.String(), "\n"), 1)
}

func fixedLocator(line, column int) Locator {
	return func(string, int) (int, int, bool) {
		return line, column, true
	}
}

func TestConsole_Render(t *testing.T) {
	rep := analyzeReport(t, `Cypress.Commands.add("login", () => { cy.visit("/"); });
describe.skip("auth", () => {
  beforeEach(() => { cy.login(); });
  it("signs in", () => { cy.get("#u").type("admin"); });
});
it("orphan");`)

	var buf bytes.Buffer
	console := NewConsole(&buf, WithColor(false), WithLocator(fixedLocator(7, 3)))
	require.NoError(t, console.Render(rep))
	out := buf.String()

	assert.Contains(t, out, "spec.cy.js")
	assert.Contains(t, out, "commands added:")
	assert.Contains(t, out, "login")
	assert.Contains(t, out, "commands used:")
	assert.Contains(t, out, "cy.get()") // chain rendering: get().type
	assert.Contains(t, out, "tests:")
	assert.Contains(t, out, "auth > signs in")
	assert.Contains(t, out, "[skip]")
	assert.Contains(t, out, "hooks:")
	assert.Contains(t, out, "beforeEach")
	assert.Contains(t, out, "error:")
	assert.Contains(t, out, "7:3")
	assert.Contains(t, out, "1 file(s), 1 diagnostic(s)")
	assert.NotContains(t, out, "\x1b[", "colors were disabled")
}

func TestConsole_OffsetFallback(t *testing.T) {
	rep := analyzeReport(t, `it("t", () => {});`)

	var buf bytes.Buffer
	noLoc := func(string, int) (int, int, bool) { return 0, 0, false }
	console := NewConsole(&buf, WithColor(false), WithLocator(noLoc))
	require.NoError(t, console.Render(rep))

	assert.Contains(t, buf.String(), "@0")
}

func TestConsole_InfoSeverity(t *testing.T) {
	rep := analyzeReport(t, "describe(`gen ${n}`, () => {\n  helper();\n});",
		ast.WithScenarios(true))

	var buf bytes.Buffer
	console := NewConsole(&buf, WithColor(false), WithLocator(fixedLocator(1, 1)))
	require.NoError(t, console.Render(rep))

	assert.Contains(t, buf.String(), "info:")
	assert.Contains(t, buf.String(), "factory-generated")
}
