package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/QwilApp/scryo/ast"
	"github.com/QwilApp/scryo/loader"
	"github.com/QwilApp/scryo/runner"
)

// Locator maps a file path and byte offset to a 1-based line/column
// position. It returns ok=false when the position cannot be resolved,
// in which case the console falls back to printing the raw offset.
type Locator func(path string, offset int) (line, column int, ok bool)

// Console renders a report as human-readable text.
//
// Thread Safety: not safe for concurrent use; render one report at a
// time per Console.
type Console struct {
	w      io.Writer
	locate Locator

	header  *color.Color
	label   *color.Color
	errLine *color.Color
	infoLbl *color.Color
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithLocator replaces the default file-reading offset mapper.
func WithLocator(locate Locator) ConsoleOption {
	return func(c *Console) {
		c.locate = locate
	}
}

// WithColor forces colored output on or off. The default follows the
// fatih/color TTY detection.
func WithColor(enabled bool) ConsoleOption {
	return func(c *Console) {
		for _, cc := range []*color.Color{c.header, c.label, c.errLine, c.infoLbl} {
			if enabled {
				cc.EnableColor()
			} else {
				cc.DisableColor()
			}
		}
	}
}

// NewConsole creates a console renderer writing to w.
func NewConsole(w io.Writer, opts ...ConsoleOption) *Console {
	c := &Console{
		w:       w,
		locate:  fileLocator(),
		header:  color.New(color.Bold, color.FgCyan),
		label:   color.New(color.Bold),
		errLine: color.New(color.FgRed),
		infoLbl: color.New(color.FgYellow),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// fileLocator builds the default Locator: it lazily reads each file and
// caches its line index. Files that cannot be re-read resolve nothing.
func fileLocator() Locator {
	cache := make(map[string]*loader.LineIndex)
	return func(path string, offset int) (int, int, bool) {
		ix, hit := cache[path]
		if !hit {
			content, err := os.ReadFile(path)
			if err != nil {
				cache[path] = nil
			} else {
				ix = loader.NewLineIndex(content)
				cache[path] = ix
			}
		}
		if ix == nil {
			return 0, 0, false
		}
		line, column := ix.Position(offset)
		return line, column, true
	}
}

// Render writes the whole report.
func (c *Console) Render(rep *runner.Report) error {
	totalDiags := 0
	for _, file := range rep.Files {
		if err := c.renderFile(file); err != nil {
			return err
		}
		totalDiags += len(file.Result.Errors)
	}

	_, err := fmt.Fprintf(c.w, "%d file(s), %d diagnostic(s)\n", len(rep.Files), totalDiags)
	return err
}

func (c *Console) renderFile(file runner.FileResult) error {
	r := file.Result
	if _, err := c.header.Fprintln(c.w, file.Path); err != nil {
		return err
	}

	if len(r.Added) > 0 {
		c.label.Fprintln(c.w, "  commands added:")
		for _, def := range r.Added {
			fmt.Fprintf(c.w, "    %-24s %s  uses %d command(s)\n",
				def.Name, c.pos(file.Path, def.Start), len(def.CommandsUsed))
		}
	}

	if len(r.Used) > 0 {
		c.label.Fprintln(c.w, "  commands used:")
		for _, usage := range r.Used {
			name := usage.Name
			if len(usage.Chain) > 0 {
				name = strings.Join(usage.Chain, "().") + "()." + name
			}
			fmt.Fprintf(c.w, "    cy.%-21s %s\n", name, c.pos(file.Path, usage.Start))
		}
	}

	if len(r.Tests) > 0 {
		c.label.Fprintln(c.w, "  tests:")
		for _, test := range r.Tests {
			flags := ""
			if test.Skip {
				flags += " [skip]"
			}
			if test.Only {
				flags += " [only]"
			}
			fmt.Fprintf(c.w, "    %-24s %s%s\n",
				scopePath(test.Scope), c.pos(file.Path, test.Start), flags)
		}
	}

	if len(r.Hooks) > 0 {
		c.label.Fprintln(c.w, "  hooks:")
		for _, kind := range sortedHookKinds(r.Hooks) {
			for _, hook := range r.Hooks[kind] {
				fmt.Fprintf(c.w, "    %-24s %s\n", kind, c.pos(file.Path, hook.Start))
			}
		}
	}

	if len(r.Scenarios) > 0 {
		c.label.Fprintln(c.w, "  scenarios:")
		for _, scenario := range r.Scenarios {
			fmt.Fprintf(c.w, "    %-24s %s  %d function(s)\n",
				scenario.Name, c.pos(file.Path, scenario.Start), len(scenario.Functions))
		}
	}

	for _, diag := range r.Errors {
		line := fmt.Sprintf("  %s: %s (%s)", severityLabel(diag), diag.Message, c.pos(file.Path, diag.Location))
		if diag.Severity == ast.SeverityInfo {
			c.infoLbl.Fprintln(c.w, line)
		} else {
			c.errLine.Fprintln(c.w, line)
		}
	}

	return nil
}

// pos formats an offset as line:column when the locator can resolve it,
// falling back to the raw offset.
func (c *Console) pos(path string, offset int) string {
	if line, column, ok := c.locate(path, offset); ok {
		return fmt.Sprintf("%d:%d", line, column)
	}
	return fmt.Sprintf("@%d", offset)
}

// scopePath joins a scope chain into "outer > inner" form.
func scopePath(scope []ast.ScopeFrame) string {
	parts := make([]string, len(scope))
	for i, frame := range scope {
		parts[i] = frame.Name
	}
	return strings.Join(parts, " > ")
}

// sortedHookKinds returns the hook map keys in stable order.
func sortedHookKinds(hooks map[string][]ast.Hook) []string {
	kinds := make([]string, 0, len(hooks))
	for kind := range hooks {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// severityLabel renders the diagnostic severity, defaulting to error.
func severityLabel(diag ast.Diagnostic) string {
	if diag.Severity == ast.SeverityInfo {
		return "info"
	}
	return "error"
}
