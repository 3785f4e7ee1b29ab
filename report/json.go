// Package report renders aggregated analysis reports as JSON or as
// colorized console output.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/QwilApp/scryo/runner"
)

// WriteJSON serializes a report to w. With pretty=true the output is
// indented for human consumption; otherwise it is a single line
// suitable for piping into other tools.
//
// Identical reports always serialize to identical bytes: file order is
// fixed by the runner and every record slice follows source appearance
// order.
func WriteJSON(w io.Writer, rep *runner.Report, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
