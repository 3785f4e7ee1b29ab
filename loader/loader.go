// Package loader provides the file-system collaborators of the Cypress
// extractor: reading source files, recognizing non-analyzable scripts,
// discovering spec files under directories, and mapping byte offsets
// back to human-readable line/column positions.
//
// The loader never parses JavaScript; syntax validation belongs to the
// ast package.
package loader

import (
	"bytes"
	"fmt"
	"os"
	"unicode/utf8"

	"log/slog"
)

// Source is one loaded file ready for analysis.
type Source struct {
	// Path is the path the file was read from.
	Path string

	// Content is the raw file bytes. Nil when Skipped is true.
	Content []byte

	// Skipped marks files that begin with an interpreter directive
	// (#!). Such files are executable scripts, not spec files, and are
	// reported with an empty analysis result rather than a failure.
	Skipped bool
}

// Load reads one source file.
//
// Outputs:
//
//	*Source - The loaded file, or a skip marker for shebang scripts.
//	error   - Non-nil when the file cannot be read or is not UTF-8.
func Load(path string) (*Source, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if bytes.HasPrefix(content, []byte("#!")) {
		slog.Debug("skipping shebang script", slog.String("file", path))
		return &Source{Path: path, Skipped: true}, nil
	}

	if !utf8.Valid(content) {
		return nil, fmt.Errorf("read %s: content is not valid UTF-8", path)
	}

	return &Source{Path: path, Content: content}, nil
}
