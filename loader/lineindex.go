package loader

import "sort"

// LineIndex maps byte offsets in a source text to 1-based line/column
// positions. It is used only for human-readable reporting; the engine
// itself deals exclusively in offsets.
//
// Thread Safety: immutable after construction; safe for concurrent use.
type LineIndex struct {
	// starts holds the byte offset of the first byte of each line.
	starts []int
	length int
}

// NewLineIndex builds the index for one source text.
func NewLineIndex(content []byte) *LineIndex {
	starts := []int{0}
	for i, b := range content {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts, length: len(content)}
}

// Position converts a byte offset into a 1-based line and column.
// Offsets out of range clamp to the ends of the text.
func (ix *LineIndex) Position(offset int) (line, column int) {
	if offset < 0 {
		offset = 0
	}
	if offset > ix.length {
		offset = ix.length
	}

	// First line starting after the offset; the offset's line is the
	// one before it.
	i := sort.Search(len(ix.starts), func(i int) bool {
		return ix.starts[i] > offset
	})
	line = i
	column = offset - ix.starts[i-1] + 1
	return line, column
}
