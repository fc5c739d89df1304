package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"

	m "gooze.dev/pkg/mureport/internal/model"
)

// CharOffset maps a position inside a conflict region to the flat byte offset
// into the region text formed by joining regionLines with single newlines.
// Crucial for mutations that span fewer lines than the region they sit in.
//
// A position outside the region, past the end of its line, or landing inside
// a multi-byte character means the mutation data is inconsistent with the
// source on disk; that is a fatal input-data error for the mutation.
func CharOffset(pos m.Position, conflict m.Conflict, regionLines []string) (int, error) {
	if pos.Line < conflict.StartLine || pos.Line > conflict.EndLine {
		return 0, fmt.Errorf("line %d outside conflict region [%d, %d]", pos.Line+1, conflict.StartLine+1, conflict.EndLine+1)
	}

	linesOffset := pos.Line - conflict.StartLine
	if linesOffset >= len(regionLines) {
		return 0, fmt.Errorf("conflict region [%d, %d] has only %d lines of source", conflict.StartLine+1, conflict.EndLine+1, len(regionLines))
	}

	offset := 0
	for i := 0; i < linesOffset; i++ {
		offset += len(regionLines[i]) + 1 // + 1 for the joining newline
	}

	line := regionLines[linesOffset]
	if pos.Char > len(line) {
		return 0, fmt.Errorf("char %d past the end of line %d (%d bytes)", pos.Char, pos.Line+1, len(line))
	}

	if pos.Char < len(line) && !utf8.RuneStart(line[pos.Char]) {
		return 0, fmt.Errorf("char %d of line %d is not a character boundary", pos.Char, pos.Line+1)
	}

	return offset + pos.Char, nil
}

// SpliceRegion replaces source[start:end] with replacement, returning a new
// string.
func SpliceRegion(source, replacement string, start, end int) string {
	var b strings.Builder
	b.Grow(len(source) - (end - start) + len(replacement))

	b.WriteString(source[:start])
	b.WriteString(replacement)
	b.WriteString(source[end:])

	return b.String()
}
