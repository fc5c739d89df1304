// Package model defines the data structures shared by the mutation report engine.
package model

import (
	"encoding/json"
	"fmt"
)

// Path represents a repository-relative source file path.
type Path string

// Position is a (line, character) pair. The wire format produced by the
// mutation engine is a 1-based [line, column] array; positions are converted
// to 0-based indices when decoded so they can be used directly for slicing.
type Position struct {
	Line int
	Char int
}

// UnmarshalJSON decodes the 1-based [line, column] wire pair into 0-based
// internal indices.
func (p *Position) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("decode position: %w", err)
	}

	if pair[0] < 1 || pair[1] < 1 {
		return fmt.Errorf("position %v is not 1-based", pair)
	}

	p.Line = pair[0] - 1
	p.Char = pair[1] - 1

	return nil
}

// MarshalJSON encodes the position back into its 1-based wire form.
func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.Line + 1, p.Char + 1})
}

// Before reports whether p comes lexicographically before q.
func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}

	return p.Char < q.Char
}

// Span identifies a source region in a named file. Immutable once constructed.
type Span struct {
	Path  Path     `json:"path"`
	Begin Position `json:"begin"`
	End   Position `json:"end"`
}

// Valid reports whether the span's end does not precede its begin.
func (s Span) Valid() bool {
	return !s.End.Before(s.Begin)
}

func (s Span) String() string {
	return fmt.Sprintf("%s:%d:%d-%d:%d", s.Path, s.Begin.Line+1, s.Begin.Char+1, s.End.Line+1, s.End.Char+1)
}
