package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPositionUnmarshal_ConvertsToZeroBased(t *testing.T) {
	var span Span
	err := json.Unmarshal([]byte(`{"path":"src/lib.go","begin":[5,3],"end":[5,9]}`), &span)
	require.NoError(t, err)

	require.Equal(t, Path("src/lib.go"), span.Path)
	require.Equal(t, Position{Line: 4, Char: 2}, span.Begin)
	require.Equal(t, Position{Line: 4, Char: 8}, span.End)
	require.True(t, span.Valid())
}

func TestPositionUnmarshal_RejectsZeroBasedInput(t *testing.T) {
	var pos Position
	err := json.Unmarshal([]byte(`[0,1]`), &pos)
	require.Error(t, err)
}

func TestSpanValid_EndBeforeBegin(t *testing.T) {
	span := Span{
		Path:  "a.go",
		Begin: Position{Line: 3, Char: 0},
		End:   Position{Line: 2, Char: 10},
	}

	require.False(t, span.Valid())
}

func TestConflictAddWidensRange(t *testing.T) {
	first := Mutation{ID: 0, Span: Span{Path: "a.go", Begin: Position{Line: 9, Char: 0}, End: Position{Line: 9, Char: 4}}}
	second := Mutation{ID: 1, Span: Span{Path: "a.go", Begin: Position{Line: 9, Char: 2}, End: Position{Line: 11, Char: 1}}}

	conflict := Conflict{StartLine: first.StartLine(), EndLine: first.EndLine(), Mutations: []Mutation{first}}
	require.True(t, conflict.Overlaps(second))

	conflict.Add(second)
	require.Equal(t, 9, conflict.StartLine)
	require.Equal(t, 11, conflict.EndLine)
	require.Equal(t, 3, conflict.LineCount())
	require.Len(t, conflict.Mutations, 2)
}
