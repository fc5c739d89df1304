package domain

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	m "gooze.dev/pkg/mureport/internal/model"
)

func mutationAt(id int, path m.Path, startLine, endLine int) m.Mutation {
	return m.Mutation{
		ID: id,
		Span: m.Span{
			Path:  path,
			Begin: m.Position{Line: startLine, Char: 0},
			End:   m.Position{Line: endLine, Char: 1},
		},
	}
}

func TestResolveConflicts_OverlappingMutationsShareOneRegion(t *testing.T) {
	// Two mutations at lines [10,10] and [10,12] (1-based) resolve into a
	// single region spanning [10,12] regardless of input order.
	first := mutationAt(0, "src/lib.go", 9, 9)
	second := mutationAt(1, "src/lib.go", 9, 11)

	for _, mutations := range [][]m.Mutation{{first, second}, {second, first}} {
		conflicts := ResolveConflicts(mutations)

		require.Len(t, conflicts, 1)
		regions := conflicts["src/lib.go"]
		require.Len(t, regions, 1)
		require.Equal(t, 9, regions[0].StartLine)
		require.Equal(t, 11, regions[0].EndLine)
		require.Len(t, regions[0].Mutations, 2)
	}
}

func TestResolveConflicts_DisjointMutationsStaySeparate(t *testing.T) {
	conflicts := ResolveConflicts([]m.Mutation{
		mutationAt(0, "a.go", 2, 2),
		mutationAt(1, "a.go", 10, 10),
		mutationAt(2, "b.go", 2, 2),
	})

	require.Len(t, conflicts["a.go"], 2)
	require.Len(t, conflicts["b.go"], 1)
}

func TestResolveConflicts_EveryMutationInExactlyOneConflict(t *testing.T) {
	mutations := []m.Mutation{
		mutationAt(0, "a.go", 5, 7),
		mutationAt(1, "a.go", 1, 1),
		mutationAt(2, "a.go", 6, 6),
		mutationAt(3, "a.go", 20, 22),
		mutationAt(4, "a.go", 7, 9),
	}

	conflicts := ResolveConflicts(mutations)

	counted := make(map[int]int)
	for _, region := range conflicts["a.go"] {
		for _, mu := range region.Mutations {
			counted[mu.ID]++
			require.GreaterOrEqual(t, mu.StartLine(), region.StartLine)
			require.LessOrEqual(t, mu.EndLine(), region.EndLine)
		}
	}

	for _, mu := range mutations {
		require.Equal(t, 1, counted[mu.ID], "mutation %d", mu.ID)
	}
}

func TestResolveConflicts_RegionsSortedAndDisjoint(t *testing.T) {
	conflicts := ResolveConflicts([]m.Mutation{
		mutationAt(0, "a.go", 30, 31),
		mutationAt(1, "a.go", 2, 2),
		mutationAt(2, "a.go", 10, 14),
		mutationAt(3, "a.go", 12, 12),
	})

	regions := conflicts["a.go"]
	require.True(t, sort.SliceIsSorted(regions, func(i, j int) bool {
		return regions[i].StartLine < regions[j].StartLine
	}))

	for i := 1; i < len(regions); i++ {
		require.Greater(t, regions[i].StartLine, regions[i-1].EndLine)
	}
}

func TestResolveConflicts_LateMutationBridgesTwoRegions(t *testing.T) {
	// The third mutation overlaps both earlier regions; the collapse pass
	// merges all three into one region.
	conflicts := ResolveConflicts([]m.Mutation{
		mutationAt(0, "a.go", 2, 2),
		mutationAt(1, "a.go", 6, 6),
		mutationAt(2, "a.go", 2, 6),
	})

	regions := conflicts["a.go"]
	require.Len(t, regions, 1)
	require.Equal(t, 2, regions[0].StartLine)
	require.Equal(t, 6, regions[0].EndLine)
	require.Len(t, regions[0].Mutations, 3)
}
