package domain

import (
	"sort"

	m "gooze.dev/pkg/mureport/internal/model"
)

// ResolveConflicts groups mutations of the same file into non-overlapping
// regions. A mutation whose inclusive line range intersects an existing
// region joins it and widens the region; otherwise it seeds a new region.
//
// Mutation counts per file are small and the engine emits mutations in
// near-source order, so a left-to-right fold beats an interval tree here.
// After the fold each file's regions are sorted by start line and collapsed
// once more, so a region extension that newly bridges two regions merges them
// regardless of input order.
func ResolveConflicts(mutations []m.Mutation) map[m.Path][]m.Conflict {
	byFile := make(map[m.Path][]m.Conflict)

	for _, mu := range mutations {
		regions := byFile[mu.Span.Path]

		merged := false
		for i := range regions {
			if regions[i].Overlaps(mu) {
				regions[i].Add(mu)
				merged = true

				break
			}
		}

		if !merged {
			regions = append(regions, m.Conflict{
				StartLine: mu.StartLine(),
				EndLine:   mu.EndLine(),
				Mutations: []m.Mutation{mu},
			})
		}

		byFile[mu.Span.Path] = regions
	}

	for path, regions := range byFile {
		sort.SliceStable(regions, func(i, j int) bool {
			return regions[i].StartLine < regions[j].StartLine
		})

		byFile[path] = collapseRegions(regions)
	}

	return byFile
}

// collapseRegions merges adjacent regions that still intersect after sorting.
// A no-op on lists that are already disjoint.
func collapseRegions(regions []m.Conflict) []m.Conflict {
	collapsed := make([]m.Conflict, 0, len(regions))

	for _, region := range regions {
		if len(collapsed) > 0 && region.StartLine <= collapsed[len(collapsed)-1].EndLine {
			last := &collapsed[len(collapsed)-1]
			for _, mu := range region.Mutations {
				last.Add(mu)
			}

			continue
		}

		collapsed = append(collapsed, region)
	}

	return collapsed
}
