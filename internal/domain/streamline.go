package domain

import (
	"fmt"
	"sort"

	m "gooze.dev/pkg/mureport/internal/model"
)

// StreamlineMutations combines the mutations document with the evaluation
// run's detection matrix into the flat mutation list the renderer works on.
// Each record contributes its first candidate substitution; the detection
// status is looked up by the mutation's dense id.
func StreamlineMutations(results *m.ResultSet) ([]m.Mutation, error) {
	records := results.Mutations.Mutations

	var matrix string
	if len(results.Evaluation.MutationRuns) > 0 {
		matrix = results.Evaluation.MutationRuns[0].DetectionMatrix.OverallDetections
	}

	statuses := m.DecodeDetectionMatrix(matrix, len(records))

	mutations := make([]m.Mutation, 0, len(records))

	for _, record := range records {
		if record.MutationID < 0 || record.MutationID >= len(records) {
			return nil, fmt.Errorf("mutation id %d is not a dense index (%d mutations)", record.MutationID, len(records))
		}

		if len(record.Substs) == 0 {
			return nil, fmt.Errorf("mutation %d has no substitutions", record.MutationID)
		}

		subst := record.Substs[0]
		if !subst.Location.Valid() {
			return nil, fmt.Errorf("mutation %d has an inverted span %s", record.MutationID, subst.Location)
		}

		mutations = append(mutations, m.Mutation{
			ID:          record.MutationID,
			Op:          record.Op,
			DisplayName: record.DisplayName,
			Span:        subst.Location,
			Replacement: subst.Replacement,
			Status:      statuses[record.MutationID],
			TargetID:    record.TargetID,
		})
	}

	return mutations, nil
}

// SourcePaths collects every file the report must load: spans of call-graph
// definitions when a call graph is present, otherwise the mutated files
// themselves.
func SourcePaths(results *m.ResultSet, conflicts map[m.Path][]m.Conflict) []m.Path {
	unique := make(map[m.Path]struct{})

	for _, definition := range results.CallGraph.Definitions {
		if definition.Span != nil {
			unique[definition.Span.Path] = struct{}{}
		}
	}

	if len(unique) == 0 {
		for path := range conflicts {
			unique[path] = struct{}{}
		}
	}

	paths := make([]m.Path, 0, len(unique))
	for path := range unique {
		paths = append(paths, path)
	}

	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

	return paths
}

// ReachableEntryPoints returns the sorted entry-point paths a mutation's
// target is reachable from.
func ReachableEntryPoints(target *m.MutationTarget) []string {
	paths := make([]string, 0, len(target.ReachableFrom))
	for path := range target.ReachableFrom {
		paths = append(paths, path)
	}

	sort.Strings(paths)

	return paths
}

// MutationRecord resolves a mutation id against the result set.
func MutationRecord(results *m.ResultSet, id int) (*m.MutationRecord, error) {
	if id < 0 || id >= len(results.Mutations.Mutations) {
		return nil, fmt.Errorf("%w: mutation %d", ErrNotFound, id)
	}

	return &results.Mutations.Mutations[id], nil
}

// MutationTargetOf resolves a mutation record's target.
func MutationTargetOf(results *m.ResultSet, record *m.MutationRecord) (*m.MutationTarget, error) {
	if record.TargetID < 0 || record.TargetID >= len(results.Mutations.Targets) {
		return nil, fmt.Errorf("%w: target %d of mutation %d", ErrNotFound, record.TargetID, record.MutationID)
	}

	return &results.Mutations.Targets[record.TargetID], nil
}
