package domain

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	m "gooze.dev/pkg/mureport/internal/model"
)

// TraceLimits bounds the all-simple-paths search. The search is worst-case
// exponential in the graph's branching factor, so both the path length and
// the total number of raw traces are capped.
type TraceLimits struct {
	MaxDepth  int
	MaxTraces int
}

// DefaultTraceLimits returns the caps used when no configuration overrides
// them.
func DefaultTraceLimits() TraceLimits {
	return TraceLimits{MaxDepth: 32, MaxTraces: 512}
}

// TraceGroup holds all deduplicated call chains from one entry point to the
// target definition, as ordered definition-id sequences.
type TraceGroup struct {
	EntryPointID m.EntryPointID
	Traces       [][]m.DefID
}

// rawTrace is a call chain keyed by call-site (callee) identifiers. Multiple
// call sites can resolve to the same definition, so raw traces are projected
// to definition ids before deduplication.
type rawTrace struct {
	entryPointID m.EntryPointID
	calls        []m.CalleeID
}

// EnumerateTraces reconstructs all acyclic call paths from the named entry
// points to the target definition, deduplicates paths that coincide at the
// definition level and groups them by entry point. The returned flag reports
// whether a limit cut the search short.
func EnumerateTraces(ctx context.Context, graph *m.CallGraphInfo, targetDefID m.DefID, entryPointPaths []string, limits TraceLimits) ([]TraceGroup, bool, error) {
	var raw []rawTrace
	truncated := false

	for _, path := range entryPointPaths {
		entryPoint, err := graph.EntryPointByPath(path)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrNotFound, err)
		}

		for _, call := range entryPoint.Calls {
			traces, cut, err := collectTraces(ctx, graph, targetDefID, entryPoint.EntryPointID, call.CalleeID, limits, len(raw))
			if err != nil {
				return nil, false, err
			}

			raw = append(raw, traces...)
			truncated = truncated || cut

			if len(raw) >= limits.MaxTraces {
				truncated = true

				break
			}
		}

		if len(raw) >= limits.MaxTraces {
			break
		}
	}

	groups, err := groupTraces(graph, raw)
	if err != nil {
		return nil, false, err
	}

	return groups, truncated, nil
}

// frame is one level of the explicit search stack: the callee under
// exploration and the index of its next unvisited call edge.
type frame struct {
	calleeID m.CalleeID
	next     int
}

// collectTraces performs a depth-first all-simple-paths search from one root
// callee with an explicit stack and explicit backtracking. A callee already
// present in the current path is skipped, bounding the search to simple
// paths; reaching the target definition records the path and backtracks to
// find further alternatives rather than stopping at the first hit.
func collectTraces(ctx context.Context, graph *m.CallGraphInfo, targetDefID m.DefID, entryPointID m.EntryPointID, root m.CalleeID, limits TraceLimits, found int) ([]rawTrace, bool, error) {
	var traces []rawTrace
	truncated := false

	path := []m.CalleeID{root}
	stack := []frame{{calleeID: root}}

	pop := func() {
		stack = stack[:len(stack)-1]
		path = path[:len(path)-1]
	}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, false, fmt.Errorf("trace search for definition %d: %w", targetDefID, err)
		}

		top := &stack[len(stack)-1]

		callee, err := graph.Callee(top.calleeID)
		if err != nil {
			return nil, false, err
		}

		if top.next == 0 {
			if callee.DefID == targetDefID {
				traces = append(traces, rawTrace{
					entryPointID: entryPointID,
					calls:        append([]m.CalleeID(nil), path...),
				})

				if found+len(traces) >= limits.MaxTraces {
					return traces, true, nil
				}

				pop()

				continue
			}

			if len(path) >= limits.MaxDepth {
				truncated = true
				pop()

				continue
			}
		}

		if top.next >= len(callee.Calls) {
			pop()

			continue
		}

		child := callee.Calls[top.next].CalleeID
		top.next++

		if containsCallee(path, child) {
			continue
		}

		path = append(path, child)
		stack = append(stack, frame{calleeID: child})
	}

	return traces, truncated, nil
}

func containsCallee(path []m.CalleeID, id m.CalleeID) bool {
	for _, c := range path {
		if c == id {
			return true
		}
	}

	return false
}

// groupTraces projects raw traces to definition-id sequences, deduplicates by
// (entry point, definition sequence) and groups the survivors by entry point
// in first-seen order.
func groupTraces(graph *m.CallGraphInfo, raw []rawTrace) ([]TraceGroup, error) {
	seen := make(map[string]struct{})

	var groups []TraceGroup

next:
	for _, trace := range raw {
		defs := make([]m.DefID, 0, len(trace.calls))
		for _, calleeID := range trace.calls {
			callee, err := graph.Callee(calleeID)
			if err != nil {
				return nil, err
			}

			defs = append(defs, callee.DefID)
		}

		key := traceKey(trace.entryPointID, defs)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		for i := range groups {
			if groups[i].EntryPointID == trace.entryPointID {
				groups[i].Traces = append(groups[i].Traces, defs)

				continue next
			}
		}

		groups = append(groups, TraceGroup{
			EntryPointID: trace.entryPointID,
			Traces:       [][]m.DefID{defs},
		})
	}

	return groups, nil
}

func traceKey(entryPointID m.EntryPointID, defs []m.DefID) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(int(entryPointID)))

	for _, def := range defs {
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(int(def)))
	}

	return b.String()
}
