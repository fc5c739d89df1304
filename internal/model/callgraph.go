package model

import "fmt"

// EntryPointID indexes the call graph's entry points.
type EntryPointID int

// CalleeID indexes the call graph's callees.
type CalleeID int

// DefID indexes the call graph's definitions.
type DefID int

// CallGraphInfo is the call-graph document of the result set. Read-only input
// to the trace enumerator.
type CallGraphInfo struct {
	CallGraph   CallGraph    `json:"call_graph"`
	Definitions []Definition `json:"definitions"`
}

// CallGraph holds the adjacency data: entry points (test functions) and the
// callees they transitively reach.
type CallGraph struct {
	EntryPoints []EntryPoint `json:"entry_points"`
	Callees     []Callee     `json:"callees"`
}

// EntryPoint is a test function, the root of a call-graph search.
type EntryPoint struct {
	EntryPointID EntryPointID `json:"entry_point_id"`
	Path         string       `json:"path"`
	Calls        []Call       `json:"calls"`
}

// Callee is an invoked function inside the call graph.
type Callee struct {
	CalleeID CalleeID `json:"callee_id"`
	DefID    DefID    `json:"def_id"`
	Calls    []Call   `json:"calls"`
}

// Call is one edge of the adjacency: the target callee and the source spans
// of every call site producing the edge.
type Call struct {
	CalleeID CalleeID `json:"callee_id"`
	Sites    []Span   `json:"call_sites"`
}

// Definition is the source definition underlying one or more callees. Name,
// path and span are optional; generated or foreign definitions may lack them.
type Definition struct {
	DefID DefID   `json:"def_id"`
	Name  *string `json:"name,omitempty"`
	Path  *string `json:"path,omitempty"`
	Span  *Span   `json:"span,omitempty"`
}

// DisplayName returns the definition's name, falling back to its path and
// finally to a placeholder for anonymous definitions.
func (d *Definition) DisplayName() string {
	if d.Name != nil && *d.Name != "" {
		return *d.Name
	}

	if d.Path != nil && *d.Path != "" {
		return *d.Path
	}

	return "<anonymous>"
}

// Callee resolves a callee id. Ids are dense array indices in well-formed
// input; a linear scan backs up reordered data.
func (g *CallGraphInfo) Callee(id CalleeID) (*Callee, error) {
	if i := int(id); i >= 0 && i < len(g.CallGraph.Callees) && g.CallGraph.Callees[i].CalleeID == id {
		return &g.CallGraph.Callees[i], nil
	}

	for i := range g.CallGraph.Callees {
		if g.CallGraph.Callees[i].CalleeID == id {
			return &g.CallGraph.Callees[i], nil
		}
	}

	return nil, fmt.Errorf("callee %d not in call graph", id)
}

// Definition resolves a definition id, with the same dense-index fast path as
// Callee.
func (g *CallGraphInfo) Definition(id DefID) (*Definition, error) {
	if i := int(id); i >= 0 && i < len(g.Definitions) && g.Definitions[i].DefID == id {
		return &g.Definitions[i], nil
	}

	for i := range g.Definitions {
		if g.Definitions[i].DefID == id {
			return &g.Definitions[i], nil
		}
	}

	return nil, fmt.Errorf("definition %d not in call graph", id)
}

// EntryPoint resolves an entry point id.
func (g *CallGraphInfo) EntryPoint(id EntryPointID) (*EntryPoint, error) {
	if i := int(id); i >= 0 && i < len(g.CallGraph.EntryPoints) && g.CallGraph.EntryPoints[i].EntryPointID == id {
		return &g.CallGraph.EntryPoints[i], nil
	}

	for i := range g.CallGraph.EntryPoints {
		if g.CallGraph.EntryPoints[i].EntryPointID == id {
			return &g.CallGraph.EntryPoints[i], nil
		}
	}

	return nil, fmt.Errorf("entry point %d not in call graph", id)
}

// EntryPointByPath resolves an entry point by its test path.
func (g *CallGraphInfo) EntryPointByPath(path string) (*EntryPoint, error) {
	for i := range g.CallGraph.EntryPoints {
		if g.CallGraph.EntryPoints[i].Path == path {
			return &g.CallGraph.EntryPoints[i], nil
		}
	}

	return nil, fmt.Errorf("entry point %q not in call graph", path)
}
