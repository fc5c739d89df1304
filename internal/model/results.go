package model

import "encoding/json"

// Result-set document names, one JSON file per concern inside the results
// directory produced by the mutation engine.
const (
	CallGraphFile  = "call_graph.json"
	EvaluationFile = "evaluation.json"
	MutationsFile  = "mutations.json"
	TestsFile      = "tests.json"
	TimingsFile    = "timings.json"
)

// ResultSet bundles all documents of one mutation-engine run. Tests and
// timings are opaque pass-through; the report engine never inspects them.
type ResultSet struct {
	CallGraph  CallGraphInfo
	Evaluation EvaluationInfo
	Mutations  MutationsInfo
	Tests      json.RawMessage
	Timings    json.RawMessage
}

// EvaluationInfo is the evaluation document: per-run detection matrices.
type EvaluationInfo struct {
	MutationRuns []MutationRun `json:"mutation_runs"`
}

// MutationRun is one evaluation run of the full mutation set.
type MutationRun struct {
	DetectionMatrix DetectionMatrix `json:"mutation_detection_matrix"`
}

// DetectionMatrix encodes per-mutation outcomes as one character per
// mutation: D (detected), - (undetected), C (crashed), T (timeout).
type DetectionMatrix struct {
	OverallDetections string `json:"overall_detections"`
}

// MutationsInfo is the mutations document.
type MutationsInfo struct {
	Mutations []MutationRecord `json:"mutations"`
	Targets   []MutationTarget `json:"targets"`
}

// MutationRecord is one generated mutation with its candidate substitutions.
type MutationRecord struct {
	MutationID  int            `json:"mutation_id"`
	TargetID    int            `json:"target_id"`
	Op          string         `json:"mutation_op"`
	DisplayName string         `json:"display_name"`
	Substs      []Substitution `json:"substs"`
}

// Substitution is one candidate replacement for a mutation's origin span.
type Substitution struct {
	Location    Span   `json:"location"`
	Replacement string `json:"replacement"`
}

// MutationTarget is the mutated definition and the entry points it is
// reachable from. The reachable_from values carry engine-internal distance
// data the report does not interpret.
type MutationTarget struct {
	DefID         DefID                      `json:"def_id"`
	ReachableFrom map[string]json.RawMessage `json:"reachable_from"`
}
