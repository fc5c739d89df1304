package controller

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gooze.dev/pkg/mureport/internal/adapter"
	"gooze.dev/pkg/mureport/internal/domain"
	m "gooze.dev/pkg/mureport/internal/model"
)

const fixtureSource = `pub fn add() {}

fn max(a: u32, b: u32) -> u32 {
    if a > b {
        return a;
    }
    b
}
`

var fixtureDocs = map[string]string{
	m.CallGraphFile: `{
		"call_graph": {
			"entry_points": [{"entry_point_id": 0, "path": "tests::max", "calls": [{"callee_id": 0, "call_sites": []}]}],
			"callees": [{"callee_id": 0, "def_id": 0, "calls": []}]
		},
		"definitions": [{"def_id": 0, "name": "max", "path": "demo::max", "span": {"path": "src/lib.rs", "begin": [3, 1], "end": [8, 2]}}]
	}`,
	m.EvaluationFile: `{
		"mutation_runs": [{"mutation_detection_matrix": {"overall_detections": "D-"}}]
	}`,
	m.MutationsFile: `{
		"mutations": [
			{
				"mutation_id": 0,
				"target_id": 0,
				"mutation_op": "relational_op_replace",
				"display_name": "replace > with >=",
				"substs": [{"location": {"path": "src/lib.rs", "begin": [4, 10], "end": [4, 11]}, "replacement": ">="}]
			},
			{
				"mutation_id": 1,
				"target_id": 0,
				"mutation_op": "operand_replace",
				"display_name": "replace b with 0",
				"substs": [{"location": {"path": "src/lib.rs", "begin": [7, 5], "end": [7, 6]}, "replacement": "0"}]
			}
		],
		"targets": [{"def_id": 0, "reachable_from": {"tests::max": {}}}]
	}`,
	m.TestsFile:   `{"tests": []}`,
	m.TimingsFile: `{"total": 12.5}`,
}

// writeProjectFixture lays out a project tree with a results directory
// nested under target/mutest, the way the mutation engine leaves it.
func writeProjectFixture(t *testing.T) m.Path {
	t.Helper()

	root := t.TempDir()
	resultsDir := filepath.Join(root, "target", "mutest")
	require.NoError(t, os.MkdirAll(resultsDir, 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o750))

	require.NoError(t, os.WriteFile(filepath.Join(root, "Cargo.toml"), []byte("[package]\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "lib.rs"), []byte(fixtureSource), 0o600))

	for name, content := range fixtureDocs {
		require.NoError(t, os.WriteFile(filepath.Join(resultsDir, name), []byte(content), 0o600))
	}

	return m.Path(resultsDir)
}

func buildTestSession(t *testing.T) *Session {
	t.Helper()

	workflow := NewWorkflow(adapter.NewLocalResultsStore(), adapter.NewLocalSourceFS(), adapter.NewPlainHighlighter())

	session, err := workflow.Build(context.Background(), SessionConfig{
		ResultsDir: writeProjectFixture(t),
		Strategy:   domain.DiffSimple,
		Limits:     domain.DefaultTraceLimits(),
	})
	require.NoError(t, err)

	return session
}

func TestWorkflowBuild(t *testing.T) {
	session := buildTestSession(t)

	require.Equal(t, []m.Path{"src/lib.rs"}, session.Paths)
	require.Len(t, session.Sources["src/lib.rs"], 8)

	// Two mutations on separate lines resolve to two conflict regions.
	require.Len(t, session.Conflicts["src/lib.rs"], 2)

	page, err := session.Renderer.RenderFile("src/lib.rs")
	require.NoError(t, err)
	require.Contains(t, page, `<tbody id="m0"`)
	require.Contains(t, page, `<tbody id="m1"`)
}

func TestWorkflowBuild_PreCacheAll(t *testing.T) {
	workflow := NewWorkflow(adapter.NewLocalResultsStore(), adapter.NewLocalSourceFS(), adapter.NewPlainHighlighter())

	session, err := workflow.Build(context.Background(), SessionConfig{
		ResultsDir:  writeProjectFixture(t),
		Strategy:    domain.DiffSimple,
		Limits:      domain.DefaultTraceLimits(),
		PreCacheAll: true,
	})
	require.NoError(t, err)

	require.Equal(t, 1, session.Renderer.CachedCodeSections())
}

func TestWorkflowBuild_MissingMutatedSource(t *testing.T) {
	resultsDir := writeProjectFixture(t)
	root := filepath.Dir(filepath.Dir(string(resultsDir)))
	require.NoError(t, os.Remove(filepath.Join(root, "src", "lib.rs")))

	workflow := NewWorkflow(adapter.NewLocalResultsStore(), adapter.NewLocalSourceFS(), adapter.NewPlainHighlighter())

	_, err := workflow.Build(context.Background(), SessionConfig{
		ResultsDir: resultsDir,
		Strategy:   domain.DiffSimple,
		Limits:     domain.DefaultTraceLimits(),
	})
	require.Error(t, err)
}

func TestWorkflowBuild_ExplicitSourceDir(t *testing.T) {
	resultsDir := writeProjectFixture(t)
	root := filepath.Dir(filepath.Dir(string(resultsDir)))

	workflow := NewWorkflow(adapter.NewLocalResultsStore(), adapter.NewLocalSourceFS(), adapter.NewPlainHighlighter())

	session, err := workflow.Build(context.Background(), SessionConfig{
		ResultsDir: resultsDir,
		SourceDir:  m.Path(root),
		Strategy:   domain.DiffSimple,
		Limits:     domain.DefaultTraceLimits(),
	})
	require.NoError(t, err)
	require.Len(t, session.Sources, 1)
}

func TestWorkflowBuild_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	workflow := NewWorkflow(adapter.NewLocalResultsStore(), adapter.NewLocalSourceFS(), adapter.NewPlainHighlighter())

	_, err := workflow.Build(ctx, SessionConfig{ResultsDir: writeProjectFixture(t)})
	require.ErrorIs(t, err, context.Canceled)
}
