package render

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gooze.dev/pkg/mureport/internal/adapter"
	"gooze.dev/pkg/mureport/internal/domain"
	m "gooze.dev/pkg/mureport/internal/model"
)

func strPtr(s string) *string {
	return &s
}

// testRenderer builds a renderer over one source file with two mutations
// sharing a conflict region on line 2, and a call graph where the test entry
// point reaches the mutated function through a helper.
func testRenderer(t *testing.T) *Renderer {
	t.Helper()

	sources := map[m.Path][]string{
		"src/lib.rs": {
			"fn max(a: u32, b: u32) -> u32 {",
			"    if a > b {",
			"        return a;",
			"    }",
			"    b",
			"}",
			"fn helper() -> u32 {",
			"    max(1, 2)",
			"}",
		},
	}

	mutations := []m.Mutation{
		{
			ID:          0,
			Op:          "relational_op_replace",
			DisplayName: "replace > with >=",
			Span: m.Span{
				Path:  "src/lib.rs",
				Begin: m.Position{Line: 1, Char: 9},
				End:   m.Position{Line: 1, Char: 10},
			},
			Replacement: ">=",
			Status:      m.StatusDetected,
			TargetID:    0,
		},
		{
			ID:          1,
			Op:          "operand_replace",
			DisplayName: "replace b with 0",
			Span: m.Span{
				Path:  "src/lib.rs",
				Begin: m.Position{Line: 1, Char: 11},
				End:   m.Position{Line: 1, Char: 12},
			},
			Replacement: "0",
			Status:      m.StatusUndetected,
			TargetID:    0,
		},
	}

	results := &m.ResultSet{
		CallGraph: m.CallGraphInfo{
			CallGraph: m.CallGraph{
				EntryPoints: []m.EntryPoint{
					{EntryPointID: 0, Path: "tests::max", Calls: []m.Call{{CalleeID: 0}}},
				},
				Callees: []m.Callee{
					{CalleeID: 0, DefID: 0, Calls: []m.Call{
						{CalleeID: 1, Sites: []m.Span{{
							Path:  "src/lib.rs",
							Begin: m.Position{Line: 7, Char: 4},
							End:   m.Position{Line: 7, Char: 13},
						}}},
					}},
					{CalleeID: 1, DefID: 1},
				},
			},
			Definitions: []m.Definition{
				{
					DefID: 0,
					Name:  strPtr("helper"),
					Path:  strPtr("demo::helper"),
					Span: &m.Span{
						Path:  "src/lib.rs",
						Begin: m.Position{Line: 6},
						End:   m.Position{Line: 8, Char: 1},
					},
				},
				{
					DefID: 1,
					Name:  strPtr("max"),
					Path:  strPtr("demo::max"),
					Span: &m.Span{
						Path:  "src/lib.rs",
						Begin: m.Position{Line: 0},
						End:   m.Position{Line: 5, Char: 1},
					},
				},
			},
		},
		Mutations: m.MutationsInfo{
			Mutations: []m.MutationRecord{
				{MutationID: 0, TargetID: 0, Op: "relational_op_replace", DisplayName: "replace > with >="},
				{MutationID: 1, TargetID: 0, Op: "operand_replace", DisplayName: "replace b with 0"},
			},
			Targets: []m.MutationTarget{
				{DefID: 1, ReachableFrom: map[string]json.RawMessage{"tests::max": nil}},
			},
		},
	}

	conflicts := domain.ResolveConflicts(mutations)
	require.Len(t, conflicts["src/lib.rs"], 1)
	require.Len(t, conflicts["src/lib.rs"][0].Mutations, 2)

	return NewRenderer(sources, conflicts, results, adapter.NewPlainHighlighter(), domain.DiffSimple, domain.DefaultTraceLimits())
}

func TestRenderStart(t *testing.T) {
	r := testRenderer(t)
	require.NoError(t, r.CacheMutations())
	r.CacheFileTree()
	r.CacheSearch()

	page := r.RenderStart()
	require.Contains(t, page, "Tips and Tricks")
	require.Contains(t, page, `id="file-tree"`)
	require.Contains(t, page, `id="search-popover"`)
	require.NotContains(t, page, "error-text")
}

func TestRenderStartWithError(t *testing.T) {
	r := testRenderer(t)

	page := r.RenderStartWithError("file not found: src/gone.rs")
	require.Contains(t, page, "file not found: src/gone.rs")
	require.Contains(t, page, "error-text")
}

func TestValidPath(t *testing.T) {
	r := testRenderer(t)

	require.True(t, r.ValidPath("src/lib.rs"))
	require.False(t, r.ValidPath("src/other.rs"))
}

func TestRenderFile(t *testing.T) {
	r := testRenderer(t)
	require.NoError(t, r.CacheMutations())
	r.CacheFileTree()
	r.CacheSearch()

	page, err := r.RenderFile("src/lib.rs")
	require.NoError(t, err)

	// Both mutation sections exist, the second hidden.
	require.Contains(t, page, `<tbody id="m0"`)
	require.Contains(t, page, `<tbody id="m1"`)
	require.Contains(t, page, "mutation-conflict-region hidden")

	// Conflict header counts mutations and shows 1-based region lines.
	require.Contains(t, page, "1 of 2 mutations in region [2:2]")

	// The contested region feeds the mutation changer panel.
	require.Contains(t, page, `id="changer"`)
	require.Contains(t, page, "replace &gt; with &gt;=")

	// The replacement shows up as an inserted diff block.
	require.Contains(t, page, `<span class="inline-diff insert">&gt;=</span>`)

	// Plain lines outside the region keep their numbers.
	require.Contains(t, page, `>fn max(a: u32, b: u32) -&gt; u32 {<`)
}

func TestRenderFile_IsCachedAndIdempotent(t *testing.T) {
	r := testRenderer(t)
	require.NoError(t, r.CacheMutations())
	r.CacheFileTree()
	r.CacheSearch()

	first, err := r.RenderFile("src/lib.rs")
	require.NoError(t, err)

	second, err := r.RenderFile("src/lib.rs")
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, 1, r.CachedCodeSections())
}

func TestRenderFile_UnknownPath(t *testing.T) {
	r := testRenderer(t)
	require.NoError(t, r.CacheMutations())

	_, err := r.RenderFile("src/gone.rs")
	require.Error(t, err)
}

func TestRenderTraceList(t *testing.T) {
	r := testRenderer(t)
	require.NoError(t, r.CacheMutations())

	fragment, err := r.RenderTraceList(context.Background(), 0)
	require.NoError(t, err)

	require.Contains(t, fragment, "tests::max")
	require.Contains(t, fragment, "/trace?mutation_id=0&entry_point_id=0&definition_ids=0,1")
	require.Contains(t, fragment, "demo::helper &gt; demo::max")
}

func TestRenderTraceList_UnknownMutation(t *testing.T) {
	r := testRenderer(t)

	_, err := r.RenderTraceList(context.Background(), 42)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRenderTrace(t *testing.T) {
	r := testRenderer(t)
	require.NoError(t, r.CacheMutations())
	r.CacheFileTree()
	r.CacheSearch()

	page, err := r.RenderTrace(0, []m.DefID{0, 1})
	require.NoError(t, err)

	require.Contains(t, page, "Trace for Mutation 0")

	// The hop names caller and callee and highlights the call site.
	require.Contains(t, page, `<span class="inline-code function">helper</span>`)
	require.Contains(t, page, ` calls `)
	require.Contains(t, page, `<span class="inline-diff call">max(1, 2)</span>`)

	// The mutated definition ends the page with the cached mutation rows.
	require.Contains(t, page, `<tbody class="mutation">`)
	require.Contains(t, page, `<span class="inline-diff insert">&gt;=</span>`)
}

func TestRenderTrace_MissingDefinitionSpan(t *testing.T) {
	r := testRenderer(t)
	require.NoError(t, r.CacheMutations())

	r.results.CallGraph.Definitions[0].Span = nil

	page, err := r.RenderTrace(0, []m.DefID{0, 1})
	require.NoError(t, err)
	require.Contains(t, page, "Unable to load source file")
}

func TestFileTreeOrdering(t *testing.T) {
	tree := NewFileTree([]m.Path{
		"src/z.rs",
		"src/nested/deep.rs",
		"src/a.rs",
		"src/z.rs",
	})

	top := tree.Children()
	require.Len(t, top, 1)
	require.Equal(t, "src", top[0].Value())
	require.True(t, top[0].IsFolder())

	names := []string{}
	for _, child := range top[0].Children() {
		names = append(names, child.Value())
	}

	// Folders first, then files lexicographically; duplicates merged.
	require.Equal(t, []string{"nested", "a.rs", "z.rs"}, names)
	require.Equal(t, m.Path("src/a.rs"), top[0].Children()[1].Path())
}

func TestCacheCodeComputesOnce(t *testing.T) {
	c := NewCache()

	calls := 0
	compute := func() (string, error) {
		calls++

		return "fragment", nil
	}

	first, err := c.Code("src/lib.rs", compute)
	require.NoError(t, err)
	second, err := c.Code("src/lib.rs", compute)
	require.NoError(t, err)

	require.Equal(t, "fragment", first)
	require.Equal(t, first, second)
	require.Equal(t, 1, calls)
	require.Equal(t, 1, c.Computes())
}

func TestCacheMutationBounds(t *testing.T) {
	c := NewCache()
	c.InitMutations(1)

	require.NoError(t, c.SetMutation(0, "fragment"))
	require.Error(t, c.SetMutation(1, "fragment"))

	_, err := c.Mutation(1)
	require.Error(t, err)
}
