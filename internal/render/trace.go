package render

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"gooze.dev/pkg/mureport/internal/domain"
	m "gooze.dev/pkg/mureport/internal/model"
)

// RenderTraceList renders the grouped call-trace links for a mutation as a
// file-tree styled fragment: one expandable node per entry point with one
// link per deduplicated trace.
func (r *Renderer) RenderTraceList(ctx context.Context, mutationID int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, err := domain.MutationRecord(r.results, mutationID)
	if err != nil {
		return "", err
	}

	target, err := domain.MutationTargetOf(r.results, record)
	if err != nil {
		return "", err
	}

	entryPoints := domain.ReachableEntryPoints(target)

	groups, truncated, err := domain.EnumerateTraces(ctx, &r.results.CallGraph, target.DefID, entryPoints, r.limits)
	if err != nil {
		return "", err
	}

	if truncated {
		slog.Warn("Call trace search hit its limits, list is incomplete",
			"mutation_id", mutationID, "max_depth", r.limits.MaxDepth, "max_traces", r.limits.MaxTraces)
	}

	mk := NewMarkup()
	mk.Raw(`<ul class="file-tree">`)

	for _, group := range groups {
		entryPoint, err := r.results.CallGraph.EntryPoint(group.EntryPointID)
		if err != nil {
			return "", err
		}

		escapedEntry := Escape(entryPoint.Path)

		mk.Raw(`<li class="ft-node expanded"><div style="--level:0;" class="node-content-wrapper"><button class="toggle">`)
		mk.IconWithClass("chevron-right.png", "collapsed")
		mk.IconWithClass("chevron-down.png", "expanded")
		mk.Writef(`</button><div class="node-value-wrapper"><div class="node-value" title="%[1]s">%[1]s</div></div></div><ul class="file-tree">`, escapedEntry)

		for _, trace := range group.Traces {
			href := fmt.Sprintf("/trace?mutation_id=%d&entry_point_id=%d&definition_ids=%s",
				mutationID, entryPoint.EntryPointID, joinDefIDs(trace))

			content, err := r.traceLabel(trace)
			if err != nil {
				return "", err
			}

			mk.Writef(`<li class="ft-text"><div style="--level:1;" class="text-wrapper"><div class="text-icon">`)
			mk.Icon("tree.png")
			mk.Writef(`</div><a class="text-link" href="%s" title="%s &gt; %s">%s</a></div></li>`, href, escapedEntry, content, content)
		}

		mk.Raw(`</ul></li>`)
	}

	if truncated {
		mk.Raw(`<li class="ft-text"><div style="--level:0;" class="text-wrapper"><div class="text-icon">`)
		mk.Icon("error.png")
		mk.Raw(`</div><div class="text-link">Trace list truncated, too many call paths</div></div></li>`)
	}

	mk.Raw(`</ul>`)

	return mk.String(), nil
}

func joinDefIDs(trace []m.DefID) string {
	parts := make([]string, len(trace))
	for i, def := range trace {
		parts[i] = strconv.Itoa(int(def))
	}

	return strings.Join(parts, ",")
}

// traceLabel joins the trace's definition names into the "a > b > c" link
// label.
func (r *Renderer) traceLabel(trace []m.DefID) (string, error) {
	var parts []string

	for _, defID := range trace {
		def, err := r.results.CallGraph.Definition(defID)
		if err != nil {
			return "", err
		}

		parts = append(parts, Escape(definitionLabel(def)))
	}

	return strings.Join(parts, " &gt; "), nil
}

func definitionLabel(def *m.Definition) string {
	if def.Path != nil && *def.Path != "" {
		return *def.Path
	}

	return def.DisplayName()
}

// RenderTrace renders the trace page: one caller-calls-callee snippet per
// hop of the definition chain, ending with the mutated definition and its
// cached mutation fragment. A hop whose sources cannot be shown renders an
// explicit incomplete section instead of failing the page.
func (r *Renderer) RenderTrace(mutationID int, defIDs []m.DefID) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(defIDs) == 0 {
		return "", fmt.Errorf("trace for mutation %d has no definitions", mutationID)
	}

	mk := NewMarkup()
	writePageHead(mk, fmt.Sprintf("Mutation Report - Viewing Trace for Mutation %d", mutationID), "search.js", "trace-main.js")
	mk.Raw(r.cache.Search())
	mk.Raw(r.cache.FileTree())

	mk.Raw(`<div class="code-wrapper"><div class="code-header">`)
	mk.Raw(`<button id="left-pane-show-btn" class="nav-button hidden">`)
	mk.Icon("sidebar.png")
	mk.Raw(`</button><div class="file-name">`)
	mk.Icon("tree.png")
	mk.Writef(`Trace for Mutation %d</div></div>`, mutationID)
	mk.Raw(`<div class="main-code-wrapper"><table id="code-table" class="main-code-table hidden">`)
	mk.Raw(standardColumns)

	for i := 0; i+1 < len(defIDs); i++ {
		if err := r.writeTraceHop(mk, defIDs[i], defIDs[i+1]); err != nil {
			return "", err
		}
	}

	if err := r.writeMutatedHop(mk, mutationID, defIDs[len(defIDs)-1]); err != nil {
		return "", err
	}

	mk.Writef(`</table></div><div class="status-bar"><div class="status-text">Trace for Mutation %d</div><div class="spacer"></div><div class="status-text"><span class="key">/</span> to search</div></div></div>`, mutationID)
	mk.Raw(`</body></html>`)

	return mk.String(), nil
}

// writeTraceHop renders one caller-calls-callee section: a header naming both
// definitions and the caller's source from its definition down to the call
// site.
func (r *Renderer) writeTraceHop(mk *Markup, callerID, calleeID m.DefID) error {
	caller, err := r.results.CallGraph.Definition(callerID)
	if err != nil {
		return err
	}

	callee, err := r.results.CallGraph.Definition(calleeID)
	if err != nil {
		return err
	}

	if caller.Span == nil {
		r.writeIncompleteHop(mk, caller, callee)

		return nil
	}

	fileLines, ok := r.sources[caller.Span.Path]
	if !ok {
		r.writeIncompleteHop(mk, caller, callee)

		return nil
	}

	mk.Writef(`<tr><td></td><td></td><td class="file-header"><a class="file-path" href="/file/%[1]s?line_number=%d">%[1]s</a><p class="generic-text">`,
		caller.Span.Path, caller.Span.Begin.Line+1)
	writeDefinitionRef(mk, caller, false)
	mk.Raw(` calls `)
	writeDefinitionRef(mk, callee, true)
	mk.Raw(`</p></td></tr>`)

	site := r.lastCallSite(callerID, calleeID)

	snippetEnd := caller.Span.End.Line
	if site != nil && site.End.Line < snippetEnd {
		snippetEnd = site.End.Line
	}

	if snippetEnd >= len(fileLines) {
		snippetEnd = len(fileLines) - 1
	}

	mk.Raw(`<tbody>`)

	for lineIdx := caller.Span.Begin.Line; lineIdx <= snippetEnd; lineIdx++ {
		if err := r.writeSnippetLine(mk, caller.Span.Path, fileLines[lineIdx], lineIdx, site); err != nil {
			return err
		}
	}

	mk.Raw(`</tbody>`)

	return nil
}

func writeDefinitionRef(mk *Markup, def *m.Definition, callee bool) {
	if def.Name != nil && *def.Name != "" {
		mk.Writef(`<span class="inline-code function">%s</span>`, Escape(*def.Name))

		return
	}

	label := "Definition"
	if callee {
		label = "definition"
	}

	mk.Writef(`%s <span class="inline-code">%s</span>`, label, Escape(def.DisplayName()))
}

// writeIncompleteHop renders the header of a hop whose caller source cannot
// be shown, with an explicit error row instead of a snippet.
func (r *Renderer) writeIncompleteHop(mk *Markup, caller, callee *m.Definition) {
	mk.Raw(`<tr><td></td><td></td><td class="file-header"><p class="generic-text">`)
	mk.Writef(`Definition <span class="inline-code">%s</span> calls `, Escape(caller.DisplayName()))
	writeDefinitionRef(mk, callee, true)
	mk.Raw(`</p></td></tr>`)

	mk.Raw(`<tr><td></td><td></td><td class="error-wrapper">`)
	mk.Icon("error.png")
	mk.Raw(`<h3 class="error-text">Unable to load source file</h3>`)
	mk.Raw(`</td></tr>`)
}

// lastCallSite returns the caller's call site into callee with the greatest
// end position, or nil when the call graph records no sites for the edge.
func (r *Renderer) lastCallSite(callerID, calleeID m.DefID) *m.Span {
	var last *m.Span

	graph := &r.results.CallGraph

	for i := range graph.CallGraph.Callees {
		caller := &graph.CallGraph.Callees[i]
		if caller.DefID != callerID {
			continue
		}

		for _, call := range caller.Calls {
			target, err := graph.Callee(call.CalleeID)
			if err != nil || target.DefID != calleeID {
				continue
			}

			for j := range call.Sites {
				site := &call.Sites[j]
				if last == nil || last.End.Before(site.End) {
					last = site
				}
			}
		}
	}

	return last
}

// writeSnippetLine renders one numbered snippet line, wrapping the call-site
// segment when the line intersects it.
func (r *Renderer) writeSnippetLine(mk *Markup, p m.Path, text string, lineIdx int, site *m.Span) error {
	writeLineOpen(mk, domain.DiffUnchanged, m.StatusUnknown, lineIdx+1, false)
	mk.Raw(`<td class="line-content">`)

	begin, end, ok := spanLineRange(site, lineIdx, len(text))
	if !ok {
		fragment, err := r.highlightFragment(p, text)
		if err != nil {
			return err
		}

		mk.Raw(fragment)
		mk.Raw(`</td></tr>`)

		return nil
	}

	prefix, err := r.highlightFragment(p, text[:begin])
	if err != nil {
		return err
	}

	called, err := r.highlightFragment(p, text[begin:end])
	if err != nil {
		return err
	}

	suffix, err := r.highlightFragment(p, text[end:])
	if err != nil {
		return err
	}

	mk.Raw(prefix)
	mk.Raw(`<span class="inline-diff call">`)
	mk.Raw(called)
	mk.Raw(`</span>`)
	mk.Raw(suffix)
	mk.Raw(`</td></tr>`)

	return nil
}

// spanLineRange projects a span onto one line: the span's own columns on its
// first and last lines, the full line in between.
func spanLineRange(site *m.Span, lineIdx, lineLen int) (int, int, bool) {
	if site == nil || lineIdx < site.Begin.Line || lineIdx > site.End.Line {
		return 0, 0, false
	}

	begin := 0
	if lineIdx == site.Begin.Line {
		begin = site.Begin.Char
	}

	end := lineLen
	if lineIdx == site.End.Line && site.End.Char < lineLen {
		end = site.End.Char
	}

	if begin > lineLen {
		begin = lineLen
	}

	if end < begin {
		end = begin
	}

	return begin, end, true
}

// writeMutatedHop renders the final section of the trace page: the mutated
// definition's source down to the conflict region, then the cached mutation
// fragment.
func (r *Renderer) writeMutatedHop(mk *Markup, mutationID int, targetID m.DefID) error {
	target, err := r.results.CallGraph.Definition(targetID)
	if err != nil {
		return err
	}

	name := Escape(target.DisplayName())

	if target.Span == nil {
		mk.Writef(`<tr><td></td><td></td><td class="file-header"><p class="generic-text">Mutation <span class="inline-code">%d</span> in <span class="inline-code function">%s</span></p></td></tr>`, mutationID, name)
		mk.Raw(`<tr><td></td><td></td><td class="error-wrapper">`)
		mk.Icon("error.png")
		mk.Raw(`<h3 class="error-text">Unable to load source file</h3></td></tr>`)

		return nil
	}

	p := target.Span.Path

	mk.Writef(`<tr><td></td><td></td><td class="file-header"><a class="file-path" href="/file/%[1]s">%[1]s</a><p class="generic-text">Mutation <span class="inline-code">%d</span> in <span class="inline-code function">%s</span></p></td></tr>`,
		p, mutationID, name)

	fileLines, ok := r.sources[p]
	if !ok {
		return nil
	}

	conflict, found := r.conflictOfMutation(p, mutationID)
	if !found {
		return fmt.Errorf("mutation %d has no conflict region in %s", mutationID, p)
	}

	mk.Raw(`<tbody>`)

	for lineIdx := target.Span.Begin.Line; lineIdx < conflict.StartLine && lineIdx < len(fileLines); lineIdx++ {
		fragment, err := r.highlightFragment(p, fileLines[lineIdx])
		if err != nil {
			return err
		}

		writeLineOpen(mk, domain.DiffUnchanged, m.StatusUnknown, lineIdx+1, false)
		mk.Raw(`<td class="line-content">`)
		mk.Raw(fragment)
		mk.Raw(`</td></tr>`)
	}

	mutationFragment, err := r.cache.Mutation(mutationID)
	if err != nil {
		return err
	}

	mk.Raw(`</tbody><tbody class="mutation">`)
	mk.Raw(mutationFragment)
	mk.Raw(`</tbody>`)

	return nil
}

// conflictOfMutation finds the conflict region holding the mutation in the
// file.
func (r *Renderer) conflictOfMutation(p m.Path, mutationID int) (m.Conflict, bool) {
	for _, conflict := range r.conflicts[p] {
		for _, mu := range conflict.Mutations {
			if mu.ID == mutationID {
				return conflict, true
			}
		}
	}

	return m.Conflict{}, false
}
