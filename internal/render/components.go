package render

import (
	"fmt"
	"strings"

	"gooze.dev/pkg/mureport/internal/domain"
	m "gooze.dev/pkg/mureport/internal/model"
)

const (
	standardColumns = `<colgroup><col span="1" style="width: 40px;"><col span="1" style="width: 50px;"><col span="1" style="width: auto;"></colgroup>`
	changerColumns  = `<colgroup><col span="1" style="width: 50px;"><col span="1" style="width: auto;"></colgroup>`
)

func pathSlug(p m.Path) string {
	slug := strings.ReplaceAll(string(p), "/", "-")

	return strings.ReplaceAll(slug, ".", "-")
}

func writePageHead(mk *Markup, title string, scripts ...string) {
	mk.Raw(`<!DOCTYPE html><html><head><meta charset="utf-8">`)
	mk.Writef(`<title>%s</title>`, title)
	mk.Raw(`<link rel="stylesheet" href="/static/styles/style.css" />`)

	for _, script := range scripts {
		mk.Writef(`<script type="module" src="/static/scripts/%s"></script>`, script)
	}

	mk.Raw(`<link rel="icon" type="image/x-icon" href="/static/icons/favicon.png">`)
	mk.Raw(`</head><body>`)
}

func writeDetectionMarker(mk *Markup, status m.DetectionStatus) {
	mk.Writef(`<div class="detection-status-marker %[1]s">%[1]s</div>`, status.String())
}

func writeDetectionMiniMarker(mk *Markup, status m.DetectionStatus) {
	mk.Writef(`<div class="detection-status-marker mini %[1]s" title="%[1]s"></div>`, status.String())
}

// writeLineOpen emits a code row's opening tags: the controls cell with the
// detection marker and optional traces button, then the line number cell.
// Line number 0 marks an inserted line without a number of its own.
func writeLineOpen(mk *Markup, kind domain.DiffKind, status m.DetectionStatus, number int, tracesButton bool) {
	mk.Writef(`<tr id="line-%d" class="line-wrapper %s">`, number, kind.Class())
	mk.Raw(`<td class="line-controls`)

	if number == 0 {
		mk.Raw(" new")
	}

	mk.Raw(`"><div class="controls-wrapper">`)
	writeDetectionMiniMarker(mk, status)

	if tracesButton {
		mk.Raw(`<button class="show-trace-btn control-button" title="Show call graph traces for this mutation">`)
		mk.Icon("tree.png")
		mk.Raw(`</button>`)
	}

	mk.Raw(`</div></td><td class="numbers`)

	if number != 0 {
		mk.Writef(`">%d`, number)
	} else {
		mk.Raw(` new">`)
	}

	mk.Raw(`</td>`)
}

func writeConflictHeader(mk *Markup, conflict m.Conflict, i int) {
	mk.Writef(`<tr><td colspan="3" class="mutation-conflict-header">%d of %d mutations in region [%d:%d], Click region to show all mutations</td></tr>`,
		i, len(conflict.Mutations), conflict.StartLine+1, conflict.EndLine+1)
}

// highlightFragment syntax-highlights a snippet of a single line.
func (r *Renderer) highlightFragment(p m.Path, text string) (string, error) {
	if text == "" {
		return "", nil
	}

	fragments, err := r.highlighter.HighlightLines(p, []string{text})
	if err != nil {
		return "", err
	}

	return fragments[0], nil
}

// CacheMutations pre-renders every mutation inside its conflict region into
// the cache, so each mutation is only ever rendered once.
func (r *Renderer) CacheMutations() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, conflicts := range r.conflicts {
		for _, conflict := range conflicts {
			count += len(conflict.Mutations)
		}
	}

	r.cache.InitMutations(count)

	for _, p := range r.sortedConflictPaths() {
		fileLines, ok := r.sources[p]
		if !ok {
			return fmt.Errorf("no sources loaded for %s", p)
		}

		for _, conflict := range r.conflicts[p] {
			if conflict.EndLine >= len(fileLines) {
				return fmt.Errorf("conflict region [%d, %d] outside %s (%d lines)", conflict.StartLine+1, conflict.EndLine+1, p, len(fileLines))
			}

			regionLines := fileLines[conflict.StartLine : conflict.EndLine+1]

			for _, mu := range conflict.Mutations {
				fragment, err := r.renderMutation(p, mu, conflict, regionLines)
				if err != nil {
					return err
				}

				if err := r.cache.SetMutation(mu.ID, fragment); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// renderMutation renders one mutation as diffed rows spanning its whole
// conflict region.
func (r *Renderer) renderMutation(p m.Path, mu m.Mutation, conflict m.Conflict, regionLines []string) (string, error) {
	lines, err := domain.BuildMutationDiff(r.strategy, mu, conflict, regionLines)
	if err != nil {
		return "", err
	}

	mk := NewMarkup()

	for idx, line := range lines {
		status := m.StatusUnknown
		if idx == 0 {
			status = mu.Status
		}

		writeLineOpen(mk, line.Kind, status, line.Number, idx == 0)
		mk.Raw(`<td class="line-content">`)

		for _, block := range line.Blocks {
			if err := r.writeBlock(mk, p, block); err != nil {
				return "", err
			}
		}

		mk.Raw(`</td></tr>`)
	}

	return mk.String(), nil
}

// writeBlock highlights one line segment, wrapping changed segments in their
// inline diff span.
func (r *Renderer) writeBlock(mk *Markup, p m.Path, block domain.DiffBlock) error {
	if block.Kind != domain.DiffUnchanged {
		mk.Writef(`<span class="inline-diff %s">`, block.Kind.Class())
	}

	fragment, err := r.highlightFragment(p, block.Text)
	if err != nil {
		return err
	}

	mk.Raw(fragment)

	if block.Kind != domain.DiffUnchanged {
		mk.Raw(`</span>`)
	}

	return nil
}

// CacheFileTree renders the file tree component into the cache.
func (r *Renderer) CacheFileTree() {
	r.mu.Lock()
	defer r.mu.Unlock()

	tree := NewFileTree(r.sortedConflictPaths())

	mk := NewMarkup()
	mk.Raw(`<div id="file-tree-wrapper" class="file-tree-wrapper"><div class="file-tree-header">`)
	mk.Raw(`<button id="file-tree-tab-btn" class="nav-button selected" title="Show the file tree">`)
	mk.Icon("folder.png")
	mk.Raw(`</button>`)
	mk.Raw(`<button id="traces-tab-btn" class="nav-button" title="Show the call graph traces">`)
	mk.Icon("tree.png")
	mk.Raw(`</button>`)
	mk.Raw(`<div class="spacer"></div>`)
	mk.Raw(`<button id="left-pane-hide-btn" class="nav-button">`)
	mk.Icon("sidebar.png")
	mk.Raw(`</button></div>`)
	mk.Raw(`<div id="file-tree-tab" class="file-tree-container"><ul id="file-tree" class="file-tree">`)

	for _, node := range tree.Children() {
		r.writeFileTreeNode(mk, node, 0)
	}

	mk.Raw(`</ul></div><div id="traces-tab" class="file-tree-container hidden">`)
	mk.Raw(`<p class="default-text">Click on a call graph traces icon <span class="inline-icon">`)
	mk.Icon("tree.png")
	mk.Raw(`</span> to show traces in this tab.</p>`)
	mk.Raw(`</div></div>`)

	r.cache.SetFileTree(mk.String())
}

// writeFileTreeNode recursively renders one file tree node: folders list
// their children, files list their mutations and a detection rollup icon.
func (r *Renderer) writeFileTreeNode(mk *Markup, node *Node, level int) {
	expanded := ""
	if node.IsFolder() {
		expanded = "expanded"
	}

	mk.Writef(`<li class="ft-node %s"><div style="--level:%d;" class="node-content-wrapper"><button class="toggle">`, expanded, level)
	mk.IconWithClass("chevron-right.png", "collapsed")
	mk.IconWithClass("chevron-down.png", "expanded")
	mk.Raw(`</button>`)

	mk.Raw(`<a class="node-value-wrapper`)
	if !node.IsFolder() {
		mk.Writef(` file" href="/file/%s`, node.Path())
	}
	mk.Raw(`">`)

	mk.Raw(`<div class="node-icon">`)
	if node.IsFolder() {
		mk.Icon("folder.png")
	} else if r.allDetected(node.Path()) {
		mk.Icon("shield-check.png")
	} else {
		mk.Icon("shield-alert.png")
	}
	mk.Raw(`</div>`)

	mk.Writef(`<div class="node-value">%s</div>`, Escape(node.Value()))

	if !node.IsFolder() {
		mk.Writef(`<div class="no-mutations">%d</div>`, r.mutationCount(node.Path()))
	}

	mk.Raw(`</div></a>`)

	mk.Raw(`<ul class="file-tree">`)

	if node.IsFolder() {
		for _, child := range node.Children() {
			r.writeFileTreeNode(mk, child, level+1)
		}
	} else {
		for _, conflict := range r.conflicts[node.Path()] {
			for _, mu := range conflict.Mutations {
				mk.Writef(`<li class="ft-mutation" data-mutation-id="%d"><div style="--level:%d;" class="mutation-name-wrapper" title="%s">`, mu.ID, level, Escape(mu.DisplayName))
				writeDetectionMiniMarker(mk, mu.Status)
				mk.Writef(`<div class="mid">%d</div><div class="mutation-name">%s</div></div></li>`, mu.ID, Escape(mu.DisplayName))
			}
		}
	}

	mk.Raw(`</ul></li>`)
}

// allDetected reports whether every mutation in the file was detected.
func (r *Renderer) allDetected(p m.Path) bool {
	for _, conflict := range r.conflicts[p] {
		for _, mu := range conflict.Mutations {
			if mu.Status != m.StatusDetected {
				return false
			}
		}
	}

	return true
}

func (r *Renderer) mutationCount(p m.Path) int {
	count := 0
	for _, conflict := range r.conflicts[p] {
		count += len(conflict.Mutations)
	}

	return count
}

// CacheSearch renders the search popover component into the cache.
func (r *Renderer) CacheSearch() {
	r.mu.Lock()
	defer r.mu.Unlock()

	mk := NewMarkup()
	mk.Raw(`<div class="search-frame-content-blocker hidden">`)
	mk.Raw(`<div class="search-frame-wrapper">`)
	mk.Raw(`<div id="search-popover" class="search-frame main-search-wrapper"><div class="search-input">`)
	mk.Raw(`<img class="generic-icon" src="/static/icons/magnify.png" alt="magnifying glass" />`)
	mk.Raw(`<input id="search-input" class="search-input-field" type="search" placeholder="Search to filter mutations" />`)
	mk.Raw(`<div class="checkbox-wrapper">`)
	mk.Raw(`<input id="use-regex" class="checkbox" type="checkbox" />`)
	mk.Raw(`<label for="use-regex" class="checkbox-label">Use regex</label>`)
	mk.Raw(`</div></div><div class="mutations-wrapper">`)

	for _, p := range r.sortedConflictPaths() {
		for _, conflict := range r.conflicts[p] {
			for _, mu := range conflict.Mutations {
				mk.Writef(`<div class="search-mutation" data-mutation-id="%d" data-file-path="/file/%s" title="%s">`, mu.ID, p, Escape(mu.DisplayName))
				writeDetectionMiniMarker(mk, mu.Status)
				mk.Writef(`<div class="mid">%d</div><div class="mutation-name">%s</div></div>`, mu.ID, Escape(mu.DisplayName))
			}
		}
	}

	mk.Raw(`</div></div></div></div>`)

	r.cache.SetSearch(mk.String())
}
