package render

import (
	"fmt"
	"path"
	"sort"
	"sync"

	"gooze.dev/pkg/mureport/internal/adapter"
	"gooze.dev/pkg/mureport/internal/domain"
	m "gooze.dev/pkg/mureport/internal/model"
)

// Renderer formats the report's HTML pages. A single lock serializes all
// rendering so the write-once cache needs no locking of its own.
type Renderer struct {
	mu sync.Mutex

	// sources maps each source file path to its lines.
	sources map[m.Path][]string
	// conflicts maps each source file path to its overlap regions.
	conflicts map[m.Path][]m.Conflict
	// results is the full result set, used for trace pages.
	results *m.ResultSet

	highlighter adapter.Highlighter
	strategy    domain.DiffStrategy
	limits      domain.TraceLimits

	cache *Cache
}

// NewRenderer constructs a renderer over the loaded sources and resolved
// conflict regions.
func NewRenderer(sources map[m.Path][]string, conflicts map[m.Path][]m.Conflict, results *m.ResultSet, highlighter adapter.Highlighter, strategy domain.DiffStrategy, limits domain.TraceLimits) *Renderer {
	return &Renderer{
		sources:     sources,
		conflicts:   conflicts,
		results:     results,
		highlighter: highlighter,
		strategy:    strategy,
		limits:      limits,
		cache:       NewCache(),
	}
}

// sortedConflictPaths returns the conflict map's keys in stable order.
func (r *Renderer) sortedConflictPaths() []m.Path {
	paths := make([]m.Path, 0, len(r.conflicts))
	for p := range r.conflicts {
		paths = append(paths, p)
	}

	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

	return paths
}

// ValidPath reports whether the renderer holds sources for the path.
func (r *Renderer) ValidPath(p m.Path) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.sources[p]

	return ok
}

// CachedCodeSections returns how many code sections have been rendered.
func (r *Renderer) CachedCodeSections() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.cache.Computes()
}

// RenderStart renders the default start page containing the file tree and
// usage tips.
func (r *Renderer) RenderStart() string {
	return r.RenderStartWithError("")
}

// RenderStartWithError renders the start page with an error banner in place
// of the usage tips.
func (r *Renderer) RenderStartWithError(errorText string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	mk := NewMarkup()

	if errorText == "" {
		writePageHead(mk, "Mutation Report - Tips and Tricks", "file-tree.js", "search.js")
	} else {
		writePageHead(mk, "Mutation Report - Error: "+Escape(errorText), "file-tree.js", "search.js")
	}

	mk.Raw(r.cache.Search())
	mk.Raw(r.cache.FileTree())

	mk.Raw(`<div class="code-wrapper"><div class="code-header">`)
	mk.Raw(`<button id="left-pane-show-btn" class="nav-button hidden">`)
	mk.Icon("sidebar.png")
	mk.Raw(`</button></div><div class="main-code-wrapper help-wrapper"><div class="help">`)

	if errorText != "" {
		mk.Raw(`<div class="error-wrapper">`)
		mk.Icon("error.png")
		mk.Writef(`<h3 class="error-text">%s</h3></div>`, Escape(errorText))
	}

	mk.Raw(`<div class="help-text"><span class="key">/</span> open search</div>`)
	mk.Raw(`</div></div>`)
	mk.Raw(`<div class="status-bar"><div class="spacer"></div>`)
	mk.Raw(`<div class="status-text"><span class="key">/</span> to search</div>`)
	mk.Raw(`</div></div></body></html>`)

	return mk.String()
}

// RenderFile renders the code page for one source file. The code section is
// rendered at most once and served from the cache afterwards.
func (r *Renderer) RenderFile(p m.Path) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mk := NewMarkup()
	writePageHead(mk, "Mutation Report - "+Escape(path.Base(string(p))), "code-main.js", "search.js")
	mk.Raw(r.cache.Search())
	mk.Raw(r.cache.FileTree())

	code, err := r.cache.Code(p, func() (string, error) {
		return r.renderCodeSection(p)
	})
	if err != nil {
		return "", err
	}

	mk.Raw(code)
	mk.Raw(`</body></html>`)

	return mk.String(), nil
}

// renderCodeSection renders a file's full annotated code listing: plain lines
// interleaved with the cached conflict fragments and a mutation changer panel
// for regions holding more than one mutation.
func (r *Renderer) renderCodeSection(p m.Path) (string, error) {
	fileLines, ok := r.sources[p]
	if !ok {
		return "", fmt.Errorf("no sources loaded for %s", p)
	}

	highlighted, err := r.highlighter.HighlightLines(p, fileLines)
	if err != nil {
		return "", err
	}

	conflicts := r.conflicts[p]

	mk := NewMarkup()
	changer := NewMarkup()
	changer.Raw(`<div id="changer" class="mutation-changer hidden"><div class="mutation-changer-nav"><h2 class="window-title">Mutation Changer</h2><button id="mutation-changer-close-btn" class="nav-button">`)
	changer.Icon("x-mark.png")
	changer.Raw(`</button></div><div id="changer-regions" class="mutations-wrapper">`)

	mk.Raw(`<div class="code-wrapper"><div class="code-header">`)
	mk.Raw(`<button id="left-pane-show-btn" class="nav-button hidden">`)
	mk.Icon("sidebar.png")
	mk.Raw(`</button><div class="file-name">`)
	mk.Icon("file.png")
	mk.Writef(`%s</div></div>`, Escape(path.Base(string(p))))
	mk.Raw(`<div class="main-code-wrapper"><table id="code-table" class="main-code-table hidden">`)
	mk.Raw(standardColumns)

	for i := 0; i < len(fileLines); i++ {
		if len(conflicts) > 0 && conflicts[0].StartLine == i {
			conflict := conflicts[0]
			conflicts = conflicts[1:]

			if err := r.writeConflictSection(mk, changer, p, conflict); err != nil {
				return "", err
			}

			i = conflict.EndLine

			continue
		}

		writeLineOpen(mk, domain.DiffUnchanged, m.StatusUnknown, i+1, false)
		mk.Raw(`<td class="line-content">`)
		mk.Raw(highlighted[i])
		mk.Raw(`</td></tr>`)
	}

	changer.Raw(`</div></div>`)

	mk.Writef(`</table></div><div class="status-bar"><div class="status-text">%s</div><div class="spacer"></div><div class="status-text"><span class="key">/</span> to search</div></div></div>`, Escape(string(p)))
	mk.Raw(changer.String())

	return mk.String(), nil
}

// writeConflictSection emits the tbody sections of one conflict region: the
// first mutation visible, the alternatives hidden, and all of them mirrored
// into the mutation changer panel when the region is contested.
func (r *Renderer) writeConflictSection(mk, changer *Markup, p m.Path, conflict m.Conflict) error {
	sectionName := fmt.Sprintf("conflict-%s-%d", pathSlug(p), conflict.StartLine)

	first := conflict.Mutations[0]

	firstFragment, err := r.cache.Mutation(first.ID)
	if err != nil {
		return err
	}

	mk.Writef(`<tbody id="m%d" class="%s mutation-region`, first.ID, sectionName)
	if len(conflict.Mutations) > 1 {
		mk.Raw(" mutation-conflict-region")
	}
	mk.Raw(`">`)

	if len(conflict.Mutations) > 1 {
		writeConflictHeader(mk, conflict, 1)
	}

	mk.Raw(firstFragment)
	mk.Raw(`</tbody>`)

	if len(conflict.Mutations) == 1 {
		return nil
	}

	for i, mu := range conflict.Mutations[1:] {
		fragment, err := r.cache.Mutation(mu.ID)
		if err != nil {
			return err
		}

		mk.Writef(`<tbody id="m%d" class="%s mutation-conflict-region hidden">`, mu.ID, sectionName)
		writeConflictHeader(mk, conflict, i+2)
		mk.Raw(fragment)
		mk.Raw(`</tbody>`)
	}

	changer.Writef(`<div id="%s" class="mutations">`, sectionName)

	for _, mu := range conflict.Mutations {
		fragment, err := r.cache.Mutation(mu.ID)
		if err != nil {
			return err
		}

		changer.Raw(`<div class="mutation-content-wrapper">`)
		changer.Writef(`<h2 class="mutation-name"><span class="mutation-id">%d</span> %s</h2>`, mu.ID, Escape(mu.DisplayName))
		writeDetectionMarker(changer, mu.Status)
		changer.Writef(`<div class="mutation-wrapper" data-target-class="%s" data-mutation-id="%d"><table class="no-status no-line-wrapper">%s<tbody>%s</tbody></table></div></div>`,
			sectionName, mu.ID, changerColumns, fragment)
	}

	changer.Raw(`</div>`)

	return nil
}
