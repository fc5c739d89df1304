// Package controller wires the report surfaces: the web server and the
// static exporter.
package controller

import (
	"context"
	"fmt"
	"log/slog"

	"gooze.dev/pkg/mureport/internal/adapter"
	"gooze.dev/pkg/mureport/internal/domain"
	m "gooze.dev/pkg/mureport/internal/model"
	"gooze.dev/pkg/mureport/internal/render"
)

// Workflow assembles report sessions from stored results and sources.
type Workflow struct {
	results     adapter.ResultsStore
	sources     adapter.SourceFS
	highlighter adapter.Highlighter
}

// NewWorkflow creates a workflow over the given adapters.
func NewWorkflow(results adapter.ResultsStore, sources adapter.SourceFS, highlighter adapter.Highlighter) *Workflow {
	return &Workflow{results: results, sources: sources, highlighter: highlighter}
}

// SessionConfig configures one report session.
type SessionConfig struct {
	// ResultsDir is the directory holding the result documents.
	ResultsDir m.Path
	// SourceDir is the root the result documents' relative source paths
	// resolve against. Derived from ResultsDir when empty.
	SourceDir m.Path
	// Strategy selects the mutation diff rendering.
	Strategy domain.DiffStrategy
	// Limits bounds the call-trace search.
	Limits domain.TraceLimits
	// PreCacheAll renders every file's code section up front.
	PreCacheAll bool
}

// Session is one fully loaded report: the renderer with its caches primed,
// plus the data the exporter needs alongside it.
type Session struct {
	Renderer  *render.Renderer
	Results   *m.ResultSet
	Paths     []m.Path
	Sources   map[m.Path][]string
	Conflicts map[m.Path][]m.Conflict
}

// Build loads results and sources, resolves conflict regions and returns a
// session with all shared components cached.
func (w *Workflow) Build(ctx context.Context, cfg SessionConfig) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results, err := w.results.LoadResults(cfg.ResultsDir)
	if err != nil {
		return nil, err
	}

	mutations, err := domain.StreamlineMutations(results)
	if err != nil {
		return nil, err
	}

	conflicts := domain.ResolveConflicts(mutations)
	paths := domain.SourcePaths(results, conflicts)

	sourceDir := cfg.SourceDir
	if sourceDir == "" {
		sourceDir, err = w.sources.FindSourceRoot(cfg.ResultsDir)
		if err != nil {
			return nil, fmt.Errorf("derive source root: %w", err)
		}
	}

	slog.Debug("Loading source files", "root", sourceDir, "paths", len(paths))

	sources := make(map[m.Path][]string, len(paths))

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		lines, err := w.sources.LoadLines(sourceDir, p)
		if err != nil {
			// Trace pages degrade to incomplete sections for files
			// that cannot be read, but a missing mutated file makes
			// the report useless.
			if _, mutated := conflicts[p]; mutated {
				return nil, err
			}

			slog.Warn("Skipping unreadable source file", "path", p, "error", err)

			continue
		}

		sources[p] = lines
	}

	renderer := render.NewRenderer(sources, conflicts, results, w.highlighter, cfg.Strategy, cfg.Limits)

	if err := renderer.CacheMutations(); err != nil {
		return nil, err
	}

	renderer.CacheFileTree()
	renderer.CacheSearch()

	session := &Session{
		Renderer:  renderer,
		Results:   results,
		Paths:     paths,
		Sources:   sources,
		Conflicts: conflicts,
	}

	if cfg.PreCacheAll {
		if err := session.preCache(ctx); err != nil {
			return nil, err
		}
	}

	return session, nil
}

// preCache renders every loadable file's code section so the first request
// of each page is served from the cache.
func (s *Session) preCache(ctx context.Context) error {
	slog.Info("Pre-caching code sections", "files", len(s.Paths))

	for _, p := range s.Paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, ok := s.Sources[p]; !ok {
			continue
		}

		if _, err := s.Renderer.RenderFile(p); err != nil {
			return err
		}
	}

	return nil
}
