package controller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gooze.dev/pkg/mureport/internal/domain"
	m "gooze.dev/pkg/mureport/internal/model"
)

// Exporter writes the report as a static page tree. Each source file renders
// to its own path with the .html suffix appended, so the exported tree
// mirrors the project layout.
type Exporter struct {
	out io.Writer
	// interactive enables progress dots, set when out is a terminal.
	interactive bool
}

// NewExporter creates an exporter writing its progress to out.
func NewExporter(out io.Writer, interactive bool) *Exporter {
	return &Exporter{out: out, interactive: interactive}
}

// Export renders the session into exportDir: one HTML page per source file,
// one unified patch per mutation, the static assets, and a summary table on
// the exporter's output.
func (e *Exporter) Export(ctx context.Context, session *Session, exportDir, resourceDir m.Path) error {
	exported := 0

	for _, p := range session.Paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, ok := session.Sources[p]; !ok {
			slog.Warn("Skipping page for unreadable source file", "path", p)

			continue
		}

		page, err := session.Renderer.RenderFile(p)
		if err != nil {
			return err
		}

		target := filepath.Join(string(exportDir), filepath.FromSlash(string(p))+".html")
		if err := writeFileAt(target, []byte(page)); err != nil {
			return err
		}

		e.progress()

		exported++
	}

	if err := e.exportPatches(ctx, session, exportDir); err != nil {
		return err
	}

	if err := copyStaticAssets(resourceDir, exportDir); err != nil {
		return err
	}

	e.endProgress()

	fmt.Fprintf(e.out, "exported %d pages to %s\n", exported, exportDir)
	fmt.Fprintf(e.out, "\n%s", renderSummaryTable(buildFileStats(session.Conflicts)))

	return nil
}

// exportPatches writes each mutation as a unified patch under patches/.
func (e *Exporter) exportPatches(ctx context.Context, session *Session, exportDir m.Path) error {
	patchesDir := filepath.Join(string(exportDir), "patches")

	for _, p := range session.Paths {
		fileLines, ok := session.Sources[p]
		if !ok {
			continue
		}

		for _, conflict := range session.Conflicts[p] {
			if err := ctx.Err(); err != nil {
				return err
			}

			for _, mu := range conflict.Mutations {
				patch, err := domain.UnifiedPatch(p, fileLines, mu, conflict)
				if err != nil {
					return err
				}

				target := filepath.Join(patchesDir, fmt.Sprintf("mutation-%d.patch", mu.ID))
				if err := writeFileAt(target, []byte(patch)); err != nil {
					return err
				}

				e.progress()
			}
		}
	}

	return nil
}

func (e *Exporter) progress() {
	if e.interactive {
		fmt.Fprint(e.out, ".")
	}
}

func (e *Exporter) endProgress() {
	if e.interactive {
		fmt.Fprintln(e.out)
	}
}

func writeFileAt(target string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return err
	}

	return os.WriteFile(target, content, 0o600)
}

// copyStaticAssets mirrors resourceDir/static into exportDir/static.
func copyStaticAssets(resourceDir, exportDir m.Path) error {
	staticDir := filepath.Join(string(resourceDir), "static")

	if _, err := os.Stat(staticDir); os.IsNotExist(err) {
		slog.Warn("No static assets to copy", "dir", staticDir)

		return nil
	}

	return filepath.Walk(staticDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(staticDir, path)
		if err != nil {
			return err
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		return writeFileAt(filepath.Join(string(exportDir), "static", rel), content)
	})
}
