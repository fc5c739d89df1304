package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	m "gooze.dev/pkg/mureport/internal/model"
)

// SourceFS abstracts access to the mutated project's source tree. Result
// documents reference files by project-relative paths, so every read resolves
// against a source root.
type SourceFS interface {
	// LoadLines reads the file at root/path and returns its lines without
	// terminators.
	LoadLines(root, path m.Path) ([]string, error)

	// FindSourceRoot locates the project root the result documents'
	// relative paths resolve against, walking up from the results
	// directory.
	FindSourceRoot(resultsDir m.Path) (m.Path, error)
}

// LocalSourceFS reads sources from the local filesystem.
type LocalSourceFS struct{}

// NewLocalSourceFS constructs a LocalSourceFS.
func NewLocalSourceFS() *LocalSourceFS {
	return &LocalSourceFS{}
}

// LoadLines reads a source file and splits it into lines. Both \n and \r\n
// terminators are stripped so offset arithmetic sees the same column numbers
// the mutation engine recorded.
func (fs *LocalSourceFS) LoadLines(root, path m.Path) ([]string, error) {
	full := filepath.Join(string(root), filepath.FromSlash(string(path)))

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("load source file: %w", err)
	}

	text := strings.TrimSuffix(string(data), "\n")
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return lines, nil
}

// FindSourceRoot walks up from the results directory looking for a project
// manifest. The results directory usually lives inside the project tree
// (target/mutest or similar), so the nearest ancestor carrying a manifest is
// the root source paths resolve against.
func (fs *LocalSourceFS) FindSourceRoot(resultsDir m.Path) (m.Path, error) {
	dir, err := filepath.Abs(string(resultsDir))
	if err != nil {
		return "", err
	}

	for {
		for _, manifest := range []string{"Cargo.toml", "go.mod"} {
			if _, err := os.Stat(filepath.Join(dir, manifest)); err == nil {
				return m.Path(dir), nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no project manifest found in any parent directory of %s", resultsDir)
		}

		dir = parent
	}
}
