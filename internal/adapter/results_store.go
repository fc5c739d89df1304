// Package adapter contains infrastructure adapters for the mureport engine.
package adapter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	m "gooze.dev/pkg/mureport/internal/model"
)

// ResultsStore loads the result-set documents produced by a mutation
// evaluation run. It hides direct `os` access so the workflow logic can be
// tested without touching the disk.
type ResultsStore interface {
	// LoadResults reads all result documents from the given results
	// directory into a single ResultSet.
	LoadResults(dir m.Path) (*m.ResultSet, error)
}

// LocalResultsStore reads result documents from a local directory.
type LocalResultsStore struct{}

// NewLocalResultsStore constructs a LocalResultsStore ready to be wired into
// the workflow.
func NewLocalResultsStore() *LocalResultsStore {
	return &LocalResultsStore{}
}

// LoadResults reads the five result documents concurrently. The call-graph,
// evaluation and mutations documents are decoded into typed structures; tests
// and timings are kept as raw JSON for pass-through use.
func (s *LocalResultsStore) LoadResults(dir m.Path) (*m.ResultSet, error) {
	results := &m.ResultSet{}

	var g errgroup.Group

	g.Go(func() error {
		return readResultsDoc(dir, m.CallGraphFile, &results.CallGraph)
	})
	g.Go(func() error {
		return readResultsDoc(dir, m.EvaluationFile, &results.Evaluation)
	})
	g.Go(func() error {
		return readResultsDoc(dir, m.MutationsFile, &results.Mutations)
	})
	g.Go(func() error {
		return readRawDoc(dir, m.TestsFile, &results.Tests)
	})
	g.Go(func() error {
		return readRawDoc(dir, m.TimingsFile, &results.Timings)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func readResultsDoc(dir m.Path, name string, target any) error {
	data, err := os.ReadFile(filepath.Join(string(dir), name))
	if err != nil {
		return fmt.Errorf("load results document: %w", err)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("parse %s in %s: %w", name, dir, err)
	}

	return nil
}

func readRawDoc(dir m.Path, name string, target *json.RawMessage) error {
	data, err := os.ReadFile(filepath.Join(string(dir), name))
	if err != nil {
		return fmt.Errorf("load results document: %w", err)
	}

	if !json.Valid(data) {
		return fmt.Errorf("parse %s in %s: invalid JSON", name, dir)
	}

	*target = json.RawMessage(data)

	return nil
}
