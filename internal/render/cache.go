package render

import (
	"fmt"

	m "gooze.dev/pkg/mureport/internal/model"
)

// Cache holds every rendered component so the renderer only renders each one
// once in its lifetime. The cache is not internally locked; the renderer's
// lock guards all access.
type Cache struct {
	// mutations holds each mutation rendered inside its conflict region,
	// indexed by mutation id.
	mutations []string
	// fileTree is the rendered file tree component.
	fileTree string
	// search is the rendered search popover component.
	search string
	// code maps each source path to its fully rendered code section with
	// the mutations inlined.
	code map[m.Path]string
	// computes counts code section renders, so tests can observe that
	// repeat requests hit the cache.
	computes int
}

// NewCache constructs an empty cache.
func NewCache() *Cache {
	return &Cache{code: make(map[m.Path]string)}
}

// InitMutations pre-sizes the mutation fragment array to the dense mutation
// id space.
func (c *Cache) InitMutations(count int) {
	c.mutations = make([]string, count)
}

// SetMutation stores a mutation's rendered fragment.
func (c *Cache) SetMutation(id int, fragment string) error {
	if id < 0 || id >= len(c.mutations) {
		return fmt.Errorf("mutation %d outside cached range of %d", id, len(c.mutations))
	}

	c.mutations[id] = fragment

	return nil
}

// Mutation returns a mutation's cached fragment.
func (c *Cache) Mutation(id int) (string, error) {
	if id < 0 || id >= len(c.mutations) {
		return "", fmt.Errorf("mutation %d outside cached range of %d", id, len(c.mutations))
	}

	return c.mutations[id], nil
}

// SetFileTree stores the rendered file tree component.
func (c *Cache) SetFileTree(fragment string) {
	c.fileTree = fragment
}

// FileTree returns the cached file tree component.
func (c *Cache) FileTree() string {
	return c.fileTree
}

// SetSearch stores the rendered search component.
func (c *Cache) SetSearch(fragment string) {
	c.search = fragment
}

// Search returns the cached search component.
func (c *Cache) Search() string {
	return c.search
}

// Code returns the cached code section for path, computing and storing it on
// first request.
func (c *Cache) Code(path m.Path, compute func() (string, error)) (string, error) {
	if fragment, ok := c.code[path]; ok {
		return fragment, nil
	}

	fragment, err := compute()
	if err != nil {
		return "", err
	}

	c.code[path] = fragment
	c.computes++

	return fragment, nil
}

// Computes returns the number of code sections rendered so far.
func (c *Cache) Computes() int {
	return c.computes
}
