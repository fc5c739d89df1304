package model

// Conflict is a maximal run of lines in one file touched by one or more
// mutations whose line ranges intersect. Displaying the grouped mutations
// inline simultaneously would overlap, so the renderer shows one at a time.
//
// Invariants: for every mutation mu in Mutations,
// StartLine <= mu.StartLine() <= EndLine and StartLine <= mu.EndLine() <= EndLine;
// a file's conflicts are pairwise disjoint and sorted by StartLine.
type Conflict struct {
	StartLine int
	EndLine   int
	Mutations []Mutation
}

// Overlaps reports whether the mutation's inclusive line range intersects the
// conflict's line range.
func (c *Conflict) Overlaps(mu Mutation) bool {
	return mu.StartLine() <= c.EndLine && mu.EndLine() >= c.StartLine
}

// Add appends the mutation and widens the conflict's line range to cover it.
func (c *Conflict) Add(mu Mutation) {
	if mu.StartLine() < c.StartLine {
		c.StartLine = mu.StartLine()
	}

	if mu.EndLine() > c.EndLine {
		c.EndLine = mu.EndLine()
	}

	c.Mutations = append(c.Mutations, mu)
}

// LineCount returns the number of lines spanned by the conflict.
func (c *Conflict) LineCount() int {
	return c.EndLine - c.StartLine + 1
}
