package domain

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	m "gooze.dev/pkg/mureport/internal/model"
)

// UnifiedPatch renders one mutation as a classic unified patch against the
// full source file (---/+++ headers, @@ hunks). The mutated file content is
// built by substituting the mutation's conflict region, so the patch applies
// cleanly to the file on disk.
func UnifiedPatch(path m.Path, fileLines []string, mu m.Mutation, conflict m.Conflict) (string, error) {
	if conflict.StartLine < 0 || conflict.EndLine >= len(fileLines) {
		return "", fmt.Errorf("conflict region [%d, %d] outside %s (%d lines)", conflict.StartLine+1, conflict.EndLine+1, path, len(fileLines))
	}

	regionLines := fileLines[conflict.StartLine : conflict.EndLine+1]

	replaced, err := ReplacedRegion(mu, conflict, regionLines)
	if err != nil {
		return "", err
	}

	mutated := make([]string, 0, len(fileLines))
	mutated = append(mutated, fileLines[:conflict.StartLine]...)
	mutated = append(mutated, strings.Split(replaced, "\n")...)
	mutated = append(mutated, fileLines[conflict.EndLine+1:]...)

	diff := difflib.UnifiedDiff{
		A:        terminateLines(fileLines),
		B:        terminateLines(mutated),
		FromFile: "a/" + string(path),
		ToFile:   "b/" + string(path),
		Context:  3,
	}

	body, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("unified patch for mutation %d in %s: %w", mu.ID, path, err)
	}

	return body, nil
}

// terminateLines re-attaches the newline terminators difflib expects.
func terminateLines(lines []string) []string {
	terminated := make([]string, len(lines))
	for i, line := range lines {
		terminated[i] = line + "\n"
	}

	return terminated
}
