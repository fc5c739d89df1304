package domain

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	m "gooze.dev/pkg/mureport/internal/model"
)

// DiffKind classifies a rendered line or a sub-line block.
type DiffKind int

// Available DiffKind values.
const (
	DiffUnchanged DiffKind = iota
	DiffOld
	DiffNew
)

// Class returns the CSS class used for the kind in rendered markup.
func (k DiffKind) Class() string {
	switch k {
	case DiffOld:
		return "remove"
	case DiffNew:
		return "insert"
	default:
		return ""
	}
}

// DiffBlock is a segment of a larger line.
type DiffBlock struct {
	Text string
	Kind DiffKind
}

// DiffLine is one annotated line of a mutation diff. Number is the 1-based
// original line number; 0 means no number, used for lines that exist only in
// the replaced text since inserted lines have no stable original numbering.
type DiffLine struct {
	Kind   DiffKind
	Number int
	Blocks []DiffBlock
}

// Text joins the line's blocks back into the full line content.
func (l DiffLine) Text() string {
	var b strings.Builder
	for _, block := range l.Blocks {
		b.WriteString(block.Text)
	}

	return b.String()
}

// DiffStrategy selects how a mutation's region diff is computed.
type DiffStrategy string

// Available DiffStrategy values. DiffSimple marks the whole mutated span as a
// contiguous old/new block pair; DiffAdvanced runs a line diff followed by a
// word diff on changed line pairs.
const (
	DiffSimple   DiffStrategy = "simple"
	DiffAdvanced DiffStrategy = "advanced"
)

// ParseDiffStrategy validates a configuration value.
func ParseDiffStrategy(s string) (DiffStrategy, error) {
	switch DiffStrategy(s) {
	case DiffSimple:
		return DiffSimple, nil
	case DiffAdvanced:
		return DiffAdvanced, nil
	default:
		return "", fmt.Errorf("unknown diff strategy %q (want %q or %q)", s, DiffSimple, DiffAdvanced)
	}
}

// BuildMutationDiff locates the mutation's substitution boundaries inside the
// joined region text, applies the replacement and diffs the result against
// the original region using the selected strategy.
func BuildMutationDiff(strategy DiffStrategy, mu m.Mutation, conflict m.Conflict, regionLines []string) ([]DiffLine, error) {
	start, err := CharOffset(mu.Span.Begin, conflict, regionLines)
	if err != nil {
		return nil, fmt.Errorf("mutation %d begin: %w", mu.ID, err)
	}

	end, err := CharOffset(mu.Span.End, conflict, regionLines)
	if err != nil {
		return nil, fmt.Errorf("mutation %d end: %w", mu.ID, err)
	}

	if end < start {
		return nil, fmt.Errorf("mutation %d span ends before it begins (%d < %d)", mu.ID, end, start)
	}

	region := strings.Join(regionLines, "\n")
	replaced := SpliceRegion(region, mu.Replacement, start, end)

	switch strategy {
	case DiffSimple:
		return simpleDiff(mu, conflict, regionLines, replaced), nil
	case DiffAdvanced:
		return advancedDiff(region, replaced, conflict), nil
	default:
		return nil, fmt.Errorf("unknown diff strategy %q", strategy)
	}
}

// ReplacedRegion applies the mutation to the joined region text. Shared by
// the diff engine and the patch exporter so both operate on identical text.
func ReplacedRegion(mu m.Mutation, conflict m.Conflict, regionLines []string) (string, error) {
	start, err := CharOffset(mu.Span.Begin, conflict, regionLines)
	if err != nil {
		return "", fmt.Errorf("mutation %d begin: %w", mu.ID, err)
	}

	end, err := CharOffset(mu.Span.End, conflict, regionLines)
	if err != nil {
		return "", fmt.Errorf("mutation %d end: %w", mu.ID, err)
	}

	return SpliceRegion(strings.Join(regionLines, "\n"), mu.Replacement, start, end), nil
}

// appendBlock adds a block to the line, skipping empty segments.
func appendBlock(line *DiffLine, text string, kind DiffKind) {
	if text == "" {
		return
	}

	line.Blocks = append(line.Blocks, DiffBlock{Text: text, Kind: kind})
}

// simpleDiff treats the mutation as one contiguous old block and one
// contiguous new block: whole-line for lines fully inside the mutated span,
// partial for the first and last lines of a multi-line mutation. The split
// points are exactly the span's character offsets, so the output is a pure
// function of the input.
func simpleDiff(mu m.Mutation, conflict m.Conflict, regionLines []string, replaced string) []DiffLine {
	unchangedStart := mu.StartLine() - conflict.StartLine
	unchangedEnd := conflict.EndLine - mu.EndLine()
	replacedLines := strings.Split(replaced, "\n")

	var lines []DiffLine

	for i := 0; i < unchangedStart; i++ {
		line := DiffLine{Kind: DiffUnchanged, Number: conflict.StartLine + i + 1}
		appendBlock(&line, regionLines[i], DiffUnchanged)
		lines = append(lines, line)
	}

	// Old lines of the mutated span.
	oldEnd := len(regionLines) - unchangedEnd - 1
	if mu.StartLine() == mu.EndLine() {
		old := regionLines[unchangedStart]
		line := DiffLine{Kind: DiffOld, Number: mu.StartLine() + 1}
		appendBlock(&line, old[:mu.Span.Begin.Char], DiffUnchanged)
		appendBlock(&line, old[mu.Span.Begin.Char:mu.Span.End.Char], DiffOld)
		appendBlock(&line, old[mu.Span.End.Char:], DiffUnchanged)
		lines = append(lines, line)
	} else {
		for i := unchangedStart; i <= oldEnd; i++ {
			old := regionLines[i]
			line := DiffLine{Kind: DiffOld, Number: conflict.StartLine + i + 1}

			switch i {
			case unchangedStart:
				appendBlock(&line, old[:mu.Span.Begin.Char], DiffUnchanged)
				appendBlock(&line, old[mu.Span.Begin.Char:], DiffOld)
			case oldEnd:
				appendBlock(&line, old[:mu.Span.End.Char], DiffOld)
				appendBlock(&line, old[mu.Span.End.Char:], DiffUnchanged)
			default:
				appendBlock(&line, old, DiffOld)
			}

			lines = append(lines, line)
		}
	}

	// New lines of the mutated span.
	newEnd := len(replacedLines) - unchangedEnd - 1
	if mu.StartLine() == mu.EndLine() && len(regionLines) == len(replacedLines) {
		text := replacedLines[unchangedStart]
		insertEnd := mu.Span.Begin.Char + len(mu.Replacement)
		line := DiffLine{Kind: DiffNew, Number: 0}
		appendBlock(&line, text[:mu.Span.Begin.Char], DiffUnchanged)
		appendBlock(&line, text[mu.Span.Begin.Char:insertEnd], DiffNew)
		appendBlock(&line, text[insertEnd:], DiffUnchanged)
		lines = append(lines, line)
	} else {
		replacementLines := strings.Split(mu.Replacement, "\n")

		for i := unchangedStart; i <= newEnd; i++ {
			text := replacedLines[i]
			line := DiffLine{Kind: DiffNew, Number: 0}

			switch i {
			case unchangedStart:
				appendBlock(&line, text[:mu.Span.Begin.Char], DiffUnchanged)
				appendBlock(&line, text[mu.Span.Begin.Char:], DiffNew)
			case newEnd:
				insertEnd := len(replacementLines[len(replacementLines)-1])
				appendBlock(&line, text[:insertEnd], DiffNew)
				appendBlock(&line, text[insertEnd:], DiffUnchanged)
			default:
				appendBlock(&line, text, DiffNew)
			}

			lines = append(lines, line)
		}
	}

	for i := oldEnd + 1; i < len(regionLines); i++ {
		line := DiffLine{Kind: DiffUnchanged, Number: conflict.StartLine + i + 1}
		appendBlock(&line, regionLines[i], DiffUnchanged)
		lines = append(lines, line)
	}

	return lines
}

// lineChange is one per-line operation of the flattened line diff.
type lineChange struct {
	op   diffmatchpatch.Operation
	text string
}

// advancedDiff computes a line-level diff between the original and replaced
// region text, then a secondary word-level diff for every deleted line
// immediately followed by an inserted line. Unpaired deletes and inserts
// render as a single whole-line block.
func advancedDiff(original, replaced string, conflict m.Conflict) []DiffLine {
	changes := lineChanges(original, replaced)

	var lines []DiffLine
	originalCounter := 0

	for i, change := range changes {
		switch change.op {
		case diffmatchpatch.DiffEqual:
			line := DiffLine{Kind: DiffUnchanged, Number: conflict.StartLine + originalCounter + 1}
			appendBlock(&line, change.text, DiffUnchanged)
			lines = append(lines, line)
			originalCounter++

		case diffmatchpatch.DiffDelete:
			number := conflict.StartLine + originalCounter + 1
			if i+1 < len(changes) && changes[i+1].op == diffmatchpatch.DiffInsert {
				lines = append(lines, wordDiffLine(change.text, changes[i+1].text, DiffOld, number))
			} else {
				line := DiffLine{Kind: DiffOld, Number: number}
				appendBlock(&line, change.text, DiffUnchanged)
				lines = append(lines, line)
			}
			originalCounter++

		case diffmatchpatch.DiffInsert:
			if i > 0 && changes[i-1].op == diffmatchpatch.DiffDelete {
				lines = append(lines, wordDiffLine(changes[i-1].text, change.text, DiffNew, 0))
			} else {
				line := DiffLine{Kind: DiffNew, Number: 0}
				appendBlock(&line, change.text, DiffUnchanged)
				lines = append(lines, line)
			}
		}
	}

	return lines
}

// lineChanges runs the line-mode diff and flattens each run of lines into
// per-line operations, in order.
func lineChanges(original, replaced string) []lineChange {
	dmp := diffmatchpatch.New()

	oldRunes, newRunes, lineArray := dmp.DiffLinesToRunes(original, replaced)
	diffs := dmp.DiffMainRunes(oldRunes, newRunes, false)
	diffs = dmp.DiffCleanupMerge(diffs)

	var changes []lineChange

	for _, diff := range diffs {
		for _, r := range diff.Text {
			idx := int(r)
			if idx < 0 || idx >= len(lineArray) {
				continue
			}

			changes = append(changes, lineChange{
				op:   diff.Type,
				text: strings.TrimSuffix(lineArray[idx], "\n"),
			})
		}
	}

	return changes
}

// wordDiffLine diffs a paired old/new line at word granularity and coalesces
// runs of the requested side into blocks. Whenever the block kind would
// change, the accumulated buffer of the previous kind is flushed as one
// block; the other side's words are skipped entirely.
func wordDiffLine(oldText, newText string, side DiffKind, number int) DiffLine {
	keepOp := diffmatchpatch.DiffDelete
	if side == DiffNew {
		keepOp = diffmatchpatch.DiffInsert
	}

	line := DiffLine{Kind: side, Number: number}

	var changed, unchanged strings.Builder

	for _, diff := range wordDiff(oldText, newText) {
		switch diff.Type {
		case keepOp:
			changed.WriteString(diff.Text)

			if unchanged.Len() > 0 {
				appendBlock(&line, unchanged.String(), DiffUnchanged)
				unchanged.Reset()
			}

		case diffmatchpatch.DiffEqual:
			unchanged.WriteString(diff.Text)

			if changed.Len() > 0 {
				appendBlock(&line, changed.String(), side)
				changed.Reset()
			}
		}
	}

	appendBlock(&line, unchanged.String(), DiffUnchanged)
	appendBlock(&line, changed.String(), side)

	return line
}

// wordDiff diffs two lines at word granularity by mapping each distinct word
// token to a rune and diffing the rune sequences, then decoding the results
// back into text.
func wordDiff(oldText, newText string) []diffmatchpatch.Diff {
	words := make([]string, 0, 16)
	indices := make(map[string]int)

	encode := func(text string) []rune {
		tokens := tokenizeWords(text)
		runes := make([]rune, 0, len(tokens))

		for _, token := range tokens {
			idx, ok := indices[token]
			if !ok {
				idx = len(words)
				words = append(words, token)
				indices[token] = idx
			}

			runes = append(runes, rune(idx))
		}

		return runes
	}

	oldRunes := encode(oldText)
	newRunes := encode(newText)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMainRunes(oldRunes, newRunes, false)
	diffs = dmp.DiffCleanupMerge(diffs)

	for i, diff := range diffs {
		var b strings.Builder
		for _, r := range diff.Text {
			if idx := int(r); idx >= 0 && idx < len(words) {
				b.WriteString(words[idx])
			}
		}

		diffs[i].Text = b.String()
	}

	return diffs
}

// tokenizeWords splits a line into word, whitespace and punctuation runs.
func tokenizeWords(text string) []string {
	var tokens []string
	var current strings.Builder
	currentClass := -1

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range text {
		class := runeClass(r)
		if class != currentClass {
			flush()
			currentClass = class
		}

		current.WriteRune(r)
	}

	flush()

	return tokens
}

func runeClass(r rune) int {
	switch {
	case r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') || r > 127:
		return 0 // word
	case r == ' ' || r == '\t':
		return 1 // whitespace
	default:
		return 2 // punctuation
	}
}
