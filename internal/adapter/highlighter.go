package adapter

import (
	"fmt"
	"html"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	m "gooze.dev/pkg/mureport/internal/model"
)

// Highlighter renders source lines as HTML fragments. The renderer splices
// diff markup into individual lines, so highlighting works line by line
// rather than on whole files.
type Highlighter interface {
	// HighlightLines returns one HTML fragment per input line. The
	// fragment count always equals the input line count.
	HighlightLines(path m.Path, lines []string) ([]string, error)
}

// ChromaHighlighter colorizes sources with the chroma lexer matched to the
// file name. Styles are inlined so exported pages need no stylesheet for the
// code itself.
type ChromaHighlighter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// NewChromaHighlighter constructs a highlighter using the named chroma style,
// falling back to the default style for unknown names.
func NewChromaHighlighter(styleName string) *ChromaHighlighter {
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}

	return &ChromaHighlighter{
		style: style,
		formatter: chromahtml.New(chromahtml.PreventSurroundingPre(true)),
	}
}

// HighlightLines tokenizes the whole file once so multi-line constructs
// (block comments, raw strings) keep their colors, then formats each line's
// tokens separately.
func (h *ChromaHighlighter) HighlightLines(path m.Path, lines []string) ([]string, error) {
	lexer := lexers.Match(filepath.Base(string(path)))
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, strings.Join(lines, "\n"))
	if err != nil {
		return nil, fmt.Errorf("tokenize %s: %w", path, err)
	}

	tokenLines := chroma.SplitTokensIntoLines(iterator.Tokens())

	fragments := make([]string, 0, len(lines))

	for _, tokens := range tokenLines {
		var b strings.Builder
		if err := h.formatter.Format(&b, h.style, chroma.Literator(tokens...)); err != nil {
			return nil, fmt.Errorf("highlight %s: %w", path, err)
		}

		fragments = append(fragments, strings.TrimRight(b.String(), "\n"))
	}

	// The splitter can come up short on trailing blank lines.
	for len(fragments) < len(lines) {
		fragments = append(fragments, "")
	}

	return fragments[:len(lines)], nil
}

// PlainHighlighter escapes lines without any coloring. It backs the report
// when highlighting is disabled or a file's language is unknown garbage.
type PlainHighlighter struct{}

// NewPlainHighlighter constructs a PlainHighlighter.
func NewPlainHighlighter() *PlainHighlighter {
	return &PlainHighlighter{}
}

// HighlightLines escapes each line for literal HTML embedding.
func (h *PlainHighlighter) HighlightLines(_ m.Path, lines []string) ([]string, error) {
	fragments := make([]string, len(lines))
	for i, line := range lines {
		fragments[i] = html.EscapeString(line)
	}

	return fragments, nil
}
