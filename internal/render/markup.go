// Package render turns mutation results into the HTML pages of the report.
package render

import (
	"fmt"
	"html"
	"strings"
)

// Markup accumulates an HTML fragment. Text content goes through Text so it
// is always escaped; structural markup goes through Raw and Writef.
type Markup struct {
	b strings.Builder
}

// NewMarkup constructs an empty Markup buffer.
func NewMarkup() *Markup {
	return &Markup{}
}

// Raw appends markup verbatim.
func (mk *Markup) Raw(s string) {
	mk.b.WriteString(s)
}

// Text appends escaped text content.
func (mk *Markup) Text(s string) {
	mk.b.WriteString(html.EscapeString(s))
}

// Writef appends formatted markup. Interpolated text content must already be
// escaped.
func (mk *Markup) Writef(format string, args ...any) {
	fmt.Fprintf(&mk.b, format, args...)
}

// Icon appends a generic icon image tag.
func (mk *Markup) Icon(name string) {
	mk.IconWithClass(name, "")
}

// IconWithClass appends an icon image tag with extra classes.
func (mk *Markup) IconWithClass(name, classList string) {
	mk.Writef(`<img class="generic-icon %s" src="/static/icons/%s" alt="" />`, classList, name)
}

// String returns the accumulated fragment.
func (mk *Markup) String() string {
	return mk.b.String()
}

// Escape returns s escaped for literal HTML embedding.
func Escape(s string) string {
	return html.EscapeString(s)
}
