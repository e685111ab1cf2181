package canvas

import (
	"strings"

	"github.com/muesli/reflow/truncate"
)

// ExcerptWidth bounds announcement excerpts, in terminal cells.
const ExcerptWidth = 280

var entities = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&nbsp;", " ",
	"&#39;", "'",
	"&quot;", `"`,
)

// StripHTML drops tags, leaving a space where each one closed, and decodes
// the handful of entities Canvas emits in rich-text bodies.
func StripHTML(in string) string {
	var b strings.Builder
	b.Grow(len(in))
	inTag := false
	for _, r := range in {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteByte(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	return entities.Replace(b.String())
}

// Excerpt turns an HTML body into a single line of plain text no wider than
// ExcerptWidth.
func Excerpt(html string) string {
	text := strings.Join(strings.Fields(StripHTML(html)), " ")
	return truncate.StringWithTail(text, ExcerptWidth, "…")
}
