package docx

import (
	"strconv"
	"strings"

	"github.com/a3tai/mcp-pdf-markdown/internal/assemble"
)

// HeadingLevel returns the Markdown heading level for a paragraph style name:
// "Heading 2" is 2, a bare "Heading" is 1, anything else is 0.
func HeadingLevel(style string) int {
	if !strings.HasPrefix(strings.ToLower(style), "heading") {
		return 0
	}
	fields := strings.Fields(style[len("heading"):])
	if len(fields) == 0 {
		return 1
	}
	n, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// allBold reports whether every run carrying text is explicitly bold.
func allBold(runs []Run) bool {
	seen := false
	for _, r := range runs {
		if strings.TrimSpace(r.Text) == "" {
			continue
		}
		if r.Bold == nil || !*r.Bold {
			return false
		}
		seen = true
	}
	return seen
}

// Render converts a document to Markdown, one block per line group, each
// followed by a blank line. Empty paragraphs and empty tables are skipped.
func Render(doc *Document) string {
	var lines []string
	for _, b := range doc.Blocks {
		switch {
		case b.Paragraph != nil:
			text := strings.TrimSpace(b.Paragraph.Text())
			if text == "" {
				continue
			}
			if level := HeadingLevel(b.Paragraph.Style); level > 0 {
				text = strings.Repeat("#", level) + " " + text
			} else if allBold(b.Paragraph.Runs) {
				text = "## " + text
			}
			lines = append(lines, text, "")
		case b.Table != nil:
			md := assemble.RenderTable(b.Table.Rows)
			if md == "" {
				continue
			}
			lines = append(lines, md, "")
		}
	}
	return strings.Join(lines, "\n")
}
