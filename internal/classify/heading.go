// Package classify decides how a text span renders in Markdown: as a heading of
// some level or as body text, based on its size, weight and colours.
package classify

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/a3tai/mcp-pdf-markdown/internal/model"
)

// Level is a Markdown heading level. LevelBody means no heading marker.
type Level int

const (
	LevelBody Level = iota
	LevelH1
	LevelH2
	LevelH3
	LevelH4
)

// Prefix returns the Markdown marker for the level, including the trailing space.
func (l Level) Prefix() string {
	if l <= LevelBody {
		return ""
	}
	return strings.Repeat("#", int(l)) + " "
}

// String returns a string representation of the level
func (l Level) String() string {
	if l == LevelBody {
		return "body"
	}
	return "h" + string(rune('0'+int(l)))
}

// Rule maps spans that satisfy Match to Level.
type Rule struct {
	Name  string
	Match func(s model.TextSpan) bool
	Level Level
}

// DefaultRules is evaluated top to bottom and the first matching rule wins.
var DefaultRules = []Rule{
	{Name: "bold-20", Match: bold(20), Level: LevelH1},
	{Name: "bold-18", Match: bold(18), Level: LevelH2},
	{Name: "bold", Match: bold(0), Level: LevelH3},
	{Name: "normal-24", Match: normal(24), Level: LevelH1},
	{Name: "normal-20", Match: normal(20), Level: LevelH2},
	{Name: "normal-14", Match: normal(14), Level: LevelH3},
}

func bold(minSize float64) func(model.TextSpan) bool {
	return func(s model.TextSpan) bool { return s.Bold() && s.FontSize >= minSize }
}

func normal(minSize float64) func(model.TextSpan) bool {
	return func(s model.TextSpan) bool { return !s.Bold() && s.FontSize >= minSize }
}

// Classifier turns spans into Markdown fragments.
type Classifier struct {
	rules []Rule
}

// New creates a classifier using DefaultRules
func New() *Classifier {
	return &Classifier{rules: DefaultRules}
}

// NewWithRules creates a classifier with a custom rule table
func NewWithRules(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// LevelOf returns the level of the first matching rule, or LevelBody.
func (c *Classifier) LevelOf(s model.TextSpan) Level {
	for _, r := range c.rules {
		if r.Match(s) {
			return r.Level
		}
	}
	return LevelBody
}

// Heading renders the span as a single Markdown line. Bold or highlighted
// content is wrapped in strong emphasis.
func (c *Classifier) Heading(s model.TextSpan) string {
	content := s.Text()
	if s.Bold() || s.Highlighted() {
		content = "**" + content + "**"
	}
	return c.LevelOf(s).Prefix() + content
}

// maxHeadingChars is the length below which a line can act as a heading.
const maxHeadingChars = 50

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// ProcessTextItem renders a whole span. Short lines of bold spans become
// level four sub-headings. For other spans a short first paragraph is
// classified as a heading and the rest is kept as body text.
func (c *Classifier) ProcessTextItem(s model.TextSpan) string {
	content := s.Text()
	if s.Bold() {
		return processBold(content)
	}

	var paragraphs []string
	for _, p := range paragraphBreak.Split(strings.TrimSpace(content), -1) {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	if len(paragraphs) == 0 {
		return ""
	}

	if utf8.RuneCountInString(paragraphs[0]) < maxHeadingChars {
		first := s
		first.Content = paragraphs[0]
		first.Link = ""
		heading := c.Heading(first)
		if len(paragraphs) == 1 {
			return heading
		}
		return heading + "\n\n" + strings.Join(paragraphs[1:], "\n\n")
	}

	return strings.Join(paragraphs, "\n\n")
}

func processBold(content string) string {
	var headers, body []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) < maxHeadingChars {
			headers = append(headers, LevelH4.Prefix()+line)
		} else {
			body = append(body, line)
		}
	}

	switch {
	case len(headers) > 0 && len(body) > 0:
		return strings.Join(headers, "\n") + "\n\n" + strings.Join(body, "\n")
	case len(headers) > 0:
		return strings.Join(headers, "\n")
	case len(body) > 0:
		return strings.Join(body, "\n")
	default:
		return content
	}
}
