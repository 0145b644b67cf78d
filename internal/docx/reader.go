// Package docx reads the paragraphs and tables of a Word document and renders
// them as Markdown.
package docx

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	documentPart = "word/document.xml"
	stylesPart   = "word/styles.xml"
)

// ErrNoDocumentPart is returned for archives without word/document.xml.
var ErrNoDocumentPart = errors.New("missing " + documentPart)

// Run is a stretch of paragraph text with direct formatting. Bold is nil when
// the run does not set it.
type Run struct {
	Text string
	Bold *bool
}

// Paragraph is a body paragraph with its resolved style name.
type Paragraph struct {
	Style string
	Runs  []Run
}

// Text returns the concatenated run text.
func (p Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Table is a grid of cell texts. Paragraphs inside a cell are joined by newlines.
type Table struct {
	Rows [][]string
}

// Block is either a paragraph or a table, in body order.
type Block struct {
	Paragraph *Paragraph
	Table     *Table
}

// Document is the body of a Word file.
type Document struct {
	Blocks []Block
}

// Paragraphs returns the number of body paragraphs.
func (d *Document) Paragraphs() int {
	n := 0
	for _, b := range d.Blocks {
		if b.Paragraph != nil {
			n++
		}
	}
	return n
}

// Tables returns the number of top-level tables.
func (d *Document) Tables() int {
	return len(d.Blocks) - d.Paragraphs()
}

// Open reads the Word document at path.
func Open(path string) (*Document, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open DOCX archive: %w", err)
	}
	defer zr.Close()
	return read(&zr.Reader)
}

// Parse reads a Word document from an in-memory archive.
func Parse(r io.ReaderAt, size int64) (*Document, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open DOCX archive: %w", err)
	}
	return read(zr)
}

func read(zr *zip.Reader) (*Document, error) {
	var doc, styles *zip.File
	for _, f := range zr.File {
		switch f.Name {
		case documentPart:
			doc = f
		case stylesPart:
			styles = f
		}
	}
	if doc == nil {
		return nil, ErrNoDocumentPart
	}

	names := map[string]string{}
	if styles != nil {
		var err error
		if names, err = readStyles(styles); err != nil {
			return nil, err
		}
	}

	rc, err := doc.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", documentPart, err)
	}
	defer rc.Close()

	return parseBody(xml.NewDecoder(rc), names)
}

type stylesXML struct {
	Styles []struct {
		ID   string `xml:"styleId,attr"`
		Name struct {
			Val string `xml:"val,attr"`
		} `xml:"name"`
	} `xml:"style"`
}

// readStyles maps style ids to their display names.
func readStyles(f *zip.File) (map[string]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", stylesPart, err)
	}
	defer rc.Close()

	var s stylesXML
	if err := xml.NewDecoder(rc).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", stylesPart, err)
	}
	names := make(map[string]string, len(s.Styles))
	for _, st := range s.Styles {
		if st.ID != "" && st.Name.Val != "" {
			names[st.ID] = st.Name.Val
		}
	}
	return names, nil
}

// tableState tracks the row and cell being filled in one (possibly nested) table.
type tableState struct {
	table *Table
	row   []string
	cell  []string
}

type bodyParser struct {
	names  map[string]string
	blocks []Block
	tables []*tableState

	para   *Paragraph
	run    *Run
	inPPr  bool
	inRPr  bool
	inText bool
	skip   int // depth inside text box content
}

func parseBody(dec *xml.Decoder, names map[string]string) (*Document, error) {
	p := &bodyParser{names: names}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", documentPart, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "txbxContent" {
				p.skip++
			} else if p.skip == 0 {
				p.start(t)
			}
		case xml.EndElement:
			if t.Name.Local == "txbxContent" {
				p.skip--
			} else if p.skip == 0 {
				p.end(t)
			}
		case xml.CharData:
			if p.skip == 0 && p.inText && p.run != nil {
				p.run.Text += string(t)
			}
		}
	}
	return &Document{Blocks: p.blocks}, nil
}

func (p *bodyParser) current() *tableState {
	if len(p.tables) == 0 {
		return nil
	}
	return p.tables[len(p.tables)-1]
}

func (p *bodyParser) start(t xml.StartElement) {
	switch t.Name.Local {
	case "tbl":
		p.tables = append(p.tables, &tableState{table: &Table{}})
	case "tr":
		if ts := p.current(); ts != nil {
			ts.row = nil
		}
	case "tc":
		if ts := p.current(); ts != nil {
			ts.cell = nil
		}
	case "p":
		p.para = &Paragraph{}
	case "pPr":
		p.inPPr = true
	case "pStyle":
		if p.para != nil && p.inPPr {
			id := attr(t, "val")
			if name, ok := p.names[id]; ok {
				p.para.Style = name
			} else {
				p.para.Style = id
			}
		}
	case "r":
		if p.para != nil {
			p.run = &Run{}
		}
	case "rPr":
		p.inRPr = true
	case "b":
		if p.run != nil && p.inRPr {
			bold := onOff(attr(t, "val"))
			p.run.Bold = &bold
		}
	case "t":
		p.inText = true
	case "tab":
		if p.run != nil && !p.inRPr {
			p.run.Text += "\t"
		}
	case "br", "cr":
		if p.run != nil {
			p.run.Text += "\n"
		}
	}
}

func (p *bodyParser) end(t xml.EndElement) {
	switch t.Name.Local {
	case "t":
		p.inText = false
	case "rPr":
		p.inRPr = false
	case "pPr":
		p.inPPr = false
	case "r":
		if p.para != nil && p.run != nil {
			p.para.Runs = append(p.para.Runs, *p.run)
		}
		p.run = nil
	case "p":
		if p.para == nil {
			return
		}
		if ts := p.current(); ts != nil {
			ts.cell = append(ts.cell, p.para.Text())
		} else {
			p.blocks = append(p.blocks, Block{Paragraph: p.para})
		}
		p.para = nil
	case "tc":
		if ts := p.current(); ts != nil {
			ts.row = append(ts.row, strings.Join(ts.cell, "\n"))
			ts.cell = nil
		}
	case "tr":
		if ts := p.current(); ts != nil {
			ts.table.Rows = append(ts.table.Rows, ts.row)
			ts.row = nil
		}
	case "tbl":
		ts := p.current()
		if ts == nil {
			return
		}
		p.tables = p.tables[:len(p.tables)-1]
		if outer := p.current(); outer != nil {
			// nested tables are flattened into the enclosing cell
			for _, row := range ts.table.Rows {
				outer.cell = append(outer.cell, strings.Join(row, " "))
			}
			return
		}
		p.blocks = append(p.blocks, Block{Table: ts.table})
	}
}

func attr(t xml.StartElement, local string) string {
	for _, a := range t.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// onOff parses an OOXML on/off value. An absent value means on.
func onOff(v string) bool {
	switch strings.ToLower(v) {
	case "0", "false", "off", "none":
		return false
	default:
		return true
	}
}
