package convert

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// pdfBuilder assembles a minimal PDF with a correct cross-reference table.
type pdfBuilder struct {
	objects []string
}

func (b *pdfBuilder) add(obj string) int {
	b.objects = append(b.objects, obj)
	return len(b.objects)
}

func (b *pdfBuilder) bytes(root int) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(b.objects))
	for i, obj := range b.objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(b.objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(b.objects)+1, root, xref)
	return buf.Bytes()
}

func stream(content string) string {
	return fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content)
}

func font(base string) string {
	widths := strings.TrimSpace(strings.Repeat("500 ", 95))
	return fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /%s /Encoding /WinAnsiEncoding "+
		"/FirstChar 32 /LastChar 126 /Widths [%s] >>", base, widths)
}

// writePDF writes a Letter-sized PDF with one content stream per page. Fonts
// /F1 (Helvetica) and /F2 (Helvetica-Bold) are available on every page.
func writePDF(t *testing.T, dir string, pages ...string) string {
	t.Helper()
	b := &pdfBuilder{}
	b.add("<< /Type /Catalog /Pages 2 0 R >>")
	b.add("") // page tree, filled in once the kids are known
	b.add(font("Helvetica"))
	b.add(font("Helvetica-Bold"))

	var kids []string
	for _, content := range pages {
		c := b.add(stream(content))
		p := b.add("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
			"/Resources << /Font << /F1 3 0 R /F2 4 0 R >> >> " +
			fmt.Sprintf("/Contents %d 0 R >>", c))
		kids = append(kids, fmt.Sprintf("%d 0 R", p))
	}
	b.objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(kids))

	path := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(path, b.bytes(1), 0o600))
	return path
}

// writeDOCX writes a Word file whose body is the given WordprocessingML.
func writeDOCX(t *testing.T, dir, body string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(dir, "memo.docx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}
