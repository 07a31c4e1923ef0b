package export

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"report_api/internal/domain/report"

	"github.com/fumiama/go-docx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simpleDocument() *report.Document {
	return &report.Document{
		Name:  "simple",
		Title: "Simple Report",
		Elements: []report.Element{
			{Type: report.ElementHeading, Text: "Personal data"},
			{Type: report.ElementText, Text: "Report prepared for Jane Doe."},
			{Type: report.ElementSpacer},
			{Type: report.ElementField, Label: "First name", Text: "Jane"},
			{Type: report.ElementField, Label: "Age", Text: "30"},
		},
	}
}

func tableDocument(rows int) *report.Document {
	t := &report.Table{Columns: []report.Column{
		{Header: "First name", Width: 2},
		{Header: "Last name", Width: 2},
		{Header: "Age", Width: 1},
	}}
	for i := 0; i < rows; i++ {
		t.Rows = append(t.Rows, []string{fmt.Sprintf("Name%d", i), "Doe", "30"})
	}
	return &report.Document{
		Name:     "table_report",
		Title:    "Table Report",
		Elements: []report.Element{{Type: report.ElementHeading, Text: "People"}, {Type: report.ElementTable, Table: t}},
	}
}

func docxText(t *testing.T, content []byte) string {
	t.Helper()
	doc, err := docx.Parse(bytes.NewReader(content), int64(len(content)))
	require.NoError(t, err)

	var sb strings.Builder
	for _, item := range doc.Document.Body.Items {
		switch v := item.(type) {
		case *docx.Paragraph:
			sb.WriteString(v.String())
		case *docx.Table:
			sb.WriteString(v.String())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func TestExport_PDF(t *testing.T) {
	out, err := NewDefaultExporter().Export(simpleDocument(), report.FormatPDF)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out.Content, []byte("%PDF")))
	assert.Equal(t, ContentTypePDF, out.ContentType)
	assert.Equal(t, "report.pdf", out.Filename())
	assert.Equal(t, report.FormatPDF, out.Format)
}

func TestExport_PDFUncompressedContainsText(t *testing.T) {
	e := NewExporter(NewPDFExporter(false), NewDOCXExporter())
	out, err := e.Export(simpleDocument(), report.FormatPDF)
	require.NoError(t, err)

	content := string(out.Content)
	assert.Contains(t, content, "(Jane)")
	assert.Contains(t, content, "(Report prepared for Jane Doe.)")
	assert.Contains(t, content, "(First name)")
}

func TestExport_PDFTableRepeatsHeaderOnEveryPage(t *testing.T) {
	e := NewExporter(NewPDFExporter(false), NewDOCXExporter())
	out, err := e.Export(tableDocument(120), report.FormatPDF)
	require.NoError(t, err)

	content := string(out.Content)
	pages := strings.Count(content, "<</Type /Page\n")
	require.Greater(t, pages, 1)
	assert.Equal(t, pages, strings.Count(content, "(First name)Tj"))
	assert.Contains(t, content, "(Name119)")
}

func TestExport_PDFEmptyTable(t *testing.T) {
	e := NewExporter(NewPDFExporter(false), NewDOCXExporter())
	out, err := e.Export(tableDocument(0), report.FormatPDF)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out.Content, []byte("%PDF")))
	assert.Equal(t, 1, strings.Count(string(out.Content), "(First name)Tj"))
}

func TestExport_PDFLandscapeAndNonLatin(t *testing.T) {
	doc := simpleDocument()
	doc.Orientation = "landscape"
	doc.PageSize = "letter"
	doc.Elements = append(doc.Elements, report.Element{Type: report.ElementText, Text: "Müller, Zoë"})

	out, err := NewDefaultExporter().Export(doc, report.FormatPDF)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out.Content, []byte("%PDF")))
}

func TestExport_DOCX(t *testing.T) {
	out, err := NewDefaultExporter().Export(simpleDocument(), report.FormatDOCX)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out.Content, []byte("PK")))
	assert.Equal(t, ContentTypeDOCX, out.ContentType)
	assert.Equal(t, "report.docx", out.Filename())

	text := docxText(t, out.Content)
	assert.Contains(t, text, "Simple Report")
	assert.Contains(t, text, "First name: Jane")
	assert.Contains(t, text, "Report prepared for Jane Doe.")
}

func TestExport_DOCXTable(t *testing.T) {
	out, err := NewDefaultExporter().Export(tableDocument(3), report.FormatDOCX)
	require.NoError(t, err)

	text := docxText(t, out.Content)
	assert.Contains(t, text, "First name")
	assert.Contains(t, text, "Name0")
	assert.Contains(t, text, "Name2")
}

func TestExport_UnsupportedFormat(t *testing.T) {
	for _, f := range []report.ExportFormat{0, 3, -1} {
		out, err := NewDefaultExporter().Export(simpleDocument(), f)
		assert.Nil(t, out)
		assert.ErrorIs(t, err, report.ErrUnsupportedFormat)
	}
}

func TestExport_NilDocument(t *testing.T) {
	_, err := NewDefaultExporter().Export(nil, report.FormatPDF)
	assert.ErrorIs(t, err, report.ErrExport)
}

func TestColumnWidths(t *testing.T) {
	w := columnWidths([]report.Column{{Width: 2}, {Width: 2}, {Width: 1}}, 100)
	assert.InDeltaSlice(t, []float64{40, 40, 20}, w, 1e-9)

	w = columnWidths([]report.Column{{}, {}}, 100)
	assert.InDeltaSlice(t, []float64{50, 50}, w, 1e-9)
}
