package export

import (
	"bytes"
	"fmt"
	"strings"

	"report_api/internal/domain/report"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfFont       = "Helvetica"
	pdfLineHeight = 6.0
	pdfRowHeight  = 7.0
	pdfLabelWidth = 40.0
)

// PDFExporter renders documents with gofpdf core fonts. Text is converted
// to cp1252, characters outside it are replaced.
type PDFExporter struct {
	compress bool
}

// NewPDFExporter creates a PDF writer. Uncompressed output keeps page
// content streams readable.
func NewPDFExporter(compress bool) *PDFExporter {
	return &PDFExporter{compress: compress}
}

// Render writes doc as a PDF file.
func (e *PDFExporter) Render(doc *report.Document) ([]byte, error) {
	pdf := gofpdf.New(pdfOrientation(doc.Orientation), "mm", pdfPageSize(doc.PageSize), "")
	pdf.SetCompression(e.compress)
	pdf.SetCreator("report_api", true)
	if doc.Title != "" {
		pdf.SetTitle(doc.Title, true)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(pdfFont, "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("%d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	if doc.Title != "" {
		pdf.SetFont(pdfFont, "B", 18)
		pdf.CellFormat(0, 12, tr(doc.Title), "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	for _, el := range doc.Elements {
		switch el.Type {
		case report.ElementHeading:
			size := 15.0
			if el.Level > 1 {
				size = 12
			}
			pdf.SetFont(pdfFont, "B", size)
			pdf.CellFormat(0, 10, tr(el.Text), "", 1, "L", false, 0, "")
		case report.ElementText:
			pdf.SetFont(pdfFont, "", 11)
			pdf.MultiCell(0, pdfLineHeight, tr(el.Text), "", "L", false)
		case report.ElementField:
			pdf.SetFont(pdfFont, "B", 11)
			pdf.CellFormat(pdfLabelWidth, pdfLineHeight, tr(el.Label), "", 0, "L", false, 0, "")
			pdf.SetFont(pdfFont, "", 11)
			pdf.MultiCell(0, pdfLineHeight, tr(el.Text), "", "L", false)
		case report.ElementSpacer:
			pdf.Ln(pdfLineHeight)
		case report.ElementTable:
			if el.Table != nil {
				writePDFTable(pdf, tr, el.Table)
			}
		}
		if pdf.Err() {
			break
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writePDFTable draws a bordered table. The header row is repeated on every
// page the table spans.
func writePDFTable(pdf *gofpdf.Fpdf, tr func(string) string, t *report.Table) {
	pageW, pageH := pdf.GetPageSize()
	left, _, right, bottom := pdf.GetMargins()
	widths := columnWidths(t.Columns, pageW-left-right)

	header := func() {
		pdf.SetFont(pdfFont, "B", 10)
		pdf.SetFillColor(220, 220, 220)
		for i, c := range t.Columns {
			pdf.CellFormat(widths[i], pdfRowHeight, tr(c.Header), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(pdfFont, "", 10)
	}

	header()
	for _, row := range t.Rows {
		if pdf.GetY()+pdfRowHeight > pageH-bottom {
			pdf.AddPage()
			header()
		}
		for i, cell := range row {
			pdf.CellFormat(widths[i], pdfRowHeight, tr(cell), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(2)
}

// columnWidths splits total proportionally to the relative column widths.
func columnWidths(cols []report.Column, total float64) []float64 {
	sum := 0.0
	for _, c := range cols {
		sum += c.Width
	}
	widths := make([]float64, len(cols))
	for i, c := range cols {
		if sum <= 0 {
			widths[i] = total / float64(len(cols))
			continue
		}
		widths[i] = total * c.Width / sum
	}
	return widths
}

func pdfOrientation(s string) string {
	if strings.EqualFold(s, "landscape") {
		return "L"
	}
	return "P"
}

func pdfPageSize(s string) string {
	switch strings.ToLower(s) {
	case "a3":
		return "A3"
	case "a5":
		return "A5"
	case "letter":
		return "Letter"
	case "legal":
		return "Legal"
	default:
		return "A4"
	}
}
