package export

import (
	"bytes"

	"report_api/internal/domain/report"

	"github.com/fumiama/go-docx"
)

// Printable width of an A4 page with default margins, in twips.
const docxTableWidth = 9000

// DOCXExporter renders documents as Word files with go-docx.
type DOCXExporter struct{}

func NewDOCXExporter() *DOCXExporter {
	return &DOCXExporter{}
}

// Render writes doc as a DOCX file. Sizes are in half-points.
func (e *DOCXExporter) Render(doc *report.Document) ([]byte, error) {
	w := docx.New().WithDefaultTheme()

	if doc.Title != "" {
		w.AddParagraph().Justification("center").AddText(doc.Title).Bold().Size("36")
	}

	for _, el := range doc.Elements {
		switch el.Type {
		case report.ElementHeading:
			size := "30"
			if el.Level > 1 {
				size = "24"
			}
			w.AddParagraph().AddText(el.Text).Bold().Size(size)
		case report.ElementText:
			w.AddParagraph().AddText(el.Text).Size("22")
		case report.ElementField:
			p := w.AddParagraph()
			p.AddText(el.Label + ": ").Bold().Size("22")
			p.AddText(el.Text).Size("22")
		case report.ElementSpacer:
			w.AddParagraph()
		case report.ElementTable:
			if el.Table != nil {
				writeDOCXTable(w, el.Table)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeDOCXTable adds a bordered table with a shaded header row.
func writeDOCXTable(w *docx.Docx, t *report.Table) {
	ws := columnWidths(t.Columns, docxTableWidth)
	colWidths := make([]int64, len(ws))
	for i, v := range ws {
		colWidths[i] = int64(v)
	}

	tbl := w.AddTableTwips(make([]int64, len(t.Rows)+1), colWidths, docxTableWidth, nil)

	for i, c := range t.Columns {
		cell := tbl.TableRows[0].TableCells[i]
		cell.Shade("clear", "auto", "D9D9D9")
		cell.AddParagraph().Justification("center").AddText(c.Header).Bold()
	}
	for r, row := range t.Rows {
		for i, v := range row {
			tbl.TableRows[r+1].TableCells[i].AddParagraph().AddText(v)
		}
	}
	w.AddParagraph()
}
