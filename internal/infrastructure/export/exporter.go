// Package export serializes filled report documents into downloadable files.
package export

import (
	"fmt"

	"report_api/internal/domain/report"
)

// MIME types of the supported formats.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Exporter dispatches a document to the writer of the requested format.
type Exporter struct {
	pdf  *PDFExporter
	docx *DOCXExporter
}

// NewExporter creates an Exporter backed by the given format writers.
func NewExporter(pdf *PDFExporter, docx *DOCXExporter) *Exporter {
	return &Exporter{pdf: pdf, docx: docx}
}

// NewDefaultExporter creates an Exporter with compressed PDF output.
func NewDefaultExporter() *Exporter {
	return NewExporter(NewPDFExporter(true), NewDOCXExporter())
}

// Export renders doc in the given format. Every known format has its own
// branch; anything else is ErrUnsupportedFormat.
func (e *Exporter) Export(doc *report.Document, format report.ExportFormat) (*report.Output, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", report.ErrExport)
	}

	var (
		content []byte
		err     error
		out     = &report.Output{Format: format}
	)

	switch format {
	case report.FormatPDF:
		content, err = e.pdf.Render(doc)
		out.ContentType, out.Extension = ContentTypePDF, "pdf"
	case report.FormatDOCX:
		content, err = e.docx.Render(doc)
		out.ContentType, out.Extension = ContentTypeDOCX, "docx"
	default:
		return nil, fmt.Errorf("%w: %s", report.ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", report.ErrExport, format, err)
	}

	out.Content = content
	return out, nil
}
