package repository

import (
	"context"

	"report_api/internal/domain/report"
)

// TemplateResolver locates report templates by logical name.
type TemplateResolver interface {
	Resolve(ctx context.Context, name string) (*report.Template, error)
}

// TemplateFiller fills a template with parameters.
type TemplateFiller interface {
	Fill(tmpl *report.Template, params report.ParameterMap) (*report.Document, error)
}

// Exporter serializes a filled document into the requested format.
type Exporter interface {
	Export(doc *report.Document, format report.ExportFormat) (*report.Output, error)
}
