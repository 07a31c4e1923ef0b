package report

import (
	"fmt"
	"strings"
)

// Имена параметров, которые понимают шаблоны отчётов.
const (
	ParamFirstName        = "FIRST_NAME"
	ParamLastName         = "LAST_NAME"
	ParamAge              = "AGE"
	ParamCustomDataSource = "CUSTOM_SOURCE_DATA"
)

// Логические имена встроенных шаблонов.
const (
	TemplateSimple = "simple"
	TemplateTable  = "table_report"
)

// Record is a single person entry posted by clients.
type Record struct {
	FirstName string `json:"firstName" validate:"notblank"`
	LastName  string `json:"lastName" validate:"notblank"`
	Age       string `json:"age" validate:"notblank"`
}

func (r Record) String() string {
	return fmt.Sprintf("Record{firstName=%q, lastName=%q, age=%q}", r.FirstName, r.LastName, r.Age)
}

// RecordList is the tabular payload of the data-source report.
type RecordList []Record

// ExportFormat обозначает поддерживаемые форматы выгрузки.
type ExportFormat int

const (
	FormatPDF ExportFormat = iota + 1
	FormatDOCX
)

// ParseExportFormat converts "pdf" or "docx" into an ExportFormat.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return FormatPDF, nil
	case "docx":
		return FormatDOCX, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

func (f ExportFormat) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatDOCX:
		return "docx"
	default:
		return fmt.Sprintf("ExportFormat(%d)", int(f))
	}
}

// Valid reports whether f is one of the known formats.
func (f ExportFormat) Valid() bool {
	return f == FormatPDF || f == FormatDOCX
}

// ParameterMap holds named values handed to the template filler.
type ParameterMap map[string]any

// Output is a rendered report ready to be sent to the client.
type Output struct {
	Format      ExportFormat
	ContentType string
	Extension   string
	Content     []byte
}

// Filename returns the attachment name for the output.
func (o *Output) Filename() string {
	return "report." + o.Extension
}
