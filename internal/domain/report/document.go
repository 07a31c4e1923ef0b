package report

// ElementType identifies a rendered layout element.
type ElementType string

const (
	ElementHeading ElementType = "heading"
	ElementField   ElementType = "field"
	ElementText    ElementType = "text"
	ElementTable   ElementType = "table"
	ElementSpacer  ElementType = "spacer"
)

// Document is a filled template, independent of the output format.
// It is produced once per request and consumed by exactly one exporter.
type Document struct {
	Name        string
	Title       string
	PageSize    string
	Orientation string
	Elements    []Element
}

// Element is one block of the rendered document. Only the fields relevant
// to Type are set.
type Element struct {
	Type  ElementType
	Text  string
	Label string
	Level int
	Table *Table
}

// Table is a filled tabular band.
type Table struct {
	Columns []Column
	Rows    [][]string
}

// Column describes a table column header and its relative width.
type Column struct {
	Header string
	Width  float64
}

// RowCount returns the number of data rows over all tables.
func (d *Document) RowCount() int {
	n := 0
	for _, el := range d.Elements {
		if el.Table != nil {
			n += len(el.Table.Rows)
		}
	}
	return n
}
