// Package fill merges a parameter set into a report template.
package fill

import (
	"fmt"
	"regexp"
	"strings"

	"report_api/internal/domain/report"
)

var paramRef = regexp.MustCompile(`\$P\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// emptySource is the data source used when a datasource parameter is absent.
type emptySource struct{}

func (emptySource) Len() int { return 0 }

func (emptySource) HasField(string) bool { return true }

func (emptySource) Value(int, string) (string, error) { return "", nil }

// Filler turns a template and a ParameterMap into a Document.
// It holds no state and may be shared.
type Filler struct{}

// NewFiller creates a Filler.
func NewFiller() *Filler {
	return &Filler{}
}

// Fill renders every band of tmpl once, in order. Table bands produce one
// row per data source row.
func (f *Filler) Fill(tmpl *report.Template, params report.ParameterMap) (*report.Document, error) {
	if tmpl == nil {
		return nil, fmt.Errorf("%w: nil template", report.ErrRender)
	}

	doc := &report.Document{
		Name:        tmpl.Name,
		PageSize:    tmpl.Page.Size,
		Orientation: tmpl.Page.Orientation,
		Elements:    make([]report.Element, 0, len(tmpl.Bands)),
	}

	title, err := expand(tmpl, params, tmpl.Title)
	if err != nil {
		return nil, err
	}
	doc.Title = title

	for i, band := range tmpl.Bands {
		el, err := fillBand(tmpl, params, band)
		if err != nil {
			return nil, fmt.Errorf("band %d: %w", i, err)
		}
		doc.Elements = append(doc.Elements, el)
	}
	return doc, nil
}

func fillBand(tmpl *report.Template, params report.ParameterMap, band report.Band) (report.Element, error) {
	el := report.Element{Type: band.Type, Level: band.Level}

	switch band.Type {
	case report.ElementHeading, report.ElementText:
		text, err := expand(tmpl, params, band.Text)
		if err != nil {
			return el, err
		}
		el.Text = text
	case report.ElementField:
		label, err := expand(tmpl, params, band.Label)
		if err != nil {
			return el, err
		}
		value, err := expand(tmpl, params, band.Expression)
		if err != nil {
			return el, err
		}
		el.Label, el.Text = label, value
	case report.ElementSpacer:
	case report.ElementTable:
		table, err := fillTable(tmpl, params, band)
		if err != nil {
			return el, err
		}
		el.Table = table
	default:
		return el, fmt.Errorf("%w: unknown band type %q", report.ErrRender, band.Type)
	}
	return el, nil
}

func fillTable(tmpl *report.Template, params report.ParameterMap, band report.Band) (*report.Table, error) {
	ds, err := dataSource(tmpl, params, band.Source)
	if err != nil {
		return nil, err
	}

	table := &report.Table{Columns: make([]report.Column, len(band.Columns))}
	for i, c := range band.Columns {
		if !ds.HasField(c.Field) {
			return nil, fmt.Errorf("%w: data source %s has no field %q", report.ErrRender, band.Source, c.Field)
		}
		width := c.Width
		if width == 0 {
			width = 1
		}
		table.Columns[i] = report.Column{Header: c.Header, Width: width}
	}

	n := ds.Len()
	table.Rows = make([][]string, 0, n)
	for row := 0; row < n; row++ {
		cells := make([]string, len(band.Columns))
		for i, c := range band.Columns {
			v, err := ds.Value(row, c.Field)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: %v", report.ErrRender, row, err)
			}
			cells[i] = v
		}
		table.Rows = append(table.Rows, cells)
	}
	return table, nil
}

func dataSource(tmpl *report.Template, params report.ParameterMap, name string) (report.DataSource, error) {
	spec, ok := tmpl.Parameter(name)
	if !ok || spec.Type != report.ParamDataSource {
		return nil, fmt.Errorf("%w: %s is not a declared datasource parameter", report.ErrRender, name)
	}

	raw, ok := params[name]
	if !ok || raw == nil {
		return emptySource{}, nil
	}
	ds, ok := raw.(report.DataSource)
	if !ok {
		return nil, fmt.Errorf("%w: parameter %s holds %T, want data source", report.ErrRender, name, raw)
	}
	return ds, nil
}

// expand substitutes $P{NAME} references with string parameter values.
func expand(tmpl *report.Template, params report.ParameterMap, text string) (string, error) {
	if !strings.Contains(text, "$P{") {
		return text, nil
	}

	var firstErr error
	out := paramRef.ReplaceAllStringFunc(text, func(ref string) string {
		if firstErr != nil {
			return ""
		}
		name := paramRef.FindStringSubmatch(ref)[1]
		v, err := stringParam(tmpl, params, name)
		if err != nil {
			firstErr = err
		}
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

func stringParam(tmpl *report.Template, params report.ParameterMap, name string) (string, error) {
	spec, ok := tmpl.Parameter(name)
	if !ok {
		return "", fmt.Errorf("%w: undeclared parameter %s", report.ErrRender, name)
	}
	if spec.Type != report.ParamString {
		return "", fmt.Errorf("%w: parameter %s of type %s used as text", report.ErrRender, name, spec.Type)
	}

	raw, ok := params[name]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: parameter %s holds %T, want string", report.ErrRender, name, raw)
	}
	return s, nil
}
