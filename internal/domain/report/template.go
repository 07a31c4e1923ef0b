package report

// ParamType is the declared type of a template parameter.
type ParamType string

const (
	ParamString     ParamType = "string"
	ParamDataSource ParamType = "datasource"
)

// Template describes a report layout with placeholder expressions.
// Parsed templates are never modified and may be shared between requests.
type Template struct {
	Name       string          `yaml:"name"`
	Title      string          `yaml:"title"`
	Page       PageSetup       `yaml:"page"`
	Parameters []ParameterSpec `yaml:"parameters"`
	Bands      []Band          `yaml:"bands"`
}

// PageSetup holds paper size and orientation.
type PageSetup struct {
	Size        string `yaml:"size"`
	Orientation string `yaml:"orientation"`
}

// ParameterSpec declares a parameter the template expects.
type ParameterSpec struct {
	Name string    `yaml:"name"`
	Type ParamType `yaml:"type"`
}

// Band is one layout block of a template.
type Band struct {
	Type       ElementType  `yaml:"type"`
	Text       string       `yaml:"text,omitempty"`
	Label      string       `yaml:"label,omitempty"`
	Expression string       `yaml:"expression,omitempty"`
	Level      int          `yaml:"level,omitempty"`
	Source     string       `yaml:"source,omitempty"`
	Columns    []ColumnSpec `yaml:"columns,omitempty"`
}

// ColumnSpec binds a table column to a data source field.
type ColumnSpec struct {
	Header string  `yaml:"header"`
	Field  string  `yaml:"field"`
	Width  float64 `yaml:"width,omitempty"`
}

// Parameter returns the declaration of the named parameter.
func (t *Template) Parameter(name string) (ParameterSpec, bool) {
	for _, p := range t.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return ParameterSpec{}, false
}
