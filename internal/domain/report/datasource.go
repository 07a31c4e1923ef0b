package report

// DataSource is a tabular source feeding a template's table band.
type DataSource interface {
	// Len returns the number of rows.
	Len() int
	// HasField reports whether rows expose the named field.
	HasField(name string) bool
	// Value returns the field value of the row at index i.
	Value(i int, field string) (string, error)
}
