package usecase

import (
	"fmt"

	"report_api/internal/domain/report"
)

var recordFields = map[string]func(report.Record) string{
	"firstName": func(r report.Record) string { return r.FirstName },
	"lastName":  func(r report.Record) string { return r.LastName },
	"age":       func(r report.Record) string { return r.Age },
}

// RecordDataSource exposes a RecordList to table bands by JSON field name.
// It never mutates the records and is safe to read from several goroutines.
type RecordDataSource struct {
	records report.RecordList
}

// NewRecordDataSource wraps records. A nil list yields an empty source.
func NewRecordDataSource(records report.RecordList) *RecordDataSource {
	return &RecordDataSource{records: records}
}

func (d *RecordDataSource) Len() int { return len(d.records) }

func (d *RecordDataSource) HasField(name string) bool {
	_, ok := recordFields[name]
	return ok
}

func (d *RecordDataSource) Value(i int, field string) (string, error) {
	get, ok := recordFields[field]
	if !ok {
		return "", fmt.Errorf("unknown field %q", field)
	}
	if i < 0 || i >= len(d.records) {
		return "", fmt.Errorf("row %d out of range [0,%d)", i, len(d.records))
	}
	return get(d.records[i]), nil
}
