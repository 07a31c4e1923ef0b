// Package sheet imports report records from spreadsheet uploads.
package sheet

import (
	"fmt"
	"io"
	"strings"

	"report_api/internal/domain/report"

	"github.com/xuri/excelize/v2"
)

// MaxRows limits the number of data rows read from one workbook.
const MaxRows = 10000

var headerFields = map[string]func(*report.Record, string){
	"firstname": func(r *report.Record, v string) { r.FirstName = v },
	"lastname":  func(r *report.Record, v string) { r.LastName = v },
	"age":       func(r *report.Record, v string) { r.Age = v },
}

// ReadRecords reads the first worksheet of an XLSX workbook. The first row
// is the header naming the columns firstName, lastName and age in any order
// and case; other columns are ignored. Blank rows are skipped. Records are
// not validated here.
func ReadRecords(r io.Reader) (report.RecordList, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: чтение книги: %v", report.ErrValidation, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: в книге нет листов", report.ErrValidation)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: чтение листа %s: %v", report.ErrValidation, sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: нет строки заголовка", report.ErrValidation)
	}

	setters, err := mapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	records := make(report.RecordList, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		if len(records) == MaxRows {
			return nil, fmt.Errorf("%w: больше %d строк", report.ErrValidation, MaxRows)
		}
		var rec report.Record
		for col, set := range setters {
			if col < len(row) {
				set(&rec, strings.TrimSpace(row[col]))
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// mapHeader returns the record setter of every known column index.
func mapHeader(header []string) (map[int]func(*report.Record, string), error) {
	setters := make(map[int]func(*report.Record, string), len(headerFields))
	found := make(map[string]bool, len(headerFields))
	for col, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if set, ok := headerFields[key]; ok && !found[key] {
			setters[col] = set
			found[key] = true
		}
	}
	for key := range headerFields {
		if !found[key] {
			return nil, fmt.Errorf("%w: нет колонки %s", report.ErrValidation, key)
		}
	}
	return setters, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
