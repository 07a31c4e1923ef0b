package sheet

import (
	"bytes"
	"strings"
	"testing"

	"report_api/internal/domain/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadRecords(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Age", "Comment", "lastName", "FIRSTNAME"},
		{30, "x", "Doe", "Jane"},
		{},
		{41, "", "Smith", "John"},
	})

	records, err := ReadRecords(buf)
	require.NoError(t, err)
	assert.Equal(t, report.RecordList{
		{FirstName: "Jane", LastName: "Doe", Age: "30"},
		{FirstName: "John", LastName: "Smith", Age: "41"},
	}, records)
}

func TestReadRecords_HeaderOnly(t *testing.T) {
	records, err := ReadRecords(workbook(t, [][]any{{"firstName", "lastName", "age"}}))
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestReadRecords_ShortRowLeavesFieldsEmpty(t *testing.T) {
	records, err := ReadRecords(workbook(t, [][]any{
		{"firstName", "lastName", "age"},
		{"Jane"},
	}))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, report.Record{FirstName: "Jane"}, records[0])
	assert.Error(t, report.NewValidator().ValidateList(records))
}

func TestReadRecords_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input *bytes.Buffer
	}{
		{name: "not a workbook", input: bytes.NewBufferString("firstName,lastName,age")},
		{name: "empty sheet", input: workbook(t, nil)},
		{name: "missing column", input: workbook(t, [][]any{{"firstName", "lastName"}, {"Jane", "Doe"}})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := ReadRecords(tt.input)
			assert.Nil(t, records)
			assert.ErrorIs(t, err, report.ErrValidation)
		})
	}
}

func TestReadRecords_MaxRows(t *testing.T) {
	rows := make([][]any, 0, MaxRows+2)
	rows = append(rows, []any{"firstName", "lastName", "age"})
	for i := 0; i <= MaxRows; i++ {
		rows = append(rows, []any{"A", "B", "1"})
	}

	_, err := ReadRecords(workbook(t, rows))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "строк"))
}
