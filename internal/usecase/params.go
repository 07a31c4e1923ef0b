package usecase

import "report_api/internal/domain/report"

// MapSingle builds the parameters of the single-record layout.
func MapSingle(r report.Record) report.ParameterMap {
	return report.ParameterMap{
		report.ParamFirstName: r.FirstName,
		report.ParamLastName:  r.LastName,
		report.ParamAge:       r.Age,
	}
}

// MapDataSource stores the records as a data source under CUSTOM_SOURCE_DATA.
func MapDataSource(records report.RecordList) report.ParameterMap {
	return report.ParameterMap{
		report.ParamCustomDataSource: NewRecordDataSource(records),
	}
}
