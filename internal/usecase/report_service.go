package usecase

import (
	"context"
	"fmt"
	"time"

	"report_api/internal/domain/report"
	"report_api/internal/usecase/repository"

	"github.com/sirupsen/logrus"
)

// ReportService генерирует отчёты: шаблон -> параметры -> заполнение -> выгрузка.
type ReportService struct {
	Templates repository.TemplateResolver
	Filler    repository.TemplateFiller
	Exporter  repository.Exporter
	// Archive и Runs необязательны, nil отключает соответствующую функцию.
	Archive repository.OutputArchive
	Runs    repository.RunRecorder
	Logger  *logrus.Logger
}

// NewReportService собирает сервис из зависимостей.
func NewReportService(
	templates repository.TemplateResolver,
	filler repository.TemplateFiller,
	exporter repository.Exporter,
	archive repository.OutputArchive,
	runs repository.RunRecorder,
	logger *logrus.Logger,
) *ReportService {
	return &ReportService{
		Templates: templates,
		Filler:    filler,
		Exporter:  exporter,
		Archive:   archive,
		Runs:      runs,
		Logger:    logger,
	}
}

// GenerateSimpleReport renders the single-record layout.
func (s *ReportService) GenerateSimpleReport(ctx context.Context, rec report.Record, format report.ExportFormat) (*report.Output, error) {
	return s.generate(ctx, report.TemplateSimple, MapSingle(rec), 1, format)
}

// GenerateDataSourceReport renders the table layout with one row per record.
// An empty list renders a table without rows.
func (s *ReportService) GenerateDataSourceReport(ctx context.Context, records report.RecordList, format report.ExportFormat) (*report.Output, error) {
	return s.generate(ctx, report.TemplateTable, MapDataSource(records), len(records), format)
}

func (s *ReportService) generate(ctx context.Context, name string, params report.ParameterMap, rows int, format report.ExportFormat) (*report.Output, error) {
	start := time.Now()
	logger := s.Logger.WithFields(logrus.Fields{
		"template": name,
		"format":   format.String(),
		"records":  rows,
	})

	out, err := s.render(ctx, name, params, format)
	run := report.Run{
		Template: name,
		Format:   format,
		Records:  rows,
		Duration: time.Since(start),
	}
	if err != nil {
		logger.WithError(err).WithField("error_kind", report.Kind(err)).Error("Ошибка генерации отчёта")
		run.Status = report.RunFailed
		run.Error = err.Error()
		run.ErrorKind = report.Kind(err)
		s.recordRun(ctx, logger, run)
		return nil, err
	}

	if s.Archive != nil {
		key, err := s.Archive.Archive(ctx, name, out)
		if err != nil {
			logger.WithError(err).Warn("Не удалось сохранить копию отчёта")
		} else {
			run.ArchiveKey = key
		}
	}

	run.Status = report.RunCompleted
	run.Size = len(out.Content)
	s.recordRun(ctx, logger, run)

	logger.WithFields(logrus.Fields{
		"size":     len(out.Content),
		"duration": run.Duration,
	}).Info("Отчёт сгенерирован")
	return out, nil
}

func (s *ReportService) render(ctx context.Context, name string, params report.ParameterMap, format report.ExportFormat) (*report.Output, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %s", report.ErrUnsupportedFormat, format)
	}

	tmpl, err := s.Templates.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}

	doc, err := s.Filler.Fill(tmpl, params)
	if err != nil {
		return nil, err
	}

	return s.Exporter.Export(doc, format)
}

func (s *ReportService) recordRun(ctx context.Context, logger *logrus.Entry, run report.Run) {
	if s.Runs == nil {
		return
	}
	if err := s.Runs.RecordRun(ctx, run); err != nil {
		logger.WithError(err).Warn("Не удалось записать историю генерации")
	}
}
