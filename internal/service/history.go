package service

import (
	"context"
	"fmt"

	"report_api/internal/domain/report"
	"report_api/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Лимиты выборки истории
const (
	DefaultRunsLimit = 20
	MaxRunsLimit     = 100
)

// RunRepository хранит историю генераций отчетов в БД через GORM
type RunRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewRunRepository создает новый GORM репозиторий истории
func NewRunRepository(db *gorm.DB, logger *logrus.Logger) *RunRepository {
	return &RunRepository{
		db:     db,
		logger: logger,
	}
}

// RecordRun сохраняет запись о попытке генерации
func (r *RunRepository) RecordRun(ctx context.Context, run report.Run) error {
	row := toModel(run)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("ошибка записи истории: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"run_id":   row.ID,
		"template": row.Template,
		"status":   row.Status,
	}).Debug("Запись истории сохранена")
	return nil
}

// ListRuns возвращает последние записи истории, новые первыми
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]models.ReportRun, error) {
	switch {
	case limit <= 0:
		limit = DefaultRunsLimit
	case limit > MaxRunsLimit:
		limit = MaxRunsLimit
	}

	runs := make([]models.ReportRun, 0, limit)
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения истории: %w", err)
	}
	return runs, nil
}

func toModel(run report.Run) models.ReportRun {
	row := models.ReportRun{
		Template:   run.Template,
		Format:     run.Format.String(),
		Status:     string(run.Status),
		Records:    run.Records,
		SizeBytes:  run.Size,
		DurationMS: run.Duration.Milliseconds(),
		ArchiveKey: run.ArchiveKey,
		Error:      run.Error,
	}
	if kind := run.ErrorKind; kind != "" {
		row.Meta = models.JSON{"error_kind": kind}
	}
	return row
}
