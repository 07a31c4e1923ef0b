package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"report_api/internal/domain/report"
	"report_api/internal/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// FileArchiver сохраняет копии сгенерированных отчетов в хранилище
type FileArchiver struct {
	storage storage.Storage
	prefix  string
	logger  *logrus.Logger
	now     func() time.Time
}

// NewFileArchiver создает архив отчетов поверх хранилища
func NewFileArchiver(s storage.Storage, prefix string, logger *logrus.Logger) *FileArchiver {
	return &FileArchiver{
		storage: s,
		prefix:  strings.Trim(prefix, "/"),
		logger:  logger,
		now:     time.Now,
	}
}

// Archive сохраняет отчет и возвращает ключ сохраненного файла
func (a *FileArchiver) Archive(ctx context.Context, templateName string, out *report.Output) (string, error) {
	if out == nil {
		return "", fmt.Errorf("нечего сохранять")
	}

	key := a.GenerateKey(templateName, out.Extension)
	if err := a.storage.Save(ctx, key, bytes.NewReader(out.Content)); err != nil {
		return "", fmt.Errorf("ошибка сохранения копии отчета: %w", err)
	}

	a.logger.WithFields(logrus.Fields{
		"key":  key,
		"size": len(out.Content),
	}).Debug("Копия отчета сохранена")
	return key, nil
}

// GenerateKey генерирует ключ вида <prefix>/<template>/<время>_<uuid>.<ext>
func (a *FileArchiver) GenerateKey(templateName, ext string) string {
	name := fmt.Sprintf("%s_%s.%s", a.now().UTC().Format("20060102T150405Z"), uuid.NewString(), ext)
	return path.Join(a.prefix, templateName, name)
}

// List возвращает сохраненные копии отчетов шаблона
func (a *FileArchiver) List(ctx context.Context, templateName string) ([]storage.FileInfo, error) {
	return a.storage.List(ctx, path.Join(a.prefix, templateName)+"/")
}
