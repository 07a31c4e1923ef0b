package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// LoggingMiddleware добавляет логирование к операциям хранилища
type LoggingMiddleware struct {
	storage Storage
	logger  *logrus.Logger
}

// NewLoggingMiddleware создает новый logging middleware
func NewLoggingMiddleware(storage Storage, logger *logrus.Logger) Storage {
	return &LoggingMiddleware{
		storage: storage,
		logger:  logger,
	}
}

// Save логирует операцию сохранения
func (m *LoggingMiddleware) Save(ctx context.Context, key string, reader io.Reader) error {
	start := time.Now()
	logger := m.logger.WithFields(logrus.Fields{
		"operation": "save",
		"key":       key,
	})

	err := m.storage.Save(ctx, key, reader)

	duration := time.Since(start)
	if err != nil {
		logger.WithError(err).WithField("duration", duration).Error("Ошибка сохранения файла")
	} else {
		logger.WithField("duration", duration).Debug("Файл сохранен успешно")
	}
	return err
}

// Get логирует операцию получения
func (m *LoggingMiddleware) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	start := time.Now()
	logger := m.logger.WithFields(logrus.Fields{
		"operation": "get",
		"key":       key,
	})

	reader, err := m.storage.Get(ctx, key)

	duration := time.Since(start)
	switch {
	case errors.Is(err, ErrNotFound):
		logger.WithField("duration", duration).Debug("Файл не найден")
	case err != nil:
		logger.WithError(err).WithField("duration", duration).Error("Ошибка получения файла")
	default:
		logger.WithField("duration", duration).Debug("Файл получен успешно")
	}
	return reader, err
}

func (m *LoggingMiddleware) Exists(ctx context.Context, key string) (bool, error) {
	return m.storage.Exists(ctx, key)
}

func (m *LoggingMiddleware) List(ctx context.Context, prefix string) ([]FileInfo, error) {
	files, err := m.storage.List(ctx, prefix)
	if err != nil {
		m.logger.WithError(err).WithField("prefix", prefix).Error("Ошибка получения списка файлов")
	}
	return files, err
}

// RetryMiddleware добавляет retry логику к операциям хранилища
type RetryMiddleware struct {
	storage    Storage
	maxRetries int
	retryDelay time.Duration
	logger     *logrus.Logger
}

// NewRetryMiddleware создает новый retry middleware
func NewRetryMiddleware(storage Storage, maxRetries int, retryDelay time.Duration, logger *logrus.Logger) Storage {
	return &RetryMiddleware{
		storage:    storage,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		logger:     logger,
	}
}

// Save повторяет сохранение, только если поток можно перемотать в начало
func (m *RetryMiddleware) Save(ctx context.Context, key string, reader io.Reader) error {
	seeker, ok := reader.(io.Seeker)
	if !ok {
		return m.storage.Save(ctx, key, reader)
	}
	return m.retryOperation(ctx, "save", func() error {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return err
		}
		return m.storage.Save(ctx, key, reader)
	})
}

// Get выполняет операцию получения с retry
func (m *RetryMiddleware) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	var result io.ReadCloser
	err := m.retryOperation(ctx, "get", func() error {
		var err error
		result, err = m.storage.Get(ctx, key)
		return err
	})
	return result, err
}

func (m *RetryMiddleware) Exists(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := m.retryOperation(ctx, "exists", func() error {
		var err error
		exists, err = m.storage.Exists(ctx, key)
		return err
	})
	return exists, err
}

func (m *RetryMiddleware) List(ctx context.Context, prefix string) ([]FileInfo, error) {
	return m.storage.List(ctx, prefix)
}

// retryOperation выполняет операцию с retry логикой
func (m *RetryMiddleware) retryOperation(ctx context.Context, operation string, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !m.shouldRetry(lastErr) {
			break
		}

		if attempt < m.maxRetries {
			m.logger.WithFields(logrus.Fields{
				"operation":   operation,
				"attempt":     attempt + 1,
				"max_retries": m.maxRetries,
			}).WithError(lastErr).Warn("Повтор операции после ошибки")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(m.retryDelay):
			}
		}
	}

	return lastErr
}

// shouldRetry: отсутствие объекта и отмена контекста не исправятся повтором
func (m *RetryMiddleware) shouldRetry(err error) bool {
	return !errors.Is(err, ErrNotFound) &&
		!errors.Is(err, ErrInvalidKey) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// ErrInvalidKey возвращается для пустых и небезопасных ключей.
var ErrInvalidKey = errors.New("invalid storage key")

// ValidationMiddleware добавляет валидацию к операциям хранилища
type ValidationMiddleware struct {
	storage Storage
}

// NewValidationMiddleware создает новый validation middleware
func NewValidationMiddleware(storage Storage) Storage {
	return &ValidationMiddleware{storage: storage}
}

func (m *ValidationMiddleware) Save(ctx context.Context, key string, reader io.Reader) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	return m.storage.Save(ctx, key, reader)
}

func (m *ValidationMiddleware) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	return m.storage.Get(ctx, key)
}

func (m *ValidationMiddleware) Exists(ctx context.Context, key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}
	return m.storage.Exists(ctx, key)
}

func (m *ValidationMiddleware) List(ctx context.Context, prefix string) ([]FileInfo, error) {
	if strings.Contains(prefix, "..") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, prefix)
	}
	return m.storage.List(ctx, prefix)
}

// ValidateKey проверяет корректность ключа
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: ключ файла не может быть пустым", ErrInvalidKey)
	}
	if len(key) > maxKeyLength {
		return fmt.Errorf("%w: ключ файла слишком длинный: %d символов (максимум %d)", ErrInvalidKey, len(key), maxKeyLength)
	}
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return fmt.Errorf("%w: ключ файла не может содержать '..' или начинаться с '/'", ErrInvalidKey)
	}
	return nil
}
