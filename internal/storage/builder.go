package storage

import (
	"fmt"
	"path/filepath"

	"report_api/internal/config"

	"github.com/sirupsen/logrus"
)

// StorageFactory фабрика для создания хранилищ
type StorageFactory interface {
	CreateStorage(cfg any) (Storage, error)
	SupportedTypes() []string
}

// StorageBuilder строитель для конфигурации хранилища
type StorageBuilder struct {
	config config.Config
	logger *logrus.Logger
}

// NewStorageBuilder создает новый строитель хранилища
func NewStorageBuilder(cfg config.Config, logger *logrus.Logger) *StorageBuilder {
	return &StorageBuilder{
		config: cfg,
		logger: logger,
	}
}

// NewStorageFromConfig создает хранилище с middleware по конфигурации приложения
func NewStorageFromConfig(cfg config.Config, logger *logrus.Logger) (Storage, error) {
	return NewStorageBuilder(cfg, logger).Build()
}

// Build создает хранилище на основе конфигурации
func (b *StorageBuilder) Build() (Storage, error) {
	factory := NewDefaultStorageFactory(b.logger)

	switch b.config.Storage.Type {
	case StorageTypeS3:
		storage, err := factory.CreateStorage(b.buildS3Config())
		if err != nil {
			return nil, fmt.Errorf("ошибка создания S3 хранилища: %w", err)
		}
		return b.wrapWithMiddleware(storage), nil

	case StorageTypeLocal:
		localConfig, err := b.buildLocalConfig()
		if err != nil {
			return nil, err
		}
		storage, err := factory.CreateStorage(localConfig)
		if err != nil {
			return nil, fmt.Errorf("ошибка создания локального хранилища: %w", err)
		}
		return b.wrapWithMiddleware(storage), nil

	default:
		return nil, fmt.Errorf("неподдерживаемый тип хранилища: %s", b.config.Storage.Type)
	}
}

// buildS3Config создает конфигурацию S3
func (b *StorageBuilder) buildS3Config() S3Config {
	return S3Config{
		StorageConfig: StorageConfig{
			Type:          StorageTypeS3,
			MaxRetries:    DefaultMaxRetries,
			RetryDelay:    DefaultRetryDelay,
			EnableLogging: true,
		},
		Region:    b.config.Storage.S3.Region,
		Bucket:    b.config.Storage.S3.Bucket,
		Endpoint:  b.config.Storage.S3.Endpoint,
		AccessKey: b.config.Storage.S3.AccessKey,
		SecretKey: b.config.Storage.S3.SecretKey,
		// MinIO и другие совместимые сервисы требуют path-style адресации
		ForcePathStyle: b.config.Storage.S3.Endpoint != "",
	}
}

// buildLocalConfig создает конфигурацию локального хранилища.
// Относительный путь из конфигурации разрешается от рабочей директории.
func (b *StorageBuilder) buildLocalConfig() (LocalConfig, error) {
	basePath, err := filepath.Abs(b.config.Storage.BasePath)
	if err != nil {
		return LocalConfig{}, fmt.Errorf("ошибка определения базового пути: %w", err)
	}
	return LocalConfig{
		StorageConfig: StorageConfig{
			Type:          StorageTypeLocal,
			MaxRetries:    DefaultMaxRetries,
			RetryDelay:    DefaultRetryDelay,
			EnableLogging: true,
		},
		BasePath:    basePath,
		Permissions: 0o755,
		CreateDirs:  true,
	}, nil
}

// wrapWithMiddleware оборачивает хранилище в middleware
func (b *StorageBuilder) wrapWithMiddleware(storage Storage) Storage {
	// Добавляем логирование
	if b.logger != nil {
		storage = NewLoggingMiddleware(storage, b.logger)
	}

	// Добавляем retry логику
	if b.logger != nil {
		storage = NewRetryMiddleware(storage, DefaultMaxRetries, DefaultRetryDelay, b.logger)
	}

	// Валидация выполняется первой, до повторов
	return NewValidationMiddleware(storage)
}

// DefaultStorageFactory реализация фабрики хранилищ
type DefaultStorageFactory struct {
	logger *logrus.Logger
}

// NewDefaultStorageFactory создает новую фабрику хранилищ
func NewDefaultStorageFactory(logger *logrus.Logger) StorageFactory {
	return &DefaultStorageFactory{logger: logger}
}

// CreateStorage создает хранилище по конфигурации
func (f *DefaultStorageFactory) CreateStorage(cfg any) (Storage, error) {
	switch c := cfg.(type) {
	case S3Config:
		return NewS3Storage(c, f.logger)
	case LocalConfig:
		return NewLocalStorage(c, f.logger)
	default:
		return nil, fmt.Errorf("неподдерживаемый тип конфигурации: %T", cfg)
	}
}

// SupportedTypes возвращает поддерживаемые типы хранилищ
func (f *DefaultStorageFactory) SupportedTypes() []string {
	return []string{StorageTypeS3, StorageTypeLocal}
}
