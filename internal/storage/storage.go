package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

const (
	// Типы хранилищ
	StorageTypeLocal = "local"
	StorageTypeS3    = "s3"

	// Таймауты по умолчанию
	DefaultOperationTimeout = 30 * time.Second

	// Настройки retry
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second

	maxKeyLength = 1024
)

// ErrNotFound возвращается, когда объекта с ключом нет в хранилище.
var ErrNotFound = errors.New("object not found")

// Storage интерфейс для работы с файловыми хранилищами (шаблоны и копии отчётов)
type Storage interface {
	Save(ctx context.Context, key string, reader io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	// List возвращает ключи с указанным префиксом
	List(ctx context.Context, prefix string) ([]FileInfo, error)
}

// FileInfo информация о файле
type FileInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// StorageConfig общая конфигурация хранилища
type StorageConfig struct {
	Type          string        `json:"type"`
	MaxRetries    int           `json:"max_retries"`
	RetryDelay    time.Duration `json:"retry_delay"`
	EnableLogging bool          `json:"enable_logging"`
}
