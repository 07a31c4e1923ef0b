package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// Источники шаблонов отчётов
const (
	TemplateSourceEmbedded = "embedded"
	TemplateSourceStorage  = "storage"
)

// Server содержит настройки HTTP-сервера.
type Server struct {
	Address   string `mapstructure:"address"`
	Debug     bool   `mapstructure:"debug"`
	BodyLimit string `mapstructure:"body_limit"`
}

// Templates описывает, откуда брать шаблоны отчётов.
type Templates struct {
	Source string `mapstructure:"source"`
	Cache  bool   `mapstructure:"cache"`
}

// DB содержит параметры подключения к БД истории генераций.
type DB struct {
	Enabled bool   `mapstructure:"enabled"`
	Driver  string `mapstructure:"driver"`
	DSN     string `mapstructure:"dsn"`
}

// Storage описывает настройки хранилища файлов.
type Storage struct {
	Type     string `mapstructure:"type"`
	BasePath string `mapstructure:"basepath"`
	S3       S3     `mapstructure:"s3"`
}

// S3 содержит настройки для S3-совместимого хранилища.
type S3 struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// Archive включает сохранение копий сгенерированных отчётов в хранилище.
type Archive struct {
	Enabled bool   `mapstructure:"enabled"`
	Prefix  string `mapstructure:"prefix"`
}

// Logging содержит настройки логирования.
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config объединяет все разделы конфигурации.
type Config struct {
	Server    Server    `mapstructure:"server"`
	Templates Templates `mapstructure:"templates"`
	DB        DB        `mapstructure:"database"`
	Storage   Storage   `mapstructure:"storage"`
	Archive   Archive   `mapstructure:"archive"`
	Logging   Logging   `mapstructure:"logging"`
}

// Load читает конфигурацию из файла и окружения с помощью viper.
func Load() (Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom читает конфигурацию через переданный экземпляр viper.
// CLI привязывает к нему флаги до вызова.
func LoadFrom(v *viper.Viper) (Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/report-service")

	// Настройка для environment variables
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	bindEnvironmentVariables(v)

	// Чтение файла конфигурации (опционально)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		// Если файл конфигурации не найден, продолжаем с environment variables и defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// setDefaults устанавливает значения по умолчанию
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.debug", false)
	v.SetDefault("server.body_limit", "10M")

	// Templates defaults
	v.SetDefault("templates.source", TemplateSourceEmbedded)
	v.SetDefault("templates.cache", true)

	// Database defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file:report_api.db?cache=shared")

	// Storage defaults
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.basepath", "./data")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.bucket", "report-api-bucket")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.access_key", "")
	v.SetDefault("storage.s3.secret_key", "")

	// Archive defaults
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.prefix", "reports")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// bindEnvironmentVariables привязывает переменные окружения к конфигурации
func bindEnvironmentVariables(v *viper.Viper) {
	// Server
	_ = v.BindEnv("server.address", "APP_SERVER_ADDRESS")
	_ = v.BindEnv("server.debug", "APP_SERVER_DEBUG")
	_ = v.BindEnv("server.body_limit", "APP_SERVER_BODY_LIMIT")

	// Templates
	_ = v.BindEnv("templates.source", "APP_TEMPLATES_SOURCE")
	_ = v.BindEnv("templates.cache", "APP_TEMPLATES_CACHE")

	// Database
	_ = v.BindEnv("database.enabled", "APP_DATABASE_ENABLED")
	_ = v.BindEnv("database.driver", "APP_DATABASE_DRIVER")
	_ = v.BindEnv("database.dsn", "APP_DATABASE_DSN")

	// Storage
	_ = v.BindEnv("storage.type", "APP_STORAGE_TYPE")
	_ = v.BindEnv("storage.basepath", "APP_STORAGE_BASEPATH")
	_ = v.BindEnv("storage.s3.region", "APP_STORAGE_S3_REGION")
	_ = v.BindEnv("storage.s3.bucket", "APP_STORAGE_S3_BUCKET")
	_ = v.BindEnv("storage.s3.endpoint", "APP_STORAGE_S3_ENDPOINT")
	_ = v.BindEnv("storage.s3.access_key", "APP_STORAGE_S3_ACCESS_KEY")
	_ = v.BindEnv("storage.s3.secret_key", "APP_STORAGE_S3_SECRET_KEY")

	// Archive
	_ = v.BindEnv("archive.enabled", "APP_ARCHIVE_ENABLED")
	_ = v.BindEnv("archive.prefix", "APP_ARCHIVE_PREFIX")

	// Logging
	_ = v.BindEnv("logging.level", "APP_LOGGING_LEVEL")
	_ = v.BindEnv("logging.format", "APP_LOGGING_FORMAT")
}

// validateConfig проверяет корректность конфигурации
func validateConfig(cfg Config) error {
	if cfg.Server.Address == "" {
		return fmt.Errorf("server address cannot be empty")
	}

	if cfg.Templates.Source != TemplateSourceEmbedded && cfg.Templates.Source != TemplateSourceStorage {
		return fmt.Errorf("templates source must be '%s' or '%s', got: %s",
			TemplateSourceEmbedded, TemplateSourceStorage, cfg.Templates.Source)
	}

	// БД проверяется только если история включена
	if cfg.DB.Enabled {
		if cfg.DB.Driver != "sqlite" && cfg.DB.Driver != "postgres" {
			return fmt.Errorf("database driver must be 'sqlite' or 'postgres', got: %s", cfg.DB.Driver)
		}
		if cfg.DB.DSN == "" {
			return fmt.Errorf("database DSN cannot be empty")
		}
	}

	if cfg.Storage.Type != "local" && cfg.Storage.Type != "s3" {
		return fmt.Errorf("storage type must be 'local' or 's3', got: %s", cfg.Storage.Type)
	}

	if cfg.Storage.Type == "local" && cfg.Storage.BasePath == "" {
		return fmt.Errorf("storage basepath cannot be empty for local storage")
	}

	if cfg.Storage.Type == "s3" {
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("S3 region cannot be empty")
		}
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket cannot be empty")
		}
	}

	if cfg.Archive.Enabled && cfg.Archive.Prefix == "" {
		return fmt.Errorf("archive prefix cannot be empty")
	}

	validLogLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	if !slices.Contains(validLogLevels, strings.ToLower(cfg.Logging.Level)) {
		return fmt.Errorf("invalid logging level: %s. Valid levels: %v", cfg.Logging.Level, validLogLevels)
	}

	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging format must be 'text' or 'json', got: %s", cfg.Logging.Format)
	}

	return nil
}

// NeedsStorage возвращает true, если какой-либо компонент использует файловое хранилище
func (c Config) NeedsStorage() bool {
	return c.Archive.Enabled || c.Templates.Source == TemplateSourceStorage
}

// IsDevelopment возвращает true, если приложение запущено в режиме разработки
func (c Config) IsDevelopment() bool {
	return c.Server.Debug
}

// String возвращает строковое представление конфигурации (без чувствительных данных)
func (c Config) String() string {
	s3 := c.Storage.S3
	s3.AccessKey, s3.SecretKey = "[HIDDEN]", "[HIDDEN]"
	storage := c.Storage
	storage.S3 = s3
	return fmt.Sprintf("Config{Server: %+v, Templates: %+v, DB: {Enabled: %t, Driver: %s, DSN: [HIDDEN]}, Storage: %+v, Archive: %+v, Logging: %+v}",
		c.Server, c.Templates, c.DB.Enabled, c.DB.Driver, storage, c.Archive, c.Logging)
}
