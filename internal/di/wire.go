package di

import (
	"context"
	"time"

	"report_api/internal/config"
	"report_api/internal/database"
	"report_api/internal/infrastructure/export"
	"report_api/internal/infrastructure/fill"
	"report_api/internal/infrastructure/template"
	"report_api/internal/server"
	"report_api/internal/service"
	"report_api/internal/storage"
	"report_api/internal/usecase"
	"report_api/internal/usecase/repository"

	"github.com/sirupsen/logrus"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Module собирает все зависимости сервиса отчетов
var Module = fx.Options(
	fx.Provide(
		NewLogger,
		provideStorage,
		provideResolver,
		fill.NewFiller,
		export.NewDefaultExporter,
		provideDatabase,
		provideRunRepository,
		provideArchive,
		provideRunRecorder,
		provideRunLister,
		provideReportService,
		provideHTTPServer,
	),
)

// InitializeApp создает fx приложение с конфигурацией из файла и окружения
func InitializeApp(opts ...fx.Option) *fx.App {
	return fx.New(append([]fx.Option{
		fx.Provide(config.Load),
		Module,
	}, opts...)...)
}

// NewLogger создает и настраивает логгер на основе конфигурации
func NewLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()

	// Устанавливаем уровень логирования
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
		logger.WithError(err).Warn("Неверный уровень логирования, используется info")
	}
	logger.SetLevel(level)

	// Устанавливаем формат вывода
	switch cfg.Logging.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	return logger
}

// provideStorage создает хранилище, только если оно кому-то нужно
func provideStorage(cfg config.Config, logger *logrus.Logger) (storage.Storage, error) {
	if !cfg.NeedsStorage() {
		return nil, nil
	}
	return storage.NewStorageFromConfig(cfg, logger)
}

func provideResolver(cfg config.Config, store storage.Storage, logger *logrus.Logger) (*template.Resolver, error) {
	return template.NewResolverFromConfig(cfg, store, logger)
}

// provideDatabase открывает БД истории; при выключенной истории возвращает nil
func provideDatabase(lc fx.Lifecycle, cfg config.Config, logger *logrus.Logger) (*gorm.DB, error) {
	if !cfg.DB.Enabled {
		return nil, nil
	}

	db, err := database.NewDatabase(database.FromAppConfig(cfg))
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db, logger); err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return database.Close(db)
		},
	})
	return db, nil
}

func provideRunRepository(db *gorm.DB, logger *logrus.Logger) *service.RunRepository {
	if db == nil {
		return nil
	}
	return service.NewRunRepository(db, logger)
}

// Выключенные компоненты передаются как nil интерфейс, а не типизированный nil

func provideArchive(cfg config.Config, store storage.Storage, logger *logrus.Logger) repository.OutputArchive {
	if !cfg.Archive.Enabled {
		return nil
	}
	return service.NewFileArchiver(store, cfg.Archive.Prefix, logger)
}

func provideRunRecorder(repo *service.RunRepository) repository.RunRecorder {
	if repo == nil {
		return nil
	}
	return repo
}

func provideRunLister(repo *service.RunRepository) server.RunLister {
	if repo == nil {
		return nil
	}
	return repo
}

func provideReportService(
	resolver *template.Resolver,
	filler *fill.Filler,
	exporter *export.Exporter,
	archive repository.OutputArchive,
	runs repository.RunRecorder,
	logger *logrus.Logger,
) *usecase.ReportService {
	return usecase.NewReportService(resolver, filler, exporter, archive, runs, logger)
}

func provideHTTPServer(
	cfg config.Config,
	reports *usecase.ReportService,
	resolver *template.Resolver,
	runs server.RunLister,
	logger *logrus.Logger,
) server.HTTPServer {
	return server.NewServer(cfg, reports, resolver, runs, logger)
}
