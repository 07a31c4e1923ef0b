package di

import (
	"context"
	"testing"

	"report_api/internal/config"
	"report_api/internal/domain/report"
	"report_api/internal/server"
	"report_api/internal/usecase"
	"report_api/internal/usecase/repository"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

func baseConfig(t *testing.T) config.Config {
	return config.Config{
		Server:    config.Server{Address: ":0", BodyLimit: "1M"},
		Templates: config.Templates{Source: config.TemplateSourceEmbedded, Cache: true},
		Storage:   config.Storage{Type: "local", BasePath: t.TempDir()},
		Archive:   config.Archive{Prefix: "reports"},
		DB:        config.DB{Driver: "sqlite", DSN: "file::memory:"},
		Logging:   config.Logging{Level: "error", Format: "text"},
	}
}

func TestModule_Validates(t *testing.T) {
	err := fx.ValidateApp(
		fx.Supply(baseConfig(t)),
		Module,
		fx.Invoke(func(server.HTTPServer) {}),
	)
	assert.NoError(t, err)
}

func TestModule_DisabledSideChannelsAreNil(t *testing.T) {
	var (
		archive repository.OutputArchive
		runs    repository.RunRecorder
		lister  server.RunLister
	)
	app := fxtest.New(t,
		fx.Supply(baseConfig(t)),
		Module,
		fx.Populate(&archive, &runs, &lister),
	)
	app.RequireStart()
	defer app.RequireStop()

	assert.Nil(t, archive)
	assert.Nil(t, runs)
	assert.Nil(t, lister)
}

func TestModule_FullStack(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Archive.Enabled = true
	cfg.DB.Enabled = true

	var (
		svc    *usecase.ReportService
		lister server.RunLister
	)
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module,
		fx.Populate(&svc, &lister),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, lister)
	ctx := context.Background()

	out, err := svc.GenerateSimpleReport(ctx, report.Record{FirstName: "Jane", LastName: "Doe", Age: "30"}, report.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "pdf", out.Extension)

	runs, err := lister.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].IsCompleted())
	assert.Contains(t, runs[0].ArchiveKey, "reports/simple/")
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(config.Config{Logging: config.Logging{Level: "debug", Format: "json"}})
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	logger = NewLogger(config.Config{Logging: config.Logging{Level: "nope"}})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}
