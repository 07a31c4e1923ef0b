package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"report_api/internal/config"
	"report_api/internal/di"
	"report_api/internal/domain/report"
	"report_api/internal/infrastructure/export"
	"report_api/internal/infrastructure/fill"
	"report_api/internal/infrastructure/sheet"
	"report_api/internal/infrastructure/template"
	"report_api/internal/service"
	"report_api/internal/storage"
	"report_api/internal/usecase"
	"report_api/internal/usecase/repository"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "report:", err)
		os.Exit(1)
	}
}

// run генерирует один отчет без HTTP сервера
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("report", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringP("template", "t", report.TemplateSimple, "шаблон: simple или table_report")
	fs.StringP("format", "f", "pdf", "формат: pdf или docx")
	fs.StringP("input", "i", "-", "JSON или .xlsx с записями, - для stdin")
	fs.StringP("output", "o", "", "файл результата, - для stdout (по умолчанию report.<ext>)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return fmt.Errorf("привязка флагов: %w", err)
	}

	cfg, err := config.LoadFrom(v)
	if err != nil {
		return err
	}
	logger := di.NewLogger(cfg)
	logger.SetOutput(stderr)

	format, err := report.ParseExportFormat(v.GetString("format"))
	if err != nil {
		return err
	}

	svc, err := newReportService(cfg, logger)
	if err != nil {
		return err
	}

	in, closeInput, err := openInput(v.GetString("input"), stdin)
	if err != nil {
		return err
	}
	defer closeInput()

	out, err := generate(ctx, svc, v.GetString("template"), v.GetString("input"), in, format)
	if err != nil {
		return err
	}

	return writeOutput(v.GetString("output"), out, stdout, logger)
}

// newReportService собирает тот же конвейер, что и сервер, без истории запусков
func newReportService(cfg config.Config, logger *logrus.Logger) (*usecase.ReportService, error) {
	var store storage.Storage
	if cfg.NeedsStorage() {
		s, err := storage.NewStorageFromConfig(cfg, logger)
		if err != nil {
			return nil, err
		}
		store = s
	}

	resolver, err := template.NewResolverFromConfig(cfg, store, logger)
	if err != nil {
		return nil, err
	}

	var archive repository.OutputArchive
	if cfg.Archive.Enabled {
		archive = service.NewFileArchiver(store, cfg.Archive.Prefix, logger)
	}

	return usecase.NewReportService(resolver, fill.NewFiller(), export.NewDefaultExporter(), archive, nil, logger), nil
}

func generate(
	ctx context.Context,
	svc *usecase.ReportService,
	name, inputName string,
	in io.Reader,
	format report.ExportFormat,
) (*report.Output, error) {
	validator := report.NewValidator()

	switch name {
	case report.TemplateSimple:
		var rec report.Record
		if err := json.NewDecoder(in).Decode(&rec); err != nil {
			return nil, fmt.Errorf("%w: %v", report.ErrValidation, err)
		}
		if err := validator.Validate(rec); err != nil {
			return nil, err
		}
		return svc.GenerateSimpleReport(ctx, rec, format)

	case report.TemplateTable:
		var (
			records report.RecordList
			err     error
		)
		if strings.EqualFold(filepath.Ext(inputName), ".xlsx") {
			records, err = sheet.ReadRecords(in)
		} else if err = json.NewDecoder(in).Decode(&records); err != nil {
			err = fmt.Errorf("%w: %v", report.ErrValidation, err)
		}
		if err != nil {
			return nil, err
		}
		if err := validator.ValidateList(records); err != nil {
			return nil, err
		}
		return svc.GenerateDataSourceReport(ctx, records, format)

	default:
		return nil, fmt.Errorf("%w: %s", report.ErrTemplateNotFound, name)
	}
}

func openInput(name string, stdin io.Reader) (io.Reader, func(), error) {
	if name == "-" || name == "" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("открытие входного файла: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func writeOutput(name string, out *report.Output, stdout io.Writer, logger *logrus.Logger) error {
	if name == "-" {
		_, err := stdout.Write(out.Content)
		return err
	}
	if name == "" {
		name = out.Filename()
	}
	if err := os.WriteFile(name, out.Content, 0o644); err != nil {
		return fmt.Errorf("запись результата: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"file": name,
		"size": len(out.Content),
	}).Info("Отчет сохранен")
	return nil
}
