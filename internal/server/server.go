package server

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"report_api/internal/config"
	"report_api/internal/domain/report"
	"report_api/internal/infrastructure/sheet"
	"report_api/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// HTTPServer is the lifecycle surface used by the application runner
type HTTPServer interface {
	Start(address string) error
	Shutdown(ctx context.Context) error
}

// ReportGenerator renders reports from request records
type ReportGenerator interface {
	GenerateSimpleReport(ctx context.Context, rec report.Record, format report.ExportFormat) (*report.Output, error)
	GenerateDataSourceReport(ctx context.Context, records report.RecordList, format report.ExportFormat) (*report.Output, error)
}

// TemplateLister lists the available report templates
type TemplateLister interface {
	Names(ctx context.Context) ([]string, error)
}

// RunLister reads the generation history
type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]models.ReportRun, error)
}

// Server represents the HTTP server
type Server struct {
	echo      *echo.Echo
	reports   ReportGenerator
	templates TemplateLister
	runs      RunLister
	logger    *logrus.Logger
}

// NewServer creates a new HTTP server. runs may be nil when the history is
// disabled.
func NewServer(
	cfg config.Config,
	reports ReportGenerator,
	templates TemplateLister,
	runs RunLister,
	logger *logrus.Logger,
) *Server {
	e := echo.New()
	e.Debug = cfg.Server.Debug
	e.HideBanner = true
	e.HidePort = true
	e.Validator = report.NewValidator()

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())
	if cfg.Server.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	}

	server := &Server{
		echo:      e,
		reports:   reports,
		templates: templates,
		runs:      runs,
		logger:    logger,
	}

	server.setupRoutes()
	return server
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.WithField("address", address).Info("Starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// setupRoutes configures the server routes
func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", s.healthCheck)

	// API routes
	api := s.echo.Group("/api/report")
	{
		api.POST("/pdf", s.simpleReport(report.FormatPDF))
		api.POST("/docx", s.simpleReport(report.FormatDOCX))
		api.POST("/data-source", s.dataSourceReport)
		api.POST("/data-source/xlsx", s.spreadsheetReport)
		api.GET("/templates", s.listTemplates)
		api.GET("/runs", s.listRuns)
	}
}

// requestLogger writes one access log line per request through logrus
func requestLogger(logger *logrus.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency,
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Info("request")
			return nil
		},
	})
}

// healthCheck handles health check requests
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "report-service",
	})
}

// simpleReport renders the single-record template in the given format
func (s *Server) simpleReport(format report.ExportFormat) echo.HandlerFunc {
	endpoint := "/api/report/" + format.String()
	return func(c echo.Context) error {
		if err := requireJSON(c); err != nil {
			return s.badRequest(c, endpoint, err)
		}

		var rec report.Record
		if err := c.Bind(&rec); err != nil {
			return s.badRequest(c, endpoint, fmt.Errorf("%w: %v", report.ErrValidation, err))
		}
		if err := c.Validate(rec); err != nil {
			return s.badRequest(c, endpoint, err)
		}

		out, err := s.reports.GenerateSimpleReport(c.Request().Context(), rec, format)
		if err != nil {
			return s.badRequest(c, endpoint, err)
		}
		return sendOutput(c, out)
	}
}

// dataSourceReport renders the table template from a JSON record list
func (s *Server) dataSourceReport(c echo.Context) error {
	const endpoint = "/api/report/data-source"
	if err := requireJSON(c); err != nil {
		return s.badRequest(c, endpoint, err)
	}

	var records report.RecordList
	if err := c.Bind(&records); err != nil {
		return s.badRequest(c, endpoint, fmt.Errorf("%w: %v", report.ErrValidation, err))
	}
	return s.renderRecords(c, endpoint, records)
}

// spreadsheetReport renders the table template from an uploaded workbook
func (s *Server) spreadsheetReport(c echo.Context) error {
	const endpoint = "/api/report/data-source/xlsx"

	fh, err := c.FormFile("file")
	if err != nil {
		return s.badRequest(c, endpoint, fmt.Errorf("%w: %v", report.ErrValidation, err))
	}
	f, err := fh.Open()
	if err != nil {
		return s.badRequest(c, endpoint, err)
	}
	defer f.Close()

	records, err := sheet.ReadRecords(f)
	if err != nil {
		return s.badRequest(c, endpoint, err)
	}
	return s.renderRecords(c, endpoint, records)
}

func (s *Server) renderRecords(c echo.Context, endpoint string, records report.RecordList) error {
	if err := c.Validate(records); err != nil {
		return s.badRequest(c, endpoint, err)
	}

	out, err := s.reports.GenerateDataSourceReport(c.Request().Context(), records, report.FormatPDF)
	if err != nil {
		return s.badRequest(c, endpoint, err)
	}
	return sendOutput(c, out)
}

// listTemplates returns the names of the available templates
func (s *Server) listTemplates(c echo.Context) error {
	names, err := s.templates.Names(c.Request().Context())
	if err != nil {
		return s.badRequest(c, "/api/report/templates", err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"templates": names,
	})
}

// listRuns returns the most recent generation runs
func (s *Server) listRuns(c echo.Context) error {
	const endpoint = "/api/report/runs"
	if s.runs == nil {
		return s.badRequest(c, endpoint, fmt.Errorf("run history is disabled"))
	}

	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return s.badRequest(c, endpoint, fmt.Errorf("%w: invalid limit %q", report.ErrValidation, v))
		}
		limit = n
	}

	runs, err := s.runs.ListRuns(c.Request().Context(), limit)
	if err != nil {
		return s.badRequest(c, endpoint, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

// badRequest logs the cause and answers 400 with an empty body
func (s *Server) badRequest(c echo.Context, endpoint string, err error) error {
	s.logger.WithFields(logrus.Fields{
		"endpoint":   endpoint,
		"error_kind": report.Kind(err),
		"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
	}).WithError(err).Warn("Request rejected")
	return c.NoContent(http.StatusBadRequest)
}

func requireJSON(c echo.Context) error {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil || mediaType != echo.MIMEApplicationJSON {
		return fmt.Errorf("%w: content type %q is not JSON", report.ErrValidation, ct)
	}
	return nil
}

func sendOutput(c echo.Context, out *report.Output) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", out.Filename()))
	return c.Blob(http.StatusOK, out.ContentType, out.Content)
}
