package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"report_api/internal/domain/report"
	"report_api/internal/models"
	"report_api/internal/storage"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// MockStorage is a mock implementation of the Storage interface
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Save(ctx context.Context, key string, reader io.Reader) error {
	data, _ := io.ReadAll(reader)
	args := m.Called(ctx, key, data)
	return args.Error(0)
}

func (m *MockStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) List(ctx context.Context, prefix string) ([]storage.FileInfo, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).([]storage.FileInfo), args.Error(1)
}

func setupTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	logger.SetOutput(io.Discard)
	return logger
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.ReportRun{}))
	return db
}

func TestRecordRun(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepository(db, setupTestLogger())

	err := repo.RecordRun(context.Background(), report.Run{
		Template:   report.TemplateSimple,
		Format:     report.FormatPDF,
		Records:    1,
		Size:       1024,
		ArchiveKey: "reports/simple/x.pdf",
		Status:     report.RunCompleted,
		Duration:   1500 * time.Millisecond,
	})
	require.NoError(t, err)

	var rows []models.ReportRun
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "simple", rows[0].Template)
	assert.Equal(t, "pdf", rows[0].Format)
	assert.Equal(t, 1024, rows[0].SizeBytes)
	assert.Equal(t, int64(1500), rows[0].DurationMS)
	assert.True(t, rows[0].IsCompleted())
	assert.Nil(t, rows[0].Meta)
	assert.NotEmpty(t, rows[0].ID)
}

func TestRecordRun_Failed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepository(db, setupTestLogger())

	err := repo.RecordRun(context.Background(), report.Run{
		Template:  report.TemplateTable,
		Format:    report.FormatDOCX,
		Status:    report.RunFailed,
		Error:     "render failed: boom",
		ErrorKind: "render",
	})
	require.NoError(t, err)

	runs, err := repo.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].IsFailed())
	assert.Equal(t, "render failed: boom", runs[0].Error)
	assert.Equal(t, "render", runs[0].Meta["error_kind"])
}

func TestListRuns_OrderAndLimit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepository(db, setupTestLogger())

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		row := models.ReportRun{
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Template:  fmt.Sprintf("t%d", i),
			Format:    "pdf",
			Status:    models.StatusCompleted,
		}
		require.NoError(t, db.Create(&row).Error)
	}

	runs, err := repo.ListRuns(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "t4", runs[0].Template)
	assert.Equal(t, "t2", runs[2].Template)

	runs, err = repo.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 5)
}

func TestFileArchiver_Archive(t *testing.T) {
	ctx := context.Background()
	mockStorage := new(MockStorage)
	mockStorage.On("Save", ctx, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "reports/simple/20240102T030405Z_") && strings.HasSuffix(key, ".pdf")
	}), []byte("%PDF-1.3")).Return(nil)

	archiver := NewFileArchiver(mockStorage, "/reports/", setupTestLogger())
	archiver.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	key, err := archiver.Archive(ctx, report.TemplateSimple, &report.Output{
		Format:    report.FormatPDF,
		Extension: "pdf",
		Content:   []byte("%PDF-1.3"),
	})
	require.NoError(t, err)
	assert.Regexp(t, `^reports/simple/20240102T030405Z_[0-9a-f-]{36}\.pdf$`, key)
	mockStorage.AssertExpectations(t)
}

func TestFileArchiver_StorageError(t *testing.T) {
	mockStorage := new(MockStorage)
	mockStorage.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("bucket unavailable"))

	archiver := NewFileArchiver(mockStorage, "reports", setupTestLogger())
	key, err := archiver.Archive(context.Background(), report.TemplateTable, &report.Output{Extension: "docx"})
	assert.Error(t, err)
	assert.Empty(t, key)
}

func TestFileArchiver_UniqueKeys(t *testing.T) {
	archiver := NewFileArchiver(new(MockStorage), "reports", setupTestLogger())
	assert.NotEqual(t, archiver.GenerateKey("simple", "pdf"), archiver.GenerateKey("simple", "pdf"))
}

func TestFileArchiver_ListLocal(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalStorage(storage.LocalConfig{
		BasePath:    t.TempDir(),
		Permissions: 0o755,
		CreateDirs:  true,
	}, setupTestLogger())
	require.NoError(t, err)

	archiver := NewFileArchiver(store, "reports", setupTestLogger())
	for _, name := range []string{report.TemplateSimple, report.TemplateSimple, report.TemplateTable} {
		_, err := archiver.Archive(ctx, name, &report.Output{Extension: "pdf", Content: []byte("%PDF")})
		require.NoError(t, err)
	}

	files, err := archiver.List(ctx, report.TemplateSimple)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}
