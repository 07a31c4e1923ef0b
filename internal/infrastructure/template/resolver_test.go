package template

import (
	"context"
	"strings"
	"sync"
	"testing"

	"report_api/internal/config"
	"report_api/internal/domain/report"
	"report_api/internal/storage"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const customTemplate = `name: custom
title: Custom
parameters:
  - {name: FIRST_NAME, type: string}
bands:
  - {type: heading, text: Hello}
  - {type: field, label: Name, expression: "$P{FIRST_NAME}"}
`

// countingSource считает обращения к источнику
type countingSource struct {
	Source
	mu    sync.Mutex
	reads int
}

func (s *countingSource) Read(ctx context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	s.reads++
	s.mu.Unlock()
	return s.Source.Read(ctx, name)
}

func TestEmbeddedResolver_Builtins(t *testing.T) {
	r := NewResolver(NewEmbeddedSource(), false, logrus.New())
	ctx := context.Background()

	simple, err := r.Resolve(ctx, report.TemplateSimple)
	require.NoError(t, err)
	assert.Equal(t, "simple", simple.Name)
	for _, p := range []string{report.ParamFirstName, report.ParamLastName, report.ParamAge} {
		spec, ok := simple.Parameter(p)
		require.True(t, ok, p)
		assert.Equal(t, report.ParamString, spec.Type)
	}

	table, err := r.Resolve(ctx, report.TemplateTable)
	require.NoError(t, err)
	spec, ok := table.Parameter(report.ParamCustomDataSource)
	require.True(t, ok)
	assert.Equal(t, report.ParamDataSource, spec.Type)

	names, err := r.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"simple", "table_report"}, names)
}

func TestResolver_NotFound(t *testing.T) {
	r := NewResolver(NewEmbeddedSource(), true, nil)

	_, err := r.Resolve(context.Background(), "missing")
	assert.ErrorIs(t, err, report.ErrTemplateNotFound)

	_, err = r.Resolve(context.Background(), "../simple")
	assert.ErrorIs(t, err, report.ErrTemplateNotFound)
}

func TestResolver_Cache(t *testing.T) {
	src := &countingSource{Source: NewEmbeddedSource()}
	r := NewResolver(src, true, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Resolve(ctx, report.TemplateSimple)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	first, err := r.Resolve(ctx, report.TemplateSimple)
	require.NoError(t, err)
	second, err := r.Resolve(ctx, report.TemplateSimple)
	require.NoError(t, err)
	assert.Same(t, first, second)

	reads := src.reads
	assert.GreaterOrEqual(t, reads, 1)
	assert.LessOrEqual(t, reads, 8)
}

func TestResolver_NoCacheRereads(t *testing.T) {
	src := &countingSource{Source: NewEmbeddedSource()}
	r := NewResolver(src, false, nil)

	for i := 0; i < 3; i++ {
		_, err := r.Resolve(context.Background(), report.TemplateTable)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, src.reads)
}

func newLocalStore(t *testing.T) storage.Storage {
	t.Helper()
	logger := logrus.New()
	s, err := storage.NewStorageFromConfig(config.Config{
		Storage: config.Storage{Type: storage.StorageTypeLocal, BasePath: t.TempDir()},
	}, logger)
	require.NoError(t, err)
	return s
}

func TestStorageResolver(t *testing.T) {
	ctx := context.Background()
	store := newLocalStore(t)
	require.NoError(t, store.Save(ctx, "templates/custom.yaml", strings.NewReader(customTemplate)))
	require.NoError(t, store.Save(ctx, "templates/notes.txt", strings.NewReader("x")))
	require.NoError(t, store.Save(ctx, "reports/custom/old.pdf", strings.NewReader("x")))

	r, err := NewResolverFromConfig(config.Config{
		Templates: config.Templates{Source: config.TemplateSourceStorage},
	}, store, nil)
	require.NoError(t, err)

	tmpl, err := r.Resolve(ctx, "custom")
	require.NoError(t, err)
	assert.Equal(t, "Custom", tmpl.Title)

	_, err = r.Resolve(ctx, report.TemplateSimple)
	assert.ErrorIs(t, err, report.ErrTemplateNotFound)

	names, err := r.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"custom"}, names)
}

func TestStorageResolver_NameMismatch(t *testing.T) {
	ctx := context.Background()
	store := newLocalStore(t)
	require.NoError(t, store.Save(ctx, "templates/other.yaml", strings.NewReader(customTemplate)))

	r := NewResolver(NewStorageSource(store, "templates/"), false, nil)
	_, err := r.Resolve(ctx, "other")
	assert.ErrorIs(t, err, report.ErrRender)
}

func TestNewResolverFromConfig_Errors(t *testing.T) {
	_, err := NewResolverFromConfig(config.Config{
		Templates: config.Templates{Source: config.TemplateSourceStorage},
	}, nil, nil)
	assert.Error(t, err)

	_, err = NewResolverFromConfig(config.Config{Templates: config.Templates{Source: "ftp"}}, nil, nil)
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{name: "valid", yaml: customTemplate},
		{name: "empty", yaml: "", wantErr: "пустой"},
		{name: "syntax", yaml: "name: [", wantErr: "разбор"},
		{name: "unknown key", yaml: "name: x\ncolour: red\n", wantErr: "разбор"},
		{name: "no name", yaml: "title: x\n", wantErr: "имя"},
		{name: "duplicate param", yaml: `name: x
parameters:
  - {name: A, type: string}
  - {name: A, type: string}
`, wantErr: "дважды"},
		{name: "bad param type", yaml: `name: x
parameters:
  - {name: A, type: number}
`, wantErr: "неизвестный тип"},
		{name: "unknown band", yaml: `name: x
bands:
  - {type: image}
`, wantErr: "неизвестный тип блока"},
		{name: "table without source", yaml: `name: x
bands:
  - type: table
    source: DATA
    columns: [{header: A, field: a}]
`, wantErr: "не объявлен"},
		{name: "table over string param", yaml: `name: x
parameters:
  - {name: DATA, type: string}
bands:
  - type: table
    source: DATA
    columns: [{header: A, field: a}]
`, wantErr: "должен иметь тип"},
		{name: "table without columns", yaml: `name: x
parameters:
  - {name: DATA, type: datasource}
bands:
  - {type: table, source: DATA}
`, wantErr: "без колонок"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := Parse([]byte(tt.yaml))
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.NotNil(t, tmpl)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, report.ErrRender)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
