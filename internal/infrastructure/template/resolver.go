package template

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"

	"report_api/internal/config"
	"report_api/internal/domain/report"
	"report_api/internal/storage"

	"github.com/sirupsen/logrus"
)

const templateExt = ".yaml"

//go:embed templates/*.yaml
var embedded embed.FS

var validName = regexp.MustCompile(`^[a-z0-9_]+$`)

// Source отдает сырые описания шаблонов по логическому имени
type Source interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Names(ctx context.Context) ([]string, error)
}

// EmbeddedSource шаблоны, вкомпилированные в бинарник
type EmbeddedSource struct {
	fsys fs.FS
}

// NewEmbeddedSource создает источник встроенных шаблонов
func NewEmbeddedSource() *EmbeddedSource {
	sub, _ := fs.Sub(embedded, "templates")
	return &EmbeddedSource{fsys: sub}
}

func (s *EmbeddedSource) Read(_ context.Context, name string) ([]byte, error) {
	data, err := fs.ReadFile(s.fsys, name+templateExt)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", report.ErrTemplateNotFound, name)
		}
		return nil, fmt.Errorf("чтение шаблона %s: %w", name, err)
	}
	return data, nil
}

func (s *EmbeddedSource) Names(_ context.Context) ([]string, error) {
	matches, err := fs.Glob(s.fsys, "*"+templateExt)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(m, templateExt))
	}
	return names, nil
}

// StorageSource шаблоны в файловом хранилище (локальная директория или S3)
type StorageSource struct {
	storage storage.Storage
	prefix  string
}

// NewStorageSource создает источник шаблонов поверх хранилища.
// prefix добавляется к ключу, например "templates/".
func NewStorageSource(s storage.Storage, prefix string) *StorageSource {
	return &StorageSource{storage: s, prefix: prefix}
}

func (s *StorageSource) Read(ctx context.Context, name string) ([]byte, error) {
	rc, err := s.storage.Get(ctx, s.prefix+name+templateExt)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", report.ErrTemplateNotFound, name)
		}
		return nil, fmt.Errorf("чтение шаблона %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("чтение шаблона %s: %w", name, err)
	}
	return data, nil
}

func (s *StorageSource) Names(ctx context.Context) ([]string, error) {
	files, err := s.storage.List(ctx, s.prefix)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, f := range files {
		rel := strings.TrimPrefix(f.Key, s.prefix)
		if strings.Contains(rel, "/") || path.Ext(rel) != templateExt {
			continue
		}
		name := strings.TrimSuffix(rel, templateExt)
		if validName.MatchString(name) {
			names = append(names, name)
		}
	}
	return names, nil
}

// Resolver находит и разбирает шаблоны, при включенном кэше хранит разобранные
type Resolver struct {
	source Source
	cache  bool
	logger *logrus.Logger

	mu     sync.RWMutex
	parsed map[string]*report.Template
}

// NewResolver создает резолвер шаблонов
func NewResolver(source Source, cache bool, logger *logrus.Logger) *Resolver {
	return &Resolver{
		source: source,
		cache:  cache,
		logger: logger,
		parsed: make(map[string]*report.Template),
	}
}

// NewResolverFromConfig выбирает источник шаблонов по конфигурации.
// store используется только для источника storage.
func NewResolverFromConfig(cfg config.Config, store storage.Storage, logger *logrus.Logger) (*Resolver, error) {
	switch cfg.Templates.Source {
	case config.TemplateSourceEmbedded:
		return NewResolver(NewEmbeddedSource(), cfg.Templates.Cache, logger), nil
	case config.TemplateSourceStorage:
		if store == nil {
			return nil, errors.New("источник шаблонов storage требует настроенного хранилища")
		}
		return NewResolver(NewStorageSource(store, "templates/"), cfg.Templates.Cache, logger), nil
	default:
		return nil, fmt.Errorf("неизвестный источник шаблонов: %s", cfg.Templates.Source)
	}
}

// Resolve возвращает разобранный шаблон по логическому имени
func (r *Resolver) Resolve(ctx context.Context, name string) (*report.Template, error) {
	if !validName.MatchString(name) {
		return nil, fmt.Errorf("%w: недопустимое имя %q", report.ErrTemplateNotFound, name)
	}

	if r.cache {
		r.mu.RLock()
		tmpl, ok := r.parsed[name]
		r.mu.RUnlock()
		if ok {
			return tmpl, nil
		}
	}

	data, err := r.source.Read(ctx, name)
	if err != nil {
		return nil, err
	}

	tmpl, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if tmpl.Name != name {
		return nil, fmt.Errorf("%w: шаблон %s объявляет имя %q", report.ErrRender, name, tmpl.Name)
	}

	if r.cache {
		r.mu.Lock()
		r.parsed[name] = tmpl
		r.mu.Unlock()
	}

	if r.logger != nil {
		r.logger.WithField("template", name).Debug("Шаблон загружен")
	}
	return tmpl, nil
}

// Names возвращает отсортированный список доступных шаблонов
func (r *Resolver) Names(ctx context.Context) ([]string, error) {
	names, err := r.source.Names(ctx)
	if err != nil {
		return nil, fmt.Errorf("список шаблонов: %w", err)
	}
	sort.Strings(names)
	return names, nil
}
