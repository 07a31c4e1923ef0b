package template

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"report_api/internal/domain/report"

	"gopkg.in/yaml.v3"
)

// Parse декодирует YAML-описание шаблона и проверяет его структуру.
// Неизвестные ключи считаются ошибкой.
func Parse(data []byte) (*report.Template, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var tmpl report.Template
	if err := dec.Decode(&tmpl); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: пустой шаблон", report.ErrRender)
		}
		return nil, fmt.Errorf("%w: разбор шаблона: %v", report.ErrRender, err)
	}

	if err := validate(&tmpl); err != nil {
		return nil, fmt.Errorf("%w: шаблон %q: %v", report.ErrRender, tmpl.Name, err)
	}
	return &tmpl, nil
}

// validate проверяет шаблон без учёта конкретных параметров запроса
func validate(t *report.Template) error {
	if t.Name == "" {
		return errors.New("не задано имя")
	}

	seen := make(map[string]struct{}, len(t.Parameters))
	for _, p := range t.Parameters {
		if p.Name == "" {
			return errors.New("параметр без имени")
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("параметр %s объявлен дважды", p.Name)
		}
		seen[p.Name] = struct{}{}

		switch p.Type {
		case report.ParamString, report.ParamDataSource:
		default:
			return fmt.Errorf("параметр %s: неизвестный тип %q", p.Name, p.Type)
		}
	}

	for i, b := range t.Bands {
		if err := validateBand(t, b); err != nil {
			return fmt.Errorf("band %d (%s): %w", i, b.Type, err)
		}
	}
	return nil
}

func validateBand(t *report.Template, b report.Band) error {
	switch b.Type {
	case report.ElementHeading, report.ElementText:
		if b.Text == "" {
			return errors.New("пустой текст")
		}
	case report.ElementField:
		if b.Label == "" && b.Expression == "" {
			return errors.New("нужен label или expression")
		}
	case report.ElementSpacer:
	case report.ElementTable:
		p, ok := t.Parameter(b.Source)
		if !ok {
			return fmt.Errorf("источник %q не объявлен", b.Source)
		}
		if p.Type != report.ParamDataSource {
			return fmt.Errorf("источник %q должен иметь тип %s", b.Source, report.ParamDataSource)
		}
		if len(b.Columns) == 0 {
			return errors.New("таблица без колонок")
		}
		for _, c := range b.Columns {
			if c.Field == "" {
				return fmt.Errorf("колонка %q без поля", c.Header)
			}
			if c.Width < 0 {
				return fmt.Errorf("колонка %q: отрицательная ширина", c.Header)
			}
		}
	default:
		return fmt.Errorf("неизвестный тип блока %q", b.Type)
	}
	return nil
}
