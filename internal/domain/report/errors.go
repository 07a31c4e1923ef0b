package report

import "errors"

// Failure kinds of report generation. Lower layers wrap them with
// fmt.Errorf("...: %w") so callers can match with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrTemplateNotFound  = errors.New("template not found")
	ErrRender            = errors.New("render failed")
	ErrExport            = errors.New("export failed")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// Kind returns a short label of the failure kind for logging.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrTemplateNotFound):
		return "template_not_found"
	case errors.Is(err, ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, ErrRender):
		return "render"
	case errors.Is(err, ErrExport):
		return "export"
	default:
		return "internal"
	}
}
