package report

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Validator проверяет входящие записи перед генерацией отчёта.
type Validator struct {
	validate *validator.Validate
}

// NewValidator возвращает валидатор с зарегистрированным правилом notblank.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// notblank is not part of the default rule set
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return &Validator{validate: v}
}

// Validate satisfies echo.Validator.
func (v *Validator) Validate(i any) error {
	switch val := i.(type) {
	case RecordList:
		return v.ValidateList(val)
	case *RecordList:
		if val == nil {
			return fmt.Errorf("%w: record list is null", ErrValidation)
		}
		return v.ValidateList(*val)
	}
	if err := v.validate.Struct(i); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// ValidateList rejects a nil list and any invalid element. An empty,
// non-nil list is valid.
func (v *Validator) ValidateList(records RecordList) error {
	if records == nil {
		return fmt.Errorf("%w: record list is null", ErrValidation)
	}
	for i := range records {
		if err := v.validate.Struct(records[i]); err != nil {
			return fmt.Errorf("%w: record %d: %v", ErrValidation, i, err)
		}
	}
	return nil
}
