package api

import (
	"github.com/go-playground/validator/v10"

	"gigspace/pkg/errors"
)

type Validator struct {
	validator *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{
		validator: validator.New(),
	}
}

func (v *Validator) Validate(i interface{}) error {
	if err := v.validator.Struct(i); err != nil {
		return errors.BadRequest("Validation failed", err)
	}
	return nil
}
