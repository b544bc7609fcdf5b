package model

import (
	"errors"
	"fmt"
)

var ErrInvalidInput = errors.New("invalid input")

// InputError reports a field that was rejected before any computation ran.
type InputError struct {
	Field string
	Msg   string
}

func (e *InputError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalidInput.Error(), e.Field, e.Msg)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

func Invalidf(field, format string, args ...any) error {
	return &InputError{Field: field, Msg: fmt.Sprintf(format, args...)}
}
