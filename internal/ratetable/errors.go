package ratetable

import (
	"errors"
	"fmt"
)

var ErrUnknownYear = errors.New("unknown rate year")

type UnknownYearError struct {
	Year int
}

func (e *UnknownYearError) Error() string {
	return fmt.Sprintf("%s: no rate table registered for %d", ErrUnknownYear.Error(), e.Year)
}

func (e *UnknownYearError) Unwrap() error { return ErrUnknownYear }
