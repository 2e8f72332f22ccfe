package utils

import (
	"github.com/pkg/errors"
)

// NewOutOfRangeError is used when an integer input falls outside its set of valid values.
func NewOutOfRangeError(name string, value int, valid ...int) error {
	return errors.Errorf("%s %d out of range, must be one of %v", name, value, valid)
}

// NewNonFiniteError is used when a float input is NaN or infinite where a finite value is required.
func NewNonFiniteError(name string, value float64) error {
	return errors.Errorf("%s must be finite, got %v", name, value)
}
