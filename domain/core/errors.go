package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrColumnNotFound  = fmt.Errorf("%w: column", ErrNotFound)
	ErrSessionNotFound = fmt.Errorf("%w: session", ErrNotFound)
	ErrNoTable         = errors.New("no table loaded")

	// Ingestion errors
	ErrDataParse = errors.New("data parse error")

	// Analysis conditions
	ErrNotCategorical        = errors.New("column is not categorical")
	ErrNotNumerical          = errors.New("column is not numerical")
	ErrEmptyGroup            = errors.New("column group is empty")
	ErrDegenerateCorrelation = errors.New("correlation needs at least one numerical column")
	ErrInsufficientData      = errors.New("insufficient data for analysis")
	ErrRangeOverflow         = errors.New("value range too wide to plot")
)

// Error constructors with context
func NewColumnNotFoundError(column string) error {
	return fmt.Errorf("%w: %q", ErrColumnNotFound, column)
}

func NewParseError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrDataParse, fmt.Sprintf(format, args...))
}

func NewKindError(column string, want error) error {
	return fmt.Errorf("%w: %q", want, column)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDataParseError(err error) bool {
	return errors.Is(err, ErrDataParse)
}

// IsSkipCondition reports whether err only means a dashboard section has nothing to show.
func IsSkipCondition(err error) bool {
	return errors.Is(err, ErrEmptyGroup) ||
		errors.Is(err, ErrDegenerateCorrelation) ||
		errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrRangeOverflow)
}
