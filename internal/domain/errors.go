package domain

import (
	"errors"
	"fmt"
)

// Failure categories. Callers match them with errors.Is.
var (
	// ErrNotFound reports that a tank or reading required by an operation does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict reports a uniqueness violation, such as a duplicate serial number.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput reports input rejected before any storage access.
	ErrInvalidInput = errors.New("invalid input")
)

var (
	ErrTankNotFound    = fmt.Errorf("tank %w", ErrNotFound)
	ErrReadingNotFound = fmt.Errorf("reading %w", ErrNotFound)
	ErrDuplicateSerial = fmt.Errorf("%w: serial number already registered", ErrConflict)
)
