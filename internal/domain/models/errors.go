package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTotalsLocked is returned on any attempt to replace canonical totals
// after the reconciler sealed them.
var ErrTotalsLocked = errors.New("canonical totals already locked")

// DataUnavailableError means a required dataset could not be produced by
// any acquisition strategy. The run cannot proceed without it.
type DataUnavailableError struct {
	Dataset  string
	Attempts int
	Err      error
}

func (e *DataUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dataset %q unavailable after %d attempts: %v", e.Dataset, e.Attempts, e.Err)
	}
	return fmt.Sprintf("dataset %q unavailable after %d attempts", e.Dataset, e.Attempts)
}

func (e *DataUnavailableError) Unwrap() error { return e.Err }

// IntegrityHaltError means provider-reported and recomputed window totals
// disagree beyond tolerance. The run halts rather than publish figures
// that cannot all be true at once.
type IntegrityHaltError struct {
	DeltaHours float64
	DeltaLoad  float64
}

func (e *IntegrityHaltError) Error() string {
	return fmt.Sprintf("integrity halt: window totals diverge (hours %+.2f, load %+.1f)", e.DeltaHours, e.DeltaLoad)
}

// ValidationFailureError means the assembled report failed the validation
// gate and was not released.
type ValidationFailureError struct {
	Failures []string
}

func (e *ValidationFailureError) Error() string {
	return "report validation failed: " + strings.Join(e.Failures, "; ")
}
