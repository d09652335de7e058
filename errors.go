package dualtree

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrEmptyDataset is returned when a searcher is built over a point
	// set with no points.
	ErrEmptyDataset = errors.New("dataset has no points")
)

// ErrDimensionMismatch indicates a query/reference dimensionality
// mismatch, detected before traversal begins.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}
