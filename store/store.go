package store

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a named object does not exist.
//
// Implementations return errors satisfying errors.Is(err, ErrNotFound).
var ErrNotFound = os.ErrNotExist

// Store persists immutable named objects, such as tree snapshots.
type Store interface {
	// Put writes the object atomically: readers never observe a
	// partially written object under name.
	Put(ctx context.Context, name string, r io.Reader) error

	// Open opens the object for reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Delete removes the object. Deleting a missing object is not an
	// error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all objects with the given prefix,
	// sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}
