// Package matrix provides the column-indexed dense float32 matrix that
// holds query and reference point sets. Points are columns so that a
// single point is a contiguous, zero-copy slice view.
package matrix
