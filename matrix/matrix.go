package matrix

import "fmt"

// Dense is an immutable column-indexed matrix of float32 values.
//
// Each column is one point; Rows() is the dimensionality of the point set.
// The backing slice is column-major, so Column returns a zero-copy view.
// A Dense must not be mutated once it is shared with a tree or a searcher.
type Dense struct {
	rows int
	cols int
	data []float32
}

// New creates a Dense with the given shape backed by a fresh zero slice.
func New(rows, cols int) *Dense {
	return &Dense{
		rows: rows,
		cols: cols,
		data: make([]float32, rows*cols),
	}
}

// FromColumns creates a Dense from a slice of points, copying the values.
// All points must share the same dimensionality.
func FromColumns(points [][]float32) (*Dense, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("matrix: no points")
	}

	rows := len(points[0])
	m := New(rows, len(points))

	for i, p := range points {
		if len(p) != rows {
			return nil, fmt.Errorf("matrix: point %d has dimension %d, want %d", i, len(p), rows)
		}
		copy(m.data[i*rows:(i+1)*rows], p)
	}

	return m, nil
}

// FromData wraps an existing column-major slice without copying.
// len(data) must equal rows*cols.
func FromData(rows, cols int, data []float32) (*Dense, error) {
	if len(data) != rows*cols {
		return nil, fmt.Errorf("matrix: data length %d does not match %dx%d", len(data), rows, cols)
	}

	return &Dense{rows: rows, cols: cols, data: data}, nil
}

// Rows returns the dimensionality of the points.
func (m *Dense) Rows() int { return m.rows }

// Cols returns the number of points.
func (m *Dense) Cols() int { return m.cols }

// Column returns a zero-copy view of point i.
func (m *Dense) Column(i int) []float32 {
	return m.data[i*m.rows : (i+1)*m.rows : (i+1)*m.rows]
}

// At returns the value of coordinate row of point col.
func (m *Dense) At(row, col int) float32 {
	return m.data[col*m.rows+row]
}

// Data returns the column-major backing slice. Callers must treat it as
// read-only.
func (m *Dense) Data() []float32 { return m.data }
