package bound

import (
	"github.com/hupe1980/dualtree/internal/math32"
	"github.com/hupe1980/dualtree/metric"
)

// HRect is an axis-aligned hyperrectangle bound over one metric kind.
// It is the bounding volume used by kd-tree nodes.
type HRect struct {
	kind metric.Kind
	min  []float32
	max  []float32
}

// NewHRect creates an empty HRect of the given dimensionality. An empty
// bound contains no points; Grow establishes the first extent.
func NewHRect(kind metric.Kind, dim int) *HRect {
	r := &HRect{
		kind: kind,
		min:  make([]float32, dim),
		max:  make([]float32, dim),
	}
	for d := 0; d < dim; d++ {
		r.min[d] = math32.MaxFloat32
		r.max[d] = -math32.MaxFloat32
	}

	return r
}

// Dim returns the dimensionality of the bound.
func (r *HRect) Dim() int { return len(r.min) }

// Min returns the lower corner. Callers must treat it as read-only.
func (r *HRect) Min() []float32 { return r.min }

// Max returns the upper corner. Callers must treat it as read-only.
func (r *HRect) Max() []float32 { return r.max }

// Grow expands the bound to contain point p.
func (r *HRect) Grow(p []float32) {
	for d := range p {
		if p[d] < r.min[d] {
			r.min[d] = p[d]
		}
		if p[d] > r.max[d] {
			r.max[d] = p[d]
		}
	}
}

// Contains reports whether p lies inside the bound.
func (r *HRect) Contains(p []float32) bool {
	for d := range p {
		if p[d] < r.min[d] || p[d] > r.max[d] {
			return false
		}
	}

	return true
}

// Centroid writes the center of the bound into dst.
func (r *HRect) Centroid(dst []float32) {
	for d := range dst {
		dst[d] = (r.min[d] + r.max[d]) / 2
	}
}

// Diameter returns the length of the bound's diagonal under its metric.
// Half the diameter bounds the distance from the centroid to any
// contained point.
func (r *HRect) Diameter() float32 {
	acc := newAccumulator(r.kind)
	for d := range r.min {
		acc.add(r.max[d] - r.min[d])
	}

	return acc.value()
}

// MinDistancePoint returns a lower bound on the distance from p to any
// point inside the bound. Zero if p is contained.
func (r *HRect) MinDistancePoint(p []float32) float32 {
	acc := newAccumulator(r.kind)
	for d := range p {
		var gap float32
		switch {
		case p[d] < r.min[d]:
			gap = r.min[d] - p[d]
		case p[d] > r.max[d]:
			gap = p[d] - r.max[d]
		}
		acc.add(gap)
	}

	return acc.value()
}

// MaxDistancePoint returns an upper bound on the distance from p to any
// point inside the bound.
func (r *HRect) MaxDistancePoint(p []float32) float32 {
	acc := newAccumulator(r.kind)
	for d := range p {
		acc.add(math32.Max(math32.Abs(p[d]-r.min[d]), math32.Abs(r.max[d]-p[d])))
	}

	return acc.value()
}

// MinDistance returns a lower bound on the distance between any point in
// r and any point in other.
func (r *HRect) MinDistance(other *HRect) float32 {
	acc := newAccumulator(r.kind)
	for d := range r.min {
		var gap float32
		switch {
		case other.min[d] > r.max[d]:
			gap = other.min[d] - r.max[d]
		case r.min[d] > other.max[d]:
			gap = r.min[d] - other.max[d]
		}
		acc.add(gap)
	}

	return acc.value()
}

// MaxDistance returns an upper bound on the distance between any point in
// r and any point in other.
func (r *HRect) MaxDistance(other *HRect) float32 {
	acc := newAccumulator(r.kind)
	for d := range r.min {
		acc.add(math32.Max(math32.Abs(other.max[d]-r.min[d]), math32.Abs(r.max[d]-other.min[d])))
	}

	return acc.value()
}

// accumulator folds per-dimension contributions into a distance according
// to the metric kind.
type accumulator struct {
	kind metric.Kind
	sum  float32
}

func newAccumulator(kind metric.Kind) accumulator {
	return accumulator{kind: kind}
}

func (a *accumulator) add(v float32) {
	switch a.kind {
	case metric.KindEuclidean:
		a.sum += v * v
	case metric.KindManhattan:
		a.sum += v
	case metric.KindChebyshev:
		if v > a.sum {
			a.sum = v
		}
	}
}

func (a *accumulator) value() float32 {
	if a.kind == metric.KindEuclidean {
		return math32.Sqrt(a.sum)
	}

	return a.sum
}
