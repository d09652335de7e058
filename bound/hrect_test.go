package bound

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/dualtree/metric"
)

func rect(t *testing.T, kind metric.Kind, points ...[]float32) *HRect {
	t.Helper()

	r := NewHRect(kind, len(points[0]))
	for _, p := range points {
		r.Grow(p)
	}

	return r
}

func TestGrowContains(t *testing.T) {
	r := rect(t, metric.KindEuclidean, []float32{0, 0}, []float32{2, 3})

	assert.True(t, r.Contains([]float32{1, 1}))
	assert.True(t, r.Contains([]float32{0, 3}))
	assert.False(t, r.Contains([]float32{-1, 1}))
}

func TestMinDistancePoint(t *testing.T) {
	r := rect(t, metric.KindEuclidean, []float32{0, 0}, []float32{1, 1})

	assert.Equal(t, float32(0), r.MinDistancePoint([]float32{0.5, 0.5}))
	assert.InDelta(t, 5.0, r.MinDistancePoint([]float32{4, 5}), 1e-6)
}

func TestMaxDistancePoint(t *testing.T) {
	r := rect(t, metric.KindEuclidean, []float32{0, 0}, []float32{1, 1})

	// Furthest corner from the origin is (1,1).
	assert.InDelta(t, 1.4142135, r.MaxDistancePoint([]float32{0, 0}), 1e-6)
}

func TestMinMaxDistanceRects(t *testing.T) {
	a := rect(t, metric.KindEuclidean, []float32{0, 0}, []float32{1, 1})
	b := rect(t, metric.KindEuclidean, []float32{4, 1}, []float32{5, 2})

	assert.InDelta(t, 3.0, a.MinDistance(b), 1e-6)
	// Furthest corner pair is (0,0)-(5,2).
	assert.InDelta(t, 5.3851648, a.MaxDistance(b), 1e-6)

	// Overlapping rects have zero min distance.
	c := rect(t, metric.KindEuclidean, []float32{0.5, 0.5}, []float32{2, 2})
	assert.Equal(t, float32(0), a.MinDistance(c))
}

func TestManhattanAccumulation(t *testing.T) {
	r := rect(t, metric.KindManhattan, []float32{0, 0}, []float32{1, 1})

	assert.Equal(t, float32(7), r.MinDistancePoint([]float32{4, 5}))
	assert.Equal(t, float32(2), r.Diameter())
}

func TestChebyshevAccumulation(t *testing.T) {
	r := rect(t, metric.KindChebyshev, []float32{0, 0}, []float32{1, 1})

	assert.Equal(t, float32(4), r.MinDistancePoint([]float32{4, 5}))
	assert.Equal(t, float32(1), r.Diameter())
}
