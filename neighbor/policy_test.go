package neighbor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/dualtree/internal/math32"
)

func TestNearestOrdering(t *testing.T) {
	p := Nearest{}

	assert.True(t, p.IsBetter(1, 2))
	assert.True(t, p.IsBetter(2, 2))
	assert.False(t, p.IsBetter(3, 2))
	assert.Equal(t, math32.Inf(), p.WorstDistance())
	assert.Equal(t, float32(0), p.BestDistance())
}

func TestFurthestOrdering(t *testing.T) {
	p := Furthest{}

	assert.True(t, p.IsBetter(2, 1))
	assert.True(t, p.IsBetter(2, 2))
	assert.False(t, p.IsBetter(1, 2))
	assert.Equal(t, float32(0), p.WorstDistance())
	assert.Equal(t, math32.Inf(), p.BestDistance())
}

func TestNearestCombine(t *testing.T) {
	p := Nearest{}

	assert.Equal(t, float32(3), p.CombineBest(5, 2))
	assert.Equal(t, float32(7), p.CombineWorst(5, 2))
	assert.Equal(t, math32.Inf(), p.CombineWorst(math32.Inf(), 2))
}

func TestFurthestCombine(t *testing.T) {
	p := Furthest{}

	assert.Equal(t, float32(7), p.CombineBest(5, 2))
	assert.Equal(t, float32(3), p.CombineWorst(5, 2))
	// Saturates at zero rather than going negative.
	assert.Equal(t, float32(0), p.CombineWorst(1, 2))
}

func TestNearestSortDistance(t *testing.T) {
	p := Nearest{}
	list := []float32{1, 3, 5}

	assert.Equal(t, 0, p.SortDistance(list, 0.5))
	assert.Equal(t, 1, p.SortDistance(list, 2))
	assert.Equal(t, 2, p.SortDistance(list, 4))
	// A tie with the worst entry takes its slot.
	assert.Equal(t, 2, p.SortDistance(list, 5))
	assert.Equal(t, -1, p.SortDistance(list, 6))
	// Ties rank at the head of their equal run.
	assert.Equal(t, 1, p.SortDistance([]float32{1, 3, 3, 5}, 3))
}

func TestFurthestSortDistance(t *testing.T) {
	p := Furthest{}
	list := []float32{5, 3, 1}

	assert.Equal(t, 0, p.SortDistance(list, 6))
	assert.Equal(t, 1, p.SortDistance(list, 4))
	// A tie with the worst entry takes its slot.
	assert.Equal(t, 2, p.SortDistance(list, 1))
	assert.Equal(t, -1, p.SortDistance(list, 0))
}

func TestFurthestSortDistanceAcceptsZeroIntoSentinels(t *testing.T) {
	p := Furthest{}
	sentinels := []float32{0, 0, 0}

	// A genuine zero-distance candidate displaces a sentinel rather than
	// bouncing off the tie.
	assert.Equal(t, 0, p.SortDistance(sentinels, 0))
}
