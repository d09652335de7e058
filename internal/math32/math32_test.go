package math32

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSquaredL2(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Positive values", []float32{1, 2, 3}, []float32{4, 5, 6}, 27.0},
		{"Negative values", []float32{-1, -2, -3}, []float32{-4, -5, -6}, 27.0},
		{"Mixed values", []float32{1, -2, 3}, []float32{-4, 5, -6}, 155.0},
		{"Zero values", []float32{0, 0, 0}, []float32{0, 0, 0}, 0.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SquaredL2(tc.a, tc.b))
		})
	}
}

func TestL1(t *testing.T) {
	assert.Equal(t, float32(9), L1([]float32{1, 2, 3}, []float32{4, 5, 6}))
	assert.Equal(t, float32(0), L1([]float32{1, 2}, []float32{1, 2}))
}

func TestLInf(t *testing.T) {
	assert.Equal(t, float32(3), LInf([]float32{1, 2, 3}, []float32{4, 5, 6}))
	assert.Equal(t, float32(7), LInf([]float32{1, -2}, []float32{1, 5}))
}

func TestScalars(t *testing.T) {
	assert.True(t, math.IsInf(float64(Inf()), 1))
	assert.Equal(t, float32(3), Sqrt(9))
	assert.Equal(t, float32(2), Abs(-2))
	assert.Equal(t, float32(8), Pow(2, 3))
	assert.Equal(t, float32(1), Min(1, 2))
	assert.Equal(t, float32(2), Max(1, 2))
}
