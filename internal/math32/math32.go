// Package math32 provides float32 scalar and vector kernels used by the
// metric and bound packages. This is an internal package - external users
// should go through the metric package.
package math32

import "math"

// MaxFloat32 re-exported for callers that need a finite "worst" value.
const MaxFloat32 = math.MaxFloat32

// Inf returns positive infinity as a float32.
func Inf() float32 {
	return float32(math.Inf(1))
}

// Sqrt returns the square root of x.
func Sqrt(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

// Abs returns the absolute value of x.
func Abs(x float32) float32 {
	return float32(math.Abs(float64(x)))
}

// Pow returns base**exp.
func Pow(base, exp float32) float32 {
	return float32(math.Pow(float64(base), float64(exp)))
}

// Min returns the smaller of a and b.
func Min(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// SquaredL2 calculates the squared L2 distance between a and b.
// Assumes the slices are the same length (caller's responsibility).
func SquaredL2(a, b []float32) float32 {
	var distance float32
	for i := range a {
		d := a[i] - b[i]
		distance += d * d
	}

	return distance
}

// L1 calculates the Manhattan distance between a and b.
// Assumes the slices are the same length (caller's responsibility).
func L1(a, b []float32) float32 {
	var distance float32
	for i := range a {
		distance += Abs(a[i] - b[i])
	}

	return distance
}

// LInf calculates the Chebyshev distance between a and b.
// Assumes the slices are the same length (caller's responsibility).
func LInf(a, b []float32) float32 {
	var distance float32
	for i := range a {
		if d := Abs(a[i] - b[i]); d > distance {
			distance = d
		}
	}

	return distance
}
