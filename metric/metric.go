// Package metric provides the point-to-point distance metrics consumed by
// tree construction and neighbor search. All metrics are symmetric and
// non-negative.
package metric

import (
	"errors"
	"fmt"

	"github.com/hupe1980/dualtree/internal/math32"
)

// ErrUnknown is returned by New for an unrecognized Kind.
var ErrUnknown = errors.New("metric: unknown kind")

// Metric evaluates the distance between two points of equal dimensionality.
// Implementations must be stateless and safe for concurrent use.
type Metric interface {
	Evaluate(a, b []float32) float32
}

// Kind identifies a built-in metric.
type Kind int

const (
	KindEuclidean Kind = iota
	KindManhattan
	KindChebyshev
)

func (k Kind) String() string {
	switch k {
	case KindEuclidean:
		return "euclidean"
	case KindManhattan:
		return "manhattan"
	case KindChebyshev:
		return "chebyshev"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// ByName returns a built-in metric by its stable name.
//
// This is used by the CLI and by self-describing snapshot headers that
// store the metric name.
func ByName(name string) (Metric, Kind, bool) {
	switch name {
	case "euclidean", "l2":
		return Euclidean{}, KindEuclidean, true
	case "manhattan", "l1":
		return Manhattan{}, KindManhattan, true
	case "chebyshev", "linf":
		return Chebyshev{}, KindChebyshev, true
	default:
		return nil, 0, false
	}
}

// New returns the built-in metric for the given kind.
func New(k Kind) (Metric, error) {
	switch k {
	case KindEuclidean:
		return Euclidean{}, nil
	case KindManhattan:
		return Manhattan{}, nil
	case KindChebyshev:
		return Chebyshev{}, nil
	default:
		return nil, fmt.Errorf("%w %d", ErrUnknown, int(k))
	}
}

// Euclidean is the L2 metric.
type Euclidean struct{}

// Evaluate returns the Euclidean distance between a and b.
func (Euclidean) Evaluate(a, b []float32) float32 {
	return math32.Sqrt(math32.SquaredL2(a, b))
}

// Manhattan is the L1 metric.
type Manhattan struct{}

// Evaluate returns the Manhattan distance between a and b.
func (Manhattan) Evaluate(a, b []float32) float32 {
	return math32.L1(a, b)
}

// Chebyshev is the L-infinity metric.
type Chebyshev struct{}

// Evaluate returns the Chebyshev distance between a and b.
func (Chebyshev) Evaluate(a, b []float32) float32 {
	return math32.LInf(a, b)
}
