package neighbor

import (
	"github.com/hupe1980/dualtree/internal/math32"
	"github.com/hupe1980/dualtree/tree"
)

// Prune is the sentinel score returned when a subtree cannot contain a
// result better than what is already known. Once a driver receives it,
// Rescore keeps the subtree pruned for the rest of the search.
var Prune = math32.Inf()

// Policy generalizes nearest-neighbor and furthest-neighbor search into
// one algorithm by abstracting "better", the sentinel distances, and the
// way base-case distances combine with node radii. Implementations are
// stateless value types so the hot path stays free of indirection.
type Policy interface {
	// IsBetter reports whether value is at least as good as ref in the
	// policy's ordering.
	IsBetter(value, ref float32) bool

	// WorstDistance returns the policy's worst possible distance, used
	// to initialize candidate lists and bounds.
	WorstDistance() float32

	// BestDistance returns the policy's best possible distance.
	BestDistance() float32

	// CombineBest combines a base-case distance with a node radius into
	// the best possible distance to any point of the node.
	CombineBest(distance, radius float32) float32

	// CombineWorst combines a bound with a correction term, saturating
	// at the policy's worst direction.
	CombineWorst(bound, correction float32) float32

	// BestPointToNodeDistance returns the best possible distance from a
	// point to any point of a node with an explicit bounding volume.
	BestPointToNodeDistance(point []float32, n *tree.Node) float32

	// BestNodeToNodeDistance returns the best possible distance between
	// any point of a and any point of b, via their bounding volumes.
	BestNodeToNodeDistance(a, b *tree.Node) float32

	// SortDistance returns the rank at which distance would be inserted
	// into the sorted candidate list, or -1 when it is strictly worse
	// than the worst entry. Ties rank at the head of their equal run.
	SortDistance(list []float32, distance float32) int
}

// Nearest orders candidates by ascending distance: smaller is better.
type Nearest struct{}

func (Nearest) IsBetter(value, ref float32) bool { return value <= ref }

func (Nearest) WorstDistance() float32 { return math32.Inf() }

func (Nearest) BestDistance() float32 { return 0 }

func (Nearest) CombineBest(distance, radius float32) float32 {
	return distance - radius
}

func (Nearest) CombineWorst(bound, correction float32) float32 {
	return bound + correction
}

func (Nearest) BestPointToNodeDistance(point []float32, n *tree.Node) float32 {
	return n.Rect().MinDistancePoint(point)
}

func (Nearest) BestNodeToNodeDistance(a, b *tree.Node) float32 {
	return a.Rect().MinDistance(b.Rect())
}

func (Nearest) SortDistance(list []float32, distance float32) int {
	// Only a distance strictly worse than the current worst fails to
	// qualify; a tie takes the head of its equal run, pushing the worst
	// entry out.
	if distance > list[len(list)-1] {
		return -1
	}

	for i := range list {
		if distance <= list[i] {
			return i
		}
	}

	return len(list) - 1
}

// Furthest orders candidates by descending distance: larger is better.
type Furthest struct{}

func (Furthest) IsBetter(value, ref float32) bool { return value >= ref }

func (Furthest) WorstDistance() float32 { return 0 }

func (Furthest) BestDistance() float32 { return math32.Inf() }

func (Furthest) CombineBest(distance, radius float32) float32 {
	return distance + radius
}

func (Furthest) CombineWorst(bound, correction float32) float32 {
	if bound-correction < 0 {
		return 0
	}

	return bound - correction
}

func (Furthest) BestPointToNodeDistance(point []float32, n *tree.Node) float32 {
	return n.Rect().MaxDistancePoint(point)
}

func (Furthest) BestNodeToNodeDistance(a, b *tree.Node) float32 {
	return a.Rect().MaxDistance(b.Rect())
}

func (Furthest) SortDistance(list []float32, distance float32) int {
	// Ties qualify here too: the zero sentinel would otherwise shut out
	// genuine zero-distance candidates, leaving coincident points
	// unreported.
	if distance < list[len(list)-1] {
		return -1
	}

	for i := range list {
		if distance >= list[i] {
			return i
		}
	}

	return len(list) - 1
}
