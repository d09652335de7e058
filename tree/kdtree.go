package tree

import (
	"sort"

	"github.com/hupe1980/dualtree/bound"
	"github.com/hupe1980/dualtree/matrix"
	"github.com/hupe1980/dualtree/metric"
)

// DefaultLeafSize is the default maximum number of points per kd-tree leaf.
const DefaultLeafSize = 20

// NewKD builds a kd-tree over dataset using median splits on the widest
// dimension. Points stay addressed by their original column indices; only
// leaves own points. leafSize <= 0 selects DefaultLeafSize.
func NewKD(dataset *matrix.Dense, kind metric.Kind, leafSize int) *Tree {
	if leafSize <= 0 {
		leafSize = DefaultLeafSize
	}

	t := &Tree{
		kind:       KindKD,
		traits:     KindKD.traits(),
		metricKind: kind,
		dataset:    dataset,
		leafSize:   leafSize,
	}

	indices := make([]int32, dataset.Cols())
	for i := range indices {
		indices[i] = int32(i)
	}

	t.root = t.buildKD(nil, indices)

	return t
}

// buildKD recursively builds the subtree over the given point indices.
// The indices slice is owned by the subtree and reordered in place.
func (t *Tree) buildKD(parent *Node, indices []int32) *Node {
	n := t.newNode(parent)
	n.rect = bound.NewHRect(t.metricKind, t.dataset.Rows())

	for _, idx := range indices {
		n.rect.Grow(t.dataset.Column(int(idx)))
	}
	n.furthestDescendant = n.rect.Diameter() / 2

	splitDim, width := widestDimension(n.rect)
	if len(indices) <= t.leafSize || width == 0 {
		n.points = indices
		return n
	}

	// Median split on the widest dimension keeps the tree balanced even
	// on clustered data.
	sort.Slice(indices, func(i, j int) bool {
		return t.dataset.At(splitDim, int(indices[i])) < t.dataset.At(splitDim, int(indices[j]))
	})
	mid := len(indices) / 2

	n.children = []*Node{
		t.buildKD(n, indices[:mid]),
		t.buildKD(n, indices[mid:]),
	}

	return n
}

func widestDimension(r *bound.HRect) (dim int, width float32) {
	width = -1
	for d := 0; d < r.Dim(); d++ {
		if w := r.Max()[d] - r.Min()[d]; w > width {
			dim, width = d, w
		}
	}

	return dim, width
}
