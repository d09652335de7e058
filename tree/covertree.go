package tree

import (
	"math"

	"github.com/hupe1980/dualtree/internal/math32"
	"github.com/hupe1980/dualtree/matrix"
	"github.com/hupe1980/dualtree/metric"
)

// DefaultBase is the default cover-tree expansion constant.
const DefaultBase = 2.0

// leafScale marks leaf nodes, mirroring the "minus infinity" scale of the
// cover-tree formulation.
const leafScale = int32(math.MinInt32)

// NewCover builds a cover tree over dataset using batch construction.
// Every node owns exactly one point, its representative; each non-leaf
// node has a self-child carrying the representative down one scale level,
// so every point ends up in exactly one leaf. base <= 1 selects
// DefaultBase.
func NewCover(dataset *matrix.Dense, kind metric.Kind, base float32) (*Tree, error) {
	if base <= 1 {
		base = DefaultBase
	}

	m, err := metric.New(kind)
	if err != nil {
		return nil, err
	}

	t := &Tree{
		kind:       KindCover,
		traits:     KindCover.traits(),
		metricKind: kind,
		dataset:    dataset,
		base:       base,
	}

	b := &coverBuilder{tree: t, metric: m}

	// The first point is the root's representative; everything else is a
	// candidate descendant.
	candidates := make([]int32, 0, dataset.Cols()-1)
	for i := 1; i < dataset.Cols(); i++ {
		candidates = append(candidates, int32(i))
	}

	dists := b.distancesTo(0, candidates)
	scale := int32(0)
	if maxd := maxOf(dists); maxd > 0 {
		scale = int32(math.Ceil(math.Log(float64(maxd)) / math.Log(float64(base))))
	}

	t.root = b.construct(nil, 0, scale, candidates, dists)
	b.computeFurthestDescendants(t.root)

	return t, nil
}

type coverBuilder struct {
	tree   *Tree
	metric metric.Metric
}

func (b *coverBuilder) distancesTo(point int32, indices []int32) []float32 {
	ds := b.tree.dataset
	p := ds.Column(int(point))

	dists := make([]float32, len(indices))
	for i, idx := range indices {
		dists[i] = b.metric.Evaluate(p, ds.Column(int(idx)))
	}

	return dists
}

// construct builds the subtree rooted at representative point with the
// given candidate descendants and their distances to the representative.
func (b *coverBuilder) construct(parent *Node, point int32, scale int32, candidates []int32, dists []float32) *Node {
	n := b.tree.newNode(parent)
	n.points = []int32{point}

	if len(candidates) == 0 {
		n.scale = leafScale
		return n
	}

	maxd := maxOf(dists)
	if maxd == 0 {
		// All candidates are duplicates of the representative. Attach
		// them as leaves next to the self-child leaf.
		n.scale = scale
		n.children = make([]*Node, 0, len(candidates)+1)
		n.children = append(n.children, b.construct(n, point, scale-1, nil, nil))
		for _, c := range candidates {
			n.children = append(n.children, b.construct(n, c, scale-1, nil, nil))
		}
		return n
	}

	// Lower the scale until the covering radius is tight.
	for math32.Pow(b.tree.base, float32(scale-1)) >= maxd {
		scale--
	}
	n.scale = scale
	sep := math32.Pow(b.tree.base, float32(scale-1))

	// Self-child takes the near set; far points seed the other children.
	near, far, nearDists, _ := split(candidates, dists, sep)
	n.children = append(n.children, b.construct(n, point, scale-1, near, nearDists))

	for len(far) > 0 {
		pivot := far[0]
		rest := far[1:]
		restDists := b.distancesTo(pivot, rest)
		pivotNear, remaining, pivotNearDists, _ := split(rest, restDists, sep)
		n.children = append(n.children, b.construct(n, pivot, scale-1, pivotNear, pivotNearDists))
		far = remaining
	}

	return n
}

// split partitions indices by whether their distance is within sep.
func split(indices []int32, dists []float32, sep float32) (near, far []int32, nearDists, farDists []float32) {
	for i, idx := range indices {
		if dists[i] <= sep {
			near = append(near, idx)
			nearDists = append(nearDists, dists[i])
		} else {
			far = append(far, idx)
			farDists = append(farDists, dists[i])
		}
	}

	return near, far, nearDists, farDists
}

// computeFurthestDescendants fills in the furthest-descendant distance
// for every node, bottom-up. The value is clamped to be at least as large
// as every child's, so radii never grow on the way down; the bound-update
// correction terms rely on that.
func (b *coverBuilder) computeFurthestDescendants(n *Node) {
	for _, c := range n.children {
		b.computeFurthestDescendants(c)
	}

	rep := b.tree.dataset.Column(int(n.Point(0)))

	var walk func(m *Node) float32
	walk = func(m *Node) float32 {
		d := b.metric.Evaluate(rep, b.tree.dataset.Column(int(m.Point(0))))
		for _, c := range m.children {
			d = math32.Max(d, walk(c))
		}
		return d
	}

	n.furthestDescendant = walk(n)
	for _, c := range n.children {
		n.furthestDescendant = math32.Max(n.furthestDescendant, c.furthestDescendant)
	}
}

func maxOf(vals []float32) float32 {
	var m float32
	for _, v := range vals {
		if v > m {
			m = v
		}
	}

	return m
}
