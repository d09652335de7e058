package tree

import (
	"fmt"

	"github.com/hupe1980/dualtree/bound"
	"github.com/hupe1980/dualtree/matrix"
	"github.com/hupe1980/dualtree/metric"
)

// Flat is the serializable form of a built tree. Nodes are stored in
// arena order with structure flattened into parallel slices, so the whole
// value round-trips through encoding/gob without pointer cycles.
//
// Search state (Stat blocks) is deliberately not part of the format.
type Flat struct {
	Kind       Kind
	MetricKind metric.Kind
	LeafSize   int32
	Base       float32

	Rows int32
	Cols int32
	Data []float32 // column-major dataset

	Parent     []int32 // -1 for the root
	ChildStart []int32
	ChildCount []int32
	Children   []int32
	PointStart []int32
	PointCount []int32
	Points     []int32
	Furthest   []float32
	Scale      []int32
	RectData   []float32 // 2*Rows per node (min corner, max corner); kd only
}

// Flatten converts the tree and its dataset into the serializable form.
func (t *Tree) Flatten() *Flat {
	numNodes := len(t.nodes)
	f := &Flat{
		Kind:       t.kind,
		MetricKind: t.metricKind,
		LeafSize:   int32(t.leafSize),
		Base:       t.base,
		Rows:       int32(t.dataset.Rows()),
		Cols:       int32(t.dataset.Cols()),
		Data:       t.dataset.Data(),
		Parent:     make([]int32, numNodes),
		ChildStart: make([]int32, numNodes),
		ChildCount: make([]int32, numNodes),
		PointStart: make([]int32, numNodes),
		PointCount: make([]int32, numNodes),
		Furthest:   make([]float32, numNodes),
		Scale:      make([]int32, numNodes),
	}

	if t.kind == KindKD {
		f.RectData = make([]float32, 0, 2*t.dataset.Rows()*numNodes)
	}

	for i, n := range t.nodes {
		if n.parent != nil {
			f.Parent[i] = n.parent.id
		} else {
			f.Parent[i] = -1
		}

		f.ChildStart[i] = int32(len(f.Children))
		f.ChildCount[i] = int32(len(n.children))
		for _, c := range n.children {
			f.Children = append(f.Children, c.id)
		}

		f.PointStart[i] = int32(len(f.Points))
		f.PointCount[i] = int32(len(n.points))
		f.Points = append(f.Points, n.points...)

		f.Furthest[i] = n.furthestDescendant
		f.Scale[i] = n.scale

		if t.kind == KindKD {
			f.RectData = append(f.RectData, n.rect.Min()...)
			f.RectData = append(f.RectData, n.rect.Max()...)
		}
	}

	return f
}

// FromFlat reconstructs a tree (and its dataset) from the serializable
// form without rebuilding.
func FromFlat(f *Flat) (*Tree, error) {
	dataset, err := matrix.FromData(int(f.Rows), int(f.Cols), f.Data)
	if err != nil {
		return nil, err
	}

	numNodes := len(f.Parent)
	if numNodes == 0 {
		return nil, fmt.Errorf("tree: flat form has no nodes")
	}

	t := &Tree{
		kind:       f.Kind,
		traits:     f.Kind.traits(),
		metricKind: f.MetricKind,
		dataset:    dataset,
		leafSize:   int(f.LeafSize),
		base:       f.Base,
		nodes:      make([]*Node, numNodes),
	}

	for i := range t.nodes {
		t.nodes[i] = &Node{id: int32(i)}
	}

	dim := int(f.Rows)
	for i, n := range t.nodes {
		if p := f.Parent[i]; p >= 0 {
			if int(p) >= numNodes {
				return nil, fmt.Errorf("tree: node %d has out-of-range parent %d", i, p)
			}
			n.parent = t.nodes[p]
		}

		for _, c := range f.Children[f.ChildStart[i] : f.ChildStart[i]+f.ChildCount[i]] {
			if int(c) >= numNodes {
				return nil, fmt.Errorf("tree: node %d has out-of-range child %d", i, c)
			}
			n.children = append(n.children, t.nodes[c])
		}

		if c := f.PointCount[i]; c > 0 {
			n.points = f.Points[f.PointStart[i] : f.PointStart[i]+c]
		}
		n.furthestDescendant = f.Furthest[i]
		n.scale = f.Scale[i]

		if f.Kind == KindKD {
			n.rect = bound.NewHRect(f.MetricKind, dim)
			n.rect.Grow(f.RectData[i*2*dim : i*2*dim+dim])
			n.rect.Grow(f.RectData[i*2*dim+dim : (i+1)*2*dim])
		}
	}

	t.root = t.nodes[0]
	if t.root.parent != nil {
		return nil, fmt.Errorf("tree: node 0 is not the root")
	}

	return t, nil
}
