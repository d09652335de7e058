package tree

import (
	"fmt"

	"github.com/hupe1980/dualtree/bound"
	"github.com/hupe1980/dualtree/matrix"
	"github.com/hupe1980/dualtree/metric"
)

// Kind identifies a tree variant.
type Kind int

const (
	KindKD Kind = iota
	KindCover
)

func (k Kind) String() string {
	switch k {
	case KindKD:
		return "kd"
	case KindCover:
		return "cover"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// ByName returns a tree kind by its stable name.
func ByName(name string) (Kind, bool) {
	switch name {
	case "kd":
		return KindKD, true
	case "cover":
		return KindCover, true
	default:
		return 0, false
	}
}

// Traits describes structural properties of a tree variant that the
// pruning rules branch on.
type Traits struct {
	// FirstPointIsCentroid is true when Point(0) of every node is the
	// node's representative point, so point-to-node and node-to-node
	// bounds can be derived from base-case distances to it.
	FirstPointIsCentroid bool

	// HasSelfChildren is true when a node may have a child that shares
	// its representative point, enabling cached base-case reuse along
	// parent/self-child chains.
	HasSelfChildren bool
}

func (k Kind) traits() Traits {
	switch k {
	case KindCover:
		return Traits{FirstPointIsCentroid: true, HasSelfChildren: true}
	default:
		return Traits{}
	}
}

// Stat is the per-node mutable bound block owned by the node and mutated
// in place by neighbor-search scoring. All values are meaningless until
// the owning search invocation initializes them via Tree.ResetStats.
type Stat struct {
	// FirstBound is the worst-case bound on any descendant query's best
	// candidate distance.
	FirstBound float32

	// SecondBound is the looser bound derived from the best descendant
	// candidate distance plus node-radius corrections.
	SecondBound float32

	// Bound caches the tighter of the two for cheap reads.
	Bound float32

	// LastDistance is the most recent base-case distance computed for
	// this node's representative point.
	LastDistance float32

	// LastNode is the node on the other side of that base case. It is a
	// memoization hint only and is cleared by ResetStats; nil means no
	// comparison has been cached.
	LastNode *Node
}

// Node is one node of a built tree. Nodes are allocated into the owning
// Tree's arena and carry the mutable Stat block for their lifetime.
type Node struct {
	id       int32
	parent   *Node
	children []*Node

	// points holds the dataset column indices directly owned by this
	// node: all leaf points for kd-trees, the single representative
	// point for cover trees.
	points []int32

	// furthestDescendant is the maximum distance from the node's
	// effective center to any point in its subtree.
	furthestDescendant float32

	rect  *bound.HRect // kd nodes only
	scale int32        // cover nodes only

	stat Stat
}

// ID returns the node's index in the owning tree's arena.
func (n *Node) ID() int32 { return n.id }

// NumPoints returns the number of points directly owned by the node.
func (n *Node) NumPoints() int { return len(n.points) }

// Point returns the dataset column index of the i'th directly-owned point.
func (n *Node) Point(i int) int32 { return n.points[i] }

// NumChildren returns the number of children.
func (n *Node) NumChildren() int { return len(n.children) }

// Child returns the i'th child.
func (n *Node) Child(i int) *Node { return n.children[i] }

// Parent returns the parent node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.children) == 0 }

// FurthestDescendantDistance returns the maximum distance from the node's
// effective center to any point contained anywhere in its subtree.
func (n *Node) FurthestDescendantDistance() float32 { return n.furthestDescendant }

// Rect returns the node's axis-aligned bound, or nil for tree variants
// without explicit bounding volumes.
func (n *Node) Rect() *bound.HRect { return n.rect }

// Stat returns the node's mutable bound block.
func (n *Node) Stat() *Stat { return &n.stat }

// Tree is a built spatial tree over one immutable dataset. Construction
// happens once; searches then consume the tree through the node contract
// and mutate only the per-node Stat blocks.
type Tree struct {
	kind       Kind
	traits     Traits
	metricKind metric.Kind
	dataset    *matrix.Dense
	root       *Node
	nodes      []*Node

	leafSize int     // kd only
	base     float32 // cover only
}

// Kind returns the tree variant.
func (t *Tree) Kind() Kind { return t.kind }

// Traits returns the structural traits of the tree variant.
func (t *Tree) Traits() Traits { return t.traits }

// MetricKind returns the metric the tree was built with.
func (t *Tree) MetricKind() metric.Kind { return t.metricKind }

// Dataset returns the point set the tree was built over.
func (t *Tree) Dataset() *matrix.Dense { return t.dataset }

// Root returns the root node.
func (t *Tree) Root() *Node { return t.root }

// NumNodes returns the total number of nodes in the arena.
func (t *Tree) NumNodes() int { return len(t.nodes) }

// NodeByID returns the node with the given arena index.
func (t *Tree) NodeByID(id int32) *Node { return t.nodes[id] }

// ResetStats initializes every node's Stat block for a new search
// invocation. worst is the searching policy's worst-possible distance.
func (t *Tree) ResetStats(worst float32) {
	for _, n := range t.nodes {
		n.stat = Stat{
			FirstBound:  worst,
			SecondBound: worst,
			Bound:       worst,
		}
	}
}

// newNode allocates a node into the arena.
func (t *Tree) newNode(parent *Node) *Node {
	n := &Node{
		id:     int32(len(t.nodes)),
		parent: parent,
	}
	t.nodes = append(t.nodes, n)

	return n
}
