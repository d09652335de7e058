// Package traverse provides the depth-first traversal drivers that feed
// the neighbor-search rules: a single-tree driver recursing over the
// reference tree per query point, and a dual-tree driver recursing over
// query and reference trees simultaneously. Drivers decide visitation
// order only; all pruning decisions and result maintenance live in the
// rules.
package traverse

import (
	"sort"

	"github.com/hupe1980/dualtree/neighbor"
	"github.com/hupe1980/dualtree/tree"
)

// Single drives a per-query depth-first traversal of the reference tree.
type Single struct {
	rules  *neighbor.Rules
	prunes int64
}

// NewSingle creates a single-tree driver over the given rules.
func NewSingle(rules *neighbor.Rules) *Single {
	return &Single{rules: rules}
}

// Prunes returns the number of subtrees pruned so far.
func (t *Single) Prunes() int64 { return t.prunes }

// Traverse recurses from refNode for one query point. Reference points
// are evaluated at leaves; children are visited in ascending score order
// and re-checked against the tightened threshold before descent.
//
// The entry node is scored first. Besides allowing an immediate prune,
// this seeds the entry node's cached centroid distance, which self-child
// scoring below it reads.
func (t *Single) Traverse(queryIndex int32, refNode *tree.Node) {
	if t.rules.Score(queryIndex, refNode) == neighbor.Prune {
		t.prunes++
		return
	}

	t.recurse(queryIndex, refNode)
}

func (t *Single) recurse(queryIndex int32, refNode *tree.Node) {
	if refNode.IsLeaf() {
		for i := 0; i < refNode.NumPoints(); i++ {
			t.rules.BaseCase(queryIndex, refNode.Point(i))
		}
		return
	}

	order := make([]scoredNode, 0, refNode.NumChildren())
	for i := 0; i < refNode.NumChildren(); i++ {
		child := refNode.Child(i)
		if score := t.rules.Score(queryIndex, child); score != neighbor.Prune {
			order = append(order, scoredNode{node: child, score: score})
		} else {
			t.prunes++
		}
	}
	sortByScore(order)

	for _, sc := range order {
		// Earlier siblings may have tightened the threshold.
		if t.rules.Rescore(queryIndex, sc.node, sc.score) == neighbor.Prune {
			t.prunes++
			continue
		}
		t.recurse(queryIndex, sc.node)
	}
}

// Dual drives a simultaneous depth-first traversal of a query tree and a
// reference tree.
type Dual struct {
	rules  *neighbor.Rules
	prunes int64
}

// NewDual creates a dual-tree driver over the given rules.
func NewDual(rules *neighbor.Rules) *Dual {
	return &Dual{rules: rules}
}

// Prunes returns the number of node pairs pruned so far.
func (t *Dual) Prunes() int64 { return t.prunes }

// Traverse recurses over the node pair. The side with the larger radius
// is split first; reference children are visited in ascending score
// order with a rescore before each descent.
func (t *Dual) Traverse(queryNode, refNode *tree.Node) {
	if queryNode.IsLeaf() && refNode.IsLeaf() {
		for i := 0; i < queryNode.NumPoints(); i++ {
			for j := 0; j < refNode.NumPoints(); j++ {
				t.rules.BaseCase(queryNode.Point(i), refNode.Point(j))
			}
		}
		return
	}

	if !queryNode.IsLeaf() && (refNode.IsLeaf() ||
		queryNode.FurthestDescendantDistance() >= refNode.FurthestDescendantDistance()) {
		// Split the query side. Each child carries its own threshold, so
		// there is nothing to rescore between siblings.
		for i := 0; i < queryNode.NumChildren(); i++ {
			child := queryNode.Child(i)
			if t.rules.ScoreNodes(child, refNode) == neighbor.Prune {
				t.prunes++
				continue
			}
			t.Traverse(child, refNode)
		}
		return
	}

	// Split the reference side.
	order := make([]scoredNode, 0, refNode.NumChildren())
	for i := 0; i < refNode.NumChildren(); i++ {
		child := refNode.Child(i)
		if score := t.rules.ScoreNodes(queryNode, child); score != neighbor.Prune {
			order = append(order, scoredNode{node: child, score: score})
		} else {
			t.prunes++
		}
	}
	sortByScore(order)

	for _, sc := range order {
		if t.rules.RescoreNodes(queryNode, sc.node, sc.score) == neighbor.Prune {
			t.prunes++
			continue
		}
		t.Traverse(queryNode, sc.node)
	}
}

type scoredNode struct {
	node  *tree.Node
	score float32
}

func sortByScore(nodes []scoredNode) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].score < nodes[j].score })
}
