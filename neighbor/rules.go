package neighbor

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/dualtree/matrix"
	"github.com/hupe1980/dualtree/metric"
	"github.com/hupe1980/dualtree/tree"
)

// Rules is the branch-and-bound rule set driven by a tree traversal. It
// owns the candidate lists and the one-slot base-case memo for one search
// invocation; per-node bound state lives on the tree nodes themselves.
//
// A Rules value is single-threaded: it is mutated in place by the driver
// and must not be shared across concurrent search invocations.
type Rules struct {
	querySet *matrix.Dense
	refSet   *matrix.Dense
	sameSet  bool

	metric     metric.Metric
	policy     Policy
	traits     tree.Traits
	candidates *CandidateSet

	// filter optionally restricts which reference ids may enter the
	// candidate lists. Distances to filtered points are still computed
	// and memoized; they only never qualify for insertion.
	filter *roaring.Bitmap

	// One-slot memoization of the immediately preceding base case.
	lastQueryIndex     int32
	lastReferenceIndex int32
	lastBaseCase       float32
}

// NewRules creates the rule set for one search invocation. querySet and
// refSet may be the same *matrix.Dense, in which case self-matches are
// elided.
func NewRules(querySet, refSet *matrix.Dense, m metric.Metric, p Policy, traits tree.Traits, candidates *CandidateSet, filter *roaring.Bitmap) *Rules {
	return &Rules{
		querySet:           querySet,
		refSet:             refSet,
		sameSet:            querySet == refSet,
		metric:             m,
		policy:             p,
		traits:             traits,
		candidates:         candidates,
		filter:             filter,
		lastQueryIndex:     -1,
		lastReferenceIndex: -1,
	}
}

// Candidates returns the candidate lists the rules insert into.
func (r *Rules) Candidates() *CandidateSet { return r.candidates }

// BaseCase computes the distance between a query point and a reference
// point, inserting it into the query's candidate list when it qualifies.
// The distance is returned whether or not it was accepted, since scoring
// needs the raw value too.
func (r *Rules) BaseCase(queryIndex, referenceIndex int32) float32 {
	// A point is never a neighbor of itself when the sets alias.
	if r.sameSet && queryIndex == referenceIndex {
		return 0
	}

	// If we have already performed this base case, do not perform it
	// again; repeating it would also repeat the insertion.
	if r.lastQueryIndex == queryIndex && r.lastReferenceIndex == referenceIndex {
		return r.lastBaseCase
	}

	distance := r.metric.Evaluate(
		r.querySet.Column(int(queryIndex)),
		r.refSet.Column(int(referenceIndex)),
	)

	r.insertIfQualifies(queryIndex, referenceIndex, distance)

	r.lastQueryIndex = queryIndex
	r.lastReferenceIndex = referenceIndex
	r.lastBaseCase = distance

	return distance
}

// insertIfQualifies runs the ranked insertion for a computed distance:
// filter check, rank lookup, duplicate guard, insert.
func (r *Rules) insertIfQualifies(queryIndex, referenceIndex int32, distance float32) {
	if r.filter != nil && !r.filter.Contains(uint32(referenceIndex)) {
		return
	}

	pos := r.policy.SortDistance(r.candidates.Distances(queryIndex), distance)
	if pos >= 0 && !r.candidates.contains(queryIndex, pos, referenceIndex, distance) {
		r.candidates.Insert(queryIndex, pos, referenceIndex, distance)
	}
}

// Score decides whether the driver should descend from a query point into
// a reference node. It returns a bound on the best possible distance the
// node can offer, or Prune when the node cannot improve the query's
// current candidates.
func (r *Rules) Score(queryIndex int32, refNode *tree.Node) float32 {
	var distance float32
	if r.traits.FirstPointIsCentroid {
		var baseCase float32
		reused := false

		if r.traits.HasSelfChildren {
			// A self-child shares its parent's representative point, so
			// the parent's centroid distance is this node's too.
			if p := refNode.Parent(); p != nil && refNode.Point(0) == p.Point(0) {
				baseCase = p.Stat().LastDistance
				reused = true
			}
		}
		if !reused {
			baseCase = r.BaseCase(queryIndex, refNode.Point(0))
		}

		// Save this evaluation for self-children below us.
		refNode.Stat().LastDistance = baseCase

		distance = r.policy.CombineBest(baseCase, refNode.FurthestDescendantDistance())
	} else {
		distance = r.policy.BestPointToNodeDistance(r.querySet.Column(int(queryIndex)), refNode)
	}

	if r.policy.IsBetter(distance, r.candidates.Worst(queryIndex)) {
		return distance
	}

	return Prune
}

// Rescore re-checks a previously computed point-to-node score against the
// query's possibly tightened threshold, without recomputing the distance.
func (r *Rules) Rescore(queryIndex int32, _ *tree.Node, oldScore float32) float32 {
	// Once pruned, always pruned.
	if oldScore == Prune {
		return oldScore
	}

	if r.policy.IsBetter(oldScore, r.candidates.Worst(queryIndex)) {
		return oldScore
	}

	return Prune
}

// ScoreNodes decides whether the driver should descend into a pair of
// query and reference nodes. For centroid trees it reuses previously
// computed centroid-to-centroid base cases through up to four cached
// relationships before computing fresh, then caches the result on both
// nodes for their descendants.
func (r *Rules) ScoreNodes(queryNode, refNode *tree.Node) float32 {
	var distance float32
	if r.traits.FirstPointIsCentroid {
		var baseCase float32
		alreadyDone := false

		if r.traits.HasSelfChildren {
			// Does the query node have this base case cached?
			if last := queryNode.Stat().LastNode; last != nil && refNode.Point(0) == last.Point(0) {
				baseCase = queryNode.Stat().LastDistance
				alreadyDone = true
			}

			// Does the reference node have it cached?
			if last := refNode.Stat().LastNode; last != nil && queryNode.Point(0) == last.Point(0) {
				baseCase = refNode.Stat().LastDistance
				alreadyDone = true
			}

			// Is the query node a self-child whose parent compared
			// against this reference representative?
			if p := queryNode.Parent(); p != nil && p.Point(0) == queryNode.Point(0) {
				if last := p.Stat().LastNode; last != nil && last.Point(0) == refNode.Point(0) {
					baseCase = p.Stat().LastDistance
					alreadyDone = true
				}
			}

			// Symmetrically for the reference node.
			if p := refNode.Parent(); p != nil && p.Point(0) == refNode.Point(0) {
				if last := p.Stat().LastNode; last != nil && last.Point(0) == queryNode.Point(0) {
					baseCase = p.Stat().LastDistance
					alreadyDone = true
				}
			}
		}

		qi, ri := queryNode.Point(0), refNode.Point(0)
		if !alreadyDone {
			baseCase = r.BaseCase(qi, ri)
		} else {
			// When the trees alias, the cache may have been written while
			// this node played the reference role, so the insertion went
			// to the other point's candidate list. Run it for the current
			// orientation; the duplicate guard absorbs the case where it
			// already happened.
			if !r.sameSet || qi != ri {
				r.insertIfQualifies(qi, ri, baseCase)
			}

			// Prime the memo so an immediately following BaseCase call
			// with this pair does not duplicate work.
			r.lastQueryIndex = qi
			r.lastReferenceIndex = ri
			r.lastBaseCase = baseCase
		}

		distance = r.policy.CombineBest(baseCase,
			queryNode.FurthestDescendantDistance()+refNode.FurthestDescendantDistance())

		// Cache symmetrically for future reuse by descendants.
		queryNode.Stat().LastNode = refNode
		queryNode.Stat().LastDistance = baseCase
		refNode.Stat().LastNode = queryNode
		refNode.Stat().LastDistance = baseCase
	} else {
		distance = r.policy.BestNodeToNodeDistance(queryNode, refNode)
	}

	if r.policy.IsBetter(distance, r.CalculateBound(queryNode)) {
		return distance
	}

	return Prune
}

// RescoreNodes re-checks a node-pair score against the query node's
// updated bound, without recomputing the underlying distance.
func (r *Rules) RescoreNodes(queryNode, _ *tree.Node, oldScore float32) float32 {
	if oldScore == Prune {
		return oldScore
	}

	if r.policy.IsBetter(oldScore, r.CalculateBound(queryNode)) {
		return oldScore
	}

	return Prune
}

// CalculateBound computes the query node's effective pruning threshold
// from five quantities and records it on the node:
//
//	(1) worst of (worst owned-point candidate, worst child firstBound)
//	(2) best owned-point candidate widened by twice the node radius
//	(3) best child secondBound adjusted by twice the radius difference
//	(4) parent firstBound
//	(5) parent secondBound
//
// firstBound becomes best(1,4); secondBound becomes best(best(3,2),5);
// the node's bound is the better of the two. Ancestor fallbacks (4)/(5)
// matter because dual traversal order does not guarantee children are
// bounded before a sibling subtree needs them.
func (r *Rules) CalculateBound(queryNode *tree.Node) float32 {
	worstPointDistance := r.policy.BestDistance()
	bestPointDistance := r.policy.WorstDistance()

	for i := 0; i < queryNode.NumPoints(); i++ {
		distance := r.candidates.Worst(queryNode.Point(i))
		if r.policy.IsBetter(distance, bestPointDistance) {
			bestPointDistance = distance
		}
		if r.policy.IsBetter(worstPointDistance, distance) {
			worstPointDistance = distance
		}
	}

	worstChildBound := r.policy.BestDistance()
	bestAdjustedChildBound := r.policy.WorstDistance()
	queryRadius := queryNode.FurthestDescendantDistance()

	for i := 0; i < queryNode.NumChildren(); i++ {
		child := queryNode.Child(i)

		if fb := child.Stat().FirstBound; r.policy.IsBetter(worstChildBound, fb) {
			worstChildBound = fb
		}

		adjusted := r.policy.CombineWorst(child.Stat().SecondBound,
			2*(queryRadius-child.FurthestDescendantDistance()))
		if r.policy.IsBetter(adjusted, bestAdjustedChildBound) {
			bestAdjustedChildBound = adjusted
		}
	}

	// Bound (1).
	firstBound := worstPointDistance
	if r.policy.IsBetter(worstPointDistance, worstChildBound) {
		firstBound = worstChildBound
	}

	// Bound (2).
	secondBound := r.policy.CombineWorst(bestPointDistance, 2*queryRadius)

	// Bounds (4) and (5).
	fourthBound := r.policy.WorstDistance()
	fifthBound := r.policy.WorstDistance()
	if p := queryNode.Parent(); p != nil {
		fourthBound = p.Stat().FirstBound
		fifthBound = p.Stat().SecondBound
	}

	interA := fourthBound
	if r.policy.IsBetter(firstBound, fourthBound) {
		interA = firstBound
	}
	interB := secondBound
	if r.policy.IsBetter(bestAdjustedChildBound, secondBound) {
		interB = bestAdjustedChildBound
	}
	interC := fifthBound
	if r.policy.IsBetter(interB, fifthBound) {
		interC = interB
	}

	stat := queryNode.Stat()
	stat.FirstBound = interA
	stat.SecondBound = interC
	stat.Bound = interC
	if r.policy.IsBetter(interA, interC) {
		stat.Bound = interA
	}

	return stat.Bound
}
