package neighbor

// InvalidNeighbor marks an unfilled candidate slot. Slots keep this id
// (paired with the policy's worst distance) when fewer than k reference
// points qualify.
const InvalidNeighbor int32 = -1

// CandidateSet holds one bounded sorted candidate list per query point,
// stored as two parallel column-major slabs: query q owns the half-open
// slice [q*k, (q+1)*k) of both. Entries are always sorted by the policy's
// ordering with the worst accepted candidate last; that last entry is the
// pruning threshold read back by scoring.
//
// All storage is allocated once per search invocation and mutated in
// place via ranked insertion only.
type CandidateSet struct {
	k          int
	numQueries int
	distances  []float32
	neighbors  []int32
}

// NewCandidateSet allocates candidate lists of width k for numQueries
// query points, initialized to worst-distance sentinel entries.
func NewCandidateSet(p Policy, k, numQueries int) *CandidateSet {
	c := &CandidateSet{
		k:          k,
		numQueries: numQueries,
		distances:  make([]float32, k*numQueries),
		neighbors:  make([]int32, k*numQueries),
	}

	worst := p.WorstDistance()
	for i := range c.distances {
		c.distances[i] = worst
		c.neighbors[i] = InvalidNeighbor
	}

	return c
}

// K returns the candidate list width.
func (c *CandidateSet) K() int { return c.k }

// NumQueries returns the number of query points.
func (c *CandidateSet) NumQueries() int { return c.numQueries }

// Distances returns query qi's sorted distance list.
func (c *CandidateSet) Distances(qi int32) []float32 {
	return c.distances[int(qi)*c.k : (int(qi)+1)*c.k]
}

// Neighbors returns query qi's reference-identifier list, parallel to
// Distances.
func (c *CandidateSet) Neighbors(qi int32) []int32 {
	return c.neighbors[int(qi)*c.k : (int(qi)+1)*c.k]
}

// Worst returns query qi's current worst accepted candidate distance,
// the pruning threshold for that query.
func (c *CandidateSet) Worst(qi int32) float32 {
	return c.distances[(int(qi)+1)*c.k-1]
}

// Insert places (distance, neighbor) at rank pos in query qi's list,
// shifting lower-ranked entries down one slot and discarding the previous
// worst. pos must come from the policy's SortDistance.
func (c *CandidateSet) Insert(qi int32, pos int, neighbor int32, distance float32) {
	base := int(qi) * c.k

	if pos < c.k-1 {
		copy(c.distances[base+pos+1:base+c.k], c.distances[base+pos:base+c.k-1])
		copy(c.neighbors[base+pos+1:base+c.k], c.neighbors[base+pos:base+c.k-1])
	}

	c.distances[base+pos] = distance
	c.neighbors[base+pos] = neighbor
}

// contains reports whether neighbor is already recorded at this exact
// distance in query qi's list. SortDistance ranks a tie at the head of
// its equal run, so the run to scan starts at pos; everything above pos
// is strictly better. Centroid-tree traversals can re-derive the same
// base case through different node pairs; this keeps the re-derivation
// from inserting a duplicate entry.
func (c *CandidateSet) contains(qi int32, pos int, neighbor int32, distance float32) bool {
	base := int(qi) * c.k
	for j := pos; j < c.k; j++ {
		if c.distances[base+j] != distance {
			break
		}
		if c.neighbors[base+j] == neighbor {
			return true
		}
	}

	return false
}
