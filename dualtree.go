package dualtree

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/dualtree/matrix"
	"github.com/hupe1980/dualtree/metric"
	"github.com/hupe1980/dualtree/neighbor"
	"github.com/hupe1980/dualtree/traverse"
	"github.com/hupe1980/dualtree/tree"
)

// Result holds the outcome of one search: for each query point, the
// reference ids and distances of its k best candidates, best first.
// Unfilled slots hold neighbor.InvalidNeighbor and the policy's worst
// distance.
type Result struct {
	Neighbors [][]int32
	Distances [][]float32
}

// Searcher executes exact neighbor searches against one reference set.
// Construction builds the spatial tree; Search may then be called any
// number of times. A Searcher is safe for sequential reuse; concurrent
// Search calls must not share one Searcher, since searches mutate the
// tree's per-node bound state.
type Searcher struct {
	refSet  *matrix.Dense
	refTree *tree.Tree
	metric  metric.Metric
	opts    options
}

// NewSearcher builds a searcher (and its reference tree) over refSet.
func NewSearcher(refSet *matrix.Dense, optFns ...Option) (*Searcher, error) {
	opts := applyOptions(optFns)

	if refSet == nil || refSet.Cols() == 0 {
		return nil, ErrEmptyDataset
	}

	m, err := metric.New(opts.metricKind)
	if err != nil {
		return nil, err
	}

	refTree, err := buildTree(refSet, opts)
	if err != nil {
		return nil, err
	}
	opts.logger.LogBuild(context.Background(), refTree.Kind().String(), refSet.Cols(), refTree.NumNodes())

	return &Searcher{
		refSet:  refSet,
		refTree: refTree,
		metric:  m,
		opts:    opts,
	}, nil
}

// FromTree wraps an already-built tree, typically one loaded from a
// snapshot. Tree variant and metric are taken from the tree itself.
func FromTree(refTree *tree.Tree, optFns ...Option) (*Searcher, error) {
	opts := applyOptions(optFns)
	opts.treeKind = refTree.Kind()
	opts.metricKind = refTree.MetricKind()

	if refTree.Dataset().Cols() == 0 {
		return nil, ErrEmptyDataset
	}

	m, err := metric.New(opts.metricKind)
	if err != nil {
		return nil, err
	}

	return &Searcher{
		refSet:  refTree.Dataset(),
		refTree: refTree,
		metric:  m,
		opts:    opts,
	}, nil
}

// Tree returns the reference tree, e.g. for snapshotting.
func (s *Searcher) Tree() *tree.Tree { return s.refTree }

// Search finds the k best neighbors in the reference set for every
// column of querySet.
func (s *Searcher) Search(ctx context.Context, querySet *matrix.Dense, k int) (*Result, error) {
	if err := s.validate(querySet, k); err != nil {
		s.opts.logger.LogSearch(ctx, s.opts.mode.String(), k, 0, 0, err)
		return nil, err
	}

	return s.run(ctx, querySet, k)
}

// SearchSelf finds, for every reference point, its k best neighbors
// among the other reference points. A point never matches itself.
func (s *Searcher) SearchSelf(ctx context.Context, k int) (*Result, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}

	return s.run(ctx, s.refSet, k)
}

func (s *Searcher) validate(querySet *matrix.Dense, k int) error {
	if k <= 0 {
		return ErrInvalidK
	}
	if querySet == nil || querySet.Cols() == 0 {
		return ErrEmptyDataset
	}
	if querySet.Rows() != s.refSet.Rows() {
		return &ErrDimensionMismatch{Expected: s.refSet.Rows(), Actual: querySet.Rows()}
	}

	return nil
}

func (s *Searcher) run(ctx context.Context, querySet *matrix.Dense, k int) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	policy := s.policy()
	candidates := neighbor.NewCandidateSet(policy, k, querySet.Cols())
	s.refTree.ResetStats(policy.WorstDistance())

	var prunes int64
	var err error

	switch s.opts.mode {
	case ModeNaive:
		s.runNaive(querySet, policy, candidates)
	case ModeSingle:
		prunes, err = s.runSingle(ctx, querySet, policy, candidates)
	default:
		prunes, err = s.runDual(querySet, policy, candidates)
	}
	if err != nil {
		s.opts.logger.LogSearch(ctx, s.opts.mode.String(), k, querySet.Cols(), prunes, err)
		return nil, err
	}

	s.opts.logger.LogSearch(ctx, s.opts.mode.String(), k, querySet.Cols(), prunes, nil)

	return assemble(candidates, querySet.Cols()), nil
}

func (s *Searcher) policy() neighbor.Policy {
	if s.opts.furthest {
		return neighbor.Furthest{}
	}

	return neighbor.Nearest{}
}

func (s *Searcher) newRules(querySet *matrix.Dense, policy neighbor.Policy, candidates *neighbor.CandidateSet) *neighbor.Rules {
	return neighbor.NewRules(querySet, s.refSet, s.metric, policy, s.refTree.Traits(), candidates, s.opts.filter)
}

func (s *Searcher) runNaive(querySet *matrix.Dense, policy neighbor.Policy, candidates *neighbor.CandidateSet) {
	rules := s.newRules(querySet, policy, candidates)
	for qi := 0; qi < querySet.Cols(); qi++ {
		for ri := 0; ri < s.refSet.Cols(); ri++ {
			rules.BaseCase(int32(qi), int32(ri))
		}
	}
}

func (s *Searcher) runSingle(ctx context.Context, querySet *matrix.Dense, policy neighbor.Policy, candidates *neighbor.CandidateSet) (int64, error) {
	// Centroid trees cache scoring state on reference nodes, so their
	// single-tree traversals cannot fan out.
	parallelism := s.opts.parallelism
	if s.refTree.Traits().FirstPointIsCentroid {
		parallelism = 1
	}

	if parallelism <= 1 {
		rules := s.newRules(querySet, policy, candidates)
		var prunes int64
		for qi := 0; qi < querySet.Cols(); qi++ {
			if err := ctx.Err(); err != nil {
				return prunes, err
			}
			t := traverse.NewSingle(rules)
			t.Traverse(int32(qi), s.refTree.Root())
			prunes += t.Prunes()
		}
		return prunes, nil
	}

	// Each worker owns its own rules (and so its own base-case memo);
	// candidate list columns are disjoint per query point.
	var prunes int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	counts := make([]int64, querySet.Cols())
	for qi := 0; qi < querySet.Cols(); qi++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rules := s.newRules(querySet, policy, candidates)
			t := traverse.NewSingle(rules)
			t.Traverse(int32(qi), s.refTree.Root())
			counts[qi] = t.Prunes()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	for _, c := range counts {
		prunes += c
	}

	return prunes, nil
}

func (s *Searcher) runDual(querySet *matrix.Dense, policy neighbor.Policy, candidates *neighbor.CandidateSet) (int64, error) {
	queryTree := s.refTree
	if querySet != s.refSet {
		var err error
		queryTree, err = buildTree(querySet, s.opts)
		if err != nil {
			return 0, fmt.Errorf("build query tree: %w", err)
		}
		queryTree.ResetStats(policy.WorstDistance())
	}

	rules := s.newRules(querySet, policy, candidates)
	t := traverse.NewDual(rules)
	t.Traverse(queryTree.Root(), s.refTree.Root())

	return t.Prunes(), nil
}

func buildTree(ds *matrix.Dense, opts options) (*tree.Tree, error) {
	switch opts.treeKind {
	case tree.KindCover:
		return tree.NewCover(ds, opts.metricKind, opts.base)
	default:
		return tree.NewKD(ds, opts.metricKind, opts.leafSize), nil
	}
}

func assemble(candidates *neighbor.CandidateSet, numQueries int) *Result {
	res := &Result{
		Neighbors: make([][]int32, numQueries),
		Distances: make([][]float32, numQueries),
	}
	for qi := 0; qi < numQueries; qi++ {
		res.Neighbors[qi] = slices.Clone(candidates.Neighbors(int32(qi)))
		res.Distances[qi] = slices.Clone(candidates.Distances(int32(qi)))
	}

	return res
}
