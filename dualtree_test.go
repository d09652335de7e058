package dualtree

import (
	"context"
	"math/rand"
	"sort"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dualtree/matrix"
	"github.com/hupe1980/dualtree/metric"
	"github.com/hupe1980/dualtree/neighbor"
	"github.com/hupe1980/dualtree/testutil"
	"github.com/hupe1980/dualtree/tree"
)

func testMatrix(t *testing.T, cols ...[]float32) *matrix.Dense {
	t.Helper()

	m, err := matrix.FromColumns(cols)
	require.NoError(t, err)

	return m
}

func randomMatrix(t *testing.T, dim, n int, seed int64) *matrix.Dense {
	t.Helper()

	rng := rand.New(rand.NewSource(seed))
	data := make([]float32, dim*n)
	for i := range data {
		data[i] = rng.Float32() * 10
	}

	m, err := matrix.FromData(dim, n, data)
	require.NoError(t, err)

	return m
}

func TestSearchSmallExample(t *testing.T) {
	refs := testMatrix(t,
		[]float32{0, 0},
		[]float32{1, 0},
		[]float32{0, 1},
		[]float32{5, 5},
	)
	queries := testMatrix(t, []float32{0, 0})

	for _, mode := range []Mode{ModeDual, ModeSingle, ModeNaive} {
		t.Run(mode.String(), func(t *testing.T) {
			s, err := NewSearcher(refs, WithMode(mode))
			require.NoError(t, err)

			res, err := s.Search(context.Background(), queries, 2)
			require.NoError(t, err)

			assert.Equal(t, []float32{0, 1}, res.Distances[0])
			assert.Equal(t, int32(0), res.Neighbors[0][0])
			assert.Contains(t, []int32{1, 2}, res.Neighbors[0][1])
		})
	}
}

func TestSearchUnderfilledKeepsSentinels(t *testing.T) {
	refs := testMatrix(t, []float32{2, 2})
	queries := testMatrix(t, []float32{2, 2})

	s, err := NewSearcher(refs)
	require.NoError(t, err)

	res, err := s.Search(context.Background(), queries, 3)
	require.NoError(t, err)

	assert.Equal(t, []int32{0, neighbor.InvalidNeighbor, neighbor.InvalidNeighbor}, res.Neighbors[0])
	assert.Equal(t, float32(0), res.Distances[0][0])
	assert.Equal(t, neighbor.Prune, res.Distances[0][1])
	assert.Equal(t, neighbor.Prune, res.Distances[0][2])
}

func TestSearchValidation(t *testing.T) {
	refs := randomMatrix(t, 3, 10, 1)
	s, err := NewSearcher(refs)
	require.NoError(t, err)

	_, err = s.Search(context.Background(), randomMatrix(t, 3, 2, 2), 0)
	assert.ErrorIs(t, err, ErrInvalidK)

	_, err = s.Search(context.Background(), nil, 2)
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, err = s.Search(context.Background(), randomMatrix(t, 5, 2, 3), 2)
	var dimErr *ErrDimensionMismatch
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 3, dimErr.Expected)
	assert.Equal(t, 5, dimErr.Actual)

	_, err = NewSearcher(nil)
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestSearchCancelledContext(t *testing.T) {
	refs := randomMatrix(t, 3, 10, 1)
	s, err := NewSearcher(refs)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Search(ctx, randomMatrix(t, 3, 2, 2), 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func bruteDistances(querySet, refSet *matrix.Dense, m metric.Metric, furthest bool, k int, self bool) [][]float32 {
	out := make([][]float32, querySet.Cols())
	for qi := 0; qi < querySet.Cols(); qi++ {
		var dists []float32
		for ri := 0; ri < refSet.Cols(); ri++ {
			if self && qi == ri {
				continue
			}
			dists = append(dists, m.Evaluate(querySet.Column(qi), refSet.Column(ri)))
		}
		sort.Slice(dists, func(i, j int) bool {
			if furthest {
				return dists[i] > dists[j]
			}
			return dists[i] < dists[j]
		})
		if len(dists) > k {
			dists = dists[:k]
		}
		out[qi] = dists
	}

	return out
}

func TestSearchExactAcrossConfigurations(t *testing.T) {
	refs := randomMatrix(t, 4, 120, 7)
	queries := randomMatrix(t, 4, 30, 8)
	const k = 5

	for _, tk := range []tree.Kind{tree.KindKD, tree.KindCover} {
		for _, mode := range []Mode{ModeDual, ModeSingle} {
			for _, furthest := range []bool{false, true} {
				name := tk.String() + "/" + mode.String()
				if furthest {
					name += "/furthest"
				}
				t.Run(name, func(t *testing.T) {
					opts := []Option{WithTree(tk), WithMode(mode), WithLeafSize(4)}
					if furthest {
						opts = append(opts, WithFurthest())
					}
					s, err := NewSearcher(refs, opts...)
					require.NoError(t, err)

					res, err := s.Search(context.Background(), queries, k)
					require.NoError(t, err)

					want := bruteDistances(queries, refs, metric.Euclidean{}, furthest, k, false)
					for qi := range want {
						assert.InDeltaSlice(t, want[qi], res.Distances[qi], 1e-4, "query %d", qi)
					}
				})
			}
		}
	}
}

func TestSearchExactOnClusteredData(t *testing.T) {
	rng := testutil.NewRNG(17)
	refs := rng.Clustered(3, 200, 5, 100, 1.5)
	queries := rng.Clustered(3, 25, 5, 100, 1.5)
	const k = 4

	for _, tk := range []tree.Kind{tree.KindKD, tree.KindCover} {
		t.Run(tk.String(), func(t *testing.T) {
			s, err := NewSearcher(refs, WithTree(tk), WithLeafSize(8))
			require.NoError(t, err)

			res, err := s.Search(context.Background(), queries, k)
			require.NoError(t, err)

			want := bruteDistances(queries, refs, metric.Euclidean{}, false, k, false)
			for qi := range want {
				assert.InDeltaSlice(t, want[qi], res.Distances[qi], 1e-3, "query %d", qi)
			}
		})
	}
}

func TestSearchSelfExcludesSelfMatch(t *testing.T) {
	// Aliased trees stress the cached-base-case reuse paths far harder
	// than bichromatic search, and more so as the dataset grows.
	refs := randomMatrix(t, 3, 240, 11)
	const k = 3

	want := bruteDistances(refs, refs, metric.Euclidean{}, false, k, true)

	for _, tk := range []tree.Kind{tree.KindKD, tree.KindCover} {
		for _, mode := range []Mode{ModeDual, ModeSingle} {
			t.Run(tk.String()+"/"+mode.String(), func(t *testing.T) {
				s, err := NewSearcher(refs, WithTree(tk), WithMode(mode), WithLeafSize(4))
				require.NoError(t, err)

				res, err := s.SearchSelf(context.Background(), k)
				require.NoError(t, err)

				for qi := 0; qi < refs.Cols(); qi++ {
					assert.NotContains(t, res.Neighbors[qi], int32(qi))
					assert.InDeltaSlice(t, want[qi], res.Distances[qi], 1e-4, "query %d", qi)
				}
			})
		}
	}
}

func TestSearchFurthestIncludesCoincidentPoints(t *testing.T) {
	refs := testMatrix(t,
		[]float32{0, 0},
		[]float32{0, 0},
		[]float32{5, 5},
	)
	queries := testMatrix(t, []float32{0, 0})

	for _, mode := range []Mode{ModeDual, ModeSingle, ModeNaive} {
		t.Run(mode.String(), func(t *testing.T) {
			s, err := NewSearcher(refs, WithFurthest(), WithMode(mode))
			require.NoError(t, err)

			res, err := s.Search(context.Background(), queries, 3)
			require.NoError(t, err)

			// Coincident references fill the zero-distance slots; no
			// sentinel may remain when enough points exist.
			assert.NotContains(t, res.Neighbors[0], neighbor.InvalidNeighbor)
			assert.Equal(t, int32(2), res.Neighbors[0][0])
			assert.Equal(t, []float32{0, 0}, res.Distances[0][1:])
		})
	}
}

func TestSearchParallelMatchesSequential(t *testing.T) {
	refs := randomMatrix(t, 4, 150, 21)
	queries := randomMatrix(t, 4, 40, 22)
	const k = 4

	seq, err := NewSearcher(refs, WithMode(ModeSingle), WithLeafSize(5))
	require.NoError(t, err)
	par, err := NewSearcher(refs, WithMode(ModeSingle), WithLeafSize(5), WithParallelism(4))
	require.NoError(t, err)

	wantRes, err := seq.Search(context.Background(), queries, k)
	require.NoError(t, err)
	gotRes, err := par.Search(context.Background(), queries, k)
	require.NoError(t, err)

	assert.Equal(t, wantRes.Distances, gotRes.Distances)
}

func TestSearchFilterRestrictsCandidates(t *testing.T) {
	refs := testMatrix(t,
		[]float32{0, 0},
		[]float32{1, 0},
		[]float32{0, 1},
		[]float32{5, 5},
	)
	queries := testMatrix(t, []float32{0, 0})

	filter := roaring.New()
	filter.Add(2)
	filter.Add(3)

	s, err := NewSearcher(refs, WithFilter(filter), WithMode(ModeNaive))
	require.NoError(t, err)

	res, err := s.Search(context.Background(), queries, 2)
	require.NoError(t, err)

	assert.Equal(t, []int32{2, 3}, res.Neighbors[0])
}

func TestSearcherReuse(t *testing.T) {
	refs := randomMatrix(t, 3, 50, 31)
	queries := randomMatrix(t, 3, 10, 32)

	s, err := NewSearcher(refs, WithLeafSize(4))
	require.NoError(t, err)

	first, err := s.Search(context.Background(), queries, 3)
	require.NoError(t, err)
	second, err := s.Search(context.Background(), queries, 3)
	require.NoError(t, err)

	assert.Equal(t, first.Distances, second.Distances)
	assert.Equal(t, first.Neighbors, second.Neighbors)
}

func TestFromTreeSearches(t *testing.T) {
	refs := randomMatrix(t, 3, 40, 41)
	queries := randomMatrix(t, 3, 5, 42)

	built, err := NewSearcher(refs, WithLeafSize(4))
	require.NoError(t, err)

	s, err := FromTree(built.Tree())
	require.NoError(t, err)

	res, err := s.Search(context.Background(), queries, 2)
	require.NoError(t, err)

	want := bruteDistances(queries, refs, metric.Euclidean{}, false, 2, false)
	for qi := range want {
		assert.InDeltaSlice(t, want[qi], res.Distances[qi], 1e-4)
	}
}
