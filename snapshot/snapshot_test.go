package snapshot

import (
	"bytes"
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dualtree/matrix"
	"github.com/hupe1980/dualtree/metric"
	"github.com/hupe1980/dualtree/store"
	"github.com/hupe1980/dualtree/tree"
)

func buildTree(t *testing.T, kind tree.Kind, n int) *tree.Tree {
	t.Helper()

	rng := rand.New(rand.NewSource(3))
	data := make([]float32, 3*n)
	for i := range data {
		data[i] = rng.Float32() * 10
	}

	ds, err := matrix.FromData(3, n, data)
	require.NoError(t, err)

	switch kind {
	case tree.KindCover:
		ct, err := tree.NewCover(ds, metric.KindEuclidean, 0)
		require.NoError(t, err)
		return ct
	default:
		return tree.NewKD(ds, metric.KindEuclidean, 5)
	}
}

func assertSameTree(t *testing.T, want, got *tree.Tree) {
	t.Helper()

	assert.Equal(t, want.Kind(), got.Kind())
	assert.Equal(t, want.MetricKind(), got.MetricKind())
	assert.Equal(t, want.NumNodes(), got.NumNodes())
	assert.Equal(t, want.Dataset().Data(), got.Dataset().Data())

	for i := 0; i < want.NumNodes(); i++ {
		wn, gn := want.NodeByID(int32(i)), got.NodeByID(int32(i))
		assert.Equal(t, wn.NumPoints(), gn.NumPoints())
		assert.Equal(t, wn.NumChildren(), gn.NumChildren())
		assert.Equal(t, wn.FurthestDescendantDistance(), gn.FurthestDescendantDistance())
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	for _, kind := range []tree.Kind{tree.KindKD, tree.KindCover} {
		for _, c := range []Compression{CompressionNone, CompressionZstd, CompressionLZ4} {
			built := buildTree(t, kind, 40)

			var buf bytes.Buffer
			require.NoError(t, Write(&buf, built, c))

			loaded, err := Read(&buf)
			require.NoError(t, err)

			assertSameTree(t, built, loaded)
		}
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte("not a snapshot")))
	assert.ErrorIs(t, err, ErrBadMagic)

	_, err = Read(bytes.NewReader([]byte{'d', 't'}))
	assert.Error(t, err)

	_, err = Read(bytes.NewReader([]byte{'d', 't', 's', 'n', 99, 0}))
	assert.ErrorIs(t, err, ErrBadVersion)
}

func TestSaveLoadThroughStore(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	built := buildTree(t, tree.KindKD, 60)

	require.NoError(t, Save(ctx, st, "trees/main", built, CompressionZstd))

	names, err := st.List(ctx, "trees/")
	require.NoError(t, err)
	assert.Equal(t, []string{"trees/main"}, names)

	loaded, err := Load(ctx, st, "trees/main")
	require.NoError(t, err)

	assertSameTree(t, built, loaded)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(context.Background(), store.NewMemory(), "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
