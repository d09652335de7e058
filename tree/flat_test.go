package tree

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dualtree/metric"
)

func assertTreesEqual(t *testing.T, want, got *Tree) {
	t.Helper()

	require.Equal(t, want.NumNodes(), got.NumNodes())
	require.Equal(t, want.Kind(), got.Kind())
	require.Equal(t, want.Traits(), got.Traits())
	require.Equal(t, want.Dataset().Data(), got.Dataset().Data())

	for i := 0; i < want.NumNodes(); i++ {
		a, b := want.NodeByID(int32(i)), got.NodeByID(int32(i))
		assert.Equal(t, a.points, b.points)
		assert.Equal(t, a.furthestDescendant, b.furthestDescendant)
		assert.Equal(t, a.NumChildren(), b.NumChildren())
		for c := 0; c < a.NumChildren(); c++ {
			assert.Equal(t, a.Child(c).ID(), b.Child(c).ID())
		}
		if a.parent == nil {
			assert.Nil(t, b.parent)
		} else {
			assert.Equal(t, a.parent.id, b.parent.id)
		}
		if want.Kind() == KindKD {
			assert.Equal(t, a.rect.Min(), b.rect.Min())
			assert.Equal(t, a.rect.Max(), b.rect.Max())
		}
	}
}

func TestFlattenRoundTripKD(t *testing.T) {
	ds := randomDataset(t, 3, 80, 11)
	tr := NewKD(ds, metric.KindEuclidean, 6)

	got, err := FromFlat(tr.Flatten())
	require.NoError(t, err)

	assertTreesEqual(t, tr, got)
}

func TestFlattenRoundTripCover(t *testing.T) {
	ds := randomDataset(t, 3, 80, 12)
	tr, err := NewCover(ds, metric.KindEuclidean, 0)
	require.NoError(t, err)

	got, err := FromFlat(tr.Flatten())
	require.NoError(t, err)

	assertTreesEqual(t, tr, got)
}

func TestFlatGobRoundTrip(t *testing.T) {
	ds := randomDataset(t, 2, 40, 13)
	tr := NewKD(ds, metric.KindEuclidean, 4)

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(tr.Flatten()))

	var f Flat
	require.NoError(t, gob.NewDecoder(&buf).Decode(&f))

	got, err := FromFlat(&f)
	require.NoError(t, err)

	assertTreesEqual(t, tr, got)
}

func TestFromFlatRejectsCorruptStructure(t *testing.T) {
	ds := randomDataset(t, 2, 20, 14)
	f := NewKD(ds, metric.KindEuclidean, 4).Flatten()
	f.Parent[1] = 99

	_, err := FromFlat(f)
	require.Error(t, err)
}
