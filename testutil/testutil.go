package testutil

import (
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/hupe1980/dualtree/matrix"
)

// RNG is a seeded, thread-safe random source for deterministic tests.
type RNG struct {
	mu   sync.Mutex
	rand *rand.Rand
	seed uint64
}

// NewRNG creates an RNG with the given seed.
func NewRNG(seed uint64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewPCG(seed, seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() uint64 { return r.seed }

// Reset rewinds the RNG to its initial state.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewPCG(r.seed, r.seed))
}

// IntN returns a pseudo-random number in [0, n).
func (r *RNG) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.rand.IntN(n)
}

// Float32 returns a pseudo-random number in [0, 1).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.rand.Float32()
}

// Uniform generates n points of the given dimension with coordinates
// uniform in [0, scale).
func (r *RNG) Uniform(dim, n int, scale float32) *matrix.Dense {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, dim*n)
	for i := range data {
		data[i] = r.rand.Float32() * scale
	}

	m, err := matrix.FromData(dim, n, data)
	if err != nil {
		panic(err)
	}

	return m
}

// Clustered generates n points of the given dimension drawn from
// numClusters Gaussian blobs. Cluster centers are uniform in
// [0, spread) per coordinate; each blob has the given standard
// deviation. Useful for exercising pruning, since far-apart blobs make
// most of the tree skippable.
func (r *RNG) Clustered(dim, n, numClusters int, spread, sigma float64) *matrix.Dense {
	r.mu.Lock()
	defer r.mu.Unlock()

	centers := make([][]float64, numClusters)
	for c := range centers {
		centers[c] = make([]float64, dim)
		for d := 0; d < dim; d++ {
			centers[c][d] = r.rand.Float64() * spread
		}
	}

	noise := distuv.Normal{Mu: 0, Sigma: sigma, Src: r.rand}

	data := make([]float32, 0, dim*n)
	for i := 0; i < n; i++ {
		center := centers[i%numClusters]
		for d := 0; d < dim; d++ {
			data = append(data, float32(center[d]+noise.Rand()))
		}
	}

	m, err := matrix.FromData(dim, n, data)
	if err != nil {
		panic(err)
	}

	return m
}
