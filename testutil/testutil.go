package testutil

import (
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// PixelVectors generates num vectors of 8-bit samples stored as int32.
// Uses a single backing array for efficiency.
func (r *RNG) PixelVectors(num, dimensions int) [][]int32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]int32, num*dimensions)
	vectors := make([][]int32, num)
	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = int32(r.rand.Intn(256))
		}
		vectors[i] = vec
	}
	return vectors
}

// FloatVectors generates num vectors with values in [0, 256).
func (r *RNG) FloatVectors(num, dimensions int) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dimensions)
	vectors := make([][]float64, num)
	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.Float64() * 256
		}
		vectors[i] = vec
	}
	return vectors
}

// Float64s converts integer vectors to float64 vectors.
func Float64s(vs [][]int32) [][]float64 {
	out := make([][]float64, len(vs))
	for i, v := range vs {
		out[i] = make([]float64, len(v))
		for j, x := range v {
			out[i][j] = float64(x)
		}
	}
	return out
}

// ExactBest is a naive reference: for each image, the lowest index of the tiles
// with minimal squared difference. Samples are widened to int64, so results are
// exact for 8-bit pixel data. Returns 0 for an empty library.
func ExactBest(images, tiles [][]int32) []int {
	out := make([]int, len(images))
	for i, img := range images {
		best := int64(-1)
		for j, tile := range tiles {
			var sum int64
			for k := range img {
				d := int64(img[k]) - int64(tile[k])
				sum += d * d
			}
			if best < 0 || sum < best {
				best = sum
				out[i] = j
			}
		}
	}
	return out
}

// DuplicateTiles returns tiles with every tile repeated n times in a row,
// producing exact ties at known positions.
func DuplicateTiles[T any](tiles [][]T, n int) [][]T {
	out := make([][]T, 0, len(tiles)*n)
	for _, t := range tiles {
		for range n {
			out = append(out, t)
		}
	}
	return out
}
