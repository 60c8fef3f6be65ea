// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"math"
	"slices"
)

// Vector is an L2-normalized vector in the run's shared embedding space.
// Dimensions are stored sparsely (sorted index/weight pairs) so the same
// representation serves dense semantic embeddings and sparse TF-IDF rows.
type Vector struct {
	Idx []int32
	Val []float32
}

// Dot returns the inner product of two vectors. Both sides are produced
// L2-normalized, so this is their cosine similarity.
func Dot(a, b Vector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.Idx) && j < len(b.Idx) {
		switch {
		case a.Idx[i] == b.Idx[j]:
			sum += float64(a.Val[i]) * float64(b.Val[j])
			i++
			j++
		case a.Idx[i] < b.Idx[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// IsZero reports whether the vector has no non-zero dimension.
func (v Vector) IsZero() bool { return len(v.Idx) == 0 }

// dense wraps a dense float32 slice as a Vector, normalizing it to unit
// length. A zero-norm input yields the zero vector.
func dense(values []float32) Vector {
	var norm float64
	for _, v := range values {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return Vector{}
	}
	inv := float32(1 / math.Sqrt(norm))

	idx := make([]int32, len(values))
	val := make([]float32, len(values))
	for i, v := range values {
		idx[i] = int32(i)
		val[i] = v * inv
	}
	return Vector{Idx: idx, Val: val}
}

// sparse builds a normalized Vector from dimension weights.
func sparse(weights map[int32]float64) Vector {
	if len(weights) == 0 {
		return Vector{}
	}
	var norm float64
	for _, w := range weights {
		norm += w * w
	}
	if norm == 0 {
		return Vector{}
	}
	inv := 1 / math.Sqrt(norm)

	idx := make([]int32, 0, len(weights))
	for i := range weights {
		idx = append(idx, i)
	}
	slices.Sort(idx)

	val := make([]float32, len(idx))
	for i, d := range idx {
		val[i] = float32(weights[d] * inv)
	}
	return Vector{Idx: idx, Val: val}
}
