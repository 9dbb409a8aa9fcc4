// Package selection implements the deterministic daily word selection: a date
// string hashes to a seed, the seed drives a Park–Miller generator, and the
// generator drives a Fisher-Yates shuffle over the candidate pool.
package selection

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Shuffle returns the indices 0..n-1 permuted by a Fisher-Yates shuffle driven
// by a generator seeded with seed.
func Shuffle(n int, seed uint32) []int {
	if n <= 0 {
		return []int{}
	}
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	rng := NewGenerator(seed)
	for i := n - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		indices[i], indices[j] = indices[j], indices[i]
	}
	return indices
}

// Sample picks up to count candidates in shuffle order, skipping any candidate
// whose lowercased key has already been picked. Keys are lowercased with the
// full Unicode mapping, so "İ" becomes "i̇" and does not collide with "i".
//
// The result never holds more than count entries nor more than the number of
// distinct keys. An empty pool or a non-positive count yields an empty slice.
// For a fixed seed and an unchanged candidate slice the result is always the
// same.
func Sample[T any](candidates []T, count int, seed uint32, key func(T) string) []T {
	result := make([]T, 0, min(max(count, 0), len(candidates)))
	if count <= 0 || len(candidates) == 0 {
		return result
	}

	fold := cases.Lower(language.Und)
	seen := make(map[string]struct{}, cap(result))
	for _, idx := range Shuffle(len(candidates), seed) {
		if len(result) >= count {
			break
		}
		c := candidates[idx]
		k := fold.String(key(c))
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		result = append(result, c)
	}
	return result
}
