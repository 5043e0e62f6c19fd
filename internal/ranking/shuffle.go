package ranking

import (
	"math/rand/v2"

	"artisan-workers/internal/models"
)

// Source draws uniform integers in [0, n). *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// globalSource uses the runtime-seeded top-level generator, which is safe for
// concurrent use.
type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// DefaultSource returns the non-deterministic process-wide source.
func DefaultSource() Source { return globalSource{} }

// SeededSource returns a reproducible source. It is not safe for concurrent use.
func SeededSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Shuffle returns a Fisher-Yates permutation of candidates.
func Shuffle(candidates []models.Candidate, src Source) []models.Candidate {
	out := make([]models.Candidate, len(candidates))
	for i, idx := range permutation(len(candidates), src) {
		out[i] = candidates[idx]
	}
	return out
}

// permutation draws the same sequence Shuffle does, over positions.
func permutation(n int, src Source) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}

// SelectRandom picks count candidates uniformly at random. When there are not
// more than count candidates all of them are returned in shuffled order.
func SelectRandom(premium []models.Candidate, count int, src Source) []models.Candidate {
	picked, _ := SplitRandom(premium, count, src)
	return picked
}

// SplitRandom picks count candidates like SelectRandom and also returns the
// ones left over, in their original order. The split is by position, so
// candidates sharing an ID are kept apart.
func SplitRandom(premium []models.Candidate, count int, src Source) (picked, rest []models.Candidate) {
	perm := permutation(len(premium), src)
	count = max(0, min(count, len(perm)))

	taken := make([]bool, len(premium))
	picked = make([]models.Candidate, 0, count)
	for _, idx := range perm[:count] {
		taken[idx] = true
		picked = append(picked, premium[idx])
	}
	rest = make([]models.Candidate, 0, len(premium)-count)
	for i, c := range premium {
		if !taken[i] {
			rest = append(rest, c)
		}
	}
	return picked, rest
}
