package ranking

import (
	"cmp"
	"slices"

	"artisan-workers/internal/models"
)

// Strategy names the ordering applied by SortCandidates.
type Strategy string

const (
	StrategyRelevance Strategy = "relevance"
	StrategyRandom    Strategy = "random"
	StrategyDistance  Strategy = "distance"
	StrategyRating    Strategy = "rating"
)

// Relevance weights.
const (
	professionWeight  = 10.0
	secondaryWeight   = 5.0
	descriptionWeight = 2.0
)

// StrategyFor picks the ordering policy for the active criteria.
func StrategyFor(criteria models.Criteria) Strategy {
	switch {
	case !criteria.HasLocation() && criteria.HasService():
		return StrategyRelevance
	case !criteria.HasLocation():
		return StrategyRandom
	case criteria.SelectedLocation != nil:
		return StrategyDistance
	default:
		return StrategyRating
	}
}

// SortCandidates returns a new ordering of candidates for the criteria.
func SortCandidates(candidates []models.Candidate, criteria models.Criteria, src Source) []models.Candidate {
	return sortWith(candidates, StrategyFor(criteria), criteria.ServiceTerm(), src)
}

func sortWith(candidates []models.Candidate, strategy Strategy, term string, src Source) []models.Candidate {
	switch strategy {
	case StrategyRandom:
		return Shuffle(candidates, src)
	case StrategyRelevance:
		return sortByRelevance(candidates, term)
	}

	out := slices.Clone(candidates)
	if strategy == StrategyDistance {
		slices.SortStableFunc(out, compareByDistance)
	} else {
		slices.SortStableFunc(out, compareByRating)
	}
	return out
}

type scored struct {
	candidate models.Candidate
	score     float64
}

func sortByRelevance(candidates []models.Candidate, term string) []models.Candidate {
	ranked := make([]scored, len(candidates))
	for i, c := range candidates {
		ranked[i] = scored{candidate: c, score: RelevanceScore(c, term)}
	}
	slices.SortStableFunc(ranked, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})
	out := make([]models.Candidate, len(ranked))
	for i, r := range ranked {
		out[i] = r.candidate
	}
	return out
}

// RelevanceScore adds the keyword weights that match and the average rating.
// term must be lower-cased.
func RelevanceScore(c models.Candidate, term string) float64 {
	score := 0.0
	if containsFold(c.Profession, term) {
		score += professionWeight
	}
	if anyContainsFold(c.SecondaryProfessions, term) {
		score += secondaryWeight
	}
	if containsFold(c.Description, term) {
		score += descriptionWeight
	}
	return score + c.AverageRating
}

// compareByDistance falls back to rating whenever either distance is nil. The
// ordering is not transitive when defined and nil distances mix, so only the
// result being a permutation is guaranteed then.
func compareByDistance(a, b models.Candidate) int {
	if a.Distance != nil && b.Distance != nil && *a.Distance != *b.Distance {
		return cmp.Compare(*a.Distance, *b.Distance)
	}
	return cmp.Compare(b.AverageRating, a.AverageRating)
}

func compareByRating(a, b models.Candidate) int {
	if c := cmp.Compare(b.AverageRating, a.AverageRating); c != 0 {
		return c
	}
	return cmp.Compare(b.ReviewCount, a.ReviewCount)
}
