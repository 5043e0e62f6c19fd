package ranking

import (
	"time"

	"artisan-workers/internal/models"
)

// SplitByTier partitions candidates into premium-active and standard,
// preserving input order in both buckets.
func SplitByTier(candidates []models.Candidate, now time.Time) (premium, standard []models.Candidate) {
	premium = make([]models.Candidate, 0)
	standard = make([]models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Premium.ActiveAt(now) {
			premium = append(premium, c)
		} else {
			standard = append(standard, c)
		}
	}
	return premium, standard
}
