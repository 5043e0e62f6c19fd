// internal/workers/artisan/artisan-stats/models.go
package artisanstats

import "artisan-workers/internal/models"

type Input struct {
	Candidates []models.Candidate `json:"candidates"`
	Criteria   models.Criteria    `json:"criteria"`
}

type Output struct {
	models.Stats
	Strategy string `json:"strategy"`
}
