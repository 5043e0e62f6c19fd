// internal/workers/artisan/rank-artisans/models.go
package rankartisans

import "artisan-workers/internal/models"

type Input struct {
	Candidates []models.Candidate `json:"candidates"`
	Criteria   models.Criteria    `json:"criteria"`
	Pagination models.Pagination  `json:"pagination"`
	Seed       *uint64            `json:"seed,omitempty"`
}

type Output struct {
	Artisans         []models.Candidate `json:"artisans"`
	TotalCount       int                `json:"totalCount"`
	HasRandomPremium bool               `json:"hasRandomPremium"`
	Page             int                `json:"page"`
	PageSize         int                `json:"pageSize"`
	TotalPages       int                `json:"totalPages"`
	Strategy         string             `json:"strategy"`
	RunID            string             `json:"runId"`
	DurationMs       int64              `json:"durationMs"`
}
