// internal/workers/artisan/query-artisans/models.go
package queryartisans

import "artisan-workers/internal/models"

type Input struct {
	// Limit lowers the configured candidate limit for this job. Zero keeps it.
	Limit int `json:"limit,omitempty"`
}

type Output struct {
	Candidates     []models.Candidate `json:"candidates"`
	CandidateCount int                `json:"candidateCount"`
	Source         string             `json:"source"`
	Cached         bool               `json:"cached"`
	QueryTimeMs    int64              `json:"queryTimeMs"`
}
