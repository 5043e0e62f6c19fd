package ranking

import "artisan-workers/internal/models"

// Assemble concatenates the featured premium head, the remaining premium
// candidates and the standard candidates. A positive limit caps the result;
// limit <= 0 keeps everything.
func Assemble(randomPremium, remainingPremium, standard []models.Candidate, limit int) []models.Candidate {
	if limit > 0 && len(randomPremium) >= limit {
		return append([]models.Candidate(nil), randomPremium[:limit]...)
	}

	out := make([]models.Candidate, 0, len(randomPremium)+len(remainingPremium)+len(standard))
	out = append(out, randomPremium...)
	out = append(out, remainingPremium...)
	out = append(out, standard...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Paginate slices the 1-based page out of list. Out of range pages are empty.
func Paginate(list []models.Candidate, page, pageSize int) []models.Candidate {
	if page < 1 || pageSize < 1 {
		return []models.Candidate{}
	}
	if page-1 >= TotalPages(len(list), pageSize) {
		return []models.Candidate{}
	}
	start := (page - 1) * pageSize
	end := len(list)
	if pageSize < end-start {
		end = start + pageSize
	}
	return list[start:end]
}

// TotalPages is ceil(total / pageSize).
func TotalPages(total, pageSize int) int {
	if pageSize < 1 || total <= 0 {
		return 0
	}
	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}
	return pages
}
