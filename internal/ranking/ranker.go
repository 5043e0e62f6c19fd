// Package ranking selects and orders the artisans shown on a search results
// page. A run filters the candidate set, splits it into premium and standard
// tiers, features a few random premium profiles, sorts the rest and slices
// the requested page. Nothing is kept between runs.
package ranking

import (
	"context"
	"fmt"
	"time"

	"artisan-workers/internal/models"
)

const (
	// DefaultFeaturedPremium is the size of the random premium head.
	DefaultFeaturedPremium = 2
	DefaultPageSize        = 10
)

// PaginationMode controls how the assembled list relates to the page.
type PaginationMode string

const (
	// PaginateFullList ranks every filtered candidate once and slices the page
	// out of that list.
	PaginateFullList PaginationMode = "full"
	// PaginateCapped caps the assembled list at one page before slicing, so
	// only page 1 is ever non-empty for a given run.
	PaginateCapped PaginationMode = "capped"
)

// ParsePaginationMode accepts "full" or "capped"; anything else is an error.
func ParsePaginationMode(s string) (PaginationMode, error) {
	switch PaginationMode(s) {
	case PaginateFullList, "":
		return PaginateFullList, nil
	case PaginateCapped:
		return PaginateCapped, nil
	default:
		return "", fmt.Errorf("unknown pagination mode %q", s)
	}
}

type Options struct {
	RadiusKm        float64
	FeaturedPremium int
	Mode            PaginationMode
	Geo             DistanceFilter
	Source          Source
	Now             func() time.Time
}

// Ranker runs the selection pipeline. It is safe for concurrent use as long
// as its Source and DistanceFilter are.
type Ranker struct {
	radiusKm float64
	featured int
	mode     PaginationMode
	geo      DistanceFilter
	source   Source
	now      func() time.Time
}

func NewRanker(opts Options) *Ranker {
	r := &Ranker{
		radiusKm: opts.RadiusKm,
		featured: opts.FeaturedPremium,
		mode:     opts.Mode,
		geo:      opts.Geo,
		source:   opts.Source,
		now:      opts.Now,
	}
	if r.radiusKm <= 0 {
		r.radiusKm = DefaultRadiusKm
	}
	if r.featured <= 0 {
		r.featured = DefaultFeaturedPremium
	}
	if r.mode == "" {
		r.mode = PaginateFullList
	}
	if r.geo == nil {
		r.geo = HaversineFilter{}
	}
	if r.source == nil {
		r.source = DefaultSource()
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Request is one ranking call. Seed, when set, replaces the ranker's random
// source so that every page of a session sees the same shuffles.
type Request struct {
	Candidates []models.Candidate
	Criteria   models.Criteria
	Page       int
	PageSize   int
	Seed       *uint64
}

// Rank returns the requested page. TotalCount is the number of candidates
// that passed filtering, regardless of the page.
func (r *Ranker) Rank(ctx context.Context, req Request) (models.Result, error) {
	page, pageSize := req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	filtered, err := ApplyFilters(ctx, req.Candidates, req.Criteria, r.geo, r.radiusKm)
	if err != nil {
		return models.Result{}, err
	}

	premium, standard := SplitByTier(filtered, r.now())

	src := r.source
	if req.Seed != nil {
		src = SeededSource(*req.Seed)
	}

	featured, rest := SplitRandom(premium, r.featured, src)
	strategy := StrategyFor(req.Criteria)
	term := req.Criteria.ServiceTerm()
	remaining := sortWith(rest, strategy, term, src)
	sortedStandard := sortWith(standard, strategy, term, src)

	limit := 0
	if r.mode == PaginateCapped {
		limit = pageSize
	}
	list := Assemble(featured, remaining, sortedStandard, limit)

	return models.Result{
		Artisans:         Paginate(list, page, pageSize),
		TotalCount:       len(filtered),
		HasRandomPremium: len(featured) > 0,
		FeaturedCount:    len(featured),
		Strategy:         string(strategy),
	}, nil
}

// Stats filters and splits the candidates without ranking them.
func (r *Ranker) Stats(ctx context.Context, candidates []models.Candidate, criteria models.Criteria) (models.Stats, error) {
	filtered, err := ApplyFilters(ctx, candidates, criteria, r.geo, r.radiusKm)
	if err != nil {
		return models.Stats{}, err
	}
	premium, standard := SplitByTier(filtered, r.now())
	return models.Stats{
		TotalCandidates: len(candidates),
		FilteredCount:   len(filtered),
		PremiumCount:    len(premium),
		StandardCount:   len(standard),
	}, nil
}
