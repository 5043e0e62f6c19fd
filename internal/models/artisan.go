// internal/models/artisan.go
package models

import (
	"encoding/json"
	"strings"
	"time"
)

// GeoPoint is a latitude/longitude pair in decimal degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LocationPoint is a resolved place picked by the user (secteur).
type LocationPoint struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Candidate is an artisan profile as fetched from storage.
type Candidate struct {
	ID                   string        `json:"id"`
	CompanyName          string        `json:"companyName"`
	FirstName            string        `json:"firstName,omitempty"`
	LastName             string        `json:"lastName,omitempty"`
	Profession           string        `json:"profession"`
	SecondaryProfessions []string      `json:"secondaryProfessions,omitempty"`
	Description          string        `json:"description,omitempty"`
	City                 string        `json:"city,omitempty"`
	Coordinates          *GeoPoint     `json:"coordinates,omitempty"`
	AverageRating        float64       `json:"averageRating"`
	ReviewCount          int           `json:"reviewCount"`
	Visible              *bool         `json:"visible,omitempty"`
	Premium              PremiumStatus `json:"premium"`
	Distance             *float64      `json:"distance,omitempty"`
}

// IsVisible reports whether the profile may be shown. Absent flag means visible.
func (c Candidate) IsVisible() bool {
	return c.Visible == nil || *c.Visible
}

// DisplayName prefers the company name over the person name.
func (c Candidate) DisplayName() string {
	if c.CompanyName != "" {
		return c.CompanyName
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// WithDistance returns a copy annotated with the given distance in km.
func (c Candidate) WithDistance(km float64) Candidate {
	c.Distance = &km
	return c
}

// PremiumKind tags the variants of PremiumStatus.
type PremiumKind int

const (
	NotPremium PremiumKind = iota
	PremiumIndefinite
	PremiumUntil
)

func (k PremiumKind) String() string {
	switch k {
	case PremiumIndefinite:
		return "indefinite"
	case PremiumUntil:
		return "until"
	default:
		return "none"
	}
}

// PremiumStatus is the subscription state of an artisan. Until is only
// meaningful for the PremiumUntil kind.
type PremiumStatus struct {
	Kind  PremiumKind
	Until time.Time
}

func NoPremium() PremiumStatus { return PremiumStatus{Kind: NotPremium} }

func IndefinitePremium() PremiumStatus { return PremiumStatus{Kind: PremiumIndefinite} }

func PremiumEndingAt(t time.Time) PremiumStatus {
	return PremiumStatus{Kind: PremiumUntil, Until: t}
}

// PremiumFromBlock builds a status out of the stored subscription block.
// A nil end date on an active block means the subscription never ends.
func PremiumFromBlock(active bool, endDate *time.Time) PremiumStatus {
	switch {
	case !active:
		return NoPremium()
	case endDate == nil:
		return IndefinitePremium()
	default:
		return PremiumEndingAt(*endDate)
	}
}

// ActiveAt reports whether the subscription is in effect at now. The end
// timestamp must be strictly after now.
func (p PremiumStatus) ActiveAt(now time.Time) bool {
	switch p.Kind {
	case PremiumIndefinite:
		return true
	case PremiumUntil:
		return p.Until.After(now)
	default:
		return false
	}
}

// premiumBlock is the wire shape: {"active": true, "endDate": "..."}.
type premiumBlock struct {
	Active  bool       `json:"active"`
	EndDate *time.Time `json:"endDate,omitempty"`
}

func (p PremiumStatus) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PremiumIndefinite:
		return json.Marshal(premiumBlock{Active: true})
	case PremiumUntil:
		until := p.Until
		return json.Marshal(premiumBlock{Active: true, EndDate: &until})
	default:
		return []byte("null"), nil
	}
}

func (p *PremiumStatus) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = NoPremium()
		return nil
	}
	var block premiumBlock
	if err := json.Unmarshal(data, &block); err != nil {
		return err
	}
	*p = PremiumFromBlock(block.Active, block.EndDate)
	return nil
}

// Criteria holds the search filters of one request.
type Criteria struct {
	LocationSearch     string         `json:"locationSearch,omitempty"`
	SelectedLocation   *LocationPoint `json:"selectedLocation,omitempty"`
	PrestationSearch   string         `json:"prestationSearch,omitempty"`
	SelectedPrestation string         `json:"selectedPrestation,omitempty"`
}

// HasLocation reports whether any location dimension is active.
func (c Criteria) HasLocation() bool {
	return c.SelectedLocation != nil || strings.TrimSpace(c.LocationSearch) != ""
}

// CityTerm is the normalized free-text location.
func (c Criteria) CityTerm() string {
	return strings.ToLower(strings.TrimSpace(c.LocationSearch))
}

// ServiceTerm is the normalized service filter. The resolved prestation wins
// over the free-text search.
func (c Criteria) ServiceTerm() string {
	if s := strings.TrimSpace(c.SelectedPrestation); s != "" {
		return strings.ToLower(s)
	}
	return strings.ToLower(strings.TrimSpace(c.PrestationSearch))
}

// HasService reports whether a service dimension is active.
func (c Criteria) HasService() bool {
	return c.ServiceTerm() != ""
}

type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// Result is one page of ranked artisans.
type Result struct {
	Artisans         []Candidate `json:"artisans"`
	TotalCount       int         `json:"totalCount"`
	HasRandomPremium bool        `json:"hasRandomPremium"`
	FeaturedCount    int         `json:"featuredCount"`
	Strategy         string      `json:"strategy"`
}

// Stats is the read-only introspection of a candidate set.
type Stats struct {
	TotalCandidates int `json:"totalCandidates"`
	FilteredCount   int `json:"filteredCount"`
	PremiumCount    int `json:"premiumCount"`
	StandardCount   int `json:"standardCount"`
}
