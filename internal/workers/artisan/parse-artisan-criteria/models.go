// internal/workers/artisan/parse-artisan-criteria/models.go
package parseartisancriteria

import "artisan-workers/internal/models"

type Input struct {
	RawCriteria map[string]interface{} `json:"rawCriteria"`
}

// rawCriteria is the validated request shape before normalization.
type rawCriteria struct {
	LocationSearch     string                `json:"locationSearch"`
	SelectedLocation   *models.LocationPoint `json:"selectedLocation"`
	PrestationSearch   string                `json:"prestationSearch"`
	SelectedPrestation string                `json:"selectedPrestation"`
	Page               int                   `json:"page"`
	PageSize           int                   `json:"pageSize"`
	Seed               *uint64               `json:"seed"`
}

type Output struct {
	Criteria   models.Criteria   `json:"criteria"`
	Pagination models.Pagination `json:"pagination"`
	Seed       *uint64           `json:"seed,omitempty"`
	// ResolvedPrestation is true when the free-text prestation was mapped
	// through the service catalog.
	ResolvedPrestation bool `json:"resolvedPrestation"`
}

const criteriaSchema = `{
  "type": "object",
  "properties": {
    "locationSearch":     {"type": "string", "maxLength": 200},
    "prestationSearch":   {"type": "string", "maxLength": 200},
    "selectedPrestation": {"type": "string", "maxLength": 200},
    "selectedLocation": {
      "type": ["object", "null"],
      "properties": {
        "name": {"type": "string"},
        "lat":  {"type": "number", "minimum": -90,  "maximum": 90},
        "lng":  {"type": "number", "minimum": -180, "maximum": 180}
      },
      "required": ["lat", "lng"]
    },
    "page":     {"type": "integer", "minimum": 1, "maximum": 10000},
    "pageSize": {"type": "integer", "minimum": 1},
    "seed":     {"type": "integer", "minimum": 0}
  }
}`
