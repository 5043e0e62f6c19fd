package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "type": "object",
  "properties": {
    "page": {"type": "integer", "minimum": 1},
    "point": {
      "type": "object",
      "properties": {
        "lat": {"type": "number", "minimum": -90, "maximum": 90},
        "lng": {"type": "number"}
      },
      "required": ["lat", "lng"]
    }
  }
}`

func TestSchema_ValidateInput(t *testing.T) {
	s := MustCompile(testSchema)

	tests := []struct {
		name       string
		input      map[string]interface{}
		valid      bool
		errorField string
	}{
		{"empty document", map[string]interface{}{}, true, ""},
		{"valid point", map[string]interface{}{"point": map[string]interface{}{"lat": 45.0, "lng": 4.8}}, true, ""},
		{"page below minimum", map[string]interface{}{"page": float64(0)}, false, "page"},
		{"latitude out of range", map[string]interface{}{"point": map[string]interface{}{"lat": 95.0, "lng": 4.8}}, false, "point.lat"},
		{"missing longitude", map[string]interface{}{"point": map[string]interface{}{"lat": 45.0}}, false, "point.lng"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.ValidateInput(tt.input)
			require.NoError(t, err)

			assert.Equal(t, tt.valid, result.Valid)
			if tt.valid {
				assert.Empty(t, result.Errors)
				return
			}
			require.NotEmpty(t, result.Errors)
			assert.True(t, result.HasErrors(tt.errorField), "errors: %v", result.GetErrorMessages())
			assert.NotEmpty(t, result.GetErrorsForField(tt.errorField)[0].Code)
		})
	}
}

func TestSchema_GetErrorsForField_Nested(t *testing.T) {
	result, err := MustCompile(testSchema).ValidateInput(map[string]interface{}{
		"page":  float64(0),
		"point": map[string]interface{}{"lat": 95.0},
	})
	require.NoError(t, err)

	assert.Len(t, result.GetErrorsForField("point"), 2)
	assert.Len(t, result.GetErrorsForField("page"), 1)
	assert.Len(t, result.GetErrorMessages(), 3)
}

func TestCompile_Invalid(t *testing.T) {
	_, err := Compile(`{"type": 42}`)
	assert.Error(t, err)

	_, err = CompileGo(map[string]interface{}{"type": "object", "minProperties": "x"})
	assert.Error(t, err)

	assert.Panics(t, func() { MustCompile(`not json`) })
}

func TestValidateTaskTypeNaming(t *testing.T) {
	for _, ok := range []string{"rank-artisans", "artisan-stats", "parse-artisan-criteria"} {
		assert.NoError(t, ValidateTaskTypeNaming(ok), ok)
	}
	for _, bad := range []string{"", "Rank-Artisans", "rank_artisans", "rank--artisans", "-rank", "user.account.create"} {
		assert.Error(t, ValidateTaskTypeNaming(bad), bad)
	}
}
