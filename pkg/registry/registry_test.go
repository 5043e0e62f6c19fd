package registry_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artisan-workers/internal/common/errors"
	artisanstats "artisan-workers/internal/workers/artisan/artisan-stats"
	parseartisancriteria "artisan-workers/internal/workers/artisan/parse-artisan-criteria"
	queryartisans "artisan-workers/internal/workers/artisan/query-artisans"
	rankartisans "artisan-workers/internal/workers/artisan/rank-artisans"
	"artisan-workers/pkg/registry"
)

func knownCodes() []string {
	codes := make([]string, 0, len(errors.BPMNErrorMapping))
	for _, bpmn := range errors.BPMNErrorMapping {
		codes = append(codes, bpmn)
	}
	return codes
}

func validActivity(id string) registry.Activity {
	return registry.Activity{
		ID:                   id,
		DisplayName:          "Display " + id,
		Category:             "artisan",
		TaskType:             id,
		ImplementationStatus: "completed",
		ErrorCodes:           []string{"PARSE_ERROR"},
		Timeout:              "5s",
	}
}

// ==========================
// Shipped Registry
// ==========================

func TestShippedRegistry(t *testing.T) {
	reg, err := registry.LoadRegistry(filepath.Join("..", "..", registry.DefaultPath))
	require.NoError(t, err)

	require.NoError(t, reg.Validate(knownCodes()))

	for _, taskType := range []string{
		parseartisancriteria.TaskType,
		queryartisans.TaskType,
		rankartisans.TaskType,
		artisanstats.TaskType,
	} {
		t.Run(taskType, func(t *testing.T) {
			a, ok := reg.Find(taskType)
			require.True(t, ok, "every worker is registered")

			maxRetries := 0
			for _, code := range a.ErrorCodes {
				maxRetries = max(maxRetries, errors.GetRetryCount(errors.ErrorCode(code)))
			}
			assert.Equal(t, maxRetries, a.Retries, "declared retries follow the error mapping")
		})
	}
	assert.Len(t, reg.Activities, 4)
}

// ==========================
// Validation
// ==========================

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *registry.ActivityRegistry)
		wantErr string
	}{
		{"valid", func(*registry.ActivityRegistry) {}, ""},
		{"empty", func(r *registry.ActivityRegistry) { r.Activities = nil }, "no activities"},
		{"duplicate id", func(r *registry.ActivityRegistry) {
			r.Activities = append(r.Activities, validActivity("a"))
		}, "duplicate activity ID"},
		{"duplicate task type", func(r *registry.ActivityRegistry) {
			dup := validActivity("c")
			dup.TaskType = "a"
			r.Activities = append(r.Activities, dup)
		}, "duplicate task type"},
		{"missing display name", func(r *registry.ActivityRegistry) { r.Activities[0].DisplayName = "" }, "DisplayName"},
		{"missing category", func(r *registry.ActivityRegistry) { r.Activities[0].Category = "" }, "Category"},
		{"unknown status", func(r *registry.ActivityRegistry) { r.Activities[0].ImplementationStatus = "done" }, "unknown status"},
		{"bad timeout", func(r *registry.ActivityRegistry) { r.Activities[0].Timeout = "soon" }, "invalid timeout"},
		{"unknown error code", func(r *registry.ActivityRegistry) {
			r.Activities[1].ErrorCodes = []string{"NOT_A_CODE"}
		}, "unknown error code NOT_A_CODE"},
		{"invalid schema", func(r *registry.ActivityRegistry) {
			r.Activities[0].InputSchema = map[string]interface{}{"type": 42}
		}, "invalid input schema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := registry.New()
			reg.Activities = []registry.Activity{validActivity("a"), validActivity("b")}
			tt.mutate(reg)

			err := reg.Validate(knownCodes())
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// ==========================
// Editing
// ==========================

func TestAddUpdateSave(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Add(validActivity("rank-artisans")))
	assert.Error(t, reg.Add(validActivity("rank-artisans")))

	require.NoError(t, reg.Update("rank-artisans", "status", "verified"))
	require.NoError(t, reg.Update("rank-artisans", "retries", "2"))
	require.NoError(t, reg.Update("rank-artisans", "timeout", "10s"))
	assert.Error(t, reg.Update("rank-artisans", "retries", "two"))
	assert.Error(t, reg.Update("rank-artisans", "timeout", "ten"))
	assert.Error(t, reg.Update("rank-artisans", "owner", "x"))
	assert.Error(t, reg.Update("missing", "status", "verified"))

	path := filepath.Join(t.TempDir(), "nested", "registry.json")
	require.NoError(t, reg.Save(path))

	loaded, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	a, ok := loaded.Find("rank-artisans")
	require.True(t, ok)
	assert.Equal(t, "verified", a.ImplementationStatus)
	assert.Equal(t, 2, a.Retries)
	assert.Equal(t, "10s", a.Timeout)

	_, ok = loaded.Find("query-artisans")
	assert.False(t, ok)
}
