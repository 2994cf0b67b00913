package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/ironsheep/vanishing-point-mcp/internal/filter"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault_Valid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 180, c.CannyHighThreshold())
}

func TestLoad_Partial(t *testing.T) {
	path := writeConfig(t, "tuning.json", `{
		"ransac_iterations": 50,
		"filter_strategy": "moving_average",
		"lowpass_sampling_freq_hz": 10,
		"lowpass_cutoff_freq_hz": 20,
		"vertical_exclusion_angle_deg": 10
	}`)

	got, err := Load(path)
	require.NoError(t, err)

	want := Default()
	want.RansacIterations = 50
	want.FilterStrategy = filter.StrategyMovingAverage
	want.LowPassSamplingFreqHz = 10
	want.LowPassCutoffFreqHz = 20
	want.VerticalExclusionAngleDeg = 10

	assert.Empty(t, cmp.Diff(want, got), "Load mismatch (-want +got)")
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"wrong extension", "tuning.yaml", `{}`, ".json extension"},
		{"bad json", "bad.json", `{"ransac_iterations": }`, "failed to parse"},
		{"bad strategy", "strategy.json", `{"filter_strategy": "median"}`, "unknown filter strategy"},
		{"invalid values", "invalid.json", `{"ransac_iterations": 0}`, "ransac_iterations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.body)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	c := Default()
	c.RansacIterations = 0
	c.ImageWidth = -1
	c.MovingAverageWindow = 0
	c.VerticalExclusionAngleDeg = 90
	c.ErrorSource = "centroid"

	err := c.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 5, "errors: %v", err)
}

func TestMerge(t *testing.T) {
	base := Default()

	merged, err := base.Merge([]byte(`{"image_width": 320, "error_source": "middle_point"}`))
	require.NoError(t, err)
	assert.Equal(t, 320, merged.ImageWidth)
	assert.Equal(t, SourceMiddlePoint, merged.ErrorSource)
	assert.Equal(t, base.ImageHeight, merged.ImageHeight, "untouched field changed")

	unchanged, err := base.Merge(nil)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(base, unchanged), "Merge(nil) changed config (-want +got)")

	_, err = base.Merge([]byte(`{"inlier_threshold_px": -3}`))
	assert.Error(t, err)
}
