package analysis

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar_analyzer/internal/model"
)

func TestPaybackYears_CoversCost(t *testing.T) {
	tests := []struct {
		name         string
		annual, cost float64
	}{
		{"within first year", 1000, 400},
		{"a few years", 1000, 5000},
		{"long", 750, 15000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payback, ok := paybackYears(tt.annual, tt.cost, 0.005, 25)
			require.True(t, ok)

			whole := int(math.Floor(payback))
			var cumulative float64
			for n := 0; n < whole; n++ {
				cumulative += degradedSavings(tt.annual, 0.005, n)
			}
			cumulative += (payback - float64(whole)) * degradedSavings(tt.annual, 0.005, whole)
			assert.InDelta(t, tt.cost, cumulative, 1e-6)
		})
	}
}

func TestPaybackYears_NeverReached(t *testing.T) {
	_, ok := paybackYears(100, 1e6, 0.005, 25)
	assert.False(t, ok)
}

func TestProjectROI(t *testing.T) {
	th := model.DefaultThresholds()
	r := projectROI(1000, &model.ROIConfig{TotalCost: 5000, SystemAgeYears: 2}, th)
	require.NotNil(t, r)
	require.NoError(t, r.Err())

	require.NotNil(t, r.SimplePayback)
	assert.Equal(t, 5.1, *r.SimplePayback)
	require.NotNil(t, r.RemainingPayback)
	assert.Equal(t, 3.1, *r.RemainingPayback)
	assert.Equal(t, 2.7, r.DailySavings)
	assert.Equal(t, 1000.0, r.AnnualSavingsYear1)

	require.NotNil(t, r.YearlySavingsSample)
	assert.Equal(t, 1000.0, r.YearlySavingsSample.Year1)
	assert.InDelta(t, 1000*math.Pow(0.995, 9), r.YearlySavingsSample.Year10, 0.005)
	assert.InDelta(t, 1000*math.Pow(0.995, 24), r.YearlySavingsSample.Year25, 0.005)
	assert.Less(t, r.YearlySavingsSample.Year25, r.YearlySavingsSample.Year10)

	var lifetime float64
	for n := 0; n < 25; n++ {
		lifetime += 1000 * math.Pow(0.995, float64(n))
	}
	assert.InDelta(t, lifetime, r.LifetimeSavings25yr, 0.005)
}

func TestProjectROI_RemainingClamped(t *testing.T) {
	r := projectROI(1000, &model.ROIConfig{TotalCost: 5000, SystemAgeYears: 8}, model.DefaultThresholds())
	require.NotNil(t, r.RemainingPayback)
	assert.Equal(t, 0.0, *r.RemainingPayback)
}

func TestProjectROI_NotReached(t *testing.T) {
	r := projectROI(100, &model.ROIConfig{TotalCost: 1e6}, model.DefaultThresholds())
	assert.Nil(t, r.SimplePayback)
	assert.Nil(t, r.RemainingPayback)
	assert.Greater(t, r.LifetimeSavings25yr, 0.0)
}

func TestProjectROI_NoSavings(t *testing.T) {
	for _, s := range []float64{0, -50} {
		r := projectROI(s, &model.ROIConfig{TotalCost: 5000}, model.DefaultThresholds())
		require.NotNil(t, r)
		assert.Equal(t, "No savings to compute ROI", r.Error)
		assert.ErrorIs(t, r.Err(), ErrNoSavings)
		assert.Nil(t, r.SimplePayback)
		assert.Nil(t, r.YearlySavingsSample)
	}
}

func TestROIResult_JSON(t *testing.T) {
	th := model.DefaultThresholds()

	out, err := json.Marshal(projectROI(0, &model.ROIConfig{TotalCost: 5000, SystemAgeYears: 3}, th))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"No savings to compute ROI"}`, string(out))

	out, err = json.Marshal(projectROI(100, &model.ROIConfig{TotalCost: 1e6, SystemAgeYears: 3}, th))
	require.NoError(t, err)
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &fields))
	assert.NotContains(t, fields, "error")
	assert.Equal(t, "1000000", string(fields["total_cost"]))
	assert.Equal(t, "3", string(fields["system_age_years"]))
	assert.Equal(t, "null", string(fields["simple_payback"]))
	assert.Equal(t, "null", string(fields["remaining_payback"]))
	assert.Contains(t, fields, "yearly_savings_sample")
}

func TestProjectROI_NoConfig(t *testing.T) {
	r := projectROI(1000, nil, model.DefaultThresholds())
	assert.Nil(t, r)
	assert.NoError(t, r.Err())
}
