package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar_analyzer/internal/model"
)

func TestDeepestDischarge(t *testing.T) {
	tests := []struct {
		name  string
		soc   []float64
		want  socRun
		found bool
	}{
		{"empty", nil, socRun{}, false},
		{"flat", []float64{50, 50, 50}, socRun{}, false},
		{"rising", []float64{20, 30, 40}, socRun{}, false},
		{"single run", []float64{90, 70, 50, 60}, socRun{start: 0, end: 2, drop: 40}, true},
		{"plateau inside run", []float64{80, 60, 60, 40, 45}, socRun{start: 0, end: 3, drop: 40}, true},
		{"trailing plateau joins run", []float64{80, 60, 60, 70}, socRun{start: 0, end: 2, drop: 20}, true},
		{"leading plateau excluded", []float64{50, 50, 40, 41}, socRun{start: 1, end: 2, drop: 10}, true},
		{"deeper second run", []float64{60, 50, 70, 65, 30, 35}, socRun{start: 2, end: 4, drop: 40}, true},
		{"tie keeps first", []float64{60, 40, 70, 50}, socRun{start: 0, end: 1, drop: 20}, true},
		{"run to the end", []float64{40, 90, 80, 10}, socRun{start: 1, end: 3, drop: 80}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := deepestDischarge(tt.soc)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// socRamp discharges 0.5 kWh per hour while SOC falls from 85% at 00:00 to
// 20% at 13:00, then recharges.
func socRamp(_, h int, s *hourSpec) {
	if h <= 13 {
		s.soc = 85 - 5*float64(h)
		s.battery = -0.5
		return
	}
	s.soc = 20 + 6.5*float64(h-13)
	s.battery = 0.7
}

func TestUsableEstimate_Ramp(t *testing.T) {
	ds := mustDataset(makeDays("2025-06-01", 30, socRamp))

	est, ok := usableEstimate(ds.Day("2025-06-15"), 30)
	require.True(t, ok)
	// 14 hours × 0.5 kWh over a 65-point drop.
	assert.InDelta(t, 7/0.65, est, 1e-9)

	c, _ := classifyDays(ds, false, model.DefaultThresholds())
	b := batteryAnalysis(ds, c, model.SiteConfig{BatteryNominalKWh: 13.5}, model.DefaultThresholds())
	assert.Equal(t, 30, b.UsableEstimateDays)
	assert.Equal(t, 10.8, b.EstimatedUsableKWh)
	assert.Equal(t, 80.0, b.UsablePct)
	assert.Equal(t, 7.0, b.AvgDischarge)
	assert.Equal(t, 7.0, b.AvgCharge)
	assert.Equal(t, 65.0, b.AvgCycleDepth)
	assert.Equal(t, 18.0, b.AvgMinSOC)
	assert.Equal(t, 87.0, b.AvgMaxSOC)
}

func TestUsableEstimate_ShallowDrop(t *testing.T) {
	records := makeDays("2025-06-01", 1, func(_, h int, s *hourSpec) {
		if h >= 18 {
			s.soc = 50 - float64(h-17)*4
			s.battery = -0.3
		}
	})
	ds := mustDataset(records)
	_, ok := usableEstimate(ds.Day("2025-06-01"), 30)
	assert.False(t, ok)

	c, _ := classifyDays(ds, false, model.DefaultThresholds())
	b := batteryAnalysis(ds, c, model.SiteConfig{BatteryNominalKWh: 10}, model.DefaultThresholds())
	assert.Equal(t, 0, b.UsableEstimateDays)
	assert.Equal(t, 9.0, b.EstimatedUsableKWh)
	assert.Equal(t, 90.0, b.UsablePct)
}

func TestBatteryAnalysis_TypeStatsAndAvoidable(t *testing.T) {
	records := makeDays("2025-06-02", 10, func(day, h int, s *hourSpec) {
		if day == 4 && h <= 3 {
			s.load += 4
		}
		if h >= 9 && h <= 12 {
			s.battery = 0.5
		}
		if h >= 19 && h <= 22 {
			s.battery = -0.45
		}
	})
	ds := mustDataset(records)
	c, _ := classifyDays(ds, true, model.DefaultThresholds())
	require.Len(t, c.EV, 1)

	b := batteryAnalysis(ds, c, model.SiteConfig{BatteryNominalKWh: 10}, model.DefaultThresholds())
	require.Contains(t, b.TypeStats, DayEV)
	require.Contains(t, b.TypeStats, DayNonEV)
	assert.Equal(t, 2.0, b.TypeStats[DayNonEV].AvgCharge)
	assert.Equal(t, 1.8, b.TypeStats[DayNonEV].AvgDischarge)
	assert.Equal(t, 20.0, b.TypeStats[DayNonEV].AvgCycleDepth)

	eff := b.MonthlyEfficiency["2025-06"]
	assert.Equal(t, 90.0, eff.Efficiency)
	assert.Equal(t, 20.0, eff.Charge)
	assert.Equal(t, 18.0, eff.Discharge)

	// Import is 5.7 kWh on a normal day against a load-minus-PV floor of 3 kWh.
	assert.InDelta(t, 2.7, b.AvgAvoidablePerDay, 1e-9)
}

func TestBatteryHealth(t *testing.T) {
	b := BatteryAnalysis{
		NominalKWh:         10,
		EstimatedUsableKWh: 9,
		UsablePct:          90,
		AvgDischarge:       4.5,
	}
	h := batteryHealth(b, 2, model.DefaultThresholds())
	assert.Equal(t, 0.5, h.DailyEquivCycles)
	assert.Equal(t, 183.0, h.AnnualCycles)
	assert.Equal(t, 365.0, h.CyclesUsed)
	require.NotNil(t, h.RemainingCycleYears)
	// (6000 - 365) / 182.5
	assert.Equal(t, 31.0, *h.RemainingCycleYears)

	idle := batteryHealth(BatteryAnalysis{EstimatedUsableKWh: 9}, 2, model.DefaultThresholds())
	assert.Nil(t, idle.RemainingCycleYears)
	assert.Equal(t, 0.0, idle.AnnualCycles)
}
