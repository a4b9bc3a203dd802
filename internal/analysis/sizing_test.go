package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar_analyzer/internal/model"
)

func TestSystemSizing(t *testing.T) {
	// Three sunny 5.2 kW hours a day on a 6 kWp array behind a 5 kW inverter.
	records := makeDays("2025-06-01", 10, func(_, h int, s *hourSpec) {
		if h >= 11 && h <= 13 {
			s.pv = 5.2
		}
	})
	// A partial day does not count towards the daily averages.
	records = append(records, record("2025-06-11", 12, hourSpec{pv: 5.2, load: 0.5}))

	ds := mustDataset(records)
	c, _ := classifyDays(ds, false, model.DefaultThresholds())
	cfg := model.SiteConfig{PVKWp: 6, InverterKW: 5}

	s := systemSizing(ds, c, cfg, model.DefaultThresholds())
	// 6 × 1 kWh + 3 × 5.2 kWh
	assert.Equal(t, 21.6, s.AvgDailyPV)
	assert.Equal(t, 15.0, s.CapacityFactor)
	assert.Equal(t, 3.6, s.PeakSunHours)
	assert.Equal(t, 5200.0, s.MaxPVW)
	assert.Equal(t, 6000.0, s.NameplateW)
	assert.Equal(t, 5000.0, s.InverterACW)
	assert.Equal(t, 1.2, s.DCACRatio)
	assert.Equal(t, 87.0, s.MaxPVPctNameplate)
	assert.Equal(t, 104.0, s.MaxPVPctInverter)
	assert.Equal(t, 31, s.PanelClipHours)
	assert.Equal(t, 31, s.InverterClipHours)
	assert.True(t, s.InverterLimited)
	assert.Equal(t, 1.8, s.PVLoadRatio)

	require.Contains(t, s.Monthly, "2025-06")
	june := s.Monthly["2025-06"]
	assert.Equal(t, 21.6, june.AvgDailyPV)
	assert.Equal(t, 3.6, june.PeakSunHours)
	assert.Equal(t, 15.0, june.CapacityFactor)
}

func TestSystemSizing_DefaultInverter(t *testing.T) {
	ds := mustDataset(makeDays("2025-06-01", 2, nil))
	c, _ := classifyDays(ds, false, model.DefaultThresholds())

	s := systemSizing(ds, c, model.SiteConfig{PVKWp: 6.5}, model.DefaultThresholds())
	assert.InDelta(t, 5.0, s.InverterKW, 1e-9)
	assert.Equal(t, 1.3, s.DCACRatio)
	assert.False(t, s.InverterLimited)
	assert.Equal(t, 0, s.PanelClipHours)
	assert.Equal(t, 63.0, s.Monthly["2025-06"].GridDependence)
}
