package solar

import (
	"solar_analyzer/internal/model"
)

// Profile holds the average hourly PV output derived from hourly records.
type Profile struct {
	// MeanW is the average PV power for each hour [0-23] across all records.
	MeanW [24]float64
	// HourlyFactor is MeanW normalized so that the peak hour = 1.0.
	HourlyFactor [24]float64
	// Present marks hours that occur in at least one record.
	Present [24]bool
	// PeakHour is the hour with the highest average generation.
	PeakHour int
	// PeakW is the average power at PeakHour.
	PeakW float64
}

// BuildProfile averages Avg_PV_W per hour of day. Zero readings count, so
// night hours pull their own average down rather than being skipped.
func BuildProfile(records []model.HourlyRecord) Profile {
	var hourSum [24]float64
	var hourCount [24]int

	for _, r := range records {
		h := r.HourOfDay()
		if h < 0 {
			continue
		}
		hourSum[h] += r.AvgPVW
		hourCount[h]++
	}

	var p Profile
	first := true
	for h := 0; h < 24; h++ {
		if hourCount[h] == 0 {
			continue
		}
		p.Present[h] = true
		p.MeanW[h] = hourSum[h] / float64(hourCount[h])
		if first || p.MeanW[h] > p.PeakW {
			p.PeakW = p.MeanW[h]
			p.PeakHour = h
			first = false
		}
	}

	if p.PeakW > 0 {
		for h := 0; h < 24; h++ {
			p.HourlyFactor[h] = p.MeanW[h] / p.PeakW
		}
	}
	return p
}

// PeakHours returns the hours whose average output exceeds fraction of the
// peak hour's average, as sorted "HH:00" labels.
func (p Profile) PeakHours(fraction float64) []string {
	hours := []string{}
	for h := 0; h < 24; h++ {
		if p.Present[h] && p.MeanW[h] > p.PeakW*fraction {
			hours = append(hours, model.HourLabel(h))
		}
	}
	return hours
}

// Clipping counts hours where PV output ran against the array or inverter limit.
type Clipping struct {
	MaxPVW            float64
	PanelClipHours    int
	InverterClipHours int
	InverterLimited   bool
}

// DetectClipping scans records for hours above panelFraction of nameplate and
// above the inverter's AC rating. The inverter counts as limiting when the
// highest hourly average reaches inverterFraction of its rating.
func DetectClipping(records []model.HourlyRecord, nameplateW, inverterW, panelFraction, inverterFraction float64) Clipping {
	var c Clipping
	for i, r := range records {
		if i == 0 || r.AvgPVW > c.MaxPVW {
			c.MaxPVW = r.AvgPVW
		}
		if r.AvgPVW > nameplateW*panelFraction {
			c.PanelClipHours++
		}
		if r.AvgPVW > inverterW {
			c.InverterClipHours++
		}
	}
	c.InverterLimited = len(records) > 0 && c.MaxPVW >= inverterW*inverterFraction
	return c
}
