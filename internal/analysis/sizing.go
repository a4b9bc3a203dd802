package analysis

import (
	"solar_analyzer/internal/model"
	"solar_analyzer/internal/solar"
)

// MonthSizing is the per-month view of generation and grid reliance.
type MonthSizing struct {
	AvgDailyPV     float64 `json:"avg_daily_pv"`
	PeakSunHours   float64 `json:"peak_sun_hours"`
	CapacityFactor float64 `json:"capacity_factor"`
	GridDependence float64 `json:"grid_dependence"`
}

// Sizing diagnoses array output against nameplate and inverter limits.
type Sizing struct {
	AvgDailyPV        float64                `json:"avg_daily_pv"`
	CapacityFactor    float64                `json:"capacity_factor"`
	PeakSunHours      float64                `json:"peak_sun_hours"`
	MaxPVW            float64                `json:"max_pv_w"`
	NameplateW        float64                `json:"nameplate_w"`
	InverterACW       float64                `json:"inverter_ac_w"`
	InverterKW        float64                `json:"inverter_kw"`
	DCACRatio         float64                `json:"dc_ac_ratio"`
	MaxPVPctNameplate float64                `json:"max_pv_pct_nameplate"`
	MaxPVPctInverter  float64                `json:"max_pv_pct_inverter"`
	PanelClipHours    int                    `json:"panel_clip_hours"`
	InverterClipHours int                    `json:"inverter_clip_hours"`
	InverterLimited   bool                   `json:"inverter_limited"`
	PVLoadRatio       float64                `json:"pv_load_ratio"`
	Monthly           map[string]MonthSizing `json:"monthly"`
}

func systemSizing(ds *Dataset, c Classification, cfg model.SiteConfig, th model.Thresholds) Sizing {
	pvKWp := cfg.PVKWp
	inverterKW := cfg.EffectiveInverterKW()
	nameplateW := pvKWp * 1000
	inverterW := inverterKW * 1000

	avgDailyPV := mean(ds.dayValues(ds.FullDays(), func(t DayTotals) float64 { return t.PV }))
	clip := solar.DetectClipping(ds.Records(), nameplateW, inverterW, th.PanelClipFraction, th.InverterLimitFraction)

	nonEVPV := mean(ds.dayValues(c.NonEV, func(t DayTotals) float64 { return t.PV }))
	nonEVLoad := mean(ds.dayValues(c.NonEV, func(t DayTotals) float64 { return t.Load }))

	s := Sizing{
		AvgDailyPV:        round(avgDailyPV, 2),
		CapacityFactor:    round(safeDiv(avgDailyPV, pvKWp*24)*100, 1),
		PeakSunHours:      round(safeDiv(avgDailyPV, pvKWp), 2),
		MaxPVW:            round(clip.MaxPVW, 0),
		NameplateW:        nameplateW,
		InverterACW:       round(inverterW, 0),
		InverterKW:        inverterKW,
		DCACRatio:         round(safeDiv(pvKWp, inverterKW), 2),
		MaxPVPctNameplate: round(safeDiv(clip.MaxPVW, nameplateW)*100, 0),
		MaxPVPctInverter:  round(safeDiv(clip.MaxPVW, inverterW)*100, 0),
		PanelClipHours:    clip.PanelClipHours,
		InverterClipHours: clip.InverterClipHours,
		InverterLimited:   clip.InverterLimited,
		PVLoadRatio:       round(safeDiv(nonEVPV, nonEVLoad), 2),
		Monthly:           make(map[string]MonthSizing, len(ds.Months())),
	}

	for _, m := range ds.Months() {
		avg := mean(ds.dayValues(ds.FullDaysIn(m), func(t DayTotals) float64 { return t.PV }))
		sums := sumRecords(ds.Month(m))
		s.Monthly[m] = MonthSizing{
			AvgDailyPV:     round(avg, 1),
			PeakSunHours:   round(safeDiv(avg, pvKWp), 1),
			CapacityFactor: round(safeDiv(avg, pvKWp*24)*100, 1),
			GridDependence: round(safeDiv(sums.imp, sums.load)*100, 0),
		}
	}
	return s
}
