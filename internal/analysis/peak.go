package analysis

import (
	"math"

	"solar_analyzer/internal/model"
)

// PeakDemand reports the highest grid draw and PV output seen.
type PeakDemand struct {
	PeakGridDrawW     float64             `json:"peak_grid_draw_w"`
	PeakGridDrawKW    float64             `json:"peak_grid_draw_kw"`
	PeakGridDate      string              `json:"peak_grid_date"`
	PeakGridHour      string              `json:"peak_grid_hour"`
	PeakGridIsEV      bool                `json:"peak_grid_is_ev"`
	AvgDailyPeakGrid  map[DayKind]float64 `json:"avg_daily_peak_grid"`
	PeakPVW           float64             `json:"peak_pv_w"`
	PeakPVKW          float64             `json:"peak_pv_kw"`
	PeakPVDate        string              `json:"peak_pv_date"`
	PeakPVHour        string              `json:"peak_pv_hour"`
	PeakPVPctInverter float64             `json:"peak_pv_pct_inverter"`
}

// peakImport returns the importing record with the largest |Avg_Grid_W|.
// The first such record wins a tie.
func peakImport(records []model.HourlyRecord) (model.HourlyRecord, bool) {
	var peak model.HourlyRecord
	found := false
	for _, r := range records {
		if r.GridKWh >= 0 {
			continue
		}
		if !found || math.Abs(r.AvgGridW) > math.Abs(peak.AvgGridW) {
			peak = r
			found = true
		}
	}
	return peak, found
}

func peakDemand(ds *Dataset, c Classification, inverterW float64) PeakDemand {
	p := PeakDemand{AvgDailyPeakGrid: make(map[DayKind]float64)}

	if r, ok := peakImport(ds.Records()); ok {
		draw := math.Abs(r.AvgGridW)
		p.PeakGridDrawW = round(draw, 0)
		p.PeakGridDrawKW = round(draw/1000, 1)
		p.PeakGridDate = r.Date
		p.PeakGridHour = r.Hour
		p.PeakGridIsEV = c.IsEV(r.Date)
	}

	for _, kind := range dayKinds {
		var peaks []float64
		for _, day := range c.Days(kind) {
			if r, ok := peakImport(ds.Day(day)); ok {
				peaks = append(peaks, math.Abs(r.AvgGridW))
			}
		}
		if len(peaks) > 0 {
			p.AvgDailyPeakGrid[kind] = round(mean(peaks), 0)
		}
	}

	var pv model.HourlyRecord
	for i, r := range ds.Records() {
		if i == 0 || r.AvgPVW > pv.AvgPVW {
			pv = r
		}
	}
	p.PeakPVW = round(pv.AvgPVW, 0)
	p.PeakPVKW = round(pv.AvgPVW/1000, 1)
	p.PeakPVDate = pv.Date
	p.PeakPVHour = pv.Hour
	p.PeakPVPctInverter = round(safeDiv(pv.AvgPVW, inverterW)*100, 0)
	return p
}
