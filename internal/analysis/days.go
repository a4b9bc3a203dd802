package analysis

// DaySummary describes one full day.
type DaySummary struct {
	Date            string  `json:"date"`
	PV              float64 `json:"pv"`
	Load            float64 `json:"load"`
	GridImport      float64 `json:"grid_import"`
	GridExport      float64 `json:"grid_export"`
	PeakSOC         float64 `json:"peak_soc"`
	SelfSufficiency float64 `json:"self_sufficiency"`
	IsEV            bool    `json:"is_ev"`
}

// BestWorstDays are the full days with the highest and lowest
// self-sufficiency.
type BestWorstDays struct {
	Best  DaySummary `json:"best"`
	Worst DaySummary `json:"worst"`
}

// bestWorstDays ranks on the rounded self-sufficiency; the earliest day wins
// ties.
func bestWorstDays(ds *Dataset, c Classification) *BestWorstDays {
	full := ds.FullDays()
	if len(full) == 0 {
		return nil
	}

	var bw BestWorstDays
	for i, day := range full {
		t := ds.Totals(day)
		var ss float64
		if t.Load > 0 {
			ss = (1 - t.Import/t.Load) * 100
		}
		s := DaySummary{
			Date:            day,
			PV:              round(t.PV, 1),
			Load:            round(t.Load, 1),
			GridImport:      round(t.Import, 1),
			GridExport:      round(t.Export, 1),
			PeakSOC:         round(t.MaxSOC, 0),
			SelfSufficiency: round(ss, 0),
			IsEV:            c.IsEV(day),
		}
		if i == 0 || s.SelfSufficiency > bw.Best.SelfSufficiency {
			bw.Best = s
		}
		if i == 0 || s.SelfSufficiency < bw.Worst.SelfSufficiency {
			bw.Worst = s
		}
	}
	return &bw
}

// EVDetail compares average days of one kind.
type EVDetail struct {
	AvgPV      float64  `json:"avg_pv"`
	AvgLoad    float64  `json:"avg_load"`
	AvgImport  float64  `json:"avg_import"`
	AvgExport  float64  `json:"avg_export"`
	EveningSOC *float64 `json:"evening_soc"`
}

// evDetail is empty unless classification is enabled and found EV days.
func evDetail(ds *Dataset, c Classification, enabled bool) map[DayKind]EVDetail {
	out := make(map[DayKind]EVDetail)
	if !enabled || len(c.EV) == 0 {
		return out
	}
	for _, kind := range dayKinds {
		days := c.Days(kind)
		if len(days) == 0 {
			continue
		}
		d := EVDetail{
			AvgPV:     round(mean(ds.dayValues(days, func(t DayTotals) float64 { return t.PV })), 1),
			AvgLoad:   round(mean(ds.dayValues(days, func(t DayTotals) float64 { return t.Load })), 1),
			AvgImport: round(mean(ds.dayValues(days, func(t DayTotals) float64 { return t.Import })), 1),
			AvgExport: round(mean(ds.dayValues(days, func(t DayTotals) float64 { return t.Export })), 1),
		}
		var soc []float64
		for _, r := range ds.RecordsFor(days) {
			if eveningHours.Contains(r.Hour) {
				soc = append(soc, r.AvgSOCPct)
			}
		}
		if len(soc) > 0 {
			d.EveningSOC = floatPtr(round(mean(soc), 0))
		}
		out[kind] = d
	}
	return out
}
