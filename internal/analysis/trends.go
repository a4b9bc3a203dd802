package analysis

// Trend compares two consecutive months. Paired fields hold [from, to].
type Trend struct {
	From                      string      `json:"from"`
	To                        string      `json:"to"`
	AvgDailyPV                [2]float64  `json:"avg_daily_pv"`
	AvgDailyPVChangePct       float64     `json:"avg_daily_pv_change_pct"`
	AvgDailyLoad              [2]float64  `json:"avg_daily_load"`
	AvgDailyLoadChangePct     float64     `json:"avg_daily_load_change_pct"`
	SelfSufficiency           [2]*float64 `json:"self_sufficiency"`
	SelfSufficiencyChangePP   float64     `json:"self_sufficiency_change_pp"`
	GridDependence            [2]float64  `json:"grid_dependence"`
	GridDependenceChangePP    float64     `json:"grid_dependence_change_pp"`
	BatteryEfficiency         [2]float64  `json:"battery_efficiency"`
	BatteryEfficiencyChangePP float64     `json:"battery_efficiency_change_pp"`
}

// monthOverMonth needs at least two months. It reads the rounded monthly
// totals.
func monthOverMonth(totals map[string]MonthTotals, eff map[string]MonthEfficiency) []Trend {
	months := sortedKeys(totals)
	if len(months) < 2 {
		return nil
	}

	trends := make([]Trend, 0, len(months)-1)
	for i := 1; i < len(months); i++ {
		m1, m2 := months[i-1], months[i]
		d1, d2 := totals[m1], totals[m2]

		pv1, pv2 := perDay(d1.TotalPV, d1.Days), perDay(d2.TotalPV, d2.Days)
		load1, load2 := perDay(d1.TotalLoad, d1.Days), perDay(d2.TotalLoad, d2.Days)
		gd1 := safeDiv(d1.GridImport, d1.TotalLoad) * 100
		gd2 := safeDiv(d2.GridImport, d2.TotalLoad) * 100
		eff1, eff2 := eff[m1].Efficiency, eff[m2].Efficiency

		trends = append(trends, Trend{
			From:                      m1,
			To:                        m2,
			AvgDailyPV:                [2]float64{round(pv1, 1), round(pv2, 1)},
			AvgDailyPVChangePct:       round(safeDiv(pv2-pv1, pv1)*100, 0),
			AvgDailyLoad:              [2]float64{round(load1, 1), round(load2, 1)},
			AvgDailyLoadChangePct:     round(safeDiv(load2-load1, load1)*100, 0),
			SelfSufficiency:           [2]*float64{d1.SelfSufficiency, d2.SelfSufficiency},
			SelfSufficiencyChangePP:   round(valueOrZero(d2.SelfSufficiency)-valueOrZero(d1.SelfSufficiency), 0),
			GridDependence:            [2]float64{round(gd1, 0), round(gd2, 0)},
			GridDependenceChangePP:    round(gd2-gd1, 0),
			BatteryEfficiency:         [2]float64{eff1, eff2},
			BatteryEfficiencyChangePP: round(eff2-eff1, 1),
		})
	}
	return trends
}

func perDay(total float64, days int) float64 {
	if days <= 0 {
		return 0
	}
	return total / float64(days)
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
