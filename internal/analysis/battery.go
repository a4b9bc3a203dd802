package analysis

import "solar_analyzer/internal/model"

// BatteryTypeStats are daily battery averages for one day kind.
type BatteryTypeStats struct {
	AvgCharge     float64 `json:"avg_charge"`
	AvgDischarge  float64 `json:"avg_discharge"`
	AvgCycleDepth float64 `json:"avg_cycle_depth"`
	AvgMinSOC     float64 `json:"avg_min_soc"`
	AvgMaxSOC     float64 `json:"avg_max_soc"`
}

// MonthEfficiency is the battery round-trip efficiency for a month.
type MonthEfficiency struct {
	Efficiency float64 `json:"efficiency"`
	Charge     float64 `json:"charge"`
	Discharge  float64 `json:"discharge"`
}

// BatteryAnalysis estimates usable capacity and summarises cycling.
type BatteryAnalysis struct {
	NominalKWh           float64                      `json:"nominal_kwh"`
	EstimatedUsableKWh   float64                      `json:"estimated_usable_kwh"`
	UsablePct            float64                      `json:"usable_pct"`
	UsableEstimateDays   int                          `json:"usable_estimate_days"`
	AvgCharge            float64                      `json:"avg_charge"`
	AvgDischarge         float64                      `json:"avg_discharge"`
	AvgCycleDepth        float64                      `json:"avg_cycle_depth"`
	AvgMinSOC            float64                      `json:"avg_min_soc"`
	AvgMaxSOC            float64                      `json:"avg_max_soc"`
	TypeStats            map[DayKind]BatteryTypeStats `json:"type_stats"`
	MonthlyEfficiency    map[string]MonthEfficiency   `json:"monthly_efficiency"`
	AvoidableImportTotal float64                      `json:"avoidable_import_total"`
	AvgAvoidablePerDay   float64                      `json:"avg_avoidable_per_day"`
}

// socRun is a stretch of non-increasing SOC that opens on a strict decrease.
type socRun struct {
	start, end int
	drop       float64
}

// deepestDischarge finds the run with the largest SOC drop. Equal SOC
// readings extend an open run but never open one. On ties the earliest run
// wins.
func deepestDischarge(soc []float64) (socRun, bool) {
	var best socRun
	found := false
	start := -1

	closeRun := func(end int) {
		if start < 0 {
			return
		}
		if drop := soc[start] - soc[end]; drop > best.drop {
			best = socRun{start: start, end: end, drop: drop}
			found = true
		}
		start = -1
	}

	for k := 1; k < len(soc); k++ {
		switch {
		case soc[k] < soc[k-1]:
			if start < 0 {
				start = k - 1
			}
		case soc[k] > soc[k-1]:
			closeRun(k - 1)
		}
	}
	closeRun(len(soc) - 1)
	return best, found
}

// usableEstimate derives a usable-capacity estimate from one day's records
// ordered by hour: discharged energy over the deepest run, divided by the
// fractional SOC drop. Days whose deepest drop is not above minDrop give none.
func usableEstimate(records []model.HourlyRecord, minDrop float64) (float64, bool) {
	soc := make([]float64, len(records))
	for i, r := range records {
		soc[i] = r.AvgSOCPct
	}
	run, ok := deepestDischarge(soc)
	if !ok || run.drop <= minDrop {
		return 0, false
	}
	var discharged float64
	for _, r := range records[run.start : run.end+1] {
		discharged += r.BatteryDischargeKWh
	}
	if discharged <= 0 {
		return 0, false
	}
	return discharged / (run.drop / 100), true
}

type batteryDay struct {
	charge, discharge, minSOC, maxSOC, depth float64
}

func batteryAnalysis(ds *Dataset, c Classification, cfg model.SiteConfig, th model.Thresholds) BatteryAnalysis {
	nominal := cfg.BatteryNominalKWh
	full := ds.FullDays()

	var estimates []float64
	for _, day := range full {
		if est, ok := usableEstimate(ds.Day(day), th.MinSOCDropPct); ok {
			estimates = append(estimates, est)
		}
	}
	usable := nominal * th.UsableFallbackFraction
	if len(estimates) > 0 {
		usable = median(estimates)
	}

	days := make(map[string]batteryDay, len(full))
	var charges, discharges, depths, mins, maxs []float64
	for _, day := range full {
		t := ds.Totals(day)
		bd := batteryDay{
			charge:    t.Charge,
			discharge: t.Discharge,
			minSOC:    t.MinSOC,
			maxSOC:    t.MaxSOC,
			depth:     safeDiv(t.Discharge, usable) * 100,
		}
		days[day] = bd
		charges = append(charges, bd.charge)
		discharges = append(discharges, bd.discharge)
		depths = append(depths, bd.depth)
		mins = append(mins, bd.minSOC)
		maxs = append(maxs, bd.maxSOC)
	}

	b := BatteryAnalysis{
		NominalKWh:         round(nominal, 1),
		EstimatedUsableKWh: round(usable, 1),
		UsablePct:          round(safeDiv(usable, nominal)*100, 0),
		UsableEstimateDays: len(estimates),
		AvgCharge:          round(mean(charges), 1),
		AvgDischarge:       round(mean(discharges), 1),
		AvgCycleDepth:      round(mean(depths), 0),
		AvgMinSOC:          round(mean(mins), 0),
		AvgMaxSOC:          round(mean(maxs), 0),
		TypeStats:          make(map[DayKind]BatteryTypeStats),
		MonthlyEfficiency:  monthlyEfficiency(ds),
	}

	for _, kind := range dayKinds {
		kindDays := c.Days(kind)
		if len(kindDays) == 0 {
			continue
		}
		var ch, dis, depth, mn, mx []float64
		for _, day := range kindDays {
			bd := days[day]
			ch = append(ch, bd.charge)
			dis = append(dis, bd.discharge)
			depth = append(depth, bd.depth)
			mn = append(mn, bd.minSOC)
			mx = append(mx, bd.maxSOC)
		}
		b.TypeStats[kind] = BatteryTypeStats{
			AvgCharge:     round(mean(ch), 1),
			AvgDischarge:  round(mean(dis), 1),
			AvgCycleDepth: round(mean(depth), 0),
			AvgMinSOC:     round(mean(mn), 0),
			AvgMaxSOC:     round(mean(mx), 0),
		}
	}

	// Upper bound on grid import a perfect battery could have covered.
	var avoidable float64
	for _, day := range full {
		t := ds.Totals(day)
		floor := max(0, t.Load-t.PV)
		avoidable += max(0, t.Import-floor)
	}
	b.AvoidableImportTotal = round(avoidable, 1)
	b.AvgAvoidablePerDay = round(safeDiv(avoidable, float64(len(full))), 1)
	return b
}

func monthlyEfficiency(ds *Dataset) map[string]MonthEfficiency {
	out := make(map[string]MonthEfficiency, len(ds.Months()))
	for _, m := range ds.Months() {
		s := sumRecords(ds.Month(m))
		out[m] = MonthEfficiency{
			Efficiency: round(safeDiv(s.discharge, s.charge)*100, 1),
			Charge:     round(s.charge, 1),
			Discharge:  round(s.discharge, 1),
		}
	}
	return out
}

// BatteryHealth projects cycling wear against the cycle budget.
type BatteryHealth struct {
	UsableKWh           float64                    `json:"usable_kwh"`
	UsablePct           float64                    `json:"usable_pct"`
	NominalKWh          float64                    `json:"nominal_kwh"`
	DailyEquivCycles    float64                    `json:"daily_equiv_cycles"`
	AnnualCycles        float64                    `json:"annual_cycles"`
	CyclesUsed          float64                    `json:"cycles_used"`
	RemainingCycleYears *float64                   `json:"remaining_cycle_years"`
	MonthlyEfficiency   map[string]MonthEfficiency `json:"monthly_efficiency"`
}

// batteryHealth works from the rounded battery analysis figures.
func batteryHealth(b BatteryAnalysis, systemAge float64, th model.Thresholds) BatteryHealth {
	daily := safeDiv(b.AvgDischarge, b.EstimatedUsableKWh)
	annual := daily * 365
	used := annual * systemAge

	h := BatteryHealth{
		UsableKWh:         b.EstimatedUsableKWh,
		UsablePct:         b.UsablePct,
		NominalKWh:        b.NominalKWh,
		DailyEquivCycles:  round(daily, 2),
		AnnualCycles:      round(annual, 0),
		CyclesUsed:        round(used, 0),
		MonthlyEfficiency: b.MonthlyEfficiency,
	}
	if annual > 0 {
		remaining := max(0, th.BatteryCycleBudget-used)
		h.RemainingCycleYears = floatPtr(round(remaining/annual, 0))
	}
	return h
}
