package analysis

import (
	"solar_analyzer/internal/model"
	"solar_analyzer/internal/solar"
)

// HourProfile is the average behaviour of one hour of the day.
type HourProfile struct {
	AvgPVW        float64 `json:"avg_pv_w"`
	AvgLoadW      float64 `json:"avg_load_w"`
	AvgBatteryW   float64 `json:"avg_battery_w"`
	AvgGridW      float64 `json:"avg_grid_w"`
	AvgSOC        float64 `json:"avg_soc"`
	AvgGridImport float64 `json:"avg_grid_import"`
	AvgGridExport float64 `json:"avg_grid_export"`
}

// SOCDrain compares evening peak SOC with the next-morning low.
type SOCDrain struct {
	EveningSOC float64 `json:"evening_soc"`
	MorningSOC float64 `json:"morning_soc"`
	Drain      float64 `json:"drain"`
}

// HourlyPatterns holds per-hour profiles by day kind and the derived hour sets.
type HourlyPatterns struct {
	Hourly          map[DayKind]map[string]HourProfile `json:"hourly"`
	PeakPVHours     []string                           `json:"peak_pv_hours"`
	ExportHours     []string                           `json:"export_hours"`
	EVChargingHours []string                           `json:"ev_charging_hours"`
	SOCDrain        map[DayKind]SOCDrain               `json:"soc_drain"`
}

var (
	eveningHours = model.HourSet{"18:00", "19:00", "20:00"}
	morningHours = model.HourSet{"05:00", "06:00"}
)

func hourlyPatterns(ds *Dataset, c Classification, th model.Thresholds) HourlyPatterns {
	p := HourlyPatterns{
		Hourly:          make(map[DayKind]map[string]HourProfile),
		EVChargingHours: []string{},
		SOCDrain:        make(map[DayKind]SOCDrain),
	}

	for _, kind := range dayKinds {
		subset := ds.RecordsFor(c.Days(kind))
		if len(subset) == 0 {
			continue
		}
		p.Hourly[kind] = hourProfiles(subset)

		if drain, ok := socDrain(subset); ok {
			p.SOCDrain[kind] = drain
		}
	}

	all := ds.Records()
	p.PeakPVHours = solar.BuildProfile(all).PeakHours(th.PeakPVFraction)
	p.ExportHours = exportHours(all, *th.ExportHourKWh)

	ev, okEV := p.Hourly[DayEV]
	nonEV, okNonEV := p.Hourly[DayNonEV]
	if okEV && okNonEV {
		for _, h := range sortedKeys(ev) {
			base, ok := nonEV[h]
			if !ok {
				continue
			}
			if ev[h].AvgLoadW-base.AvgLoadW > th.EVChargingDiffW {
				p.EVChargingHours = append(p.EVChargingHours, h)
			}
		}
	}
	return p
}

func hourProfiles(records []model.HourlyRecord) map[string]HourProfile {
	out := make(map[string]HourProfile)
	for h, rows := range byHour(records) {
		var pv, load, batt, grid, soc, imp, exp []float64
		for _, r := range rows {
			pv = append(pv, r.AvgPVW)
			load = append(load, r.LoadW)
			batt = append(batt, r.AvgBatteryW)
			grid = append(grid, r.AvgGridW)
			soc = append(soc, r.AvgSOCPct)
			imp = append(imp, r.GridImportKWh)
			exp = append(exp, r.GridExportKWh)
		}
		out[h] = HourProfile{
			AvgPVW:        round(mean(pv), 0),
			AvgLoadW:      round(mean(load), 0),
			AvgBatteryW:   round(mean(batt), 0),
			AvgGridW:      round(mean(grid), 0),
			AvgSOC:        round(mean(soc), 1),
			AvgGridImport: round(mean(imp), 3),
			AvgGridExport: round(mean(exp), 3),
		}
	}
	return out
}

func exportHours(records []model.HourlyRecord, minKWh float64) []string {
	hours := []string{}
	groups := byHour(records)
	for _, h := range sortedKeys(groups) {
		var exp []float64
		for _, r := range groups[h] {
			exp = append(exp, r.GridExportKWh)
		}
		if mean(exp) > minKWh {
			hours = append(hours, h)
		}
	}
	return hours
}

// socDrain compares the mean of Max_SOC over 18:00-20:00 with the mean of
// Min_SOC over 05:00-06:00 across the subset. The morning hours are taken from
// the same calendar days, not the following morning.
func socDrain(records []model.HourlyRecord) (SOCDrain, bool) {
	var evening, morning []float64
	for _, r := range records {
		switch {
		case eveningHours.Contains(r.Hour):
			evening = append(evening, r.MaxSOCPct)
		case morningHours.Contains(r.Hour):
			morning = append(morning, r.MinSOCPct)
		}
	}
	if len(evening) == 0 || len(morning) == 0 {
		return SOCDrain{}, false
	}
	eve, morn := mean(evening), mean(morning)
	return SOCDrain{
		EveningSOC: round(eve, 0),
		MorningSOC: round(morn, 0),
		Drain:      round(eve-morn, 0),
	}, true
}
