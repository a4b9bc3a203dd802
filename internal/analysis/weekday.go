package analysis

import (
	"time"

	"solar_analyzer/internal/model"
)

// WeekBucket summarises weekday or weekend days.
type WeekBucket struct {
	Days            int                `json:"days"`
	AvgDailyLoad    float64            `json:"avg_daily_load"`
	AvgDailyPV      float64            `json:"avg_daily_pv"`
	AvgDailyImport  float64            `json:"avg_daily_import"`
	AvgDailyExport  float64            `json:"avg_daily_export"`
	SelfSufficiency float64            `json:"self_sufficiency"`
	HourlyLoadW     map[string]float64 `json:"hourly_load_w"`
}

// HourDiff is an hour where weekend load differs markedly from weekdays.
type HourDiff struct {
	Hour  string  `json:"hour"`
	DiffW float64 `json:"diff_w"`
}

// WeekdayWeekend compares non-EV weekdays with non-EV weekend days.
type WeekdayWeekend struct {
	Weekday                WeekBucket `json:"weekday"`
	Weekend                WeekBucket `json:"weekend"`
	SignificantHourlyDiffs []HourDiff `json:"significant_hourly_diffs"`
}

// weekdayWeekend returns nil unless both buckets hold at least one non-EV
// full day.
func weekdayWeekend(ds *Dataset, c Classification, th model.Thresholds) *WeekdayWeekend {
	var weekdays, weekends []string
	for _, day := range c.NonEV {
		t, err := model.ParseDate(day)
		if err != nil {
			continue
		}
		if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
			weekends = append(weekends, day)
		} else {
			weekdays = append(weekdays, day)
		}
	}
	if len(weekdays) == 0 || len(weekends) == 0 {
		return nil
	}

	w := &WeekdayWeekend{
		Weekday:                weekBucket(ds, weekdays),
		Weekend:                weekBucket(ds, weekends),
		SignificantHourlyDiffs: []HourDiff{},
	}
	for _, h := range sortedKeys(w.Weekday.HourlyLoadW) {
		we, ok := w.Weekend.HourlyLoadW[h]
		if !ok {
			continue
		}
		diff := we - w.Weekday.HourlyLoadW[h]
		if diff > th.WeekdayDiffW || diff < -th.WeekdayDiffW {
			w.SignificantHourlyDiffs = append(w.SignificantHourlyDiffs, HourDiff{Hour: h, DiffW: round(diff, 0)})
		}
	}
	return w
}

func weekBucket(ds *Dataset, days []string) WeekBucket {
	avgLoad := mean(ds.dayValues(days, func(t DayTotals) float64 { return t.Load }))
	avgImport := mean(ds.dayValues(days, func(t DayTotals) float64 { return t.Import }))

	var ss float64
	if avgLoad > 0 {
		ss = (1 - avgImport/avgLoad) * 100
	}

	hourly := make(map[string]float64)
	for h, rows := range byHour(ds.RecordsFor(days)) {
		loads := make([]float64, len(rows))
		for i, r := range rows {
			loads[i] = r.LoadW
		}
		hourly[h] = round(mean(loads), 0)
	}

	return WeekBucket{
		Days:            len(days),
		AvgDailyLoad:    round(avgLoad, 1),
		AvgDailyPV:      round(mean(ds.dayValues(days, func(t DayTotals) float64 { return t.PV })), 1),
		AvgDailyImport:  round(avgImport, 1),
		AvgDailyExport:  round(mean(ds.dayValues(days, func(t DayTotals) float64 { return t.Export })), 1),
		SelfSufficiency: round(ss, 0),
		HourlyLoadW:     hourly,
	}
}
