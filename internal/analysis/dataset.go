package analysis

import (
	"sort"

	"solar_analyzer/internal/model"
)

// DayKind labels a full day by the EV classifier's verdict.
type DayKind string

const (
	DayNonEV DayKind = "non_ev"
	DayEV    DayKind = "ev"
)

// dayKinds is the fixed iteration order for per-kind sections.
var dayKinds = []DayKind{DayNonEV, DayEV}

// DayTotals sums one day's energy flows.
type DayTotals struct {
	Date      string
	Hours     int
	PV        float64
	Load      float64
	Import    float64
	Export    float64
	Charge    float64
	Discharge float64
	MinSOC    float64
	MaxSOC    float64
}

// Dataset is an enriched, chronologically ordered record set grouped by day
// and by month.
type Dataset struct {
	records  []model.HourlyRecord
	days     []string
	byDay    map[string][]model.HourlyRecord
	totals   map[string]DayTotals
	months   []string
	byMonth  map[string][]model.HourlyRecord
	fullDays []string
	minHours int
}

// NewDataset enriches and groups records, ordered by date and numeric hour. A
// day is full when it has more than minHours records.
func NewDataset(records []model.HourlyRecord, minHours int) (*Dataset, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	enriched := make([]model.HourlyRecord, len(records))
	for i, r := range records {
		enriched[i] = r.Enrich()
	}
	sort.SliceStable(enriched, func(i, j int) bool {
		if enriched[i].Date != enriched[j].Date {
			return enriched[i].Date < enriched[j].Date
		}
		return enriched[i].HourOfDay() < enriched[j].HourOfDay()
	})

	d := &Dataset{
		records:  enriched,
		byDay:    groupBy(enriched, func(r model.HourlyRecord) string { return r.Date }),
		byMonth:  groupBy(enriched, model.HourlyRecord.Month),
		totals:   make(map[string]DayTotals),
		minHours: minHours,
	}
	d.days = sortedKeys(d.byDay)
	d.months = sortedKeys(d.byMonth)

	for _, day := range d.days {
		t := sumDay(day, d.byDay[day])
		d.totals[day] = t
		if t.Hours > minHours {
			d.fullDays = append(d.fullDays, day)
		}
	}
	return d, nil
}

// Records returns every enriched record in chronological order.
func (d *Dataset) Records() []model.HourlyRecord { return d.records }

// Days returns every distinct date, sorted.
func (d *Dataset) Days() []string { return d.days }

// FullDays returns the sorted dates with more than the minimum record count.
func (d *Dataset) FullDays() []string { return d.fullDays }

// Months returns the sorted YYYY-MM keys.
func (d *Dataset) Months() []string { return d.months }

// Day returns a day's records ordered by hour.
func (d *Dataset) Day(date string) []model.HourlyRecord { return d.byDay[date] }

// Month returns a month's records in chronological order.
func (d *Dataset) Month(month string) []model.HourlyRecord { return d.byMonth[month] }

// Totals returns the summed energy flows of a day.
func (d *Dataset) Totals(date string) DayTotals { return d.totals[date] }

// IsFull reports whether the day has enough records to count as full.
func (d *Dataset) IsFull(date string) bool {
	return d.totals[date].Hours > d.minHours
}

// RecordsFor returns the records of the given days, in day order.
func (d *Dataset) RecordsFor(days []string) []model.HourlyRecord {
	var out []model.HourlyRecord
	for _, day := range days {
		out = append(out, d.byDay[day]...)
	}
	return out
}

// FullDaysIn returns the full days of a month, sorted.
func (d *Dataset) FullDaysIn(month string) []string {
	var out []string
	for _, day := range d.fullDays {
		if monthOf(day) == month {
			out = append(out, day)
		}
	}
	return out
}

func monthOf(date string) string {
	return model.HourlyRecord{Date: date}.Month()
}

func sumDay(date string, records []model.HourlyRecord) DayTotals {
	t := DayTotals{Date: date, Hours: len(records)}
	for i, r := range records {
		t.PV += r.PVKWh
		t.Load += r.LoadKWh
		t.Import += r.GridImportKWh
		t.Export += r.GridExportKWh
		t.Charge += r.BatteryChargeKWh
		t.Discharge += r.BatteryDischargeKWh
		if i == 0 || r.MinSOCPct < t.MinSOC {
			t.MinSOC = r.MinSOCPct
		}
		if i == 0 || r.MaxSOCPct > t.MaxSOC {
			t.MaxSOC = r.MaxSOCPct
		}
	}
	return t
}

func groupBy(records []model.HourlyRecord, key func(model.HourlyRecord) string) map[string][]model.HourlyRecord {
	groups := make(map[string][]model.HourlyRecord)
	for _, r := range records {
		k := key(r)
		groups[k] = append(groups[k], r)
	}
	return groups
}

func byHour(records []model.HourlyRecord) map[string][]model.HourlyRecord {
	return groupBy(records, func(r model.HourlyRecord) string { return r.Hour })
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// dayValues maps each day through f.
func (d *Dataset) dayValues(days []string, f func(DayTotals) float64) []float64 {
	out := make([]float64, len(days))
	for i, day := range days {
		out[i] = f(d.totals[day])
	}
	return out
}
