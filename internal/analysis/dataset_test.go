package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar_analyzer/internal/model"
)

func TestNewDataset_Empty(t *testing.T) {
	_, err := NewDataset(nil, 20)
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestNewDataset_FullDays(t *testing.T) {
	records := makeDays("2025-06-01", 3, nil)
	// Keep 21 hours of the second day and 20 of the third.
	var trimmed []model.HourlyRecord
	for _, r := range records {
		h := r.HourOfDay()
		if r.Date == "2025-06-02" && h >= 21 {
			continue
		}
		if r.Date == "2025-06-03" && h >= 20 {
			continue
		}
		trimmed = append(trimmed, r)
	}

	ds := mustDataset(trimmed)
	assert.Equal(t, []string{"2025-06-01", "2025-06-02", "2025-06-03"}, ds.Days())
	assert.Equal(t, []string{"2025-06-01", "2025-06-02"}, ds.FullDays())
	assert.True(t, ds.IsFull("2025-06-02"))
	assert.False(t, ds.IsFull("2025-06-03"))
	assert.Equal(t, 20, ds.Totals("2025-06-03").Hours)
}

func TestNewDataset_OrdersAndEnriches(t *testing.T) {
	records := makeDays("2025-06-01", 2, nil)
	reversed := make([]model.HourlyRecord, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}

	ds := mustDataset(reversed)
	all := ds.Records()
	require.Len(t, all, 48)
	assert.Equal(t, "2025-06-01", all[0].Date)
	assert.Equal(t, "00:00", all[0].Hour)
	assert.Equal(t, "23:00", all[47].Hour)

	day := ds.Day("2025-06-01")
	for i := 1; i < len(day); i++ {
		assert.Less(t, day[i-1].Hour, day[i].Hour)
	}

	tot := ds.Totals("2025-06-01")
	assert.InDelta(t, basePV, tot.PV, 1e-9)
	assert.InDelta(t, baseLoad, tot.Load, 1e-9)
	assert.InDelta(t, baseImport, tot.Import, 1e-9)
	assert.InDelta(t, baseExport, tot.Export, 1e-9)
	assert.Equal(t, 48.0, tot.MinSOC)
	assert.Equal(t, 52.0, tot.MaxSOC)
}

func TestNewDataset_UnpaddedHours(t *testing.T) {
	records := makeDays("2025-06-01", 1, func(_, h int, s *hourSpec) {
		s.soc = 100 - float64(h)*3
		s.battery = -0.5
	})
	for i := range records {
		records[i].Hour = fmt.Sprintf("%d:00", i)
	}

	ds := mustDataset(records)
	day := ds.Day("2025-06-01")
	require.Len(t, day, 24)
	assert.Equal(t, "00:00", day[0].Hour)
	assert.Equal(t, "09:00", day[9].Hour)
	assert.Equal(t, "10:00", day[10].Hour)
	assert.Equal(t, "23:00", day[23].Hour)
	for i, r := range day {
		assert.Equal(t, i, r.HourOfDay())
	}

	// One run from 100 to 31 discharging 0.5 kWh each hour.
	est, ok := usableEstimate(day, 30)
	require.True(t, ok)
	assert.InDelta(t, 12/0.69, est, 1e-9)
}

func TestNewDataset_Months(t *testing.T) {
	ds := mustDataset(makeDays("2025-05-30", 4, nil))
	assert.Equal(t, []string{"2025-05", "2025-06"}, ds.Months())
	assert.Len(t, ds.Month("2025-05"), 48)
	assert.Equal(t, []string{"2025-06-01", "2025-06-02"}, ds.FullDaysIn("2025-06"))
}

func TestMonthlyTotals(t *testing.T) {
	records := makeDays("2025-06-01", 30, nil)
	// A partial day still counts towards the month's day count.
	records = append(records, record("2025-07-01", 10, baseHour(10)))

	totals := monthlyTotals(mustDataset(records))
	require.Contains(t, totals, "2025-06")
	june := totals["2025-06"]

	assert.Equal(t, 30, june.Days)
	assert.Equal(t, 270.0, june.TotalPV)
	assert.Equal(t, 360.0, june.TotalLoad)
	assert.Equal(t, 225.0, june.GridImport)
	assert.Equal(t, 135.0, june.GridExport)
	assert.Equal(t, 135.0, june.SelfConsumed)
	assert.Equal(t, 50.0, june.SelfConsumptionRate)
	require.NotNil(t, june.SelfSufficiency)
	assert.InDelta(t, 37.5, *june.SelfSufficiency, 1e-9)

	assert.Equal(t, 1, totals["2025-07"].Days)
}

func TestMonthlyTotals_Identity(t *testing.T) {
	records := makeDays("2025-03-01", 45, func(day, h int, s *hourSpec) {
		s.load = 0.3 + float64((day*7+h)%11)/10
		if h >= 10 && h <= 14 {
			s.battery = 0.4
		}
		if h >= 19 && h <= 22 {
			s.battery = -0.45
		}
	})

	for m, mt := range monthlyTotals(mustDataset(records)) {
		assert.InDelta(t, mt.TotalLoad-mt.GridImport, mt.SelfConsumed, 0.11, m)
	}
}

func TestMonthlyTotals_NoLoad(t *testing.T) {
	records := makeDays("2025-06-01", 1, func(_, _ int, s *hourSpec) { s.load = 0 })
	june := monthlyTotals(mustDataset(records))["2025-06"]
	assert.Nil(t, june.SelfSufficiency)
}
