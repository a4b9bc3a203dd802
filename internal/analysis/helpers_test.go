package analysis

import (
	"time"

	"solar_analyzer/internal/model"
)

// hourSpec is one synthetic hour: energies in kWh, battery positive when
// charging, SOC in percent.
type hourSpec struct {
	pv, load, battery, soc float64
}

// baseHour is a plain sunny day: 1 kWh of PV from 08:00 to 16:00, a flat
// 0.5 kWh load and an idle battery at 50%.
func baseHour(h int) hourSpec {
	s := hourSpec{load: 0.5, soc: 50}
	if h >= 8 && h <= 16 {
		s.pv = 1
	}
	return s
}

// Daily totals of baseHour.
const (
	basePV     = 9.0
	baseLoad   = 12.0
	baseImport = 7.5
	baseExport = 4.5
)

func record(date string, h int, s hourSpec) model.HourlyRecord {
	grid := s.pv - s.load - s.battery
	return model.HourlyRecord{
		Date:         date,
		Hour:         model.HourLabel(h),
		Readings:     12,
		AvgPVW:       s.pv * 1000,
		PVKWh:        s.pv,
		AvgBatteryW:  s.battery * 1000,
		BatteryKWh:   s.battery,
		AvgGridW:     grid * 1000,
		GridKWh:      grid,
		AvgGridLoadW: s.load * 1000,
		GridLoadKWh:  s.load,
		AvgSOCPct:    s.soc,
		MinSOCPct:    s.soc - 2,
		MaxSOCPct:    s.soc + 2,
	}
}

// makeDays builds n consecutive 24-hour days from start. adjust may modify
// each hour before it is turned into a record.
func makeDays(start string, n int, adjust func(day, h int, s *hourSpec)) []model.HourlyRecord {
	first, err := time.Parse(model.DateLayout, start)
	if err != nil {
		panic(err)
	}
	var records []model.HourlyRecord
	for d := 0; d < n; d++ {
		date := first.AddDate(0, 0, d).Format(model.DateLayout)
		for h := 0; h < 24; h++ {
			s := baseHour(h)
			if adjust != nil {
				adjust(d, h, &s)
			}
			records = append(records, record(date, h, s))
		}
	}
	return records
}

func mustDataset(records []model.HourlyRecord) *Dataset {
	ds, err := NewDataset(records, 20)
	if err != nil {
		panic(err)
	}
	return ds
}

func siteConfig() model.SiteConfig {
	return model.SiteConfig{
		Name:               "test",
		Currency:           "$",
		PVKWp:              6.5,
		InverterKW:         5,
		BatteryNominalKWh:  10,
		GridEmissionFactor: 0.5,
		Tariff: model.Tariff{
			Type:       model.TariffFlat,
			ImportRate: 0.25,
		},
	}
}

type recordingObserver struct {
	stages  []Stage
	reports int
}

func (o *recordingObserver) OnStage(s Stage)    { o.stages = append(o.stages, s) }
func (o *recordingObserver) OnReport(r *Report) { o.reports++ }
