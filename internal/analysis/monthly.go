package analysis

import "solar_analyzer/internal/model"

// MonthTotals aggregates one calendar month.
type MonthTotals struct {
	TotalPV             float64  `json:"total_pv"`
	TotalLoad           float64  `json:"total_load"`
	GridExport          float64  `json:"grid_export"`
	GridImport          float64  `json:"grid_import"`
	BatteryCharge       float64  `json:"battery_charge"`
	BatteryDischarge    float64  `json:"battery_discharge"`
	SelfConsumed        float64  `json:"self_consumed"`
	SelfConsumptionRate float64  `json:"self_consumption_rate"`
	SelfSufficiency     *float64 `json:"self_sufficiency"`
	Days                int      `json:"days"`
}

type monthSums struct {
	pv, load, export, imp, charge, discharge float64
}

func sumRecords(records []model.HourlyRecord) monthSums {
	var s monthSums
	for _, r := range records {
		s.pv += r.PVKWh
		s.load += r.LoadKWh
		s.export += r.GridExportKWh
		s.imp += r.GridImportKWh
		s.charge += r.BatteryChargeKWh
		s.discharge += r.BatteryDischargeKWh
	}
	return s
}

// monthlyTotals sums every record of each month. Days counts the distinct
// dates seen in the month, full or not.
func monthlyTotals(ds *Dataset) map[string]MonthTotals {
	out := make(map[string]MonthTotals, len(ds.Months()))
	for _, m := range ds.Months() {
		records := ds.Month(m)
		s := sumRecords(records)
		selfConsumed := s.load - s.imp

		days := make(map[string]bool)
		for _, r := range records {
			days[r.Date] = true
		}

		t := MonthTotals{
			TotalPV:             round(s.pv, 1),
			TotalLoad:           round(s.load, 1),
			GridExport:          round(s.export, 1),
			GridImport:          round(s.imp, 1),
			BatteryCharge:       round(s.charge, 1),
			BatteryDischarge:    round(s.discharge, 1),
			SelfConsumed:        round(selfConsumed, 1),
			SelfConsumptionRate: round(safeDiv(selfConsumed, s.pv)*100, 1),
			Days:                len(days),
		}
		if s.load > 0 {
			t.SelfSufficiency = floatPtr(round((1-s.imp/s.load)*100, 1))
		}
		out[m] = t
	}
	return out
}

// overallSelfConsumption is Σ self-consumed / Σ PV over the rounded monthly
// totals, in percent.
func overallSelfConsumption(totals map[string]MonthTotals) float64 {
	var sc, pv float64
	for _, m := range sortedKeys(totals) {
		sc += totals[m].SelfConsumed
		pv += totals[m].TotalPV
	}
	return safeDiv(sc, pv) * 100
}
