package analysis

import (
	"math"

	"solar_analyzer/internal/model"
)

// PVAnomaly is a day whose generation fell well below the recent average.
type PVAnomaly struct {
	Date         string  `json:"date"`
	DailyPV      float64 `json:"daily_pv"`
	Expected     float64 `json:"expected"`
	DeviationPct float64 `json:"deviation_pct"`
}

// LoadAnomaly is a non-EV day whose load sits above mean + k·σ.
type LoadAnomaly struct {
	Date         string  `json:"date"`
	DailyLoad    float64 `json:"daily_load"`
	ExpectedMean float64 `json:"expected_mean"`
	ExpectedStd  float64 `json:"expected_std"`
}

// BatteryAnomaly is a balanced-SOC day with poor round-trip efficiency.
type BatteryAnomaly struct {
	Date       string  `json:"date"`
	Efficiency float64 `json:"efficiency"`
	Charge     float64 `json:"charge"`
	Discharge  float64 `json:"discharge"`
}

// Anomalies groups the three detectors' findings in date order.
type Anomalies struct {
	PV      []PVAnomaly      `json:"pv"`
	Load    []LoadAnomaly    `json:"load"`
	Battery []BatteryAnomaly `json:"battery"`
}

// Count returns the total number of flagged days.
func (a Anomalies) Count() int {
	return len(a.PV) + len(a.Load) + len(a.Battery)
}

func detectAnomalies(ds *Dataset, c Classification, th model.Thresholds) Anomalies {
	return Anomalies{
		PV:      pvAnomalies(ds, th),
		Load:    loadAnomalies(ds, c, th),
		Battery: batteryAnomalies(ds, th),
	}
}

// pvAnomalies compares each full day with the mean of up to PVAnomalyWindow
// preceding full days. The first PVAnomalyMinHistory days are never flagged.
func pvAnomalies(ds *Dataset, th model.Thresholds) []PVAnomaly {
	out := []PVAnomaly{}
	days := ds.FullDays()
	pv := ds.dayValues(days, func(t DayTotals) float64 { return t.PV })

	for i := *th.PVAnomalyMinHistory; i < len(days); i++ {
		ref := mean(pv[max(0, i-th.PVAnomalyWindow):i])
		if ref <= 0 || pv[i] >= ref*th.PVAnomalyFraction {
			continue
		}
		out = append(out, PVAnomaly{
			Date:         days[i],
			DailyPV:      round(pv[i], 1),
			Expected:     round(ref, 1),
			DeviationPct: round((pv[i]-ref)/ref*100, 0),
		})
	}
	return out
}

// loadAnomalies needs at least LoadAnomalyMinDays non-EV full days.
func loadAnomalies(ds *Dataset, c Classification, th model.Thresholds) []LoadAnomaly {
	out := []LoadAnomaly{}
	if len(c.NonEV) < th.LoadAnomalyMinDays {
		return out
	}
	loads := ds.dayValues(c.NonEV, func(t DayTotals) float64 { return t.Load })
	m, sd := mean(loads), stdev(loads)
	limit := m + *th.LoadAnomalySigma*sd

	for i, day := range c.NonEV {
		if loads[i] > limit {
			out = append(out, LoadAnomaly{
				Date:         day,
				DailyLoad:    round(loads[i], 1),
				ExpectedMean: round(m, 1),
				ExpectedStd:  round(sd, 1),
			})
		}
	}
	return out
}

// batteryAnomalies flags full days that end near their starting SOC yet
// return less than BatteryAnomalyEfficiencyPct of the charged energy.
func batteryAnomalies(ds *Dataset, th model.Thresholds) []BatteryAnomaly {
	out := []BatteryAnomaly{}
	for _, day := range ds.FullDays() {
		records := ds.Day(day)
		startSOC := records[0].AvgSOCPct
		endSOC := records[len(records)-1].AvgSOCPct
		if math.Abs(startSOC-endSOC) > th.BatteryAnomalySOCDelta {
			continue
		}
		t := ds.Totals(day)
		if t.Charge <= th.BatteryAnomalyMinChargeKWh {
			continue
		}
		eff := t.Discharge / t.Charge * 100
		if eff < th.BatteryAnomalyEfficiencyPct {
			out = append(out, BatteryAnomaly{
				Date:       day,
				Efficiency: round(eff, 1),
				Charge:     round(t.Charge, 1),
				Discharge:  round(t.Discharge, 1),
			})
		}
	}
	return out
}
