package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"solar_analyzer/internal/analysis"
)

// Sheet names of the workbook.
const (
	SheetSummary   = "summary"
	SheetMonthly   = "monthly"
	SheetBills     = "bills"
	SheetAnomalies = "anomalies"
	SheetTrends    = "trends"
)

// BuildReportXLSX renders the report as a workbook with one sheet per
// section family.
func BuildReportXLSX(r *analysis.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetMonthly, SheetBills, SheetAnomalies, SheetTrends} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	writers := []func(*excelize.File, *analysis.Report) error{
		writeSummarySheet,
		writeMonthlySheet,
		writeBillsSheet,
		writeAnomaliesSheet,
		writeTrendsSheet,
	}
	for _, w := range writers {
		if err := w(f, r); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// setRow writes values left to right starting at column A of row.
func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func writeSummarySheet(f *excelize.File, r *analysis.Report) error {
	rows := [][]any{
		{"Solar Analysis Report"},
		{},
		{"Site", r.Site},
		{"Currency", r.Currency},
		{"Records", r.TotalRows},
		{"From", r.DateRange[0]},
		{"To", r.DateRange[1]},
		{"Unique days", r.UniqueDays},
		{"Full days", r.EVDetection.TotalFullDays},
		{"EV days", r.EVDetection.EVDayCount},
		{"Self-consumption rate (%)", r.SelfConsumptionRate},
		{"Avg daily PV (kWh)", r.SystemSizing.AvgDailyPV},
		{"Capacity factor (%)", r.SystemSizing.CapacityFactor},
		{"DC/AC ratio", r.SystemSizing.DCACRatio},
		{"Estimated usable battery (kWh)", r.BatteryAnalysis.EstimatedUsableKWh},
		{"Usable battery (%)", r.BatteryAnalysis.UsablePct},
		{"Annual bill without solar", r.BillImpact.AnnualWithoutSolar},
		{"Annual bill with solar", r.BillImpact.AnnualWithSolar},
		{"Annual savings", r.BillImpact.AnnualSavings},
		{"Projected annual PV (kWh)", r.AnnualProjection.ProjectedAnnualPV},
		{"Projection confidence", string(r.AnnualProjection.Confidence)},
		{"CO2 avoided (kg/yr)", r.CarbonOffset.AnnualCO2AvoidedKg},
		{"Anomalies", r.Anomalies.Count()},
	}
	if r.ROI != nil && r.ROI.Error == "" {
		rows = append(rows,
			[]any{"Simple payback (years)", nullable(r.ROI.SimplePayback)},
			[]any{"Remaining payback (years)", nullable(r.ROI.RemainingPayback)},
			[]any{"Lifetime savings (25 yr)", r.ROI.LifetimeSavings25yr},
		)
	}
	rows = append(rows, []any{}, []any{"Source files"})
	for _, name := range r.Files {
		rows = append(rows, []any{name})
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if err := setRow(f, SheetSummary, i+1, row...); err != nil {
			return err
		}
	}
	return nil
}

func writeMonthlySheet(f *excelize.File, r *analysis.Report) error {
	if err := setRow(f, SheetMonthly, 1,
		"Month", "Days", "PV (kWh)", "Load (kWh)", "Import (kWh)", "Export (kWh)",
		"Charge (kWh)", "Discharge (kWh)", "Self-consumed (kWh)",
		"Self-consumption (%)", "Self-sufficiency (%)"); err != nil {
		return err
	}
	for i, month := range sortedMonths(r.MonthlyTotals) {
		m := r.MonthlyTotals[month]
		if err := setRow(f, SheetMonthly, i+2,
			month, m.Days, m.TotalPV, m.TotalLoad, m.GridImport, m.GridExport,
			m.BatteryCharge, m.BatteryDischarge, m.SelfConsumed,
			m.SelfConsumptionRate, nullable(m.SelfSufficiency)); err != nil {
			return err
		}
	}
	return nil
}

func writeBillsSheet(f *excelize.File, r *analysis.Report) error {
	if err := setRow(f, SheetBills, 1,
		"Month", "Days", "Without solar", "With solar", "Feed-in credit", "Net savings"); err != nil {
		return err
	}
	months := sortedMonths(r.BillImpact.Monthly)
	for i, month := range months {
		b := r.BillImpact.Monthly[month]
		if err := setRow(f, SheetBills, i+2,
			month, b.Days, b.WithoutSolar, b.WithSolar, b.FeedinCredit, b.NetSavings); err != nil {
			return err
		}
	}
	return setRow(f, SheetBills, len(months)+3,
		"Annual", nil, r.BillImpact.AnnualWithoutSolar, r.BillImpact.AnnualWithSolar,
		r.BillImpact.AnnualFeedinCredit, r.BillImpact.AnnualSavings)
}

func writeAnomaliesSheet(f *excelize.File, r *analysis.Report) error {
	if err := setRow(f, SheetAnomalies, 1, "Date", "Kind", "Value", "Expected", "Detail"); err != nil {
		return err
	}
	row := 2
	for _, a := range r.Anomalies.PV {
		if err := setRow(f, SheetAnomalies, row, a.Date, "pv", a.DailyPV, a.Expected,
			fmt.Sprintf("%.1f%% below", -a.DeviationPct)); err != nil {
			return err
		}
		row++
	}
	for _, a := range r.Anomalies.Load {
		if err := setRow(f, SheetAnomalies, row, a.Date, "load", a.DailyLoad, a.ExpectedMean,
			fmt.Sprintf("std %.1f", a.ExpectedStd)); err != nil {
			return err
		}
		row++
	}
	for _, a := range r.Anomalies.Battery {
		if err := setRow(f, SheetAnomalies, row, a.Date, "battery", a.Efficiency, nil,
			fmt.Sprintf("charge %.1f discharge %.1f", a.Charge, a.Discharge)); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writeTrendsSheet(f *excelize.File, r *analysis.Report) error {
	if err := setRow(f, SheetTrends, 1,
		"From", "To", "PV change (%)", "Load change (%)",
		"Self-sufficiency change (pp)", "Grid dependence change (pp)",
		"Battery efficiency change (pp)"); err != nil {
		return err
	}
	for i, t := range r.Trends {
		if err := setRow(f, SheetTrends, i+2,
			t.From, t.To, t.AvgDailyPVChangePct, t.AvgDailyLoadChangePct,
			t.SelfSufficiencyChangePP, t.GridDependenceChangePP,
			t.BatteryEfficiencyChangePP); err != nil {
			return err
		}
	}
	return nil
}
