package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"solar_analyzer/internal/analysis"
)

// BuildReportPDF renders a printable summary with monthly and bill tables.
func BuildReportPDF(r *analysis.Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	title := "Solar Analysis Report"
	if r.Site != "" {
		title += ": " + r.Site
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, title)
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	lines := []string{
		fmt.Sprintf("Period: %s to %s (%d days, %d records)", r.DateRange[0], r.DateRange[1], r.UniqueDays, r.TotalRows),
		fmt.Sprintf("Self-consumption rate: %.1f%%", r.SelfConsumptionRate),
		fmt.Sprintf("Average daily PV: %.1f kWh (capacity factor %.1f%%)", r.SystemSizing.AvgDailyPV, r.SystemSizing.CapacityFactor),
		fmt.Sprintf("Battery usable: %.1f of %.1f kWh (%.0f%%)", r.BatteryAnalysis.EstimatedUsableKWh, r.BatteryAnalysis.NominalKWh, r.BatteryAnalysis.UsablePct),
		fmt.Sprintf("Projected annual PV: %.0f kWh (%s confidence)", r.AnnualProjection.ProjectedAnnualPV, r.AnnualProjection.Confidence),
		fmt.Sprintf("CO2 avoided: %.0f kg/yr", r.CarbonOffset.AnnualCO2AvoidedKg),
		fmt.Sprintf("Anomalies flagged: %d", r.Anomalies.Count()),
	}
	if r.EVDetection.Enabled {
		lines = append(lines, fmt.Sprintf("EV charging days: %d of %d", r.EVDetection.EVDayCount, r.EVDetection.TotalFullDays))
	}
	for _, line := range lines {
		pdf.Cell(0, 6, line)
		pdf.Ln(5)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Bill impact (%s, %s)", r.BillImpact.TariffType, r.Currency))
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Annual without solar: %.2f  with solar: %.2f  savings: %.2f (%.1f%%)",
		r.BillImpact.AnnualWithoutSolar, r.BillImpact.AnnualWithSolar,
		r.BillImpact.AnnualSavings, r.BillImpact.AnnualReductionPct))
	pdf.Ln(5)
	if r.ROI != nil {
		if r.ROI.Error != "" {
			pdf.Cell(0, 6, "ROI: "+r.ROI.Error)
		} else {
			pdf.Cell(0, 6, fmt.Sprintf("Payback: %s years (remaining %s), 25-year savings %.2f",
				orNA(r.ROI.SimplePayback, "%.1f"), orNA(r.ROI.RemainingPayback, "%.1f"), r.ROI.LifetimeSavings25yr))
		}
		pdf.Ln(5)
	}

	pdf.Ln(4)
	widths := []float64{22, 14, 24, 24, 24, 24, 28, 28}
	header := []string{"Month", "Days", "PV kWh", "Load kWh", "Import", "Export", "Self-cons %", "Self-suff %"}
	pdf.SetFont("Arial", "B", 9)
	for i, h := range header {
		pdf.CellFormat(widths[i], 6, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, month := range sortedMonths(r.MonthlyTotals) {
		m := r.MonthlyTotals[month]
		cells := []string{
			month,
			fmt.Sprintf("%d", m.Days),
			fmt.Sprintf("%.1f", m.TotalPV),
			fmt.Sprintf("%.1f", m.TotalLoad),
			fmt.Sprintf("%.1f", m.GridImport),
			fmt.Sprintf("%.1f", m.GridExport),
			fmt.Sprintf("%.1f", m.SelfConsumptionRate),
			orNA(m.SelfSufficiency, "%.1f"),
		}
		for i, c := range cells {
			align := "R"
			if i == 0 {
				align = "C"
			}
			pdf.CellFormat(widths[i], 6, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if months := sortedMonths(r.BillImpact.Monthly); len(months) > 0 {
		pdf.Ln(4)
		billWidths := []float64{22, 14, 32, 32, 32, 32}
		pdf.SetFont("Arial", "B", 9)
		for i, h := range []string{"Month", "Days", "Without solar", "With solar", "Feed-in", "Savings"} {
			pdf.CellFormat(billWidths[i], 6, h, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
		for _, month := range months {
			b := r.BillImpact.Monthly[month]
			pdf.CellFormat(billWidths[0], 6, month, "1", 0, "C", false, 0, "")
			pdf.CellFormat(billWidths[1], 6, fmt.Sprintf("%d", b.Days), "1", 0, "R", false, 0, "")
			pdf.CellFormat(billWidths[2], 6, fmt.Sprintf("%.2f", b.WithoutSolar), "1", 0, "R", false, 0, "")
			pdf.CellFormat(billWidths[3], 6, fmt.Sprintf("%.2f", b.WithSolar), "1", 0, "R", false, 0, "")
			pdf.CellFormat(billWidths[4], 6, fmt.Sprintf("%.2f", b.FeedinCredit), "1", 0, "R", false, 0, "")
			pdf.CellFormat(billWidths[5], 6, fmt.Sprintf("%.2f", b.NetSavings), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
