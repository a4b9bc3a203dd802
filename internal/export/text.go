package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"solar_analyzer/internal/analysis"
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	good    = color.New(color.FgGreen)
	warn    = color.New(color.FgYellow)
	bad     = color.New(color.FgRed)
	dim     = color.New(color.Faint)
)

// WriteText prints a short, colourised terminal summary of the report.
// Colours follow color.NoColor.
func WriteText(w io.Writer, r *analysis.Report) error {
	p := &printer{w: w}

	title := "Solar analysis"
	if r.Site != "" {
		title += " · " + r.Site
	}
	p.line(heading.Sprint(title))
	p.line(dim.Sprintf("%s to %s, %d days, %d records from %d source(s)",
		r.DateRange[0], r.DateRange[1], r.UniqueDays, r.TotalRows, len(r.Files)))
	p.line("")

	p.section("Generation")
	p.kv("Avg daily PV", fmt.Sprintf("%.1f kWh", r.SystemSizing.AvgDailyPV))
	p.kv("Capacity factor", fmt.Sprintf("%.1f%%", r.SystemSizing.CapacityFactor))
	p.kv("Self-consumption", rate(r.SelfConsumptionRate, 70, 40))
	if r.SystemSizing.InverterLimited {
		p.kv("Inverter", warn.Sprintf("clipping in %d hours", r.SystemSizing.InverterClipHours))
	}
	p.kv("Projected annual PV", fmt.Sprintf("%.0f kWh (%s confidence)",
		r.AnnualProjection.ProjectedAnnualPV, r.AnnualProjection.Confidence))

	p.section("Battery")
	p.kv("Usable capacity", fmt.Sprintf("%.1f of %.1f kWh (%s)",
		r.BatteryAnalysis.EstimatedUsableKWh, r.BatteryAnalysis.NominalKWh,
		rate(r.BatteryAnalysis.UsablePct, 85, 70)))
	p.kv("Daily cycles", fmt.Sprintf("%.2f", r.BatteryHealth.DailyEquivCycles))
	p.kv("Remaining cycle life", orNA(r.BatteryHealth.RemainingCycleYears, "%.0f years"))

	p.section("Money")
	p.kv("Annual savings", fmt.Sprintf("%s%.2f (%.1f%% of the bill)",
		r.Currency, r.BillImpact.AnnualSavings, r.BillImpact.AnnualReductionPct))
	switch {
	case r.ROI == nil:
	case r.ROI.Error != "":
		p.kv("Payback", bad.Sprint(r.ROI.Error))
	default:
		p.kv("Payback", orNA(r.ROI.SimplePayback, "%.1f years"))
		p.kv("Remaining payback", orNA(r.ROI.RemainingPayback, "%.1f years"))
	}
	p.kv("CO2 avoided", fmt.Sprintf("%.0f kg/yr (~%.0f trees)",
		r.CarbonOffset.AnnualCO2AvoidedKg, r.CarbonOffset.EquivTrees))

	if r.EVDetection.Enabled {
		p.section("EV")
		p.kv("Charging days", fmt.Sprintf("%d of %d", r.EVDetection.EVDayCount, r.EVDetection.TotalFullDays))
		if len(r.HourlyPatterns.EVChargingHours) > 0 {
			p.kv("Charging hours", strings.Join(r.HourlyPatterns.EVChargingHours, " "))
		}
	}

	p.section("Anomalies")
	if r.Anomalies.Count() == 0 {
		p.line("  " + good.Sprint("none"))
	}
	for _, a := range r.Anomalies.PV {
		p.line(fmt.Sprintf("  %s %s %.1f kWh vs %.1f expected (%.0f%%)", a.Date, warn.Sprint("pv"), a.DailyPV, a.Expected, a.DeviationPct))
	}
	for _, a := range r.Anomalies.Load {
		p.line(fmt.Sprintf("  %s %s %.1f kWh vs %.1f ± %.1f", a.Date, warn.Sprint("load"), a.DailyLoad, a.ExpectedMean, a.ExpectedStd))
	}
	for _, a := range r.Anomalies.Battery {
		p.line(fmt.Sprintf("  %s %s efficiency %.1f%%", a.Date, warn.Sprint("battery"), a.Efficiency))
	}

	return p.err
}

// rate colours a percentage green at or above hi, red below lo.
func rate(v, hi, lo float64) string {
	s := fmt.Sprintf("%.1f%%", v)
	switch {
	case v >= hi:
		return good.Sprint(s)
	case v < lo:
		return bad.Sprint(s)
	default:
		return warn.Sprint(s)
	}
}

// printer keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, s)
}

func (p *printer) section(name string) {
	p.line("")
	p.line(heading.Sprint(name))
}

func (p *printer) kv(key, value string) {
	p.line(fmt.Sprintf("  %-22s %s", key+":", value))
}
