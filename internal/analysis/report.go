package analysis

import (
	"fmt"

	"solar_analyzer/internal/model"
)

// Stage names, in execution order.
const (
	StageMonthlyTotals    = "monthly_totals"
	StageEVDetection      = "ev_detection"
	StageHourlyPatterns   = "hourly_patterns"
	StageWeekdayWeekend   = "weekday_weekend"
	StageSystemSizing     = "system_sizing"
	StageBatteryAnalysis  = "battery_analysis"
	StageAdditionalPanels = "additional_panels"
	StagePeakDemand       = "peak_demand"
	StageAnomalies        = "anomalies"
	StageBillImpact       = "bill_impact"
	StageROI              = "roi"
	StageTrends           = "trends"
	StageBatteryHealth    = "battery_health"
	StageAnnualProjection = "annual_projection"
	StageBestWorstDays    = "best_worst_days"
	StageCarbonOffset     = "carbon_offset"
	StageEVDetail         = "ev_detail"
)

// Report is the complete analysis output. Sections that do not apply are nil
// and encode as JSON null.
type Report struct {
	Site                string                 `json:"site,omitempty"`
	Currency            string                 `json:"currency"`
	Files               []string               `json:"files"`
	TotalRows           int                    `json:"total_rows"`
	DateRange           [2]string              `json:"date_range"`
	UniqueDays          int                    `json:"unique_days"`
	MonthlyTotals       map[string]MonthTotals `json:"monthly_totals"`
	EVDetection         EVDetection            `json:"ev_detection"`
	HourlyPatterns      HourlyPatterns         `json:"hourly_patterns"`
	WeekdayWeekend      *WeekdayWeekend        `json:"weekday_weekend"`
	SystemSizing        Sizing                 `json:"system_sizing"`
	BatteryAnalysis     BatteryAnalysis        `json:"battery_analysis"`
	AdditionalPanels    *PanelProjection       `json:"additional_panels"`
	PeakDemand          PeakDemand             `json:"peak_demand"`
	Anomalies           Anomalies              `json:"anomalies"`
	BillImpact          BillImpact             `json:"bill_impact"`
	ROI                 *ROIResult             `json:"roi"`
	Trends              []Trend                `json:"trends"`
	BatteryHealth       BatteryHealth          `json:"battery_health"`
	AnnualProjection    AnnualProjection       `json:"annual_projection"`
	BestWorstDays       *BestWorstDays         `json:"best_worst_days"`
	CarbonOffset        CarbonOffset           `json:"carbon_offset"`
	EVDetail            map[DayKind]EVDetail   `json:"ev_detail"`
	SelfConsumptionRate float64                `json:"self_consumption_rate"`
}

// Analyzer turns hourly records into a Report for one site configuration.
// It holds no mutable state and may be reused.
type Analyzer struct {
	cfg      model.SiteConfig
	th       model.Thresholds
	observer Observer
	files    []string
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithObserver sets the progress observer.
func WithObserver(o Observer) Option {
	return func(a *Analyzer) {
		if o != nil {
			a.observer = o
		}
	}
}

// WithFiles records the names of the inputs the records came from.
func WithFiles(files []string) Option {
	return func(a *Analyzer) {
		a.files = append([]string(nil), files...)
	}
}

func New(cfg model.SiteConfig, opts ...Option) *Analyzer {
	a := &Analyzer{
		cfg:      cfg,
		th:       cfg.Thresholds.WithDefaults(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze is a convenience wrapper around New(cfg).Analyze(records).
func Analyze(records []model.HourlyRecord, cfg model.SiteConfig) (*Report, error) {
	return New(cfg).Analyze(records)
}

// Analyze computes every report section. The result depends only on the
// records and the configuration. Records are ordered by date and hour first.
// An invalid configuration fails with ErrInvalidConfig before any stage runs.
func (a *Analyzer) Analyze(records []model.HourlyRecord) (*Report, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	ds, err := NewDataset(records, a.th.FullDayMinHours)
	if err != nil {
		return nil, err
	}

	cfg, th := a.cfg, a.th
	r := &Report{
		Site:       cfg.Name,
		Currency:   cfg.Currency,
		Files:      a.fileNames(),
		TotalRows:  len(ds.Records()),
		DateRange:  [2]string{ds.Days()[0], ds.Days()[len(ds.Days())-1]},
		UniqueDays: len(ds.Days()),
	}

	var classes Classification
	steps := []struct {
		name string
		run  func()
	}{
		{StageMonthlyTotals, func() { r.MonthlyTotals = monthlyTotals(ds) }},
		{StageEVDetection, func() { classes, r.EVDetection = classifyDays(ds, cfg.HasEV, th) }},
		{StageHourlyPatterns, func() { r.HourlyPatterns = hourlyPatterns(ds, classes, th) }},
		{StageWeekdayWeekend, func() { r.WeekdayWeekend = weekdayWeekend(ds, classes, th) }},
		{StageSystemSizing, func() { r.SystemSizing = systemSizing(ds, classes, cfg, th) }},
		{StageBatteryAnalysis, func() { r.BatteryAnalysis = batteryAnalysis(ds, classes, cfg, th) }},
		{StageAdditionalPanels, func() { r.AdditionalPanels = additionalPanels(ds, cfg) }},
		{StagePeakDemand, func() { r.PeakDemand = peakDemand(ds, classes, r.SystemSizing.InverterACW) }},
		{StageAnomalies, func() { r.Anomalies = detectAnomalies(ds, classes, th) }},
		{StageBillImpact, func() { r.BillImpact = billImpact(ds, cfg, r.MonthlyTotals) }},
		{StageROI, func() { r.ROI = projectROI(r.BillImpact.AnnualSavings, cfg.ROI, th) }},
		{StageTrends, func() { r.Trends = monthOverMonth(r.MonthlyTotals, r.BatteryAnalysis.MonthlyEfficiency) }},
		{StageBatteryHealth, func() { r.BatteryHealth = batteryHealth(r.BatteryAnalysis, cfg.SystemAge(), th) }},
		{StageAnnualProjection, func() {
			sc := overallSelfConsumption(r.MonthlyTotals)
			r.SelfConsumptionRate = round(sc, 1)
			r.AnnualProjection = annualProjection(r.MonthlyTotals, cfg, sc, th)
		}},
		{StageBestWorstDays, func() { r.BestWorstDays = bestWorstDays(ds, classes) }},
		{StageCarbonOffset, func() {
			r.CarbonOffset = carbonOffset(r.AnnualProjection.ProjectedAnnualSelfConsumed, cfg.GridEmissionFactor, th)
		}},
		{StageEVDetail, func() { r.EVDetail = evDetail(ds, classes, cfg.HasEV) }},
	}

	for i, step := range steps {
		step.run()
		a.observer.OnStage(Stage{Name: step.name, Index: i + 1, Total: len(steps)})
	}
	a.observer.OnReport(r)
	return r, nil
}

func (a *Analyzer) fileNames() []string {
	if len(a.files) == 0 {
		return []string{}
	}
	return append([]string(nil), a.files...)
}
