package model

// Thresholds collects the tunable constants of the analysis. A zero field
// takes its default from DefaultThresholds. The knobs where zero is a
// meaningful setting (export_hour_kwh, pv_anomaly_min_history and
// load_anomaly_sigma) are pointers: nil takes the default and an explicit 0
// is kept.
type Thresholds struct {
	FullDayMinHours int `yaml:"full_day_min_hours" json:"full_day_min_hours"`

	EVMinThresholdKWh float64 `yaml:"ev_min_threshold_kwh" json:"ev_min_threshold_kwh"`
	EVLoadMultiplier  float64 `yaml:"ev_load_multiplier" json:"ev_load_multiplier"`

	PeakPVFraction  float64  `yaml:"peak_pv_fraction" json:"peak_pv_fraction"`
	ExportHourKWh   *float64 `yaml:"export_hour_kwh" json:"export_hour_kwh,omitempty"`
	EVChargingDiffW float64  `yaml:"ev_charging_diff_w" json:"ev_charging_diff_w"`
	WeekdayDiffW    float64  `yaml:"weekday_diff_w" json:"weekday_diff_w"`

	PanelClipFraction     float64 `yaml:"panel_clip_fraction" json:"panel_clip_fraction"`
	InverterLimitFraction float64 `yaml:"inverter_limit_fraction" json:"inverter_limit_fraction"`

	MinSOCDropPct          float64 `yaml:"min_soc_drop_pct" json:"min_soc_drop_pct"`
	UsableFallbackFraction float64 `yaml:"usable_fallback_fraction" json:"usable_fallback_fraction"`

	PVAnomalyMinHistory *int    `yaml:"pv_anomaly_min_history" json:"pv_anomaly_min_history,omitempty"`
	PVAnomalyWindow     int     `yaml:"pv_anomaly_window" json:"pv_anomaly_window"`
	PVAnomalyFraction   float64 `yaml:"pv_anomaly_fraction" json:"pv_anomaly_fraction"`

	LoadAnomalyMinDays int      `yaml:"load_anomaly_min_days" json:"load_anomaly_min_days"`
	LoadAnomalySigma   *float64 `yaml:"load_anomaly_sigma" json:"load_anomaly_sigma,omitempty"`

	BatteryAnomalySOCDelta      float64 `yaml:"battery_anomaly_soc_delta" json:"battery_anomaly_soc_delta"`
	BatteryAnomalyMinChargeKWh  float64 `yaml:"battery_anomaly_min_charge_kwh" json:"battery_anomaly_min_charge_kwh"`
	BatteryAnomalyEfficiencyPct float64 `yaml:"battery_anomaly_efficiency_pct" json:"battery_anomaly_efficiency_pct"`

	DegradationRate    float64 `yaml:"degradation_rate" json:"degradation_rate"`
	LifetimeYears      int     `yaml:"lifetime_years" json:"lifetime_years"`
	BatteryCycleBudget float64 `yaml:"battery_cycle_budget" json:"battery_cycle_budget"`

	DaysPerMonth  float64 `yaml:"days_per_month" json:"days_per_month"`
	TreeKgCO2     float64 `yaml:"tree_kg_co2" json:"tree_kg_co2"`
	CarKgCO2PerKm float64 `yaml:"car_kg_co2_per_km" json:"car_kg_co2_per_km"`
}

// DefaultThresholds returns the stock analysis constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		FullDayMinHours:             20,
		EVMinThresholdKWh:           8,
		EVLoadMultiplier:            0.3,
		PeakPVFraction:              0.5,
		ExportHourKWh:               ptr(0.05),
		EVChargingDiffW:             500,
		WeekdayDiffW:                200,
		PanelClipFraction:           0.85,
		InverterLimitFraction:       0.95,
		MinSOCDropPct:               30,
		UsableFallbackFraction:      0.9,
		PVAnomalyMinHistory:         ptr(3),
		PVAnomalyWindow:             14,
		PVAnomalyFraction:           0.6,
		LoadAnomalyMinDays:          5,
		LoadAnomalySigma:            ptr(2.0),
		BatteryAnomalySOCDelta:      5,
		BatteryAnomalyMinChargeKWh:  1,
		BatteryAnomalyEfficiencyPct: 80,
		DegradationRate:             0.005,
		LifetimeYears:               25,
		BatteryCycleBudget:          6000,
		DaysPerMonth:                30.44,
		TreeKgCO2:                   22,
		CarKgCO2PerKm:               0.21,
	}
}

// WithDefaults returns t with every zero or nil field replaced by its default.
func (t Thresholds) WithDefaults() Thresholds {
	d := DefaultThresholds()
	setInt(&t.FullDayMinHours, d.FullDayMinHours)
	setFloat(&t.EVMinThresholdKWh, d.EVMinThresholdKWh)
	setFloat(&t.EVLoadMultiplier, d.EVLoadMultiplier)
	setFloat(&t.PeakPVFraction, d.PeakPVFraction)
	setPtr(&t.ExportHourKWh, d.ExportHourKWh)
	setFloat(&t.EVChargingDiffW, d.EVChargingDiffW)
	setFloat(&t.WeekdayDiffW, d.WeekdayDiffW)
	setFloat(&t.PanelClipFraction, d.PanelClipFraction)
	setFloat(&t.InverterLimitFraction, d.InverterLimitFraction)
	setFloat(&t.MinSOCDropPct, d.MinSOCDropPct)
	setFloat(&t.UsableFallbackFraction, d.UsableFallbackFraction)
	setPtr(&t.PVAnomalyMinHistory, d.PVAnomalyMinHistory)
	setInt(&t.PVAnomalyWindow, d.PVAnomalyWindow)
	setFloat(&t.PVAnomalyFraction, d.PVAnomalyFraction)
	setInt(&t.LoadAnomalyMinDays, d.LoadAnomalyMinDays)
	setPtr(&t.LoadAnomalySigma, d.LoadAnomalySigma)
	setFloat(&t.BatteryAnomalySOCDelta, d.BatteryAnomalySOCDelta)
	setFloat(&t.BatteryAnomalyMinChargeKWh, d.BatteryAnomalyMinChargeKWh)
	setFloat(&t.BatteryAnomalyEfficiencyPct, d.BatteryAnomalyEfficiencyPct)
	setFloat(&t.DegradationRate, d.DegradationRate)
	setInt(&t.LifetimeYears, d.LifetimeYears)
	setFloat(&t.BatteryCycleBudget, d.BatteryCycleBudget)
	setFloat(&t.DaysPerMonth, d.DaysPerMonth)
	setFloat(&t.TreeKgCO2, d.TreeKgCO2)
	setFloat(&t.CarKgCO2PerKm, d.CarKgCO2PerKm)
	return t
}

func setFloat(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}

func setInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

func setPtr[T any](v **T, def *T) {
	if *v == nil {
		*v = def
	}
}

// Clone returns a copy of t that shares no pointers with it.
func (t Thresholds) Clone() Thresholds {
	out := t
	out.ExportHourKWh = clonePtr(t.ExportHourKWh)
	out.PVAnomalyMinHistory = clonePtr(t.PVAnomalyMinHistory)
	out.LoadAnomalySigma = clonePtr(t.LoadAnomalySigma)
	return out
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func ptr[T any](v T) *T { return &v }
