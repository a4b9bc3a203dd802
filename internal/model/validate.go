package model

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidConfig matches any site configuration validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// ValidationError describes one invalid configuration value.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s (%s): %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is every problem found in one configuration.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	lines := make([]string, len(e))
	for i, v := range e {
		lines[i] = v.Error()
	}
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(lines, "\n  - "))
}

func (e ValidationErrors) Is(target error) bool {
	return target == ErrInvalidConfig
}

func (e *ValidationErrors) add(field string, value any, message string) {
	v := ""
	if value != nil {
		v = fmt.Sprint(value)
	}
	*e = append(*e, &ValidationError{Field: field, Value: v, Message: message})
}

// Validate checks the configuration and reports every problem at once,
// ordered by field. An empty tariff type bills as flat.
func (c SiteConfig) Validate() error {
	var errs ValidationErrors

	if c.PVKWp <= 0 {
		errs.add("pv_kwp", c.PVKWp, "must be greater than 0")
	}
	if c.BatteryNominalKWh <= 0 {
		errs.add("battery_nominal_kwh", c.BatteryNominalKWh, "must be greater than 0")
	}
	nonNegative := []struct {
		field string
		value float64
	}{
		{"inverter_kw", c.InverterKW},
		{"feedin_ratio", c.FeedinRatio},
		{"additional_kwp", c.AdditionalKWp},
		{"grid_emission_factor", c.GridEmissionFactor},
		{"tariff.import_rate", c.Tariff.ImportRate},
	}
	for _, f := range nonNegative {
		if f.value < 0 {
			errs.add(f.field, f.value, "must not be negative")
		}
	}

	c.Tariff.validate(&errs)

	for key, factor := range c.SeasonalFactors {
		month, err := strconv.Atoi(key)
		if err != nil || month < 1 || month > 12 {
			errs.add("seasonal_factors", key, "month must be 1..12")
			continue
		}
		if factor <= 0 {
			errs.add("seasonal_factors."+key, factor, "must be greater than 0")
		}
	}

	if c.ROI != nil {
		if c.ROI.TotalCost < 0 {
			errs.add("roi.total_cost", c.ROI.TotalCost, "must not be negative")
		}
		if c.ROI.SystemAgeYears < 0 {
			errs.add("roi.system_age_years", c.ROI.SystemAgeYears, "must not be negative")
		}
	}

	if h := c.Thresholds.FullDayMinHours; h < 0 || h > 23 {
		errs.add("thresholds.full_day_min_hours", h, "must be between 0 and 23")
	}
	if v := c.Thresholds.ExportHourKWh; v != nil && *v < 0 {
		errs.add("thresholds.export_hour_kwh", *v, "must not be negative")
	}
	if v := c.Thresholds.PVAnomalyMinHistory; v != nil && *v < 0 {
		errs.add("thresholds.pv_anomaly_min_history", *v, "must not be negative")
	}
	if v := c.Thresholds.LoadAnomalySigma; v != nil && *v < 0 {
		errs.add("thresholds.load_anomaly_sigma", *v, "must not be negative")
	}

	if len(errs) == 0 {
		return nil
	}
	// map iteration above is unordered
	sort.SliceStable(errs, func(i, j int) bool {
		return errs[i].Field < errs[j].Field
	})
	return errs
}

func (t Tariff) validate(errs *ValidationErrors) {
	switch t.Type {
	case "", TariffFlat, TariffTOU:
	case TariffTiered:
		if len(t.Tiers) == 0 {
			errs.add("tariff.tiers", nil, "tiered tariff needs at least one tier")
		}
	default:
		errs.add("tariff.type", t.Type, "must be one of flat, tiered, tou")
	}

	last := 0.0
	for i, tier := range t.Tiers {
		field := fmt.Sprintf("tariff.tiers[%d]", i)
		if tier.Rate < 0 {
			errs.add(field+".rate", tier.Rate, "must not be negative")
		}
		if tier.Threshold <= 0 {
			if i != len(t.Tiers)-1 {
				errs.add(field+".threshold", tier.Threshold, "only the last tier may be unbounded")
			}
			continue
		}
		if tier.Threshold <= last {
			errs.add(field+".threshold", tier.Threshold, "thresholds must be ascending")
		}
		last = tier.Threshold
	}

	if t.TOU != nil {
		for _, r := range []struct {
			field string
			rate  *float64
		}{{"tariff.tou.peak_rate", t.TOU.PeakRate}, {"tariff.tou.offpeak_rate", t.TOU.OffpeakRate}} {
			if r.rate != nil && *r.rate < 0 {
				errs.add(r.field, *r.rate, "must not be negative")
			}
		}
	}
}
