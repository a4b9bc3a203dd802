package model

import (
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// TariffType selects how grid energy is billed.
type TariffType string

const (
	TariffFlat   TariffType = "flat"
	TariffTiered TariffType = "tiered"
	TariffTOU    TariffType = "tou"
)

// SiteConfig describes the installation and the commercial terms used to
// turn energy flows into money.
type SiteConfig struct {
	Name               string             `yaml:"name" json:"name,omitempty"`
	Currency           string             `yaml:"currency" json:"currency,omitempty"`
	PVKWp              float64            `yaml:"pv_kwp" json:"pv_kwp"`
	InverterKW         float64            `yaml:"inverter_kw" json:"inverter_kw"`
	BatteryNominalKWh  float64            `yaml:"battery_nominal_kwh" json:"battery_nominal_kwh"`
	HasEV              bool               `yaml:"has_ev" json:"has_ev"`
	FeedinRatio        float64            `yaml:"feedin_ratio" json:"feedin_ratio"`
	AdditionalKWp      float64            `yaml:"additional_kwp" json:"additional_kwp"`
	GridEmissionFactor float64            `yaml:"grid_emission_factor" json:"grid_emission_factor"`
	SeasonalFactors    map[string]float64 `yaml:"seasonal_factors" json:"seasonal_factors,omitempty"`
	Tariff             Tariff             `yaml:"tariff" json:"tariff"`
	ROI                *ROIConfig         `yaml:"roi" json:"roi,omitempty"`
	Thresholds         Thresholds         `yaml:"thresholds" json:"thresholds"`
	Data               DataConfig         `yaml:"data" json:"-"`
}

// SystemAge returns the ROI system age in years, or 0 without ROI input.
func (c SiteConfig) SystemAge() float64 {
	if c.ROI == nil {
		return 0
	}
	return c.ROI.SystemAgeYears
}

// EffectiveInverterKW returns the configured inverter rating, falling back to
// the array rating divided by 1.3.
func (c SiteConfig) EffectiveInverterKW() float64 {
	if c.InverterKW > 0 {
		return c.InverterKW
	}
	return c.PVKWp / 1.3
}

// SeasonalFactor returns the PV seasonal factor for a calendar month (1-12).
// Missing or non-positive factors count as 1.0.
func (c SiteConfig) SeasonalFactor(month int) float64 {
	f, ok := c.SeasonalFactors[fmt.Sprint(month)]
	if !ok || f <= 0 {
		return 1.0
	}
	return f
}

// Tariff is the grid import tariff.
type Tariff struct {
	Type       TariffType   `yaml:"type" json:"type"`
	ImportRate float64      `yaml:"import_rate" json:"import_rate"`
	Tiers      []TariffTier `yaml:"tiers" json:"tiers,omitempty"`
	TOU        *TOUTariff   `yaml:"tou" json:"tou,omitempty"`
}

// TariffTier bills consumption up to a cumulative monthly threshold at Rate.
// A non-positive threshold leaves the tier unbounded.
type TariffTier struct {
	Threshold float64 `yaml:"threshold" json:"threshold"`
	Rate      float64 `yaml:"rate" json:"rate"`
}

// TOUTariff bills the listed peak hours at PeakRate and every other hour at
// OffpeakRate. Unset rates fall back to the tariff's import rate.
type TOUTariff struct {
	PeakHours   HourSet  `yaml:"peak_hours" json:"peak_hours"`
	PeakRate    *float64 `yaml:"peak_rate" json:"peak_rate,omitempty"`
	OffpeakRate *float64 `yaml:"offpeak_rate" json:"offpeak_rate,omitempty"`
}

// ROIConfig holds the investment figures for payback analysis.
type ROIConfig struct {
	TotalCost      float64 `yaml:"total_cost" json:"total_cost"`
	SystemAgeYears float64 `yaml:"system_age_years" json:"system_age_years"`
}

// DataConfig locates the hourly telemetry.
type DataConfig struct {
	Dir         string `yaml:"dir"`
	Glob        string `yaml:"glob"`
	DatabaseURL string `yaml:"database_url"`
	SiteID      string `yaml:"site_id"`
	Table       string `yaml:"table"`
}

// HourSet is a set of hours of the day, held as sorted "HH:00" labels. It
// decodes from integers or hour strings.
type HourSet []string

// Contains reports whether the hour label is in the set.
func (s HourSet) Contains(hour string) bool {
	norm, err := NormalizeHour(hour)
	if err != nil {
		return false
	}
	for _, h := range s {
		if h == norm {
			return true
		}
	}
	return false
}

// NewHourSet builds a normalized HourSet from labels or numbers.
func NewHourSet(values ...any) (HourSet, error) {
	seen := make(map[string]bool, len(values))
	out := make(HourSet, 0, len(values))
	for _, v := range values {
		var label string
		var err error
		switch x := v.(type) {
		case int:
			if x < 0 || x > 23 {
				return nil, fmt.Errorf("hour %d out of range", x)
			}
			label = HourLabel(x)
		case float64:
			if x != float64(int(x)) || x < 0 || x > 23 {
				return nil, fmt.Errorf("hour %v out of range", x)
			}
			label = HourLabel(int(x))
		case string:
			label, err = NormalizeHour(x)
			if err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unsupported hour value %v", v)
		}
		if !seen[label] {
			seen[label] = true
			out = append(out, label)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *HourSet) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("peak_hours: expected a list, got %v", node.Tag)
	}
	values := make([]any, 0, len(node.Content))
	for _, item := range node.Content {
		switch item.Tag {
		case "!!int":
			var h int
			if err := item.Decode(&h); err != nil {
				return err
			}
			values = append(values, h)
		default:
			values = append(values, item.Value)
		}
	}
	set, err := NewHourSet(values...)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

func (s *HourSet) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	set, err := NewHourSet(raw...)
	if err != nil {
		return err
	}
	*s = set
	return nil
}
