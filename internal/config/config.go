package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"solar_analyzer/internal/model"
)

const (
	DefaultCurrency           = "$"
	DefaultGridEmissionFactor = 0.5
	DefaultGlob               = "solar_hourly_*.csv"
	DefaultTable              = "hourly_records"
)

// Environment overrides, applied after the file is read.
const (
	EnvDataDir     = "SOLAR_DATA_DIR"
	EnvDatabaseURL = "SOLAR_DATABASE_URL"
	EnvSiteID      = "SOLAR_SITE_ID"
	EnvCurrency    = "SOLAR_CURRENCY"
)

// Defaults returns a site configuration holding only default values.
func Defaults() model.SiteConfig {
	return model.SiteConfig{
		Currency:           DefaultCurrency,
		GridEmissionFactor: DefaultGridEmissionFactor,
		Tariff:             model.Tariff{Type: model.TariffFlat},
		Thresholds:         model.DefaultThresholds(),
		Data: model.DataConfig{
			Glob:  DefaultGlob,
			Table: DefaultTable,
		},
	}
}

// Load reads a site configuration from a YAML or JSON file, applies
// defaults and environment overrides, and validates the result.
func Load(path string) (*model.SiteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filepath.Base(path), err)
	}

	if cfg.Name == "" {
		cfg.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if cfg.Data.Dir != "" && !filepath.IsAbs(cfg.Data.Dir) {
		cfg.Data.Dir = filepath.Join(filepath.Dir(path), cfg.Data.Dir)
	}

	applyEnvironmentVariables(&cfg)
	finalize(&cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Merge decodes a YAML or JSON document over base and returns the validated
// result. base is left untouched.
func Merge(base model.SiteConfig, data []byte) (*model.SiteConfig, error) {
	cfg := clone(base)
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config override: %w", err)
		}
	}
	finalize(&cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvironmentVariables(c *model.SiteConfig) {
	if val := os.Getenv(EnvDataDir); val != "" {
		c.Data.Dir = val
	}
	if val := os.Getenv(EnvDatabaseURL); val != "" {
		c.Data.DatabaseURL = val
	}
	if val := os.Getenv(EnvSiteID); val != "" {
		c.Data.SiteID = val
	}
	if val := os.Getenv(EnvCurrency); val != "" {
		c.Currency = val
	}
}

// finalize fills values that default from other fields.
func finalize(c *model.SiteConfig) {
	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	if c.Tariff.Type == "" {
		c.Tariff.Type = model.TariffFlat
	}
	if c.InverterKW <= 0 && c.PVKWp > 0 {
		c.InverterKW = c.EffectiveInverterKW()
	}
	if c.Data.Glob == "" {
		c.Data.Glob = DefaultGlob
	}
	if c.Data.Table == "" {
		c.Data.Table = DefaultTable
	}
	if c.Data.SiteID == "" {
		c.Data.SiteID = c.Name
	}
	c.Thresholds = c.Thresholds.WithDefaults()
}

func clone(c model.SiteConfig) model.SiteConfig {
	out := c
	if c.SeasonalFactors != nil {
		out.SeasonalFactors = make(map[string]float64, len(c.SeasonalFactors))
		for k, v := range c.SeasonalFactors {
			out.SeasonalFactors[k] = v
		}
	}
	out.Tariff.Tiers = append([]model.TariffTier(nil), c.Tariff.Tiers...)
	out.Thresholds = c.Thresholds.Clone()
	if c.Tariff.TOU != nil {
		tou := *c.Tariff.TOU
		tou.PeakHours = append(model.HourSet(nil), c.Tariff.TOU.PeakHours...)
		out.Tariff.TOU = &tou
	}
	if c.ROI != nil {
		roi := *c.ROI
		out.ROI = &roi
	}
	return out
}

// Validate checks a site configuration and reports every problem at once.
func Validate(c model.SiteConfig) error {
	return c.Validate()
}
