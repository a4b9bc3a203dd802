package analysis

import "solar_analyzer/internal/model"

// PanelProjection estimates the effect of adding PV capacity.
type PanelProjection struct {
	AdditionalKWp          float64 `json:"additional_kwp"`
	TotalKWp               float64 `json:"total_kwp"`
	ExtraSelfConsumedTotal float64 `json:"extra_self_consumed_total"`
	ExtraExportedTotal     float64 `json:"extra_exported_total"`
	ExtraSelfConsumedDaily float64 `json:"extra_self_consumed_daily"`
	ExtraExportedDaily     float64 `json:"extra_exported_daily"`
	ExtraDailySavings      float64 `json:"extra_daily_savings"`
}

// additionalPanels scales each hour's PV linearly. Extra generation first
// offsets that hour's import; the remainder is exported.
func additionalPanels(ds *Dataset, cfg model.SiteConfig) *PanelProjection {
	if cfg.AdditionalKWp <= 0 || cfg.PVKWp <= 0 {
		return nil
	}
	total := cfg.PVKWp + cfg.AdditionalKWp
	scale := total / cfg.PVKWp

	var selfConsumed, exported float64
	for _, r := range ds.Records() {
		extra := r.PVKWh * (scale - 1)
		if r.GridImportKWh > 0 {
			offset := min(extra, r.GridImportKWh)
			selfConsumed += offset
			exported += extra - offset
		} else {
			exported += extra
		}
	}

	p := &PanelProjection{
		AdditionalKWp:          cfg.AdditionalKWp,
		TotalKWp:               total,
		ExtraSelfConsumedTotal: round(selfConsumed, 1),
		ExtraExportedTotal:     round(exported, 1),
	}
	if n := float64(len(ds.FullDays())); n > 0 {
		rate := cfg.Tariff.ImportRate
		p.ExtraSelfConsumedDaily = round(selfConsumed/n, 1)
		p.ExtraExportedDaily = round(exported/n, 1)
		p.ExtraDailySavings = round(selfConsumed/n*rate+exported/n*rate*cfg.FeedinRatio, 1)
	}
	return p
}
