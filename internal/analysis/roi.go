package analysis

import (
	"encoding/json"
	"math"

	"solar_analyzer/internal/model"
)

// SavingsSample holds degraded savings at selected years of operation.
type SavingsSample struct {
	Year1  float64 `json:"year_1"`
	Year10 float64 `json:"year_10"`
	Year25 float64 `json:"year_25"`
}

// ROIResult is the payback projection. When savings are not positive only
// Error is set.
type ROIResult struct {
	Error               string         `json:"error,omitempty"`
	TotalCost           float64        `json:"total_cost"`
	SystemAgeYears      float64        `json:"system_age_years"`
	DailySavings        float64        `json:"daily_savings"`
	AnnualSavingsYear1  float64        `json:"annual_savings_year1"`
	SimplePayback       *float64       `json:"simple_payback"`
	RemainingPayback    *float64       `json:"remaining_payback"`
	LifetimeSavings25yr float64        `json:"lifetime_savings_25yr"`
	YearlySavingsSample *SavingsSample `json:"yearly_savings_sample,omitempty"`
}

// MarshalJSON writes only the error when the projection could not be made.
func (r ROIResult) MarshalJSON() ([]byte, error) {
	if r.Error != "" {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{r.Error})
	}
	type plain ROIResult
	return json.Marshal(plain(r))
}

// Err returns ErrNoSavings when the section carries the no-savings condition.
func (r *ROIResult) Err() error {
	if r != nil && r.Error != "" {
		return ErrNoSavings
	}
	return nil
}

// degradedSavings returns year n's savings (n from 0) under compound
// degradation.
func degradedSavings(annual, rate float64, n int) float64 {
	return annual * math.Pow(1-rate, float64(n))
}

// paybackYears accumulates degraded yearly savings for years 0..horizon and
// returns the fractional year at which they first cover cost.
func paybackYears(annual, cost, rate float64, horizon int) (float64, bool) {
	var cumulative float64
	for n := 0; n <= horizon; n++ {
		year := degradedSavings(annual, rate, n)
		cumulative += year
		if cumulative >= cost {
			prev := cumulative - year
			var fraction float64
			if year > 0 {
				fraction = (cost - prev) / year
			}
			return float64(n) + fraction, true
		}
	}
	return 0, false
}

// projectROI returns nil without ROI input.
func projectROI(annualSavings float64, cfg *model.ROIConfig, th model.Thresholds) *ROIResult {
	if cfg == nil {
		return nil
	}
	if annualSavings <= 0 {
		return &ROIResult{Error: noSavingsMessage}
	}

	r := &ROIResult{
		TotalCost:          cfg.TotalCost,
		SystemAgeYears:     cfg.SystemAgeYears,
		DailySavings:       round(annualSavings/365, 1),
		AnnualSavingsYear1: roundMoney(annualSavings),
	}

	if payback, ok := paybackYears(annualSavings, cfg.TotalCost, th.DegradationRate, th.LifetimeYears); ok {
		r.SimplePayback = floatPtr(round(payback, 1))
		r.RemainingPayback = floatPtr(round(max(0, payback-cfg.SystemAgeYears), 1))
	}

	var lifetime float64
	for n := 0; n < th.LifetimeYears; n++ {
		lifetime += degradedSavings(annualSavings, th.DegradationRate, n)
	}
	r.LifetimeSavings25yr = roundMoney(lifetime)

	sample := func(year int) float64 {
		if year > th.LifetimeYears+1 {
			return 0
		}
		return roundMoney(degradedSavings(annualSavings, th.DegradationRate, year-1))
	}
	r.YearlySavingsSample = &SavingsSample{
		Year1:  sample(1),
		Year10: sample(10),
		Year25: sample(25),
	}
	return r
}
