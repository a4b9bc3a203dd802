package analysis

import (
	"math"
	"strconv"

	"solar_analyzer/internal/model"
)

// Confidence grades a projection by the number of months behind it.
type Confidence string

const (
	ConfidenceLow      Confidence = "low"
	ConfidenceModerate Confidence = "moderate"
	ConfidenceHigh     Confidence = "high"
)

func confidenceFor(months int) Confidence {
	switch {
	case months < 3:
		return ConfidenceLow
	case months < 6:
		return ConfidenceModerate
	default:
		return ConfidenceHigh
	}
}

// DeseasonalizedMonth shows how one month feeds the baseline.
type DeseasonalizedMonth struct {
	AvgDaily       float64 `json:"avg_daily"`
	Factor         float64 `json:"factor"`
	Deseasonalized float64 `json:"deseasonalized"`
}

// AnnualProjection extrapolates observed months to a full year.
type AnnualProjection struct {
	MonthsCount                 int                            `json:"months_count"`
	Confidence                  Confidence                     `json:"confidence"`
	BaselineDailyPV             float64                        `json:"baseline_daily_pv"`
	ProjectedAnnualPV           float64                        `json:"projected_annual_pv"`
	ProjectedAnnualSelfConsumed float64                        `json:"projected_annual_self_consumed"`
	ProjectedAnnualExport       float64                        `json:"projected_annual_export"`
	ProjectedAnnualPVYear10     float64                        `json:"projected_annual_pv_year10"`
	ProjectedAnnualPVYear25     float64                        `json:"projected_annual_pv_year25"`
	DeseasonalizedMonths        map[string]DeseasonalizedMonth `json:"deseasonalized_months"`
}

// annualProjection divides each month's average daily PV by its seasonal
// factor, averages the results into a baseline, then re-applies every
// month's factor over DaysPerMonth days.
func annualProjection(totals map[string]MonthTotals, cfg model.SiteConfig, scRate float64, th model.Thresholds) AnnualProjection {
	months := sortedKeys(totals)
	p := AnnualProjection{
		MonthsCount:          len(months),
		Confidence:           confidenceFor(len(months)),
		DeseasonalizedMonths: make(map[string]DeseasonalizedMonth, len(months)),
	}

	deseasonalized := make([]float64, 0, len(months))
	for _, m := range months {
		factor := cfg.SeasonalFactor(calendarMonth(m))
		avg := perDay(totals[m].TotalPV, totals[m].Days)
		d := avg / factor
		deseasonalized = append(deseasonalized, d)
		p.DeseasonalizedMonths[m] = DeseasonalizedMonth{
			AvgDaily:       round(avg, 1),
			Factor:         factor,
			Deseasonalized: round(d, 1),
		}
	}
	baseline := mean(deseasonalized)

	var annual float64
	for month := 1; month <= 12; month++ {
		annual += baseline * cfg.SeasonalFactor(month) * th.DaysPerMonth
	}
	var selfConsumed float64
	if scRate > 0 {
		selfConsumed = annual * scRate / 100
	}

	p.BaselineDailyPV = round(baseline, 1)
	p.ProjectedAnnualPV = round(annual, 0)
	p.ProjectedAnnualSelfConsumed = round(selfConsumed, 0)
	p.ProjectedAnnualExport = round(annual-selfConsumed, 0)
	p.ProjectedAnnualPVYear10 = round(annual*math.Pow(1-th.DegradationRate, 10), 0)
	p.ProjectedAnnualPVYear25 = round(annual*math.Pow(1-th.DegradationRate, 25), 0)
	return p
}

// calendarMonth extracts the month number from a YYYY-MM key.
func calendarMonth(key string) int {
	if len(key) < 7 {
		return 0
	}
	n, err := strconv.Atoi(key[5:7])
	if err != nil {
		return 0
	}
	return n
}

// CarbonOffset converts projected self-consumption into avoided emissions.
type CarbonOffset struct {
	GridEmissionFactor     float64 `json:"grid_emission_factor"`
	AnnualCO2AvoidedKg     float64 `json:"annual_co2_avoided_kg"`
	AnnualCO2AvoidedTonnes float64 `json:"annual_co2_avoided_tonnes"`
	EquivTrees             float64 `json:"equiv_trees"`
	EquivKmDriving         float64 `json:"equiv_km_driving"`
}

func carbonOffset(selfConsumed, factor float64, th model.Thresholds) CarbonOffset {
	kg := selfConsumed * factor
	return CarbonOffset{
		GridEmissionFactor:     factor,
		AnnualCO2AvoidedKg:     round(kg, 0),
		AnnualCO2AvoidedTonnes: round(kg/1000, 1),
		EquivTrees:             round(kg/th.TreeKgCO2, 0),
		EquivKmDriving:         round(kg/th.CarKgCO2PerKm, 0),
	}
}
