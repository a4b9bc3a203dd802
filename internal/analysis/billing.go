package analysis

import (
	"math"

	"solar_analyzer/internal/model"
)

// MonthBill compares a month's bill with and without the system.
type MonthBill struct {
	WithoutSolar float64 `json:"without_solar"`
	WithSolar    float64 `json:"with_solar"`
	FeedinCredit float64 `json:"feedin_credit"`
	NetSavings   float64 `json:"net_savings"`
	Days         int     `json:"days"`
	WithoutTier  *int    `json:"without_tier,omitempty"`
	WithTier     *int    `json:"with_tier,omitempty"`
}

// BillImpact holds monthly bills and their annualised totals.
type BillImpact struct {
	TariffType         model.TariffType     `json:"tariff_type"`
	Monthly            map[string]MonthBill `json:"monthly"`
	AnnualWithoutSolar float64              `json:"annual_without_solar"`
	AnnualWithSolar    float64              `json:"annual_with_solar"`
	AnnualFeedinCredit float64              `json:"annual_feedin_credit"`
	AnnualSavings      float64              `json:"annual_savings"`
	AnnualReductionPct float64              `json:"annual_reduction_pct"`
}

// tariff prices grid energy under the configured scheme.
type tariff struct {
	model.Tariff
}

func tariffType(t model.Tariff) model.TariffType {
	switch t.Type {
	case model.TariffTiered, model.TariffTOU:
		return t.Type
	default:
		return model.TariffFlat
	}
}

// monthlyCost prices a month of consumption in kWh. Tiered tariffs fill each
// band up to its cumulative threshold; usage past the last threshold is billed
// at the last tier's rate.
func (t tariff) monthlyCost(kwh float64) float64 {
	if tariffType(t.Tariff) != model.TariffTiered || len(t.Tiers) == 0 {
		return kwh * t.ImportRate
	}
	var cost, prev float64
	remaining := kwh
	for _, tier := range t.Tiers {
		band := tierLimit(tier) - prev
		used := math.Min(remaining, band)
		cost += used * tier.Rate
		remaining -= used
		prev = tierLimit(tier)
		if remaining <= 0 {
			break
		}
	}
	if remaining > 0 {
		cost += remaining * t.Tiers[len(t.Tiers)-1].Rate
	}
	return cost
}

// tier returns the 1-based tier a monthly consumption falls in, or
// len(tiers)+1 above the last threshold.
func (t tariff) tier(kwh float64) int {
	for i, tier := range t.Tiers {
		if kwh <= tierLimit(tier) {
			return i + 1
		}
	}
	return len(t.Tiers) + 1
}

func tierLimit(tier model.TariffTier) float64 {
	if tier.Threshold <= 0 {
		return math.Inf(1)
	}
	return tier.Threshold
}

// hourlyCost prices per-hour energy under a time-of-use tariff.
func (t tariff) hourlyCost(records []model.HourlyRecord, kwh func(model.HourlyRecord) float64) float64 {
	peakRate, offpeakRate := t.ImportRate, t.ImportRate
	var peak model.HourSet
	if t.TOU != nil {
		peak = t.TOU.PeakHours
		if t.TOU.PeakRate != nil {
			peakRate = *t.TOU.PeakRate
		}
		if t.TOU.OffpeakRate != nil {
			offpeakRate = *t.TOU.OffpeakRate
		}
	}
	var cost float64
	for _, r := range records {
		if peak.Contains(r.Hour) {
			cost += kwh(r) * peakRate
		} else {
			cost += kwh(r) * offpeakRate
		}
	}
	return cost
}

// billImpact bills each month twice: the load as if drawn entirely from the
// grid, and the actual grid import. Annual figures scale the sum of the
// rounded monthly values by 365 / covered days.
func billImpact(ds *Dataset, cfg model.SiteConfig, totals map[string]MonthTotals) BillImpact {
	t := tariff{cfg.Tariff}
	kind := tariffType(cfg.Tariff)
	b := BillImpact{
		TariffType: kind,
		Monthly:    make(map[string]MonthBill, len(ds.Months())),
	}

	var days int
	var without, with, credit, savings float64
	for _, m := range ds.Months() {
		records := ds.Month(m)
		s := sumRecords(records)

		var withoutSolar, withSolar float64
		if kind == model.TariffTOU {
			withoutSolar = t.hourlyCost(records, func(r model.HourlyRecord) float64 { return r.LoadKWh })
			withSolar = t.hourlyCost(records, func(r model.HourlyRecord) float64 { return r.GridImportKWh })
		} else {
			withoutSolar = t.monthlyCost(s.load)
			withSolar = t.monthlyCost(s.imp)
		}
		feedin := s.export * cfg.Tariff.ImportRate * cfg.FeedinRatio

		mb := MonthBill{
			WithoutSolar: roundMoney(withoutSolar),
			WithSolar:    roundMoney(withSolar),
			FeedinCredit: roundMoney(feedin),
			NetSavings:   roundMoney(withoutSolar - withSolar + feedin),
			Days:         totals[m].Days,
		}
		if kind == model.TariffTiered && len(cfg.Tariff.Tiers) > 0 {
			wo, wi := t.tier(s.load), t.tier(s.imp)
			mb.WithoutTier, mb.WithTier = &wo, &wi
		}
		b.Monthly[m] = mb

		days += mb.Days
		without += mb.WithoutSolar
		with += mb.WithSolar
		credit += mb.FeedinCredit
		savings += mb.NetSavings
	}

	annual := func(v float64) float64 {
		if days == 0 {
			return 0
		}
		return v / float64(days) * 365
	}
	annualWithout := annual(without)
	annualSavings := annual(savings)

	b.AnnualWithoutSolar = roundMoney(annualWithout)
	b.AnnualWithSolar = roundMoney(annual(with))
	b.AnnualFeedinCredit = roundMoney(annual(credit))
	b.AnnualSavings = roundMoney(annualSavings)
	b.AnnualReductionPct = round(safeDiv(annualSavings, annualWithout)*100, 0)
	return b
}

// roundMoney rounds currency amounts to cents.
func roundMoney(v float64) float64 {
	return round(v, 2)
}
