package analysis

import "solar_analyzer/internal/model"

// EVDetection summarises the EV-day classifier. Average and threshold fields
// are null when classification is disabled.
type EVDetection struct {
	Enabled       bool     `json:"enabled"`
	AvgDailyLoad  *float64 `json:"avg_daily_load"`
	Threshold     *float64 `json:"threshold"`
	EVDayCount    int      `json:"ev_day_count"`
	NonEVDayCount int      `json:"non_ev_day_count"`
	TotalFullDays int      `json:"total_full_days"`
	EVDates       []string `json:"ev_dates"`
	EVAvgLoad     *float64 `json:"ev_avg_load"`
	NonEVAvgLoad  *float64 `json:"non_ev_avg_load"`
}

// Classification partitions the full days into EV and non-EV sets.
type Classification struct {
	EV    []string
	NonEV []string
	set   map[string]DayKind
}

// Kind returns the label of a day and whether it is a full day.
func (c Classification) Kind(day string) (DayKind, bool) {
	k, ok := c.set[day]
	return k, ok
}

// Days returns the sorted days of the given kind.
func (c Classification) Days(kind DayKind) []string {
	if kind == DayEV {
		return c.EV
	}
	return c.NonEV
}

// IsEV reports whether the day was classified as an EV charging day.
func (c Classification) IsEV(day string) bool {
	return c.set[day] == DayEV
}

// classifyDays labels each full day. A day is an EV day when its load exceeds
// the mean full-day load by max(EVMinThresholdKWh, EVLoadMultiplier × mean).
// With enabled false every full day is non-EV.
func classifyDays(ds *Dataset, enabled bool, th model.Thresholds) (Classification, EVDetection) {
	full := ds.FullDays()
	c := Classification{
		EV:    []string{},
		NonEV: []string{},
		set:   make(map[string]DayKind, len(full)),
	}
	info := EVDetection{
		Enabled:       enabled,
		TotalFullDays: len(full),
		EVDates:       []string{},
	}

	if !enabled || len(full) == 0 {
		for _, day := range full {
			c.NonEV = append(c.NonEV, day)
			c.set[day] = DayNonEV
		}
		info.NonEVDayCount = len(c.NonEV)
		return c, info
	}

	loads := ds.dayValues(full, func(t DayTotals) float64 { return t.Load })
	avg := mean(loads)
	threshold := max(th.EVMinThresholdKWh, avg*th.EVLoadMultiplier)

	var evLoads, nonEVLoads []float64
	for i, day := range full {
		if loads[i] > avg+threshold {
			c.EV = append(c.EV, day)
			c.set[day] = DayEV
			evLoads = append(evLoads, loads[i])
		} else {
			c.NonEV = append(c.NonEV, day)
			c.set[day] = DayNonEV
			nonEVLoads = append(nonEVLoads, loads[i])
		}
	}

	info.AvgDailyLoad = floatPtr(round(avg, 1))
	info.Threshold = floatPtr(round(threshold, 1))
	info.EVDayCount = len(c.EV)
	info.NonEVDayCount = len(c.NonEV)
	info.EVDates = append(info.EVDates, c.EV...)
	if len(evLoads) > 0 {
		info.EVAvgLoad = floatPtr(round(mean(evLoads), 1))
	}
	if len(nonEVLoads) > 0 {
		info.NonEVAvgLoad = floatPtr(round(mean(nonEVLoads), 1))
	}
	return c, info
}
