package analysis

import (
	"github.com/rs/zerolog"
)

// Stage identifies a finished step of an analysis run.
type Stage struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
	Total int    `json:"total"`
}

// Observer receives progress events from the engine. Implementations must not
// modify the report.
type Observer interface {
	OnStage(s Stage)
	OnReport(r *Report)
}

type nopObserver struct{}

func (nopObserver) OnStage(Stage)    {}
func (nopObserver) OnReport(*Report) {}

// Observers fans events out to several observers in order.
type Observers []Observer

func (o Observers) OnStage(s Stage) {
	for _, obs := range o {
		obs.OnStage(s)
	}
}

func (o Observers) OnReport(r *Report) {
	for _, obs := range o {
		obs.OnReport(r)
	}
}

// LogObserver logs stages at debug level and a report summary at info.
type LogObserver struct {
	logger zerolog.Logger
}

func NewLogObserver(logger zerolog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (l *LogObserver) OnStage(s Stage) {
	l.logger.Debug().
		Str("stage", s.Name).
		Int("step", s.Index).
		Int("of", s.Total).
		Msg("analysis stage complete")
}

func (l *LogObserver) OnReport(r *Report) {
	l.logger.Info().
		Int("rows", r.TotalRows).
		Int("days", r.UniqueDays).
		Str("from", r.DateRange[0]).
		Str("to", r.DateRange[1]).
		Int("ev_days", r.EVDetection.EVDayCount).
		Int("anomalies", r.Anomalies.Count()).
		Float64("annual_savings", r.BillImpact.AnnualSavings).
		Msg("analysis complete")
}
