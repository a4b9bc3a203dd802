package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"solar_analyzer/internal/analysis"
)

const metricPrefix = "solar_"

// Result label values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	analysisTotal   *prometheus.CounterVec
	analysisLatency *prometheus.HistogramVec
	stageTotal      *prometheus.CounterVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	recordsLoaded *prometheus.CounterVec

	reportRecords   *prometheus.GaugeVec
	reportAnomalies *prometheus.GaugeVec
	reportSavings   *prometheus.GaugeVec

	wsClients prometheus.Gauge
)

// Init registers the metrics with the default registry. Calls after the
// first are no-ops.
func Init() {
	registerOnce.Do(func() {
		analysisTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "analysis_total",
				Help: "Total analysis runs by result",
			},
			[]string{"result"},
		)
		analysisLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "analysis_latency_seconds",
				Help:    "Analysis latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		stageTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "analysis_stage_total",
				Help: "Completed analysis stages by name",
			},
			[]string{"stage"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		recordsLoaded = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "records_loaded_total",
				Help: "Hourly records loaded by source kind",
			},
			[]string{"source"},
		)

		reportRecords = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "report_records",
				Help: "Hourly records in the latest report by site",
			},
			[]string{"site"},
		)
		reportAnomalies = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "report_anomalies",
				Help: "Anomalous days in the latest report by site and kind",
			},
			[]string{"site", "kind"},
		)
		reportSavings = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "report_annual_savings",
				Help: "Annual bill savings in the latest report by site",
			},
			[]string{"site"},
		)

		wsClients = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "ws_clients",
				Help: "Connected WebSocket clients",
			},
		)

		prometheus.MustRegister(
			analysisTotal,
			analysisLatency,
			stageTotal,
			exportTotal,
			exportLatency,
			recordsLoaded,
			reportRecords,
			reportAnomalies,
			reportSavings,
			wsClients,
		)
	})
}

// ObserveAnalysis records analysis duration and result.
func ObserveAnalysis(result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if analysisTotal != nil {
		analysisTotal.WithLabelValues(result).Inc()
	}
	if analysisLatency != nil {
		analysisLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveExport records export duration and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// AddRecordsLoaded counts records read from a source kind (csv, postgres).
func AddRecordsLoaded(source string, n int) {
	if n <= 0 {
		return
	}
	if source == "" {
		source = "unknown"
	}
	if recordsLoaded != nil {
		recordsLoaded.WithLabelValues(source).Add(float64(n))
	}
}

// SetWSClients sets the connected client gauge.
func SetWSClients(n int) {
	if wsClients != nil {
		wsClients.Set(float64(n))
	}
}

// Observer feeds stage completions and report gauges from an analysis run.
type Observer struct{}

func (Observer) OnStage(s analysis.Stage) {
	if stageTotal != nil {
		stageTotal.WithLabelValues(s.Name).Inc()
	}
}

func (Observer) OnReport(r *analysis.Report) {
	site := r.Site
	if site == "" {
		site = "default"
	}
	if reportRecords != nil {
		reportRecords.WithLabelValues(site).Set(float64(r.TotalRows))
	}
	if reportAnomalies != nil {
		reportAnomalies.WithLabelValues(site, "pv").Set(float64(len(r.Anomalies.PV)))
		reportAnomalies.WithLabelValues(site, "load").Set(float64(len(r.Anomalies.Load)))
		reportAnomalies.WithLabelValues(site, "battery").Set(float64(len(r.Anomalies.Battery)))
	}
	if reportSavings != nil {
		reportSavings.WithLabelValues(site).Set(r.BillImpact.AnnualSavings)
	}
}

