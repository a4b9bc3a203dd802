package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"solar_analyzer/internal/analysis"
	"solar_analyzer/internal/config"
	"solar_analyzer/internal/export"
	"solar_analyzer/internal/model"
	"solar_analyzer/internal/observability/metrics"
)

// maxOverrideBytes caps a POST /analyze configuration override.
const maxOverrideBytes = 1 << 20

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string          `json:"status"`
	Site      string          `json:"site"`
	Records   int             `json:"records"`
	DateRange model.DateRange `json:"date_range"`
	Clients   int             `json:"clients"`
	HasReport bool            `json:"has_report"`
}

var contentTypes = map[export.Format]string{
	export.FormatJSON: "application/json",
	export.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	export.FormatPDF:  "application/pdf",
	export.FormatText: "text/plain; charset=utf-8",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	data := s.service.Data()
	_, _, ok := s.service.Latest()
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Site:      data.Site,
		Records:   data.Records,
		DateRange: data.DateRange,
		Clients:   s.hub.ClientCount(),
		HasReport: ok,
	})
}

// handleReport serves the latest report in the format named by ?format=
// (json by default).
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(export.FormatJSON)
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	report, runID, ok := s.service.Latest()
	if !ok {
		s.writeError(w, r, http.StatusNotFound, "no report yet, POST /analyze first")
		return
	}

	start := time.Now()
	data, err := export.Render(report, format)
	if err != nil {
		metrics.ObserveExport(string(format), metrics.ResultError, time.Since(start))
		s.writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	metrics.ObserveExport(string(format), metrics.ResultSuccess, time.Since(start))

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Run-ID", runID)
	if format.Binary() {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "solar-report."+string(format)))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn().Err(err).Str("request_id", requestID(r)).Msg("writing report")
	}
}

// handleAnalyze runs a new analysis. The optional body is a YAML or JSON
// configuration override.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxOverrideBytes+1))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "reading request body: "+err.Error())
		return
	}
	if len(body) > maxOverrideBytes {
		s.writeError(w, r, http.StatusRequestEntityTooLarge, "configuration override too large")
		return
	}

	report, err := s.service.Analyze(r.Context(), body)
	if err != nil {
		s.writeError(w, r, analyzeStatus(err), err.Error())
		return
	}

	_, runID, _ := s.service.Latest()
	w.Header().Set("X-Run-ID", runID)
	s.writeJSON(w, http.StatusOK, report)
}

func analyzeStatus(err error) int {
	switch {
	case errors.Is(err, analysis.ErrNoRecords):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	case errors.Is(err, config.ErrInvalid), errors.Is(err, analysis.ErrInvalidConfig):
		return http.StatusUnprocessableEntity
	default:
		// unparseable override
		return http.StatusBadRequest
	}
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	s.writeError(w, r, http.StatusNotFound, "the requested endpoint does not exist")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("encoding JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	s.writeJSON(w, status, ErrorResponse{
		Error:     http.StatusText(status),
		Message:   message,
		RequestID: requestID(r),
		Timestamp: time.Now().UTC(),
	})
}
