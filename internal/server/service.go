package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"solar_analyzer/internal/analysis"
	"solar_analyzer/internal/config"
	"solar_analyzer/internal/model"
	"solar_analyzer/internal/observability/metrics"
	"solar_analyzer/internal/store"
	"solar_analyzer/internal/ws"
)

// Service runs analyses over the loaded records and keeps the latest report.
// Runs are serialised; each one broadcasts its progress on the hub.
type Service struct {
	store  *store.Store
	cfg    model.SiteConfig
	hub    *ws.Hub
	logger zerolog.Logger

	from string
	to   string

	runMu sync.Mutex

	mu        sync.RWMutex
	latest    *analysis.Report
	latestRun string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithDateRange limits analyses to records between from and to inclusive.
// Empty bounds are open.
func WithDateRange(from, to string) ServiceOption {
	return func(s *Service) {
		s.from, s.to = from, to
	}
}

func NewService(st *store.Store, cfg model.SiteConfig, hub *ws.Hub, logger zerolog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		store:  st,
		cfg:    cfg,
		hub:    hub,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze runs the engine over the stored records in range. override, when not
// empty, is a YAML or JSON document merged over the service configuration
// for this run only.
func (s *Service) Analyze(ctx context.Context, override []byte) (*analysis.Report, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	runID := uuid.NewString()
	bridge := ws.NewBridge(s.hub, runID)
	logger := s.logger.With().Str("run_id", runID).Logger()
	start := time.Now()

	report, err := s.run(ctx, override, bridge, logger)
	if err != nil {
		metrics.ObserveAnalysis(metrics.ResultError, time.Since(start))
		logger.Warn().Err(err).Msg("analysis failed")
		bridge.OnError(err)
		return nil, err
	}
	metrics.ObserveAnalysis(metrics.ResultSuccess, time.Since(start))

	s.mu.Lock()
	s.latest, s.latestRun = report, runID
	s.mu.Unlock()
	return report, nil
}

func (s *Service) run(ctx context.Context, override []byte, bridge *ws.Bridge, logger zerolog.Logger) (*analysis.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := s.cfg
	if len(override) > 0 {
		merged, err := config.Merge(s.cfg, override)
		if err != nil {
			return nil, err
		}
		cfg = *merged
	}

	observers := analysis.Observers{
		analysis.NewLogObserver(logger),
		metrics.Observer{},
		bridge,
	}
	a := analysis.New(cfg, analysis.WithObserver(observers), analysis.WithFiles(s.store.Sources()))
	return a.Analyze(s.store.RecordsInRange(s.from, s.to))
}

// Latest returns the most recent successful report and its run ID.
func (s *Service) Latest() (*analysis.Report, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.latestRun, s.latest != nil
}

// Data describes the loaded records.
func (s *Service) Data() ws.DataLoadedPayload {
	dr, _ := s.store.DateRange()
	sources := s.store.Sources()
	if sources == nil {
		sources = []string{}
	}
	return ws.DataLoadedPayload{
		Site:      s.cfg.Name,
		Sources:   sources,
		Records:   s.store.Len(),
		DateRange: dr,
	}
}
