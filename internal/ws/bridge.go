package ws

import (
	"github.com/rs/zerolog/log"

	"solar_analyzer/internal/analysis"
)

// Bridge implements analysis.Observer and broadcasts one run's progress and
// result to the WebSocket hub.
type Bridge struct {
	hub   *Hub
	runID string
}

func NewBridge(hub *Hub, runID string) *Bridge {
	return &Bridge{hub: hub, runID: runID}
}

func (b *Bridge) OnStage(s analysis.Stage) {
	msg, err := NewRunEnvelope(TypeAnalysisStage, b.runID, StageFromAnalysis(s))
	if err != nil {
		log.Error().Err(err).Str("stage", s.Name).Msg("marshaling analysis stage")
		return
	}
	b.hub.Broadcast(msg)
}

func (b *Bridge) OnReport(r *analysis.Report) {
	msg, err := NewRunEnvelope(TypeReportReady, b.runID, r)
	if err != nil {
		log.Error().Err(err).Msg("marshaling report")
		return
	}
	b.hub.Broadcast(msg)
}

// OnError broadcasts a failed run.
func (b *Bridge) OnError(err error) {
	msg, mErr := NewRunEnvelope(TypeReportError, b.runID, ErrorPayload{Message: err.Error()})
	if mErr != nil {
		log.Error().Err(mErr).Msg("marshaling report error")
		return
	}
	b.hub.Broadcast(msg)
}
